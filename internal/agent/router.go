package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notewire/internal/llm"
)

// routerSchema constrains the classifier to emit exactly one agent name.
var routerSchema = llm.Schema{
	Name: "agent_choice",
	Definition: json.RawMessage(`{
		"type": "object",
		"properties": {
			"chosen_agent": {"type": "string", "description": "Name of the single best agent for the request"}
		},
		"required": ["chosen_agent"],
		"additionalProperties": false
	}`),
}

// RouterAgent classifies incoming requests and picks the registered agent
// best suited to handle them. It keeps no session of its own; each choice
// is made from the input alone.
type RouterAgent struct {
	name     string
	engine   llm.Engine
	registry *Registry
}

// NewRouterAgent creates a router over the given registry. The registry is
// consulted at choice time, so agents registered later are still routable.
func NewRouterAgent(name string, engine llm.Engine, registry *Registry) *RouterAgent {
	return &RouterAgent{name: name, engine: engine, registry: registry}
}

// Name returns the router's registry key.
func (r *RouterAgent) Name() string { return r.name }

// Description summarizes the router for diagnostics.
func (r *RouterAgent) Description() string {
	return "Classifies requests and routes them to the most suitable agent"
}

// Choose returns the name of the agent that should handle input. The engine
// is asked to pick from the current roster; an answer naming an unknown
// agent is an error so the caller can fall back deliberately.
func (r *RouterAgent) Choose(ctx context.Context, input string) (string, error) {
	raw, err := r.engine.Invoke(ctx, llm.Request{
		SystemPrompt: r.classifierPrompt(),
		Input:        input,
		Schema:       routerSchema,
	})
	if err != nil {
		return "", fmt.Errorf("router %s: %w", r.name, err)
	}

	var out struct {
		ChosenAgent string `json:"chosen_agent"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("router %s: malformed structured output: %w", r.name, err)
	}
	if out.ChosenAgent == "" {
		return "", fmt.Errorf("router %s: structured output missing chosen_agent", r.name)
	}
	if _, ok := r.registry.Lookup(out.ChosenAgent); !ok {
		return "", fmt.Errorf("router %s: chose unknown agent %q", r.name, out.ChosenAgent)
	}
	return out.ChosenAgent, nil
}

// Action routes the input and delegates the turn to the chosen agent.
func (r *RouterAgent) Action(ctx context.Context, sessionID, input string) (string, error) {
	chosen, err := r.Choose(ctx, input)
	if err != nil {
		return "", err
	}
	target, ok := r.registry.Lookup(chosen)
	if !ok {
		return "", fmt.Errorf("router %s: agent %q disappeared from registry", r.name, chosen)
	}
	return target.Action(ctx, sessionID, input)
}

// classifierPrompt enumerates the current roster so the engine can only
// reason about agents that actually exist.
func (r *RouterAgent) classifierPrompt() string {
	var b strings.Builder
	b.WriteString("You are an Agent Router and Classifier. Your job is to examine the user's request and determine which agent is best suited to handle it. Respond with the name of the chosen agent.\n\nAvailable agents:\n")
	for _, entry := range r.registry.Descriptions() {
		fmt.Fprintf(&b, "- %s: %s\n", entry.Name, entry.Description)
	}
	return b.String()
}
