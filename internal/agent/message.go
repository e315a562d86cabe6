package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"notewire/internal/llm"
	"notewire/internal/session"
)

// messageSchema is the structured output contract for message and action
// agents. The engine must emit exactly one helpful_response field.
var messageSchema = llm.Schema{
	Name: "message_response",
	Definition: json.RawMessage(`{
		"type": "object",
		"properties": {
			"helpful_response": {"type": "string", "description": "The response to show the user"}
		},
		"required": ["helpful_response"],
		"additionalProperties": false
	}`),
}

// MessageAgent answers user input with the reasoning engine, a fixed system
// prompt, and a toolset that at minimum includes context retrieval.
type MessageAgent struct {
	name        string
	description string
	prompt      string
	engine      llm.Engine
	sessions    session.Store
	tools       []llm.Tool
}

// NewMessageAgent creates a message agent.
func NewMessageAgent(name, description, prompt string, engine llm.Engine, sessions session.Store, tools ...llm.Tool) *MessageAgent {
	if prompt == "" {
		prompt = "You are a helpful assistant"
	}
	return &MessageAgent{
		name:        name,
		description: description,
		prompt:      prompt,
		engine:      engine,
		sessions:    sessions,
		tools:       tools,
	}
}

// Name returns the registry key.
func (a *MessageAgent) Name() string { return a.name }

// Description returns the router-facing summary.
func (a *MessageAgent) Description() string { return a.description }

// Action runs one turn. The user input and final answer are appended to the
// session together only after the engine succeeds, so a failed invocation
// leaves the history untouched.
func (a *MessageAgent) Action(ctx context.Context, sessionID, input string) (string, error) {
	history, err := a.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	raw, err := a.engine.Invoke(ctx, llm.Request{
		SystemPrompt: a.prompt,
		History:      history,
		Input:        input,
		Tools:        a.tools,
		Schema:       messageSchema,
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.name, err)
	}

	var out struct {
		HelpfulResponse string `json:"helpful_response"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("agent %s: malformed structured output: %w", a.name, err)
	}
	if out.HelpfulResponse == "" {
		return "", fmt.Errorf("agent %s: structured output missing helpful_response", a.name)
	}

	err = a.sessions.Append(ctx, sessionID,
		session.Turn{Role: session.RoleUser, Content: input},
		session.Turn{Role: session.RoleAssistant, Content: out.HelpfulResponse},
	)
	if err != nil {
		return "", fmt.Errorf("agent %s: failed to commit turn: %w", a.name, err)
	}
	return out.HelpfulResponse, nil
}

// ActionAgent is a message agent whose toolset additionally includes
// side-effecting external-action tools such as email sending. The tools
// report failures as strings to the engine, so an action agent's turn
// always produces an answer.
type ActionAgent struct {
	*MessageAgent
}

// NewActionAgent creates an action agent with the given action tools
// appended to the base toolset.
func NewActionAgent(name, description, prompt string, engine llm.Engine, sessions session.Store, tools ...llm.Tool) *ActionAgent {
	return &ActionAgent{
		MessageAgent: NewMessageAgent(name, description, prompt, engine, sessions, tools...),
	}
}
