// Package agent implements the reasoning units the server routes requests
// to: message agents, action agents, and the router/classifier.
package agent

import "context"

// Agent is a named reasoning unit. Implementations are immutable after
// construction and stateless between invocations; all conversational
// continuity comes from replaying the session store.
type Agent interface {
	// Name returns the unique registry key for this agent.
	Name() string

	// Description summarizes what the agent handles, for router prompts.
	Description() string

	// Action runs one turn: it invokes the reasoning engine with the
	// agent's prompt, the replayed history for sessionID, and the new
	// input, and returns the engine's final answer. The turn is committed
	// to the session as a whole or not at all.
	Action(ctx context.Context, sessionID, input string) (string, error)
}
