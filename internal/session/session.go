// Package session provides durable, append-only conversation histories.
//
// A session is keyed by a thread identifier and replayed to the reasoning
// engine on every invocation; agents hold no conversational state in memory.
package session

import "context"

// Roles used in conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store persists conversation turns per thread identifier.
//
// Append must apply all given turns or none of them, so a failed engine
// invocation never leaves a half-committed turn in the history.
type Store interface {
	Append(ctx context.Context, threadID string, turns ...Turn) error

	// Load returns the full history in chronological order. An unknown
	// thread yields an empty history, not an error.
	Load(ctx context.Context, threadID string) ([]Turn, error)

	Clear(ctx context.Context, threadID string) error
}
