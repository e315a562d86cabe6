// Package llm defines the minimal contract between agents and the external
// tool-calling reasoning engine, plus the OpenAI implementation.
package llm

import (
	"context"
	"encoding/json"

	"notewire/internal/session"
)

// Tool is an executable capability the reasoning engine may call zero or
// more times before producing its final answer.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does, shown to the reasoning engine.
	Description() string

	// Parameters returns the JSON schema of the tool's arguments.
	Parameters() json.RawMessage

	// Execute runs the tool. Errors are converted into descriptive strings
	// at the engine boundary and fed back to the reasoning engine; they are
	// never propagated to the caller.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Schema declares the structured output an agent expects from the engine.
type Schema struct {
	Name       string
	Definition json.RawMessage
}

// Request describes one engine invocation.
type Request struct {
	SystemPrompt string
	History      []session.Turn
	Input        string
	Tools        []Tool
	Schema       Schema
}

// Engine is the external reasoning engine. Invoke runs the tool-calling loop
// to completion and returns the final structured output as raw JSON matching
// the request's schema.
type Engine interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}
