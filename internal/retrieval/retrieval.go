// Package retrieval turns vector-store search results into context blocks
// usable as reasoning-engine tool output.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notewire/internal/vector"
)

// NoContextFound is returned when no chunk survives score filtering. Agents
// receive this sentinel instead of an empty string so they can tell that
// retrieval ran and found nothing.
const NoContextFound = "no related notes found"

// Service queries the vector store and formats surviving chunks.
type Service struct {
	store    vector.Store
	fetchK   int
	minScore float64
}

// NewService creates a retrieval service. fetchK is how many chunks to
// request before client-side score filtering; minScore is the similarity
// threshold below which chunks are dropped.
func NewService(store vector.Store, fetchK int, minScore float64) *Service {
	if fetchK <= 0 {
		fetchK = 10
	}
	return &Service{store: store, fetchK: fetchK, minScore: minScore}
}

// Retrieve fetches the nearest chunks for the query, drops those under the
// score threshold, and formats the rest in store relevance order.
func (s *Service) Retrieve(ctx context.Context, query string) (string, error) {
	results, err := s.store.Search(ctx, query, s.fetchK)
	if err != nil {
		return "", fmt.Errorf("context retrieval failed: %w", err)
	}

	blocks := make([]string, 0, len(results))
	for _, res := range results {
		if res.Score < s.minScore {
			continue
		}
		source := res.Chunk.Source
		if source == "" {
			source = "unknown source"
		}
		blocks = append(blocks, fmt.Sprintf("Source: %s\nContent: %s\n---", source, res.Chunk.Content))
	}

	if len(blocks) == 0 {
		return NoContextFound, nil
	}
	return strings.Join(blocks, "\n"), nil
}

// Tool exposes the retrieval service to reasoning engines. The engine
// decides when to call it; some agent prompts instruct it to always do so.
type Tool struct {
	service *Service
}

// NewTool wraps a retrieval service as an engine tool.
func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

// Name returns the tool identifier presented to the engine.
func (t *Tool) Name() string { return "get_prompt_context" }

// Description tells the engine what the tool is for.
func (t *Tool) Description() string {
	return "Gets information from a query that will be useful to include in a response"
}

// Parameters returns the argument schema.
func (t *Tool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The text to find related notes for"}
		},
		"required": ["query"]
	}`)
}

// Execute runs retrieval for the engine-supplied query.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("missing query argument")
	}
	return t.service.Retrieve(ctx, query)
}
