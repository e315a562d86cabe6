package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"notewire/internal/vector"
)

// fixedStore returns a canned result list regardless of the query.
type fixedStore struct {
	results []vector.Result
	err     error
	gotK    int
}

func (s *fixedStore) Upsert(ctx context.Context, chunk vector.Chunk) error   { return nil }
func (s *fixedStore) DeleteByID(ctx context.Context, id string) error        { return nil }
func (s *fixedStore) DeleteByDocID(ctx context.Context, docID string) error  { return nil }

func (s *fixedStore) Search(ctx context.Context, query string, k int) ([]vector.Result, error) {
	s.gotK = k
	return s.results, s.err
}

func resultsFixture() []vector.Result {
	return []vector.Result{
		{Chunk: vector.Chunk{ID: "a", Content: "The Q3 report shows 12% growth.", Source: "source"}, Score: 0.92},
		{Chunk: vector.Chunk{ID: "b", Content: "Team offsite is in May.", Source: "source"}, Score: 0.80},
		{Chunk: vector.Chunk{ID: "c", Content: "Old lunch menu.", Source: "source"}, Score: 0.40},
	}
}

func TestRetrieveFormatsBlocksInRelevanceOrder(t *testing.T) {
	store := &fixedStore{results: resultsFixture()}
	svc := NewService(store, 10, 0.75)

	out, err := svc.Retrieve(context.Background(), "q3 growth")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	want := "Source: source\nContent: The Q3 report shows 12% growth.\n---\n" +
		"Source: source\nContent: Team offsite is in May.\n---"
	if out != want {
		t.Errorf("Unexpected formatting:\ngot:  %q\nwant: %q", out, want)
	}
	if store.gotK != 10 {
		t.Errorf("Expected fetchK=10 passed to store, got %d", store.gotK)
	}
}

func TestRetrieveNeverReturnsChunksBelowThreshold(t *testing.T) {
	store := &fixedStore{results: resultsFixture()}
	svc := NewService(store, 10, 0.75)

	out, err := svc.Retrieve(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if strings.Contains(out, "Old lunch menu.") {
		t.Errorf("Chunk below threshold leaked into output: %q", out)
	}
}

func TestLoweringThresholdOnlyAddsChunks(t *testing.T) {
	store := &fixedStore{results: resultsFixture()}

	high, err := NewService(store, 10, 0.75).Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	low, err := NewService(store, 10, 0.30).Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	for _, line := range strings.Split(high, "\n") {
		if !strings.Contains(low, line) {
			t.Errorf("Lowering the threshold removed previously returned line %q", line)
		}
	}
	if !strings.Contains(low, "Old lunch menu.") {
		t.Errorf("Lowering the threshold did not add the low-score chunk")
	}
}

func TestRetrieveReturnsSentinelWhenNothingSurvives(t *testing.T) {
	store := &fixedStore{results: resultsFixture()}
	svc := NewService(store, 10, 0.99)

	out, err := svc.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if out != NoContextFound {
		t.Errorf("Expected sentinel %q, got %q", NoContextFound, out)
	}
	if out == "" {
		t.Error("Sentinel must never be the empty string")
	}
}

func TestRetrieveUsesUnknownSourceFallback(t *testing.T) {
	store := &fixedStore{results: []vector.Result{
		{Chunk: vector.Chunk{ID: "x", Content: "text"}, Score: 0.9},
	}}
	svc := NewService(store, 10, 0.75)

	out, err := svc.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !strings.HasPrefix(out, "Source: unknown source\n") {
		t.Errorf("Expected unknown source fallback, got %q", out)
	}
}

func TestToolExecute(t *testing.T) {
	store := &fixedStore{results: resultsFixture()}
	tool := NewTool(NewService(store, 10, 0.75))

	out, err := tool.Execute(context.Background(), map[string]any{"query": "q3"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "Q3 report") {
		t.Errorf("Expected context in tool output, got %q", out)
	}

	if _, err := tool.Execute(context.Background(), map[string]any{}); err == nil {
		t.Error("Expected error for missing query argument")
	}
}

func TestToolSurfacesStoreErrors(t *testing.T) {
	store := &fixedStore{err: errors.New("connection refused")}
	tool := NewTool(NewService(store, 10, 0.75))

	if _, err := tool.Execute(context.Background(), map[string]any{"query": "q"}); err == nil {
		t.Error("Expected store error to surface from Execute")
	}
}
