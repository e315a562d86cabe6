package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"notewire/internal/llm"
)

// MemoryStore is an in-process chunk store using cosine similarity over
// embeddings. Good for tests and development; production deployments use
// RedisStore.
type MemoryStore struct {
	embedder llm.Embedder

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	chunk     Chunk
	embedding []float32
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore(embedder llm.Embedder) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		entries:  make(map[string]memoryEntry),
	}
}

// Upsert inserts a chunk, replacing any chunk with the same ID.
func (s *MemoryStore) Upsert(ctx context.Context, chunk Chunk) error {
	embedding, err := s.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chunk.ID] = memoryEntry{chunk: chunk, embedding: embedding}
	return nil
}

// DeleteByID removes the chunk stored under the given ID.
func (s *MemoryStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// DeleteByDocID removes all chunks with matching doc_id metadata.
func (s *MemoryStore) DeleteByDocID(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if entry.chunk.DocID == docID {
			delete(s.entries, id)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity, best first.
func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]Result, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	results := make([]Result, 0, len(s.entries))
	for _, entry := range s.entries {
		results = append(results, Result{
			Chunk: entry.chunk,
			Score: cosineSimilarity(queryEmbedding, entry.embedding),
		})
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	dotProduct := 0.0
	magnitudeA := 0.0
	magnitudeB := 0.0
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		magnitudeA += float64(a[i]) * float64(a[i])
		magnitudeB += float64(b[i]) * float64(b[i])
	}

	magnitudeA = math.Sqrt(magnitudeA)
	magnitudeB = math.Sqrt(magnitudeB)
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0.0
	}
	return dotProduct / (magnitudeA * magnitudeB)
}
