package vector

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"
)

// wordBagEmbedder maps words to buckets so texts sharing words get similar
// vectors. Deterministic and offline.
type wordBagEmbedder struct{}

func (wordBagEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%32]++
	}
	return v, nil
}

func (wordBagEmbedder) Dimension() int { return 32 }

func TestMemoryStoreUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(wordBagEmbedder{})

	chunks := []Chunk{
		{ID: "doc1", DocID: "doc1", Content: "The Q3 report shows 12% growth.", Source: "source", Kind: "memo"},
		{ID: "doc2", DocID: "doc2", Content: "Lunch menu for friday", Source: "source", Kind: "memo"},
	}
	for _, c := range chunks {
		if err := store.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	results, err := store.Search(ctx, "What did the Q3 report show?", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "doc1" {
		t.Errorf("Expected doc1 most relevant, got %q", results[0].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("Results not in descending score order: %v < %v", results[0].Score, results[1].Score)
	}
}

func TestMemoryStoreUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(wordBagEmbedder{})

	if err := store.Upsert(ctx, Chunk{ID: "doc1", DocID: "doc1", Content: "old text"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, Chunk{ID: "doc1", DocID: "doc1", Content: "new text"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("Expected exactly 1 chunk after re-upsert, got %d", store.Len())
	}
	results, err := store.Search(ctx, "new text", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Chunk.Content != "new text" {
		t.Errorf("Expected latest content, got %q", results[0].Chunk.Content)
	}
}

func TestMemoryStoreDeleteByIDAndDocID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(wordBagEmbedder{})

	if err := store.Upsert(ctx, Chunk{ID: "a", DocID: "a", Content: "alpha"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, Chunk{ID: "b", DocID: "b", Content: "beta"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := store.DeleteByID(ctx, "a"); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 chunk after DeleteByID, got %d", store.Len())
	}

	if err := store.DeleteByDocID(ctx, "b"); err != nil {
		t.Fatalf("DeleteByDocID failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected 0 chunks after DeleteByDocID, got %d", store.Len())
	}
}

func TestMemoryStoreSearchHonorsK(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(wordBagEmbedder{})

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := store.Upsert(ctx, Chunk{ID: id, DocID: id, Content: "note " + id}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	results, err := store.Search(ctx, "note", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected k=2 results, got %d", len(results))
	}
}

func TestEncodeVectorLayout(t *testing.T) {
	buf := encodeVector([]float32{1.0})
	if len(buf) != 4 {
		t.Fatalf("Expected 4 bytes per float32, got %d", len(buf))
	}
	// 1.0 as little-endian IEEE 754: 00 00 80 3f
	want := []byte{0x00, 0x00, 0x80, 0x3f}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("Expected %x, got %x", want, buf)
		}
	}
}

func TestEscapeTag(t *testing.T) {
	got := escapeTag("doc-1.md")
	if got != `doc\-1\.md` {
		t.Errorf("Expected escaped tag, got %q", got)
	}
}
