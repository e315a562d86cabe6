// Package ingest synchronizes documents into the vector store.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"notewire/internal/vector"
)

// Metadata applied to every ingested chunk.
const (
	ChunkSource = "source"
	ChunkKind   = "memo"
)

// Ingestor upserts documents as vector-store chunks. Upserts for the same
// document id are serialized so a reader never races the delete-then-insert
// sequence; different ids proceed in parallel.
type Ingestor struct {
	store vector.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an ingestor over the given store.
func New(store vector.Store) *Ingestor {
	return &Ingestor{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (i *Ingestor) lockFor(id string) *sync.Mutex {
	i.mu.Lock()
	defer i.mu.Unlock()
	lock, ok := i.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		i.locks[id] = lock
	}
	return lock
}

// Upsert replaces any chunk stored for id with a new one holding text.
// Deletion covers both the primary key and the doc_id metadata filter so
// chunks written by either form are superseded. Idempotent: two upserts with
// the same id leave exactly one chunk holding the latest text.
func (i *Ingestor) Upsert(ctx context.Context, id, text string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	lock := i.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := i.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete previous chunk: %w", err)
	}
	if err := i.store.DeleteByDocID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete previous chunks by doc_id: %w", err)
	}

	chunk := vector.Chunk{
		ID:      id,
		Content: text,
		DocID:   id,
		Source:  ChunkSource,
		Kind:    ChunkKind,
	}
	if err := i.store.Upsert(ctx, chunk); err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}
