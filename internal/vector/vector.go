// Package vector provides similarity-indexed document chunk storage.
package vector

import "context"

// Chunk is one unit of ingested text. Identity is the ID; at most one live
// chunk exists per ID at any time.
type Chunk struct {
	ID      string
	Content string
	DocID   string
	Source  string
	Kind    string
}

// Result pairs a chunk with its similarity score for a query. Higher scores
// are more relevant.
type Result struct {
	Chunk Chunk
	Score float64
}

// Store is the similarity-indexed chunk store. Implementations embed content
// on insert and queries on search, and must be safe for concurrent use.
type Store interface {
	// Upsert inserts a chunk under its explicit ID, replacing any chunk
	// already stored under that key.
	Upsert(ctx context.Context, chunk Chunk) error

	// DeleteByID removes the chunk stored under the given ID, if any.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByDocID removes all chunks whose doc_id metadata matches.
	DeleteByDocID(ctx context.Context, docID string) error

	// Search returns the k nearest chunks to the query in descending
	// relevance order.
	Search(ctx context.Context, query string, k int) ([]Result, error)
}
