package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"notewire/internal/llm"
)

const (
	defaultKeyPrefix = "notewire:chunk:"
	defaultIndexName = "notewire-chunks"

	// distanceField is the alias RediSearch assigns to the KNN distance.
	distanceField = "vector_score"
)

// RedisStore keeps chunks in Redis hashes indexed by RediSearch with a FLAT
// vector field using cosine distance.
//
// Layout:
//
//	Key:    "notewire:chunk:<id>"
//	Fields: content, doc_id, source, kind, embedding (raw FLOAT32 bytes)
type RedisStore struct {
	client    *redis.Client
	embedder  llm.Embedder
	keyPrefix string
	index     string
}

// NewRedisStore creates the store and its search index. Creating an index
// that already exists is not an error.
func NewRedisStore(ctx context.Context, client *redis.Client, embedder llm.Embedder) (*RedisStore, error) {
	s := &RedisStore{
		client:    client,
		embedder:  embedder,
		keyPrefix: defaultKeyPrefix,
		index:     defaultIndexName,
	}
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RedisStore) ensureIndex(ctx context.Context) error {
	err := s.client.FTCreate(ctx, s.index,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{s.keyPrefix},
		},
		&redis.FieldSchema{FieldName: "content", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "doc_id", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "source", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "kind", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            s.embedder.Dimension(),
					DistanceMetric: "COSINE",
				},
			},
		},
	).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	return nil
}

func (s *RedisStore) chunkKey(id string) string {
	return s.keyPrefix + id
}

// Upsert embeds the chunk content and stores it under its explicit key,
// replacing any previous chunk with the same ID.
func (s *RedisStore) Upsert(ctx context.Context, chunk Chunk) error {
	embedding, err := s.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("failed to embed chunk: %w", err)
	}

	err = s.client.HSet(ctx, s.chunkKey(chunk.ID), map[string]interface{}{
		"content":   chunk.Content,
		"doc_id":    chunk.DocID,
		"source":    chunk.Source,
		"kind":      chunk.Kind,
		"embedding": encodeVector(embedding),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store chunk: %w", err)
	}
	return nil
}

// DeleteByID removes the chunk stored under the given ID.
func (s *RedisStore) DeleteByID(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.chunkKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	return nil
}

// DeleteByDocID finds every chunk carrying the doc_id tag and removes it.
func (s *RedisStore) DeleteByDocID(ctx context.Context, docID string) error {
	res, err := s.client.FTSearchWithArgs(ctx, s.index,
		fmt.Sprintf("@doc_id:{%s}", escapeTag(docID)),
		&redis.FTSearchOptions{NoContent: true, Limit: 1000},
	).Result()
	if err != nil {
		return fmt.Errorf("failed to search by doc_id: %w", err)
	}

	for _, doc := range res.Docs {
		if err := s.client.Del(ctx, doc.ID).Err(); err != nil {
			return fmt.Errorf("failed to delete chunk %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Search embeds the query and runs a KNN search, returning chunks in
// ascending distance order converted to descending similarity.
func (s *RedisStore) Search(ctx context.Context, query string, k int) ([]Result, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	res, err := s.client.FTSearchWithArgs(ctx, s.index,
		fmt.Sprintf("*=>[KNN %d @embedding $vec AS %s]", k, distanceField),
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "content"},
				{FieldName: "doc_id"},
				{FieldName: "source"},
				{FieldName: "kind"},
				{FieldName: distanceField},
			},
			SortBy: []redis.FTSearchSortBy{
				{FieldName: distanceField, Asc: true},
			},
			Limit:          k,
			Params:         map[string]interface{}{"vec": encodeVector(queryEmbedding)},
			DialectVersion: 2,
		},
	).Result()
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]Result, 0, len(res.Docs))
	for _, doc := range res.Docs {
		distance, err := strconv.ParseFloat(doc.Fields[distanceField], 64)
		if err != nil {
			continue
		}
		results = append(results, Result{
			Chunk: Chunk{
				ID:      strings.TrimPrefix(doc.ID, s.keyPrefix),
				Content: doc.Fields["content"],
				DocID:   doc.Fields["doc_id"],
				Source:  doc.Fields["source"],
				Kind:    doc.Fields["kind"],
			},
			// Cosine distance to similarity.
			Score: 1.0 - distance,
		})
	}
	return results, nil
}

// encodeVector packs a float32 slice into the little-endian byte layout
// RediSearch expects for FLOAT32 vector fields.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// escapeTag escapes RediSearch tag syntax characters in a tag value.
func escapeTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ',', '.', '<', '>', '{', '}', '[', ']', '"', '\'', ':', ';',
			'!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '-', '+',
			'=', '~', '|', '/', '\\', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
