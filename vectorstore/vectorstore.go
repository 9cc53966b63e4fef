package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is the durable mapping from (category, text) to vector, with
// retrieval by similarity, the query cache, and the feedback log behind it.
// Implementations embed text through the embedding oracle at write time; an
// unavailable oracle surfaces as a miss (nil result, nil error) on reads and
// a typed error on writes, never as a panic.
//
// Writes must be safe to call from concurrent turns: implementations
// serialize store/upsert operations so shared access counters are not lost.
type Store interface {
	// StoreEmbedding persists a new record. Repeated stores of the same text
	// create duplicate rows; deduplication is not part of the contract.
	StoreEmbedding(ctx context.Context, category Category, text string, cypher string, opts ...StoreOption) error

	// StoreEmbeddingBatch persists pairs under one batched call to the
	// embedding oracle. Same row semantics as StoreEmbedding.
	StoreEmbeddingBatch(ctx context.Context, category Category, pairs []Pair, opts ...StoreOption) error

	// RetrieveSimilar scores every record of category against query and
	// returns the TopK matches at or above MinSimilarity, highest first,
	// ties broken by stored order. An empty store yields an empty list.
	RetrieveSimilar(ctx context.Context, category Category, query string, opts ...RetrieveOption) ([]Match, error)

	// UpsertCache keys on a content hash of question: an existing entry gets
	// its access count bumped and last-access refreshed, otherwise a new
	// entry is inserted with access count 1.
	UpsertCache(ctx context.Context, question string, cypher string, summary string, opts ...CacheOption) error

	// AttachSummary fills in the summary of an existing cache entry. This is
	// the only permitted payload update after insert.
	AttachSummary(ctx context.Context, question string, summary string) error

	// FindCache returns the single most similar cache entry at or above
	// MinSimilarity, or nil. Ties go to the first entry in stored order.
	FindCache(ctx context.Context, question string, opts ...FindOption) (*CacheEntry, error)

	// SaveFeedback appends a feedback row. Rows are never mutated.
	SaveFeedback(ctx context.Context, fb Feedback) error

	// LoadFeedback returns feedback with rating above minRating, newest
	// first.
	LoadFeedback(ctx context.Context, minRating int) ([]Feedback, error)

	// Seed re-derives example and feedback embeddings from the high-rated
	// feedback log.
	Seed(ctx context.Context) error

	CacheStats(ctx context.Context) (CacheStats, error)
	ClearCache(ctx context.Context) error
}

// QuestionHash is the stable content hash used as the cache key for the
// exact-match fast path.
func QuestionHash(question string) string {
	sum := sha256.Sum256([]byte(question))
	return hex.EncodeToString(sum[:])
}
