package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qiwang999/service-topo-agent/vectorstore"
)

// Hit is a reusable prior answer: the cached question was similar enough to
// the current one that regeneration is skipped entirely.
type Hit struct {
	Question   string
	Cypher     string
	Summary    string
	Similarity float64
}

// Cache is the semantic-cache policy over the vector store: near-duplicate
// questions short-circuit the whole generation pipeline.
type Cache struct {
	options Options
}

// Lookup returns a Hit when a previously answered question scores at or
// above the configured minimum against question. A hit bumps the matched
// entry's access count. Store or oracle trouble is a miss, never a fault.
func (c *Cache) Lookup(ctx context.Context, question string) (*Hit, error) {
	if !c.options.Enabled {
		return nil, nil
	}

	entry, err := c.options.Store.FindCache(
		ctx,
		question,
		vectorstore.WithFindMinSimilarity(c.options.MinSimilarity),
		vectorstore.WithFindMethod(c.options.Method),
	)
	if err != nil {
		slog.WarnContext(ctx, "cache lookup failed, treating as miss", "error", err)
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}

	// Record the hit against the entry's own question so the access counter
	// tracks reuse.
	if err := c.options.Store.UpsertCache(ctx, entry.Question, entry.Cypher, entry.Summary); err != nil {
		slog.WarnContext(ctx, "failed to record cache hit", "error", err)
	}

	return &Hit{
		Question:   entry.Question,
		Cypher:     entry.Cypher,
		Summary:    entry.Summary,
		Similarity: entry.Similarity,
	}, nil
}

// Record stores a freshly generated answer for future lookups.
func (c *Cache) Record(ctx context.Context, question string, cypher string, summary string) error {
	if !c.options.Enabled {
		return nil
	}

	if err := c.options.Store.UpsertCache(ctx, question, cypher, summary); err != nil {
		return fmt.Errorf("record cache entry: %w", err)
	}

	return nil
}

func (c *Cache) Stats(ctx context.Context) (vectorstore.CacheStats, error) {
	return c.options.Store.CacheStats(ctx)
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.options.Store.ClearCache(ctx)
}

func New(opts ...Option) *Cache {
	options := NewOptions(opts...)

	if options.Store == nil {
		panic("cache requires a vector store")
	}

	return &Cache{
		options: options,
	}
}
