package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qiwang999/service-topo-agent/similarity"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

// memoryStore keeps everything in process. It backs tests and the repl; the
// postgres store is the durable twin with the same observable behavior.
type memoryStore struct {
	options  vectorstore.Options
	records  []vectorstore.Record
	cache    []*vectorstore.CacheEntry
	feedback []vectorstore.Feedback
	mtx      sync.RWMutex
}

func (m *memoryStore) StoreEmbedding(ctx context.Context, category vectorstore.Category, text string, cypher string, opts ...vectorstore.StoreOption) error {
	options := vectorstore.NewStoreOptions(opts...)

	vec, err := m.options.Embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %q: %w", category, err)
	}
	if len(vec) == 0 {
		return errors.New("embedding oracle returned no vector")
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.records = append(m.records, vectorstore.Record{
		Id:        uuid.New().String(),
		Category:  category,
		Text:      text,
		Cypher:    cypher,
		Embedding: vec,
		Threshold: options.Threshold,
		CreatedAt: time.Now().UTC(),
	})

	return nil
}

func (m *memoryStore) StoreEmbeddingBatch(ctx context.Context, category vectorstore.Category, pairs []vectorstore.Pair, opts ...vectorstore.StoreOption) error {
	if len(pairs) == 0 {
		return nil
	}

	options := vectorstore.NewStoreOptions(opts...)

	texts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		texts = append(texts, p.Text)
	}

	vecs, err := m.options.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %q batch: %w", category, err)
	}
	if len(vecs) != len(pairs) {
		return errors.New("embedding oracle returned wrong vector count")
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	for i, p := range pairs {
		m.records = append(m.records, vectorstore.Record{
			Id:        uuid.New().String(),
			Category:  category,
			Text:      p.Text,
			Cypher:    p.Cypher,
			Embedding: vecs[i],
			Threshold: options.Threshold,
			CreatedAt: time.Now().UTC(),
		})
	}

	return nil
}

func (m *memoryStore) RetrieveSimilar(ctx context.Context, category vectorstore.Category, query string, opts ...vectorstore.RetrieveOption) ([]vectorstore.Match, error) {
	options := vectorstore.NewRetrieveOptions(opts...)
	method := m.method(options.Method)

	vec, err := m.options.Embedder.Embed(ctx, query)
	if err != nil || len(vec) == 0 {
		slog.WarnContext(ctx, "embedding unavailable, treating retrieval as empty", "error", err)
		return nil, nil
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	var matches []vectorstore.Match
	for _, rec := range m.records {
		if rec.Category != category {
			continue
		}
		score := similarity.Score(vec, rec.Embedding, method)
		if score < options.MinSimilarity {
			continue
		}
		matches = append(matches, vectorstore.Match{
			Text:       rec.Text,
			Cypher:     rec.Cypher,
			Similarity: score,
			Threshold:  rec.Threshold,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > options.TopK {
		matches = matches[:options.TopK]
	}

	return matches, nil
}

func (m *memoryStore) UpsertCache(ctx context.Context, question string, cypher string, summary string, opts ...vectorstore.CacheOption) error {
	options := vectorstore.NewCacheOptions(opts...)

	hash := vectorstore.QuestionHash(question)

	m.mtx.Lock()
	if entry := m.lookupLocked(hash); entry != nil {
		entry.AccessCount++
		entry.LastAccessed = time.Now().UTC()
		m.mtx.Unlock()
		return nil
	}
	m.mtx.Unlock()

	// Embed outside the lock: the oracle call is slow and the insert below
	// re-checks for a concurrent writer.
	vec, err := m.options.Embedder.Embed(ctx, question)
	if err != nil {
		return fmt.Errorf("embed cache entry: %w", err)
	}
	if len(vec) == 0 {
		return errors.New("embedding oracle returned no vector")
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if entry := m.lookupLocked(hash); entry != nil {
		entry.AccessCount++
		entry.LastAccessed = time.Now().UTC()
		return nil
	}

	now := time.Now().UTC()
	m.cache = append(m.cache, &vectorstore.CacheEntry{
		Id:           uuid.New().String(),
		Hash:         hash,
		Question:     question,
		Cypher:       cypher,
		Summary:      summary,
		Embedding:    vec,
		Similarity:   options.Score,
		AccessCount:  1,
		CreatedAt:    now,
		LastAccessed: now,
	})

	return nil
}

func (m *memoryStore) AttachSummary(ctx context.Context, question string, summary string) error {
	hash := vectorstore.QuestionHash(question)

	m.mtx.Lock()
	defer m.mtx.Unlock()

	entry := m.lookupLocked(hash)
	if entry == nil {
		return fmt.Errorf("no cache entry for question hash %s", hash)
	}

	entry.Summary = summary

	return nil
}

func (m *memoryStore) FindCache(ctx context.Context, question string, opts ...vectorstore.FindOption) (*vectorstore.CacheEntry, error) {
	options := vectorstore.NewFindOptions(opts...)
	method := m.method(options.Method)

	vec, err := m.options.Embedder.Embed(ctx, question)
	if err != nil || len(vec) == 0 {
		slog.WarnContext(ctx, "embedding unavailable, treating cache lookup as miss", "error", err)
		return nil, nil
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	var best *vectorstore.CacheEntry
	bestScore := 0.0

	for _, entry := range m.cache {
		score := similarity.Score(vec, entry.Embedding, method)
		if score < options.MinSimilarity {
			continue
		}
		// strictly greater keeps the first entry in stored order on ties
		if best == nil || score > bestScore {
			best = entry
			bestScore = score
		}
	}

	if best == nil {
		return nil, nil
	}

	found := *best
	found.Similarity = bestScore

	return &found, nil
}

func (m *memoryStore) SaveFeedback(ctx context.Context, fb vectorstore.Feedback) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating out of range: %d", fb.Rating)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	fb.Id = uuid.New().String()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	m.feedback = append(m.feedback, fb)

	return nil
}

func (m *memoryStore) LoadFeedback(ctx context.Context, minRating int) ([]vectorstore.Feedback, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	var out []vectorstore.Feedback
	for _, fb := range m.feedback {
		if fb.Rating > minRating {
			out = append(out, fb)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (m *memoryStore) Seed(ctx context.Context) error {
	rows, err := m.LoadFeedback(ctx, 3)
	if err != nil {
		return err
	}

	pairs := make([]vectorstore.Pair, 0, len(rows))
	for _, fb := range rows {
		pairs = append(pairs, vectorstore.Pair{Text: fb.Question, Cypher: fb.CorrectedCypher})
	}

	if err := m.StoreEmbeddingBatch(ctx, vectorstore.CategoryExample, pairs); err != nil {
		return err
	}

	return m.StoreEmbeddingBatch(ctx, vectorstore.CategoryFeedback, pairs)
}

func (m *memoryStore) CacheStats(ctx context.Context) (vectorstore.CacheStats, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	stats := vectorstore.CacheStats{}
	stats.TotalEntries = len(m.cache)

	var totalAccess int
	sorted := make([]*vectorstore.CacheEntry, len(m.cache))
	copy(sorted, m.cache)

	for _, entry := range m.cache {
		totalAccess += entry.AccessCount
		if entry.AccessCount > 1 {
			stats.AccessedEntries++
		}
	}

	if stats.TotalEntries > 0 {
		stats.HitRate = float64(stats.AccessedEntries) / float64(stats.TotalEntries) * 100
		stats.AvgAccessCount = float64(totalAccess) / float64(stats.TotalEntries)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AccessCount > sorted[j].AccessCount
	})

	for i, entry := range sorted {
		if i == 5 {
			break
		}
		stats.TopAccessed = append(stats.TopAccessed, vectorstore.TopAccessed{
			Question: entry.Question,
			Count:    entry.AccessCount,
		})
	}

	return stats, nil
}

func (m *memoryStore) ClearCache(ctx context.Context) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.cache = nil

	return nil
}

func (m *memoryStore) lookupLocked(hash string) *vectorstore.CacheEntry {
	for _, entry := range m.cache {
		if entry.Hash == hash {
			return entry
		}
	}
	return nil
}

func (m *memoryStore) method(override similarity.Method) similarity.Method {
	if len(override) > 0 {
		return override
	}
	return m.options.Method
}

func NewStore(opts ...vectorstore.Option) vectorstore.Store {
	options := vectorstore.NewOptions(opts...)

	if options.Embedder == nil {
		panic("memory store requires an embedder")
	}

	return &memoryStore{
		options: options,
	}
}
