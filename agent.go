package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qiwang999/service-topo-agent/cache"
	"github.com/qiwang999/service-topo-agent/orchestrator"
	"github.com/qiwang999/service-topo-agent/selector"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

// Agent is the public facade over the whole pipeline: two pre-built
// orchestrators (standard and fast), the example selector, and the semantic
// cache, behind a single reconfigurable handle.
//
// Reconfiguration is copy-on-swap: Respond snapshots the current
// orchestrator under a read lock and keeps it for the whole turn, so a
// concurrent Reconfigure never changes a turn mid-flight.
type Agent struct {
	mtx      sync.RWMutex
	standard *orchestrator.Orchestrator
	fast     *orchestrator.Orchestrator
	options  Options
	selector *selector.Selector
	cache    *cache.Cache
}

// RespondOption tunes a single turn.
type RespondOption func(*RespondOptions)

type RespondOptions struct {
	FastMode *bool
}

// WithRunFast overrides the agent's configured run mode for one turn.
func WithRunFast(fast bool) RespondOption {
	return func(o *RespondOptions) {
		o.FastMode = &fast
	}
}

// Respond answers one question against history.
func (a *Agent) Respond(ctx context.Context, history []orchestrator.Turn, question string, opts ...RespondOption) (*orchestrator.Result, error) {
	var turn RespondOptions
	for _, opt := range opts {
		opt(&turn)
	}

	a.mtx.RLock()
	fast := a.options.FastMode
	if turn.FastMode != nil {
		fast = *turn.FastMode
	}
	o := a.standard
	if fast {
		o = a.fast
	}
	a.mtx.RUnlock()

	return o.Respond(ctx, history, question)
}

// Reconfigure rebuilds both orchestrators with the given overrides applied
// on top of the agent's construction-time options and swaps them in. Turns
// already in flight finish on the instances they started with.
func (a *Agent) Reconfigure(opts ...Option) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	for _, opt := range opts {
		opt(&a.options)
	}

	a.standard, a.fast = a.build()

	slog.Info("agent reconfigured", "fast_mode", a.options.FastMode)
}

// Feedback records a human correction. Highly rated corrections (rating
// above 3) also become retrievable feedback embeddings, and the
// orchestrators are rebuilt so subsequent turns see them immediately.
func (a *Agent) Feedback(ctx context.Context, fb vectorstore.Feedback) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", fb.Rating)
	}

	a.mtx.RLock()
	store := a.options.Store
	a.mtx.RUnlock()

	if err := store.SaveFeedback(ctx, fb); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	if fb.Rating > 3 {
		if err := store.StoreEmbedding(ctx, vectorstore.CategoryFeedback, fb.Question, fb.CorrectedCypher); err != nil {
			return fmt.Errorf("embed feedback: %w", err)
		}
	}

	a.Reconfigure()

	return nil
}

// SimilarExamples returns stored examples similar to question.
func (a *Agent) SimilarExamples(ctx context.Context, question string) ([]selector.Example, error) {
	examples, _, err := a.selector.Examples(ctx, question)
	return examples, err
}

// SimilarFeedback returns high-rated feedback corrections similar to question.
func (a *Agent) SimilarFeedback(ctx context.Context, question string) ([]selector.Example, error) {
	return a.selector.FeedbackExamples(ctx, question)
}

func (a *Agent) CacheStats(ctx context.Context) (vectorstore.CacheStats, error) {
	return a.cache.Stats(ctx)
}

func (a *Agent) ClearCache(ctx context.Context) error {
	return a.cache.Clear(ctx)
}

// SeedEmbeddings loads the static example library into the vector store and
// re-derives embeddings from the high-rated feedback log. The library is
// embedded in a single batch call.
func (a *Agent) SeedEmbeddings(ctx context.Context) (int, error) {
	a.mtx.RLock()
	store := a.options.Store
	examples := a.options.StaticExamples
	path := a.options.StaticExamplesPath
	a.mtx.RUnlock()

	if len(examples) == 0 {
		examples = selector.LoadStatic(path)
	}

	pairs := make([]vectorstore.Pair, 0, len(examples))
	for _, ex := range examples {
		pairs = append(pairs, vectorstore.Pair{Text: ex.Question, Cypher: ex.Cypher})
	}

	if err := store.StoreEmbeddingBatch(ctx, vectorstore.CategoryExample, pairs); err != nil {
		return 0, fmt.Errorf("seed examples: %w", err)
	}

	if err := store.Seed(ctx); err != nil {
		return 0, fmt.Errorf("seed feedback: %w", err)
	}

	return len(examples), nil
}

// Schema returns the graph schema the current orchestrator holds.
func (a *Agent) Schema() string {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.standard.Schema()
}

// FastMode reports the agent's configured default run mode.
func (a *Agent) FastMode() bool {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.options.FastMode
}

func (a *Agent) build() (*orchestrator.Orchestrator, *orchestrator.Orchestrator) {
	base := []orchestrator.Option{
		orchestrator.WithGenerator(a.options.Generator),
		orchestrator.WithValidator(a.options.Validator),
		orchestrator.WithExecutor(a.options.Executor),
		orchestrator.WithSummarizer(a.options.Summarizer),
		orchestrator.WithSelector(a.selector),
		orchestrator.WithCache(a.cache),
		orchestrator.WithMaxRetries(a.options.MaxRetries),
		orchestrator.WithMaxSteps(a.options.MaxSteps),
	}

	standard := orchestrator.New(base...)
	fast := orchestrator.New(append(base, orchestrator.WithFastMode(true))...)

	return standard, fast
}

func New(opts ...Option) *Agent {
	options := NewOptions(opts...)

	if options.Store == nil {
		panic("agent requires a vector store")
	}
	if options.Generator == nil {
		panic("agent requires a generator")
	}
	if options.Validator == nil {
		panic("agent requires a validator")
	}
	if options.Executor == nil {
		panic("agent requires an executor")
	}
	if options.Summarizer == nil {
		panic("agent requires a summarizer")
	}

	a := &Agent{
		options: options,
	}

	a.selector = selector.New(
		selector.WithStore(options.Store),
		selector.WithStaticPath(options.StaticExamplesPath),
		selector.WithStaticExamples(options.StaticExamples),
		selector.WithMaxExamples(options.MaxExamples),
		selector.WithMaxFeedback(options.MaxFeedback),
		selector.WithExampleMinSimilarity(options.ExampleMinSimilarity),
		selector.WithFeedbackMinSimilarity(options.FeedbackMinSimilarity),
		selector.WithMethod(options.Method),
	)

	a.cache = cache.New(
		cache.WithStore(options.Store),
		cache.WithMinSimilarity(options.CacheMinSimilarity),
		cache.WithMethod(options.Method),
		cache.WithEnabled(options.CacheEnabled),
	)

	a.standard, a.fast = a.build()

	return a
}
