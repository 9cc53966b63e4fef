package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiwang999/service-topo-agent/cache"
	"github.com/qiwang999/service-topo-agent/orchestrator"
	"github.com/qiwang999/service-topo-agent/selector"
	"github.com/qiwang999/service-topo-agent/vectorstore"
	"github.com/qiwang999/service-topo-agent/vectorstore/memory"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0.5, 0.5}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type stubGenerator struct {
	response string
	calls    int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.response, nil
}

type stubValidator struct {
	verdicts []bool
	calls    int
}

func (v *stubValidator) Validate(_ context.Context, _ string, _ string) (bool, error) {
	verdict := true
	if v.calls < len(v.verdicts) {
		verdict = v.verdicts[v.calls]
	}
	v.calls++
	return verdict, nil
}

type stubExecutor struct {
	failures int
	rows     []map[string]any
	calls    int
}

func (e *stubExecutor) Schema(_ context.Context) (string, error) {
	return "Node properties: (:Service {name: STRING})", nil
}

func (e *stubExecutor) Query(_ context.Context, _ string) ([]map[string]any, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, errors.New("Unknown function 'foo'")
	}
	return e.rows, nil
}

type stubSummarizer struct{}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _ string) (string, error) {
	return "There are 2 services.", nil
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	store := memory.NewStore(vectorstore.WithEmbedder(&stubEmbedder{
		vectors: map[string][]float32{},
	}))
	return cache.New(cache.WithStore(store))
}

func newTestSelector(t *testing.T) *selector.Selector {
	t.Helper()
	store := memory.NewStore(vectorstore.WithEmbedder(&stubEmbedder{
		vectors: map[string][]float32{},
	}))
	return selector.New(
		selector.WithStore(store),
		selector.WithStaticExamples([]selector.Example{
			{Question: "How many services are there?", Cypher: "MATCH (s:Service) RETURN count(s)"},
		}),
	)
}

func TestRespondHappyPath(t *testing.T) {
	gen := &stubGenerator{response: "```cypher\nMATCH (s:Service) RETURN count(s) AS n\n```"}
	exec := &stubExecutor{rows: []map[string]any{{"n": 2}}}
	c := newTestCache(t)

	o := orchestrator.New(
		orchestrator.WithGenerator(gen),
		orchestrator.WithValidator(&stubValidator{}),
		orchestrator.WithExecutor(exec),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithSelector(newTestSelector(t)),
		orchestrator.WithCache(c),
	)

	result, err := o.Respond(context.Background(), nil, "How many services exist?")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Retries)
	assert.False(t, result.Exhausted)
	assert.Equal(t, "MATCH (s:Service) RETURN count(s) AS n", result.Cypher)
	assert.Equal(t, "There are 2 services.", result.Summary)
	assert.Len(t, result.Rows, 1)

	// the answer was cached for future turns
	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)

	// history gained the question and the answer, nothing else
	require.Len(t, result.History, 2)
	assert.Equal(t, orchestrator.RoleUser, result.History[0].Role)
	assert.Equal(t, orchestrator.RoleAgent, result.History[1].Role)
	assert.Equal(t, "There are 2 services.", result.History[1].Text)
}

func TestRespondExecutionRetriesExhausted(t *testing.T) {
	gen := &stubGenerator{response: "MATCH (s:Service RETURN s"}
	exec := &stubExecutor{failures: 100}
	c := newTestCache(t)

	o := orchestrator.New(
		orchestrator.WithGenerator(gen),
		orchestrator.WithValidator(&stubValidator{}),
		orchestrator.WithExecutor(exec),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithCache(c),
	)

	result, err := o.Respond(context.Background(), nil, "Which services depend on auth?")
	require.NoError(t, err)

	assert.True(t, result.Exhausted)
	assert.Equal(t, 3, result.Retries)
	assert.Equal(t, 3, exec.calls)
	assert.Contains(t, result.FailureReason, "max retries")

	// failed turns never poison the cache
	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestRespondInvalidThenValid(t *testing.T) {
	gen := &stubGenerator{response: "MATCH (s:Service) RETURN s.name"}
	exec := &stubExecutor{rows: []map[string]any{{"s.name": "auth"}}}

	o := orchestrator.New(
		orchestrator.WithGenerator(gen),
		orchestrator.WithValidator(&stubValidator{verdicts: []bool{false, true}}),
		orchestrator.WithExecutor(exec),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithCache(newTestCache(t)),
	)

	result, err := o.Respond(context.Background(), nil, "List all service names")
	require.NoError(t, err)

	assert.False(t, result.Exhausted)
	assert.Equal(t, 2, result.Retries)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, 1, exec.calls)
}

func TestRespondCacheHitSkipsGeneration(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Record(context.Background(), "How many services exist?", "MATCH (s:Service) RETURN count(s)", "There are 2 services."))

	gen := &stubGenerator{response: "should never run"}

	o := orchestrator.New(
		orchestrator.WithGenerator(gen),
		orchestrator.WithValidator(&stubValidator{}),
		orchestrator.WithExecutor(&stubExecutor{}),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithCache(c),
	)

	result, err := o.Respond(context.Background(), nil, "How many services are there currently?")
	require.NoError(t, err)

	assert.True(t, result.CacheHit)
	assert.GreaterOrEqual(t, result.CacheSimilarity, 0.9)
	assert.Equal(t, "There are 2 services.", result.Summary)
	assert.Equal(t, "MATCH (s:Service) RETURN count(s)", result.Cypher)
	assert.Zero(t, gen.calls)
}

func TestRespondFastModeSkipsValidation(t *testing.T) {
	val := &stubValidator{}
	exec := &stubExecutor{rows: []map[string]any{{"n": 2}}}

	o := orchestrator.New(
		orchestrator.WithGenerator(&stubGenerator{response: "MATCH (s:Service) RETURN count(s)"}),
		orchestrator.WithValidator(val),
		orchestrator.WithExecutor(exec),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithCache(newTestCache(t)),
		orchestrator.WithFastMode(true),
	)

	result, err := o.Respond(context.Background(), nil, "How many services exist?")
	require.NoError(t, err)

	assert.False(t, result.Exhausted)
	assert.Zero(t, val.calls)
	assert.Equal(t, 1, exec.calls)
}

func TestRespondStepBound(t *testing.T) {
	// every generation is invalid, so without the bound the machine would
	// bounce between generate and validate forever
	o := orchestrator.New(
		orchestrator.WithGenerator(&stubGenerator{response: "not cypher"}),
		orchestrator.WithValidator(&stubValidator{verdicts: []bool{false, false, false, false, false, false, false, false, false, false}}),
		orchestrator.WithExecutor(&stubExecutor{}),
		orchestrator.WithSummarizer(&stubSummarizer{}),
		orchestrator.WithCache(newTestCache(t)),
		orchestrator.WithMaxSteps(6),
	)

	result, err := o.Respond(context.Background(), nil, "List everything")
	require.NoError(t, err)

	assert.True(t, result.Exhausted)
	assert.Equal(t, 6, result.Steps)
	assert.Contains(t, result.FailureReason, "step limit")
	assert.NotContains(t, result.FailureReason, "retries")
}

func TestRespondEmptyQuestion(t *testing.T) {
	o := orchestrator.New(
		orchestrator.WithGenerator(&stubGenerator{}),
		orchestrator.WithValidator(&stubValidator{}),
		orchestrator.WithExecutor(&stubExecutor{}),
		orchestrator.WithSummarizer(&stubSummarizer{}),
	)

	_, err := o.Respond(context.Background(), nil, "  ")
	require.Error(t, err)
}
