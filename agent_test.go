package agent_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agent "github.com/qiwang999/service-topo-agent"
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
	calls int
}

func (v *stubValidator) Validate(_ context.Context, _ string, _ string) (bool, error) {
	v.calls++
	return true, nil
}

type stubExecutor struct {
	rows []map[string]any
}

func (e *stubExecutor) Schema(_ context.Context) (string, error) {
	return "Node properties: (:Service {name: STRING})", nil
}

func (e *stubExecutor) Query(_ context.Context, _ string) ([]map[string]any, error) {
	return e.rows, nil
}

type stubSummarizer struct{}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _ string) (string, error) {
	return "Two services were found.", nil
}

func newTestAgent(t *testing.T, opts ...agent.Option) (*agent.Agent, vectorstore.Store, *stubGenerator, *stubValidator) {
	t.Helper()

	store := memory.NewStore(vectorstore.WithEmbedder(&stubEmbedder{
		vectors: map[string][]float32{
			"Which services run in us-east?":    {0.9, 0.1},
			"What depends on the auth service?": {0.1, 0.9},
		},
	}))

	gen := &stubGenerator{response: "MATCH (s:Service) RETURN s.name"}
	val := &stubValidator{}

	base := []agent.Option{
		agent.WithStore(store),
		agent.WithGenerator(gen),
		agent.WithValidator(val),
		agent.WithExecutor(&stubExecutor{rows: []map[string]any{{"s.name": "auth"}, {"s.name": "billing"}}}),
		agent.WithSummarizer(&stubSummarizer{}),
		agent.WithStaticExamples([]selector.Example{
			{Question: "How many services are there?", Cypher: "MATCH (s:Service) RETURN count(s)"},
		}),
	}

	return agent.New(append(base, opts...)...), store, gen, val
}

func TestAgentRespond(t *testing.T) {
	a, _, _, _ := newTestAgent(t)

	result, err := a.Respond(context.Background(), nil, "Which services run in us-east?")
	require.NoError(t, err)

	assert.Equal(t, "Two services were found.", result.Summary)
	assert.Equal(t, "MATCH (s:Service) RETURN s.name", result.Cypher)
	assert.False(t, result.Exhausted)
}

func TestAgentRunModeOverride(t *testing.T) {
	a, _, _, val := newTestAgent(t)

	_, err := a.Respond(context.Background(), nil, "Which services run in us-east?", agent.WithRunFast(true))
	require.NoError(t, err)
	assert.Zero(t, val.calls)

	_, err = a.Respond(context.Background(), nil, "What depends on the auth service?")
	require.NoError(t, err)
	assert.Equal(t, 1, val.calls)
}

func TestAgentReconfigureSwapsRunMode(t *testing.T) {
	a, _, _, val := newTestAgent(t)
	require.False(t, a.FastMode())

	a.Reconfigure(agent.WithFastMode(true))
	require.True(t, a.FastMode())

	_, err := a.Respond(context.Background(), nil, "Which services run in us-east?")
	require.NoError(t, err)
	assert.Zero(t, val.calls)
}

// quietGenerator and quietValidator hold no state so they are safe to share
// across goroutines.
type quietGenerator struct{}

func (g *quietGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "MATCH (s:Service) RETURN s.name", nil
}

type quietValidator struct{}

func (v *quietValidator) Validate(_ context.Context, _ string, _ string) (bool, error) {
	return true, nil
}

func TestAgentConcurrentRespondAndReconfigure(t *testing.T) {
	store := memory.NewStore(vectorstore.WithEmbedder(&stubEmbedder{}))

	a := agent.New(
		agent.WithStore(store),
		agent.WithGenerator(&quietGenerator{}),
		agent.WithValidator(&quietValidator{}),
		agent.WithExecutor(&stubExecutor{rows: []map[string]any{{"s.name": "auth"}}}),
		agent.WithSummarizer(&stubSummarizer{}),
		agent.WithStaticExamples([]selector.Example{
			{Question: "How many services are there?", Cypher: "MATCH (s:Service) RETURN count(s)"},
		}),
	)

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				result, err := a.Respond(context.Background(), nil, "Which services run in us-east?")
				assert.NoError(t, err)
				assert.NotNil(t, result)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 25; j++ {
			a.Reconfigure(agent.WithFastMode(j%2 == 0))
		}
	}()

	wg.Wait()
}

func TestAgentFeedback(t *testing.T) {
	a, store, _, _ := newTestAgent(t)

	err := a.Feedback(context.Background(), vectorstore.Feedback{
		Question:        "Which services run in us-east?",
		GeneratedCypher: "MATCH (s:Service) RETURN s",
		CorrectedCypher: "MATCH (s:Service)-[:LOCATED_IN]->(r:Region {name: 'us-east'}) RETURN s.name",
		Rating:          5,
	})
	require.NoError(t, err)

	// a high rating makes the correction retrievable
	matches, err := store.RetrieveSimilar(context.Background(), vectorstore.CategoryFeedback, "Which services run in us-east?")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Cypher, "LOCATED_IN")

	// low ratings are logged but never retrievable
	err = a.Feedback(context.Background(), vectorstore.Feedback{
		Question:        "What depends on the auth service?",
		GeneratedCypher: "MATCH (s) RETURN s",
		CorrectedCypher: "MATCH (a)-[:DEPENDS_ON]->(s:Service {name: 'auth'}) RETURN a.name",
		Rating:          2,
	})
	require.NoError(t, err)

	matches, err = store.RetrieveSimilar(context.Background(), vectorstore.CategoryFeedback, "What depends on the auth service?")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAgentFeedbackRejectsBadRating(t *testing.T) {
	a, _, _, _ := newTestAgent(t)

	err := a.Feedback(context.Background(), vectorstore.Feedback{Question: "q", CorrectedCypher: "c", Rating: 6})
	require.Error(t, err)
}

func TestAgentSeedEmbeddings(t *testing.T) {
	a, store, _, _ := newTestAgent(t)

	n, err := a.SeedEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := store.RetrieveSimilar(context.Background(), vectorstore.CategoryExample, "How many services are there?")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestAgentSimilarExamples(t *testing.T) {
	a, _, _, _ := newTestAgent(t)

	_, err := a.SeedEmbeddings(context.Background())
	require.NoError(t, err)

	examples, err := a.SimilarExamples(context.Background(), "How many services are there?")
	require.NoError(t, err)
	require.NotEmpty(t, examples)
	assert.Equal(t, "MATCH (s:Service) RETURN count(s)", examples[0].Cypher)
}
