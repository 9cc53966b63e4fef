package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/qiwang999/service-topo-agent/vectorstore"
)

// Example is a (question, cypher) pair offered to the generation oracle as a
// few-shot steer. Similarity is 0 for static curated examples.
type Example struct {
	Question   string  `json:"question"`
	Cypher     string  `json:"cypher"`
	Similarity float64 `json:"similarity"`
}

// Metadata describes what a selection was built from, for observability.
type Metadata struct {
	ExamplesUsed         int     `json:"examples_used"`
	DynamicExamples      int     `json:"dynamic_examples"`
	FeedbackUsed         int     `json:"feedback_used"`
	AvgExampleSimilarity float64 `json:"avg_example_similarity"`
}

// Selection is one blended pick of examples and feedback for a question.
type Selection struct {
	Examples []Example
	Feedback []Example
	Metadata Metadata
}

// Selector blends dynamically retrieved similar examples with a static
// curated library so prompts always carry a full complement, and surfaces
// high-rated feedback corrections alongside. Deterministic for fixed store
// contents and similarity method.
type Selector struct {
	options Options
	static  []Example
}

// Select retrieves similar examples and feedback for question in one pass.
func (s *Selector) Select(ctx context.Context, question string) (*Selection, error) {
	examples, dynamic, err := s.Examples(ctx, question)
	if err != nil {
		return nil, err
	}

	feedback, err := s.FeedbackExamples(ctx, question)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		ExamplesUsed:    len(examples),
		DynamicExamples: dynamic,
		FeedbackUsed:    len(feedback),
	}

	if dynamic > 0 {
		var sum float64
		for _, ex := range examples[:dynamic] {
			sum += ex.Similarity
		}
		meta.AvgExampleSimilarity = sum / float64(dynamic)
	}

	return &Selection{
		Examples: examples,
		Feedback: feedback,
		Metadata: meta,
	}, nil
}

// Examples returns up to MaxExamples, dynamic matches first, padded from the
// static library when matches are scarce. The second result is how many were
// retrieved dynamically.
func (s *Selector) Examples(ctx context.Context, question string) ([]Example, int, error) {
	matches, err := s.options.Store.RetrieveSimilar(
		ctx,
		vectorstore.CategoryExample,
		question,
		vectorstore.WithTopK(s.options.MaxExamples),
		vectorstore.WithMinSimilarity(s.options.ExampleMinSimilarity),
		vectorstore.WithRetrieveMethod(s.options.Method),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("retrieve examples: %w", err)
	}

	examples := make([]Example, 0, s.options.MaxExamples)
	for _, m := range matches {
		examples = append(examples, Example{
			Question:   m.Text,
			Cypher:     m.Cypher,
			Similarity: m.Similarity,
		})
	}

	dynamic := len(examples)

	for _, ex := range s.static {
		if len(examples) >= s.options.MaxExamples {
			break
		}
		examples = append(examples, Example{
			Question: ex.Question,
			Cypher:   ex.Cypher,
		})
	}

	return examples, dynamic, nil
}

// FeedbackExamples returns up to MaxFeedback similar high-rated corrections.
func (s *Selector) FeedbackExamples(ctx context.Context, question string) ([]Example, error) {
	matches, err := s.options.Store.RetrieveSimilar(
		ctx,
		vectorstore.CategoryFeedback,
		question,
		vectorstore.WithTopK(s.options.MaxFeedback),
		vectorstore.WithMinSimilarity(s.options.FeedbackMinSimilarity),
		vectorstore.WithRetrieveMethod(s.options.Method),
	)
	if err != nil {
		return nil, fmt.Errorf("retrieve feedback: %w", err)
	}

	feedback := make([]Example, 0, len(matches))
	for _, m := range matches {
		feedback = append(feedback, Example{
			Question:   m.Text,
			Cypher:     m.Cypher,
			Similarity: m.Similarity,
		})
	}

	return feedback, nil
}

// FormatExamples renders examples as a few-shot prompt block.
func FormatExamples(examples []Example) string {
	if len(examples) == 0 {
		return "No examples available."
	}

	var sb strings.Builder
	for i, ex := range examples {
		if ex.Similarity > 0 {
			sb.WriteString(fmt.Sprintf("Example %d (similarity: %.2f):\n", i+1, ex.Similarity))
		} else {
			sb.WriteString(fmt.Sprintf("Example %d:\n", i+1))
		}
		sb.WriteString(fmt.Sprintf("Question: %s\nCypher: %s\n\n", ex.Question, ex.Cypher))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// LoadStatic reads a curated example library from a JSON file. A missing or
// malformed file yields an empty library, not an error.
func LoadStatic(path string) []Example {
	if len(path) == 0 {
		return nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("static examples file not found", "path", path, "error", err)
		return nil
	}

	var examples []Example
	if err := json.Unmarshal(bs, &examples); err != nil {
		slog.Warn("static examples file is not valid JSON", "path", path, "error", err)
		return nil
	}

	return examples
}

func New(opts ...Option) *Selector {
	options := NewOptions(opts...)

	if options.Store == nil {
		panic("selector requires a vector store")
	}

	s := &Selector{
		options: options,
		static:  options.Static,
	}

	if len(s.static) == 0 {
		s.static = LoadStatic(options.StaticPath)
	}

	return s
}
