package agent

import (
	"context"

	"github.com/qiwang999/service-topo-agent/executor"
	"github.com/qiwang999/service-topo-agent/generator"
	"github.com/qiwang999/service-topo-agent/selector"
	"github.com/qiwang999/service-topo-agent/similarity"
	"github.com/qiwang999/service-topo-agent/summarizer"
	"github.com/qiwang999/service-topo-agent/validator"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

type Option func(*Options)

type Options struct {
	Store      vectorstore.Store
	Generator  generator.Generator
	Validator  validator.Validator
	Executor   executor.Executor
	Summarizer summarizer.Summarizer

	Method   similarity.Method
	FastMode bool

	MaxRetries int
	MaxSteps   int

	MaxExamples           int
	MaxFeedback           int
	ExampleMinSimilarity  float64
	FeedbackMinSimilarity float64
	StaticExamplesPath    string
	StaticExamples        []selector.Example

	CacheEnabled       bool
	CacheMinSimilarity float64

	Context context.Context
}

func WithStore(store vectorstore.Store) Option {
	return func(o *Options) {
		o.Store = store
	}
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithValidator(v validator.Validator) Option {
	return func(o *Options) {
		o.Validator = v
	}
}

func WithExecutor(e executor.Executor) Option {
	return func(o *Options) {
		o.Executor = e
	}
}

func WithSummarizer(s summarizer.Summarizer) Option {
	return func(o *Options) {
		o.Summarizer = s
	}
}

func WithMethod(m similarity.Method) Option {
	return func(o *Options) {
		o.Method = m
	}
}

func WithFastMode(fast bool) Option {
	return func(o *Options) {
		o.FastMode = fast
	}
}

func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

func WithMaxExamples(n int) Option {
	return func(o *Options) {
		o.MaxExamples = n
	}
}

func WithMaxFeedback(n int) Option {
	return func(o *Options) {
		o.MaxFeedback = n
	}
}

func WithExampleMinSimilarity(min float64) Option {
	return func(o *Options) {
		o.ExampleMinSimilarity = min
	}
}

func WithFeedbackMinSimilarity(min float64) Option {
	return func(o *Options) {
		o.FeedbackMinSimilarity = min
	}
}

func WithStaticExamplesPath(path string) Option {
	return func(o *Options) {
		o.StaticExamplesPath = path
	}
}

func WithStaticExamples(examples []selector.Example) Option {
	return func(o *Options) {
		o.StaticExamples = examples
	}
}

func WithCacheEnabled(enabled bool) Option {
	return func(o *Options) {
		o.CacheEnabled = enabled
	}
}

func WithCacheMinSimilarity(min float64) Option {
	return func(o *Options) {
		o.CacheMinSimilarity = min
	}
}

func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Method:                similarity.Cosine,
		MaxRetries:            3,
		MaxSteps:              10,
		MaxExamples:           5,
		MaxFeedback:           3,
		ExampleMinSimilarity:  0.7,
		FeedbackMinSimilarity: 0.8,
		StaticExamplesPath:    "examples.json",
		CacheEnabled:          true,
		CacheMinSimilarity:    0.9,
		Context:               context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
