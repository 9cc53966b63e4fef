package selector

import (
	"context"

	"github.com/qiwang999/service-topo-agent/similarity"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

type Option func(*Options)

type Options struct {
	Store                 vectorstore.Store
	StaticPath            string
	Static                []Example
	MaxExamples           int
	MaxFeedback           int
	ExampleMinSimilarity  float64
	FeedbackMinSimilarity float64
	Method                similarity.Method
	Context               context.Context
}

func WithStore(store vectorstore.Store) Option {
	return func(o *Options) {
		o.Store = store
	}
}

func WithStaticPath(path string) Option {
	return func(o *Options) {
		o.StaticPath = path
	}
}

func WithStaticExamples(examples []Example) Option {
	return func(o *Options) {
		o.Static = examples
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

func WithMethod(method similarity.Method) Option {
	return func(o *Options) {
		o.Method = method
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		StaticPath:            "examples.json",
		MaxExamples:           5,
		MaxFeedback:           3,
		ExampleMinSimilarity:  0.7,
		FeedbackMinSimilarity: 0.8,
		Context:               context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
