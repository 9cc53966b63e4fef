package cache

import (
	"context"

	"github.com/qiwang999/service-topo-agent/similarity"
	"github.com/qiwang999/service-topo-agent/vectorstore"
)

type Option func(*Options)

type Options struct {
	Store         vectorstore.Store
	MinSimilarity float64
	Method        similarity.Method
	Enabled       bool
	Context       context.Context
}

func WithStore(store vectorstore.Store) Option {
	return func(o *Options) {
		o.Store = store
	}
}

func WithMinSimilarity(min float64) Option {
	return func(o *Options) {
		o.MinSimilarity = min
	}
}

func WithMethod(method similarity.Method) Option {
	return func(o *Options) {
		o.Method = method
	}
}

func WithEnabled(enabled bool) Option {
	return func(o *Options) {
		o.Enabled = enabled
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MinSimilarity: 0.9,
		Enabled:       true,
		Context:       context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
