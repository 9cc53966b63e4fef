package vectorstore

import (
	"context"

	"github.com/qiwang999/service-topo-agent/embedder"
	"github.com/qiwang999/service-topo-agent/similarity"
)

type Option func(*Options)

type Options struct {
	Location string
	Embedder embedder.Embedder
	Method   similarity.Method
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithEmbedder(embedder embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = embedder
	}
}

func WithMethod(method similarity.Method) Option {
	return func(o *Options) {
		o.Method = method
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Method:  similarity.Cosine,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type StoreOption func(*StoreOptions)

type StoreOptions struct {
	Threshold float64
	Context   context.Context
}

func WithThreshold(threshold float64) StoreOption {
	return func(o *StoreOptions) {
		o.Threshold = threshold
	}
}

func NewStoreOptions(opts ...StoreOption) StoreOptions {
	options := StoreOptions{
		Threshold: 0.8,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type RetrieveOption func(*RetrieveOptions)

type RetrieveOptions struct {
	TopK          int
	MinSimilarity float64
	Method        similarity.Method
	Context       context.Context
}

func WithTopK(k int) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.TopK = k
	}
}

func WithMinSimilarity(min float64) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.MinSimilarity = min
	}
}

func WithRetrieveMethod(method similarity.Method) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.Method = method
	}
}

func NewRetrieveOptions(opts ...RetrieveOption) RetrieveOptions {
	options := RetrieveOptions{
		TopK:          5,
		MinSimilarity: 0.7,
		Context:       context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type CacheOption func(*CacheOptions)

type CacheOptions struct {
	Score   float64
	Context context.Context
}

func WithScore(score float64) CacheOption {
	return func(o *CacheOptions) {
		o.Score = score
	}
}

func NewCacheOptions(opts ...CacheOption) CacheOptions {
	options := CacheOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type FindOption func(*FindOptions)

type FindOptions struct {
	MinSimilarity float64
	Method        similarity.Method
	Context       context.Context
}

func WithFindMinSimilarity(min float64) FindOption {
	return func(o *FindOptions) {
		o.MinSimilarity = min
	}
}

func WithFindMethod(method similarity.Method) FindOption {
	return func(o *FindOptions) {
		o.Method = method
	}
}

func NewFindOptions(opts ...FindOption) FindOptions {
	options := FindOptions{
		MinSimilarity: 0.9,
		Context:       context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
