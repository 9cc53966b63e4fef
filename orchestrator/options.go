package orchestrator

import (
	"context"

	"github.com/qiwang999/service-topo-agent/cache"
	"github.com/qiwang999/service-topo-agent/executor"
	"github.com/qiwang999/service-topo-agent/generator"
	"github.com/qiwang999/service-topo-agent/selector"
	"github.com/qiwang999/service-topo-agent/summarizer"
	"github.com/qiwang999/service-topo-agent/validator"
)

type Option func(*Options)

type Options struct {
	Generator  generator.Generator
	Validator  validator.Validator
	Executor   executor.Executor
	Summarizer summarizer.Summarizer
	Selector   *selector.Selector
	Cache      *cache.Cache
	MaxRetries int
	MaxSteps   int
	FastMode   bool
	Context    context.Context
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

func WithSelector(s *selector.Selector) Option {
	return func(o *Options) {
		o.Selector = s
	}
}

func WithCache(c *cache.Cache) Option {
	return func(o *Options) {
		o.Cache = c
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

func WithFastMode(fast bool) Option {
	return func(o *Options) {
		o.FastMode = fast
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxRetries: 3,
		MaxSteps:   10,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
