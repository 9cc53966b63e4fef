package executor

import "context"

type Option func(*Options)

type Options struct {
	Location string
	Username string
	Password string
	Database string
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithAuth(username, password string) Option {
	return func(o *Options) {
		o.Username = username
		o.Password = password
	}
}

func WithDatabase(db string) Option {
	return func(o *Options) {
		o.Database = db
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Location: "bolt://localhost:7687",
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
