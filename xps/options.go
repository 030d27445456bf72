package xps

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/tsawler/fixedprint/resource"
)

// DefaultMaxDepth is the deepest container nesting Build accepts.
const DefaultMaxDepth = 32

// Option configures Build and Serialize.
type Option func(*options)

type options struct {
	maxDepth int
	resolver resource.Resolver
	logger   *log.Logger
}

func defaultOptions() options {
	return options{
		maxDepth: DefaultMaxDepth,
		resolver: resource.NewFileResolver(),
		logger:   log.New(io.Discard),
	}
}

// WithMaxDepth sets the maximum container nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithResolver sets the resolver used for image and font references. The
// default resolves files relative to the working directory.
func WithResolver(r resource.Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
