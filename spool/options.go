package spool

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Default option values.
const (
	DefaultChunkSize    = 64 * 1024
	DefaultPollInterval = 250 * time.Millisecond
	DefaultPollTimeout  = 30 * time.Second
)

// Option configures Submit and Reconcile.
type Option func(*config)

type config struct {
	chunkSize           int
	pollInterval        time.Duration
	pollTimeout         time.Duration
	requireConfirmation bool
	logger              *log.Logger
}

func newConfig(opts []Option) config {
	c := config{
		chunkSize:    DefaultChunkSize,
		pollInterval: DefaultPollInterval,
		pollTimeout:  DefaultPollTimeout,
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithChunkSize sets the largest single write. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithPollInterval sets the delay between job status queries.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPollTimeout bounds how long Reconcile waits for the job. Zero
// queries the job exactly once.
func WithPollTimeout(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.pollTimeout = d
		}
	}
}

// WithRequireConfirmation makes Reconcile fail when the job disappears
// from the queue without evidence that the output was written.
func WithRequireConfirmation(require bool) Option {
	return func(c *config) {
		c.requireConfirmation = require
	}
}

// WithLogger sets the logger for spooler calls and cleanup warnings.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
