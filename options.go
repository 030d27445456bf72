package fixedprint

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tsawler/fixedprint/resource"
	"github.com/tsawler/fixedprint/spool"
	"github.com/tsawler/fixedprint/xps"
)

// printOptions holds the configuration of one print run.
type printOptions struct {
	// Destination
	outputPath string
	title      string

	// Queue selection
	driver  string
	spooler spool.Spooler

	// Serialization
	resolver resource.Resolver
	maxDepth int

	// Monitoring
	pollTimeout         time.Duration
	pollTimeoutSet      bool
	requireConfirmation bool

	logger *log.Logger
}

// defaultOptions returns the options used by Print.
func defaultOptions() printOptions {
	return printOptions{
		driver:   DefaultDriver,
		maxDepth: xps.DefaultMaxDepth,
		logger:   log.New(io.Discard),
	}
}

// clone returns a copy of o. Every field is a value or a shared,
// read-only collaborator, so a shallow copy is enough.
func (o printOptions) clone() printOptions {
	return o
}

func (o printOptions) xpsOptions() []xps.Option {
	opts := []xps.Option{
		xps.WithMaxDepth(o.maxDepth),
		xps.WithLogger(o.logger),
	}
	if o.resolver != nil {
		opts = append(opts, xps.WithResolver(o.resolver))
	}
	return opts
}

func (o printOptions) spoolOptions() []spool.Option {
	opts := []spool.Option{
		spool.WithLogger(o.logger),
		spool.WithRequireConfirmation(o.requireConfirmation),
	}
	if o.pollTimeoutSet {
		opts = append(opts, spool.WithPollTimeout(o.pollTimeout))
	}
	return opts
}

func (o printOptions) spoolerOrSystem() spool.Spooler {
	if o.spooler != nil {
		return o.spooler
	}
	return spool.NewSystem()
}
