package fixedprint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/fixedprint/model"
	"github.com/tsawler/fixedprint/resource"
	"github.com/tsawler/fixedprint/spool"
	"github.com/tsawler/fixedprint/xps"
)

// Printer provides a fluent interface for printing a document.
// Each configuration method returns a new Printer, so a partly
// configured Printer can be shared and reused.
type Printer struct {
	doc     *model.Document
	options printOptions

	// Accumulated error (fail-fast)
	err error
}

// Print starts configuring a print run for doc.
//
// Example:
//
//	res, err := fixedprint.Print(doc).To("out.pdf").Title("Out").Run(ctx)
func Print(doc *model.Document) *Printer {
	p := &Printer{doc: doc, options: defaultOptions()}
	if doc == nil {
		p.err = fmt.Errorf("nil document: %w", model.ErrEmptyDocument)
	}
	return p
}

// clone creates a copy of the Printer. Each chain method returns a new
// instance.
func (p *Printer) clone() *Printer {
	return &Printer{
		doc:     p.doc,
		options: p.options.clone(),
		err:     p.err,
	}
}

// To sets the PDF output path. Relative paths are made absolute, since
// the spooler resolves them against its own working directory.
func (p *Printer) To(outputPath string) *Printer {
	np := p.clone()
	if outputPath == "" {
		np.err = errors.New("empty output path")
		return np
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		np.err = fmt.Errorf("invalid output path: %w", err)
		return np
	}
	np.options.outputPath = abs
	return np
}

// Title sets the job name shown in the queue. It defaults to the
// document title.
func (p *Printer) Title(title string) *Printer {
	np := p.clone()
	np.options.title = title
	return np
}

// Driver selects the output queue by driver name instead of
// DefaultDriver.
func (p *Printer) Driver(name string) *Printer {
	np := p.clone()
	np.options.driver = name
	return np
}

// Spooler replaces the system spooler, typically with a spooltest.Spooler.
func (p *Printer) Spooler(sp spool.Spooler) *Printer {
	np := p.clone()
	np.options.spooler = sp
	return np
}

// Logger sets the logger used by every stage.
func (p *Printer) Logger(l *log.Logger) *Printer {
	np := p.clone()
	if l != nil {
		np.options.logger = l
	}
	return np
}

// Resolver sets how image and font references are loaded.
func (p *Printer) Resolver(r resource.Resolver) *Printer {
	np := p.clone()
	np.options.resolver = r
	return np
}

// MaxDepth limits how deeply containers may nest.
func (p *Printer) MaxDepth(n int) *Printer {
	np := p.clone()
	np.options.maxDepth = n
	return np
}

// PollTimeout bounds how long Run waits for the spooler to finish the
// job. Zero checks the job once and returns.
func (p *Printer) PollTimeout(d time.Duration) *Printer {
	np := p.clone()
	np.options.pollTimeout = d
	np.options.pollTimeoutSet = true
	return np
}

// RequireConfirmation makes Run fail, and delete the output, when the
// spooler cannot confirm the PDF was written.
func (p *Printer) RequireConfirmation() *Printer {
	np := p.clone()
	np.options.requireConfirmation = true
	return np
}

// Run prints the document and waits for the job to finish.
//
// Serialization and queue discovery happen before anything is sent to
// the spooler, so their errors leave no trace. They run concurrently; when
// both fail, the *SerializationError is returned. After the spooler has
// created a job, any failure cancels it and deletes the output file.
func (p *Printer) Run(ctx context.Context) (Result, error) {
	if p.err != nil {
		return Result{}, p.err
	}
	o := p.options
	if o.outputPath == "" {
		return Result{}, errors.New("no output path; call To first")
	}

	sp := o.spoolerOrSystem()
	logger := o.logger.With("output", o.outputPath)

	var (
		data    []byte
		queue   spool.Queue
		dataErr error
		g       errgroup.Group
	)
	g.Go(func() error {
		data, dataErr = xps.Serialize(p.doc, o.xpsOptions()...)
		return dataErr
	})
	g.Go(func() error {
		var err error
		queue, err = spool.FindOutputQueue(sp, o.driver)
		return err
	})
	if err := g.Wait(); err != nil {
		if dataErr != nil {
			return Result{}, dataErr
		}
		return Result{}, err
	}
	logger.Debug("ready to submit", "queue", queue.Name, "bytes", len(data))

	res := Result{OutputPath: o.outputPath, Pages: p.doc.PageCount(), Bytes: len(data)}

	job, err := spool.Submit(ctx, sp, data, queue, o.outputPath, p.title(), o.spoolOptions()...)
	res.Job = job
	if err != nil {
		if job.Started() {
			spool.RemoveOutput(o.outputPath, logger)
		}
		return res, err
	}
	logger.Debug("job submitted", "job", job.ID)

	out, err := spool.Reconcile(ctx, sp, job, o.spoolOptions()...)
	res.Job = out.Job
	res.Confirmed = out.Confirmed
	res.Status = out.Status
	if err != nil {
		return res, err
	}
	logger.Info("printed", "job", job.ID, "state", out.State, "confirmed", out.Confirmed)
	return res, nil
}

func (p *Printer) title() string {
	if p.options.title != "" {
		return p.options.title
	}
	if t := p.doc.Metadata().Title; t != "" {
		return t
	}
	return "Document"
}

// Outcome is the result of an asynchronous print run.
type Outcome struct {
	Result Result
	Err    error
}

// Start runs p on its own goroutine. The returned channel receives
// exactly one Outcome and is then closed. It is buffered.
func (p *Printer) Start(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := p.Run(ctx)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// Start runs p asynchronously. See Printer.Start.
func Start(ctx context.Context, p *Printer) <-chan Outcome {
	return p.Start(ctx)
}
