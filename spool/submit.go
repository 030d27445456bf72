package spool

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// state is a position in the submission lifecycle.
type state int

const (
	stateIdle state = iota
	stateHandleOpen
	stateDocStarted
	statePageStarted
	stateBytesWritten
	statePageEnded
	stateDocEnded
	stateHandleClosed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateHandleOpen:
		return "handle-open"
	case stateDocStarted:
		return "doc-started"
	case statePageStarted:
		return "page-started"
	case stateBytesWritten:
		return "bytes-written"
	case statePageEnded:
		return "page-ended"
	case stateDocEnded:
		return "doc-ended"
	case stateHandleClosed:
		return "handle-closed"
	default:
		return "unknown"
	}
}

// Submit writes data to queue as one RAW document with a single page and
// returns the job the spooler created. The driver writes its output to
// outputPath.
//
// Every handle, document and page Submit opens is closed again before it
// returns, in reverse order, whichever call fails. A failed call is
// reported as a *CallError carrying the OS error code. When the error
// happens after the spooler assigned a job id, the returned Job carries
// that id so the caller can clean up its output, and the job is cancelled
// before the document is closed so the driver never finishes it.
//
// ctx is checked between calls. A native call in progress is never
// interrupted.
func Submit(ctx context.Context, sp Spooler, data []byte, queue Queue, outputPath, title string, opts ...Option) (Job, error) {
	cfg := newConfig(opts)

	if len(data) == 0 {
		return Job{}, errors.New("spool: no data to submit")
	}
	name, err := printerName(queue)
	if err != nil {
		return Job{}, err
	}

	s := &submission{
		sp:  sp,
		log: cfg.logger.With("queue", name),
		job: Job{Queue: queue, OutputPath: outputPath},
	}
	defer s.teardown()

	if err := s.run(ctx, name, data, cfg.chunkSize, DocInfo{
		Name:       title,
		OutputFile: outputPath,
		Datatype:   DatatypeRaw,
	}); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.job.State = JobCancelled
		} else {
			s.job.State = JobFailed
		}
		s.failed = true
		s.log.Debug("submission failed", "state", s.state, "err", err)
		return s.job, err
	}

	return s.job, nil
}

// submission tracks what has been acquired from the spooler so teardown
// can release exactly that.
type submission struct {
	sp  Spooler
	log *log.Logger

	state  state
	handle Handle

	handleOpen bool
	docOpen    bool
	pageOpen   bool
	failed     bool

	job Job
}

func (s *submission) run(ctx context.Context, printer string, data []byte, chunk int, info DocInfo) error {
	if err := s.step(ctx, CallOpenPrinter, func() (err error) {
		s.handle, err = s.sp.Open(printer)
		return err
	}); err != nil {
		return err
	}
	s.handleOpen = true
	s.state = stateHandleOpen

	if err := s.step(ctx, CallStartDoc, func() error {
		id, err := s.sp.StartDoc(s.handle, info)
		if err != nil {
			return err
		}
		if id == 0 {
			return errors.New("spooler returned job id 0")
		}
		s.job.ID = id
		return nil
	}); err != nil {
		return err
	}
	s.docOpen = true
	s.state = stateDocStarted
	s.job.State = JobSubmitted
	s.log = s.log.With("job", s.job.ID)

	if err := s.step(ctx, CallStartPage, func() error {
		return s.sp.StartPage(s.handle)
	}); err != nil {
		return err
	}
	s.pageOpen = true
	s.state = statePageStarted
	s.job.State = JobWriting

	for off := 0; off < len(data); {
		end := min(off+chunk, len(data))
		var n int
		if err := s.step(ctx, CallWrite, func() (err error) {
			n, err = s.sp.Write(s.handle, data[off:end])
			if err == nil && n <= 0 {
				return errWriteFault
			}
			return err
		}); err != nil {
			return err
		}
		off += n
	}
	s.state = stateBytesWritten
	s.log.Debug("wrote document", "bytes", len(data))

	// A failed EndPage or EndDoc is not retried by teardown.
	if err := s.step(ctx, CallEndPage, func() error {
		s.pageOpen = false
		return s.sp.EndPage(s.handle)
	}); err != nil {
		return err
	}
	s.state = statePageEnded

	if err := s.step(ctx, CallEndDoc, func() error {
		s.docOpen = false
		return s.sp.EndDoc(s.handle)
	}); err != nil {
		return err
	}
	s.state = stateDocEnded
	s.job.State = JobSubmitted

	return nil
}

// step issues one spooler call unless ctx is already done.
func (s *submission) step(ctx context.Context, call string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &CallError{Call: call, Err: fmt.Errorf("not issued: %w", err)}
	}
	s.log.Debug("spooler call", "call", call)
	if err := fn(); err != nil {
		return newCallError(call, err)
	}
	return nil
}

// teardown releases whatever is still open: the page, then the document,
// then the handle. A failed submission that already has a job is cancelled
// first. Failures are logged and do not stop the remaining calls.
func (s *submission) teardown() {
	if s.failed && s.job.ID != 0 && s.handleOpen {
		if err := s.sp.CancelJob(s.handle, s.job.ID); err != nil && !errors.Is(err, ErrJobNotFound) {
			s.log.Warn("teardown failed", "call", CallSetJob, "err", err)
		}
	}
	if s.pageOpen {
		s.pageOpen = false
		if err := s.sp.EndPage(s.handle); err != nil {
			s.log.Warn("teardown failed", "call", CallEndPage, "err", err)
		}
	}
	if s.docOpen {
		s.docOpen = false
		if err := s.sp.EndDoc(s.handle); err != nil {
			s.log.Warn("teardown failed", "call", CallEndDoc, "err", err)
		}
	}
	if s.handleOpen {
		s.handleOpen = false
		if err := s.sp.Close(s.handle); err != nil {
			s.log.Warn("teardown failed", "call", CallClose, "err", err)
		}
	}
	s.state = stateHandleClosed
}
