package spool

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tsawler/fixedprint/format"
)

// LookupResult classifies a job status query.
type LookupResult int

const (
	LookupFound LookupResult = iota
	LookupNotFound
	LookupError
)

func (r LookupResult) String() string {
	switch r {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not-found"
	case LookupError:
		return "error"
	default:
		return "unknown"
	}
}

// Lookup is the result of one job status query. Info is set for
// LookupFound, Err for LookupError.
type Lookup struct {
	Result LookupResult
	Info   JobInfo
	Err    error
}

// LookupJob queries job id on queue once, using its own handle.
func LookupJob(sp Spooler, queue Queue, id uint32) Lookup {
	name, err := printerName(queue)
	if err != nil {
		return Lookup{Result: LookupError, Err: err}
	}
	h, err := sp.Open(name)
	if err != nil {
		return Lookup{Result: LookupError, Err: newCallError(CallOpenPrinter, err)}
	}
	defer sp.Close(h)

	return lookup(sp, h, id)
}

func lookup(sp Spooler, h Handle, id uint32) Lookup {
	info, err := sp.Job(h, id)
	switch {
	case err == nil:
		return Lookup{Result: LookupFound, Info: info}
	case errors.Is(err, ErrJobNotFound):
		return Lookup{Result: LookupNotFound}
	default:
		return Lookup{Result: LookupError, Err: newCallError(CallGetJob, err)}
	}
}

// Outcome is the reconciled result of a job.
type Outcome struct {
	Job   Job
	State JobState
	// Confirmed is true when the spooler reported the job printed, or the
	// output file holds a PDF. A job that left the queue without either
	// is reported unconfirmed.
	Confirmed bool
	Status    JobStatus
}

// Reconcile waits for job to leave the active states and reports how it
// ended. It polls every poll interval until the poll timeout expires.
//
// A job that reports an error is cancelled and its output file deleted;
// the result is a *JobFailedError. So is a job still active when the
// timeout expires. A job that disappears from the queue completed; it is
// confirmed only if the output file starts with a PDF header.
//
// With a zero poll timeout the job is queried once and a job still in
// progress is reported as submitted and unconfirmed.
func Reconcile(ctx context.Context, sp Spooler, job Job, opts ...Option) (Outcome, error) {
	cfg := newConfig(opts)
	m := &monitor{
		sp:  sp,
		cfg: cfg,
		job: job,
		log: cfg.logger.With("job", job.ID),
	}

	name, err := printerName(job.Queue)
	if err != nil {
		return m.fail(0, "invalid queue", err)
	}
	h, err := sp.Open(name)
	if err != nil {
		return m.fail(0, "cannot open queue", newCallError(CallOpenPrinter, err))
	}
	m.handle = h
	defer func() {
		if err := sp.Close(h); err != nil {
			m.log.Warn("closing monitor handle", "err", err)
		}
	}()

	return m.run(ctx)
}

type monitor struct {
	sp     Spooler
	cfg    config
	job    Job
	log    *log.Logger
	handle Handle
}

func (m *monitor) run(ctx context.Context) (Outcome, error) {
	deadline := time.Now().Add(m.cfg.pollTimeout)

	for {
		l := lookup(m.sp, m.handle, m.job.ID)
		m.log.Debug("job status", "result", l.Result, "status", l.Info.Status)

		switch l.Result {
		case LookupFound:
			status := l.Info.Status
			if status.Failed() {
				m.cancel()
				return m.fail(status, "job reported an error", nil)
			}
			if status.Done() {
				return m.complete(true, status)
			}
		case LookupNotFound:
			return m.complete(hasPDF(m.job.OutputPath), 0)
		}

		if m.cfg.pollTimeout == 0 {
			if l.Result == LookupFound {
				return m.pending(l.Info.Status)
			}
			return m.fail(0, "status query failed", l.Err)
		}

		if !time.Now().Before(deadline) {
			if l.Result == LookupFound {
				m.cancel()
				return m.fail(l.Info.Status, "timed out", nil)
			}
			return m.fail(0, "status query failed", l.Err)
		}

		timer := time.NewTimer(m.cfg.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.cancel()
			return m.fail(l.Info.Status, "cancelled", ctx.Err())
		case <-timer.C:
		}
	}
}

func (m *monitor) complete(confirmed bool, status JobStatus) (Outcome, error) {
	out := Outcome{Job: m.job, State: JobCompleted, Confirmed: confirmed, Status: status}
	out.Job.State = JobCompleted

	if !confirmed && m.cfg.requireConfirmation {
		return m.fail(status, "output not confirmed", nil)
	}
	m.log.Debug("job completed", "confirmed", confirmed)
	return out, nil
}

func (m *monitor) pending(status JobStatus) (Outcome, error) {
	out := Outcome{Job: m.job, State: JobSubmitted, Status: status}
	out.Job.State = JobSubmitted

	if m.cfg.requireConfirmation {
		return m.fail(status, "output not confirmed", nil)
	}
	return out, nil
}

// fail deletes the output file and returns a *JobFailedError.
func (m *monitor) fail(status JobStatus, reason string, err error) (Outcome, error) {
	RemoveOutput(m.job.OutputPath, m.log)

	state := JobFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		state = JobCancelled
	}
	out := Outcome{Job: m.job, State: state, Status: status}
	out.Job.State = state

	jerr := &JobFailedError{JobID: m.job.ID, Status: status, Reason: reason, Err: err}
	m.log.Error("job failed", "reason", reason, "status", status, "err", err)
	return out, jerr
}

func (m *monitor) cancel() {
	if err := m.sp.CancelJob(m.handle, m.job.ID); err != nil && !errors.Is(err, ErrJobNotFound) {
		m.log.Warn("cancelling job", "err", err)
	}
}

// RemoveOutput deletes a partial output file. A missing file is not an
// error; other failures are logged.
func RemoveOutput(path string, logger *log.Logger) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) && logger != nil {
		logger.Warn("removing partial output", "path", path, "err", err)
	}
}

// hasPDF reports whether the file at path starts with a PDF header.
func hasPDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return format.IsPDF(header[:n])
}
