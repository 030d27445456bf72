package spool

import (
	"errors"
	"fmt"
	"syscall"
)

// errWriteFault is reported when the spooler accepts zero bytes without
// an error (ERROR_WRITE_FAULT).
const errWriteFault = syscall.Errno(29)

// ErrNoErrorCode is reported for a call that failed without setting an
// OS error code.
var ErrNoErrorCode = errors.New("call failed without an error code")

// lastError turns the error of a failed native call into an Errno, or
// ErrNoErrorCode when the OS left the code at zero.
func lastError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno
	}
	return ErrNoErrorCode
}

// CallError reports a failed spooler call.
type CallError struct {
	Call string        // e.g. CallWrite
	Code syscall.Errno // OS error code, 0 if the call failed without one
	Err  error         // underlying error, if any
}

func newCallError(call string, err error) *CallError {
	if errno, ok := err.(syscall.Errno); ok {
		return &CallError{Call: call, Code: errno}
	}
	ce := &CallError{Call: call, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		ce.Code = errno
	}
	return ce
}

func (e *CallError) Error() string {
	switch {
	case e.Err != nil && e.Code != 0:
		return fmt.Sprintf("spool: %s failed with code %d: %v", e.Call, uint32(e.Code), e.Err)
	case e.Err != nil:
		return fmt.Sprintf("spool: %s failed: %v", e.Call, e.Err)
	default:
		return fmt.Sprintf("spool: %s failed with code %d", e.Call, uint32(e.Code))
	}
}

func (e *CallError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Code != 0 {
		return e.Code
	}
	return nil
}

// PrinterNotFoundError is returned when no queue uses the requested
// driver.
type PrinterNotFoundError struct {
	Driver string
}

func (e *PrinterNotFoundError) Error() string {
	return fmt.Sprintf("spool: no print queue uses driver %q", e.Driver)
}

// DriverIncompatibleError is returned when the matching queue's driver
// does not accept page description data.
type DriverIncompatibleError struct {
	Queue  string
	Driver string
}

func (e *DriverIncompatibleError) Error() string {
	return fmt.Sprintf("spool: queue %q: driver %q does not accept XPS data", e.Queue, e.Driver)
}

// JobFailedError is returned when a submitted job did not produce its
// output. The partial output file has been deleted.
type JobFailedError struct {
	JobID  uint32
	Status JobStatus
	Reason string
	Err    error
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("spool: job %d failed: %s", e.JobID, e.Reason)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %s)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *JobFailedError) Unwrap() error { return e.Err }
