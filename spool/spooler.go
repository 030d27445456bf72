package spool

import (
	"errors"
	"strings"
)

// Names of spooler calls, as reported by CallError.
const (
	CallEnumPrinters = "EnumPrinters"
	CallOpenPrinter  = "OpenPrinter"
	CallStartDoc     = "StartDocPrinter"
	CallStartPage    = "StartPagePrinter"
	CallWrite        = "WritePrinter"
	CallEndPage      = "EndPagePrinter"
	CallEndDoc       = "EndDocPrinter"
	CallClose        = "ClosePrinter"
	CallGetJob       = "GetJob"
	CallSetJob       = "SetJob"
)

// DatatypeRaw sends the data to the driver unprocessed.
const DatatypeRaw = "RAW"

var (
	// ErrNotSupported is returned by the system spooler on platforms
	// without a print spooler API.
	ErrNotSupported = errors.New("print spooler not supported on this platform")
	// ErrJobNotFound is returned by Spooler.Job when the queue no longer
	// holds the job.
	ErrJobNotFound = errors.New("job not found")
)

// Handle is an open printer handle.
type Handle uintptr

// DocInfo describes a document started with StartDoc.
type DocInfo struct {
	Name       string // shown in the queue
	OutputFile string // file the driver writes to
	Datatype   string
}

// Queue is a print queue and its driver.
type Queue struct {
	Name   string
	Driver string
	// AcceptsPageDescription reports whether the driver takes XPS page
	// description data directly.
	AcceptsPageDescription bool
	Attributes             uint32
}

// JobInfo is the spooler's view of a job.
type JobInfo struct {
	ID           uint32
	Document     string
	Status       JobStatus
	StatusText   string // driver supplied, may be empty
	TotalPages   uint32
	PagesPrinted uint32
}

// Spooler is the native print spooler. All methods block. Codes from
// failed native calls are returned as syscall.Errno.
type Spooler interface {
	// Queues lists local and connected queues. It has no side effects.
	Queues() ([]Queue, error)

	Open(printer string) (Handle, error)
	// StartDoc starts a document and returns the spooler-assigned job id.
	StartDoc(h Handle, info DocInfo) (uint32, error)
	StartPage(h Handle) error
	// Write writes p and returns how many bytes the spooler accepted.
	Write(h Handle, p []byte) (int, error)
	EndPage(h Handle) error
	EndDoc(h Handle) error
	Close(h Handle) error

	// Job returns the current state of a job, or ErrJobNotFound.
	Job(h Handle, id uint32) (JobInfo, error)
	CancelJob(h Handle, id uint32) error
}

// JobStatus is a set of job status flags.
type JobStatus uint32

// Job status flags.
const (
	StatusPaused           JobStatus = 0x0001
	StatusError            JobStatus = 0x0002
	StatusDeleting         JobStatus = 0x0004
	StatusSpooling         JobStatus = 0x0008
	StatusPrinting         JobStatus = 0x0010
	StatusOffline          JobStatus = 0x0020
	StatusPaperOut         JobStatus = 0x0040
	StatusPrinted          JobStatus = 0x0080
	StatusDeleted          JobStatus = 0x0100
	StatusBlockedDevQ      JobStatus = 0x0200
	StatusUserIntervention JobStatus = 0x0400
	StatusRestart          JobStatus = 0x0800
	StatusComplete         JobStatus = 0x1000
)

var statusNames = []struct {
	flag JobStatus
	name string
}{
	{StatusPaused, "paused"},
	{StatusError, "error"},
	{StatusDeleting, "deleting"},
	{StatusSpooling, "spooling"},
	{StatusPrinting, "printing"},
	{StatusOffline, "offline"},
	{StatusPaperOut, "paper-out"},
	{StatusPrinted, "printed"},
	{StatusDeleted, "deleted"},
	{StatusBlockedDevQ, "blocked"},
	{StatusUserIntervention, "user-intervention"},
	{StatusRestart, "restart"},
	{StatusComplete, "complete"},
}

// Has reports whether every flag in f is set.
func (s JobStatus) Has(f JobStatus) bool { return s&f == f }

// Failed reports whether the job hit an error the driver cannot recover
// from without intervention.
func (s JobStatus) Failed() bool {
	return s&(StatusError|StatusOffline|StatusPaperOut|StatusBlockedDevQ) != 0
}

// Done reports whether the job finished printing.
func (s JobStatus) Done() bool {
	return s&(StatusPrinted|StatusComplete) != 0
}

func (s JobStatus) String() string {
	if s == 0 {
		return "queued"
	}
	var names []string
	for _, n := range statusNames {
		if s.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}
