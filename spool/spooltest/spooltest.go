// Package spooltest provides a scripted in-memory spool.Spooler for tests.
//
// The fake records every call, can fail any call by name, and answers job
// queries from a script:
//
//	sp := spooltest.New(spooltest.PDFQueue("PDF"))
//	sp.Fail(spool.CallWrite, syscall.Errno(5))
//	_, err := spool.Submit(ctx, sp, data, queue, out, "doc")
//	// sp.Calls() == [OpenPrinter StartDocPrinter StartPagePrinter
//	//                WritePrinter EndPagePrinter EndDocPrinter ClosePrinter]
package spooltest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"syscall"

	"github.com/tsawler/fixedprint/spool"
)

// PDFDriver is the driver name of the built-in print-to-PDF queue.
const PDFDriver = "Microsoft Print To PDF"

// PDFQueue returns an XPS-capable queue using PDFDriver.
func PDFQueue(name string) spool.Queue {
	return spool.Queue{Name: name, Driver: PDFDriver, AcceptsPageDescription: true}
}

// JobResponse is one scripted answer to a job query.
type JobResponse struct {
	Status spool.JobStatus
	Err    error // e.g. spool.ErrJobNotFound
}

// Spooler is a fake spool.Spooler. It is safe for concurrent use.
type Spooler struct {
	mu sync.Mutex

	queues       []spool.Queue
	enumerations int

	calls  []string
	faults map[string]error
	// maxWrite caps the bytes accepted per Write; -1 means no cap.
	maxWrite int

	nextHandle spool.Handle
	open       map[spool.Handle]string
	jobID      uint32
	doc        spool.DocInfo
	written    bytes.Buffer
	output     []byte

	script    []JobResponse
	cancelled []uint32
}

// New returns a fake spooler offering queues.
func New(queues ...spool.Queue) *Spooler {
	return &Spooler{
		queues:     queues,
		faults:     make(map[string]error),
		maxWrite:   -1,
		nextHandle: 1,
		open:       make(map[spool.Handle]string),
		jobID:      7,
	}
}

// Fail makes every later call named call return err. A nil err clears
// the fault.
func (s *Spooler) Fail(call string, err error) *Spooler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, call)
	} else {
		s.faults[call] = err
	}
	return s
}

// LimitWrite caps the number of bytes each Write accepts. Zero makes
// Write accept nothing without reporting an error.
func (s *Spooler) LimitWrite(n int) *Spooler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxWrite = n
	return s
}

// SetJobID sets the id StartDoc returns. Zero simulates a spooler that
// fails without an error code.
func (s *Spooler) SetJobID(id uint32) *Spooler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobID = id
	return s
}

// ProduceOutput makes EndDoc write data to the document's output file, as
// a print-to-file driver would. A cancelled job produces nothing.
func (s *Spooler) ProduceOutput(data []byte) *Spooler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = data
	return s
}

// ScriptJob sets the answers to successive job queries. The last answer
// repeats. Without a script every query returns spool.ErrJobNotFound.
func (s *Spooler) ScriptJob(responses ...JobResponse) *Spooler {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = responses
	return s
}

// Calls returns the handle and job calls made so far, in order. Queue
// enumeration is counted separately by Enumerations.
func (s *Spooler) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times call was made.
func (s *Spooler) Count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if call == spool.CallEnumPrinters {
		return s.enumerations
	}
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Enumerations returns how many times Queues was called.
func (s *Spooler) Enumerations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enumerations
}

// OpenHandles returns the number of handles not yet closed.
func (s *Spooler) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Written returns every byte accepted by Write.
func (s *Spooler) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.written.Bytes())
}

// Doc returns the last document passed to StartDoc.
func (s *Spooler) Doc() spool.DocInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Cancelled returns the ids of cancelled jobs.
func (s *Spooler) Cancelled() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.cancelled...)
}

// record logs call and returns its injected fault, if any. Callers hold mu.
func (s *Spooler) record(call string) error {
	s.calls = append(s.calls, call)
	return s.faults[call]
}

func (s *Spooler) checkHandle(h spool.Handle) error {
	if _, ok := s.open[h]; !ok {
		return fmt.Errorf("spooltest: handle %d is not open", h)
	}
	return nil
}

func (s *Spooler) Queues() ([]spool.Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enumerations++
	if err := s.faults[spool.CallEnumPrinters]; err != nil {
		return nil, err
	}
	return append([]spool.Queue(nil), s.queues...), nil
}

func (s *Spooler) Open(printer string) (spool.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(spool.CallOpenPrinter); err != nil {
		return 0, err
	}
	for _, q := range s.queues {
		if q.Name == printer {
			h := s.nextHandle
			s.nextHandle++
			s.open[h] = printer
			return h, nil
		}
	}
	return 0, errInvalidPrinterName
}

func (s *Spooler) StartDoc(h spool.Handle, info spool.DocInfo) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(spool.CallStartDoc); err != nil {
		return 0, err
	}
	if err := s.checkHandle(h); err != nil {
		return 0, err
	}
	s.doc = info
	return s.jobID, nil
}

func (s *Spooler) StartPage(h spool.Handle) error {
	return s.simple(spool.CallStartPage, h)
}

func (s *Spooler) Write(h spool.Handle, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(spool.CallWrite); err != nil {
		return 0, err
	}
	if err := s.checkHandle(h); err != nil {
		return 0, err
	}
	n := len(p)
	if s.maxWrite >= 0 && n > s.maxWrite {
		n = s.maxWrite
	}
	s.written.Write(p[:n])
	return n, nil
}

func (s *Spooler) EndPage(h spool.Handle) error {
	return s.simple(spool.CallEndPage, h)
}

func (s *Spooler) EndDoc(h spool.Handle) error {
	if err := s.simple(spool.CallEndDoc, h); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.output != nil && s.doc.OutputFile != "" && !slices.Contains(s.cancelled, s.jobID) {
		if err := os.WriteFile(s.doc.OutputFile, s.output, 0644); err != nil {
			return err
		}
	}
	return nil
}

func (s *Spooler) Close(h spool.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A handle is released even when Close reports an error.
	checkErr := s.checkHandle(h)
	delete(s.open, h)
	if err := s.record(spool.CallClose); err != nil {
		return err
	}
	return checkErr
}

func (s *Spooler) Job(h spool.Handle, id uint32) (spool.JobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(spool.CallGetJob); err != nil {
		return spool.JobInfo{}, err
	}
	if err := s.checkHandle(h); err != nil {
		return spool.JobInfo{}, err
	}
	if len(s.script) == 0 {
		return spool.JobInfo{}, spool.ErrJobNotFound
	}

	r := s.script[0]
	if len(s.script) > 1 {
		s.script = s.script[1:]
	}
	if r.Err != nil {
		return spool.JobInfo{}, r.Err
	}
	return spool.JobInfo{ID: id, Document: s.doc.Name, Status: r.Status}, nil
}

func (s *Spooler) CancelJob(h spool.Handle, id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(spool.CallSetJob); err != nil {
		return err
	}
	if err := s.checkHandle(h); err != nil {
		return err
	}
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *Spooler) simple(call string, h spool.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(call); err != nil {
		return err
	}
	return s.checkHandle(h)
}

// errInvalidPrinterName mirrors ERROR_INVALID_PRINTER_NAME.
var errInvalidPrinterName error = syscall.Errno(1801)

var _ spool.Spooler = (*Spooler)(nil)

// ErrInjected is a convenient fault for Fail.
var ErrInjected = errors.New("spooltest: injected failure")
