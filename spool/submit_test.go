package spool_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/tsawler/fixedprint/spool"
	"github.com/tsawler/fixedprint/spool/spooltest"
)

var fullLifecycle = []string{
	spool.CallOpenPrinter,
	spool.CallStartDoc,
	spool.CallStartPage,
	spool.CallWrite,
	spool.CallEndPage,
	spool.CallEndDoc,
	spool.CallClose,
}

func assertCalls(t *testing.T, sp *spooltest.Spooler, want []string) {
	t.Helper()
	got := sp.Calls()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSubmit_Success(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue)
	data := []byte("PK fake xps package")

	job, err := spool.Submit(context.Background(), sp, data, queue, `C:\out\a.pdf`, "Report")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if job.ID != 7 || !job.Started() {
		t.Errorf("job.ID = %d, want 7", job.ID)
	}
	if job.State != spool.JobSubmitted {
		t.Errorf("job.State = %v, want submitted", job.State)
	}
	if job.OutputPath != `C:\out\a.pdf` || job.Queue != queue {
		t.Errorf("job = %+v", job)
	}

	assertCalls(t, sp, fullLifecycle)
	if !bytes.Equal(sp.Written(), data) {
		t.Errorf("written = %q, want %q", sp.Written(), data)
	}

	doc := sp.Doc()
	if doc.Name != "Report" || doc.OutputFile != `C:\out\a.pdf` || doc.Datatype != spool.DatatypeRaw {
		t.Errorf("doc info = %+v", doc)
	}
	if n := sp.OpenHandles(); n != 0 {
		t.Errorf("open handles = %d, want 0", n)
	}
}

func TestSubmit_Chunked(t *testing.T) {
	tests := []struct {
		name      string
		chunk     int
		limit     int
		wantCalls int
	}{
		{"one chunk", 64, -1, 1},
		{"chunk size", 4, -1, 3},
		{"short writes", 64, 3, 4},
		{"chunk and short", 4, 3, 4},
	}

	data := []byte("0123456789")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := spooltest.PDFQueue("PDF")
			sp := spooltest.New(queue).LimitWrite(tt.limit)

			_, err := spool.Submit(context.Background(), sp, data, queue, "out.pdf", "t", spool.WithChunkSize(tt.chunk))
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if n := sp.Count(spool.CallWrite); n != tt.wantCalls {
				t.Errorf("writes = %d, want %d", n, tt.wantCalls)
			}
			if !bytes.Equal(sp.Written(), data) {
				t.Errorf("written = %q, want %q", sp.Written(), data)
			}
		})
	}
}

func TestSubmit_FaultAtEveryCall(t *testing.T) {
	const code = syscall.Errno(5)

	var (
		open      = spool.CallOpenPrinter
		startDoc  = spool.CallStartDoc
		startPage = spool.CallStartPage
		write     = spool.CallWrite
		endPage   = spool.CallEndPage
		endDoc    = spool.CallEndDoc
		closeP    = spool.CallClose
		cancel    = spool.CallSetJob
	)

	tests := []struct {
		fail       string
		wantCalls  []string
		wantErr    bool
		wantCancel bool
	}{
		{open, []string{open}, true, false},
		{startDoc, []string{open, startDoc, closeP}, true, false},
		{startPage, []string{open, startDoc, startPage, cancel, endDoc, closeP}, true, true},
		{write, []string{open, startDoc, startPage, write, cancel, endPage, endDoc, closeP}, true, true},
		{endPage, []string{open, startDoc, startPage, write, endPage, cancel, endDoc, closeP}, true, true},
		{endDoc, []string{open, startDoc, startPage, write, endPage, endDoc, cancel, closeP}, true, true},
		{closeP, fullLifecycle, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.fail, func(t *testing.T) {
			queue := spooltest.PDFQueue("PDF")
			sp := spooltest.New(queue).Fail(tt.fail, code)

			job, err := spool.Submit(context.Background(), sp, []byte("data"), queue, "out.pdf", "t")

			assertCalls(t, sp, tt.wantCalls)
			if n := sp.Count(spool.CallOpenPrinter); n != 1 {
				t.Errorf("OpenPrinter calls = %d, want 1", n)
			}
			wantClose := 1
			if tt.fail == spool.CallOpenPrinter {
				wantClose = 0
			}
			if n := sp.Count(spool.CallClose); n != wantClose {
				t.Errorf("ClosePrinter calls = %d, want %d", n, wantClose)
			}
			if n := sp.OpenHandles(); n != 0 {
				t.Errorf("open handles = %d, want 0", n)
			}

			cancelled := sp.Cancelled()
			if tt.wantCancel {
				if len(cancelled) != 1 || cancelled[0] != 7 {
					t.Errorf("cancelled = %v, want [7]", cancelled)
				}
			} else if len(cancelled) != 0 {
				t.Errorf("cancelled = %v, want none", cancelled)
			}

			if !tt.wantErr {
				if err != nil {
					t.Errorf("Submit() error = %v, close failures are only logged", err)
				}
				return
			}

			var ce *spool.CallError
			if !errors.As(err, &ce) {
				t.Fatalf("Submit() error = %v, want *CallError", err)
			}
			if ce.Call != tt.fail || ce.Code != code {
				t.Errorf("CallError = %s/%d, want %s/%d", ce.Call, ce.Code, tt.fail, code)
			}
			if job.State != spool.JobFailed {
				t.Errorf("job.State = %v, want failed", job.State)
			}
			if started := tt.fail != spool.CallOpenPrinter && tt.fail != spool.CallStartDoc; job.Started() != started {
				t.Errorf("job.Started() = %v, want %v", job.Started(), started)
			}
		})
	}
}

func TestSubmit_CancelFailureIsLogged(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue).
		Fail(spool.CallWrite, syscall.Errno(5)).
		Fail(spool.CallSetJob, spooltest.ErrInjected)

	_, err := spool.Submit(context.Background(), sp, []byte("data"), queue, "out.pdf", "t")

	var ce *spool.CallError
	if !errors.As(err, &ce) || ce.Call != spool.CallWrite {
		t.Errorf("Submit() error = %v, want the WritePrinter failure", err)
	}
	if n := sp.Count(spool.CallEndDoc); n != 1 {
		t.Errorf("EndDocPrinter calls = %d, want 1", n)
	}
	if n := sp.OpenHandles(); n != 0 {
		t.Errorf("open handles = %d, want 0", n)
	}
}

func TestSubmit_WriteFailureOrder(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue).Fail(spool.CallWrite, syscall.Errno(1804))

	_, err := spool.Submit(context.Background(), sp, []byte("data"), queue, "out.pdf", "t")

	calls := sp.Calls()
	tail := calls[len(calls)-3:]
	want := []string{spool.CallEndPage, spool.CallEndDoc, spool.CallClose}
	if strings.Join(tail, ",") != strings.Join(want, ",") {
		t.Errorf("teardown = %v, want %v", tail, want)
	}

	var ce *spool.CallError
	if !errors.As(err, &ce) || ce.Code != 1804 {
		t.Errorf("error = %v, want code 1804", err)
	}
	if !errors.Is(err, syscall.Errno(1804)) {
		t.Error("CallError should unwrap to its code")
	}
}

func TestSubmit_ZeroByteWrite(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue).LimitWrite(0)

	_, err := spool.Submit(context.Background(), sp, []byte("data"), queue, "out.pdf", "t")

	var ce *spool.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("Submit() error = %v, want *CallError", err)
	}
	if ce.Call != spool.CallWrite || ce.Code != 29 {
		t.Errorf("CallError = %s/%d, want WritePrinter/29", ce.Call, ce.Code)
	}
	if n := sp.Count(spool.CallWrite); n != 1 {
		t.Errorf("writes = %d, want 1", n)
	}
	assertCalls(t, sp, []string{
		spool.CallOpenPrinter, spool.CallStartDoc, spool.CallStartPage, spool.CallWrite,
		spool.CallSetJob, spool.CallEndPage, spool.CallEndDoc, spool.CallClose,
	})
}

func TestSubmit_ZeroJobID(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue).SetJobID(0)

	job, err := spool.Submit(context.Background(), sp, []byte("data"), queue, "out.pdf", "t")

	var ce *spool.CallError
	if !errors.As(err, &ce) || ce.Call != spool.CallStartDoc {
		t.Fatalf("Submit() error = %v, want StartDocPrinter failure", err)
	}
	if job.Started() {
		t.Error("job should not be started")
	}
	assertCalls(t, sp, []string{spool.CallOpenPrinter, spool.CallStartDoc, spool.CallClose})
}

func TestSubmit_UnknownPrinter(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("PDF"))

	_, err := spool.Submit(context.Background(), sp, []byte("data"), spooltest.PDFQueue("Other"), "out.pdf", "t")

	var ce *spool.CallError
	if !errors.As(err, &ce) || ce.Call != spool.CallOpenPrinter || ce.Code != 1801 {
		t.Errorf("Submit() error = %v, want OpenPrinter/1801", err)
	}
	assertCalls(t, sp, fullLifecycle[:1])
}

func TestSubmit_EmptyData(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")
	sp := spooltest.New(queue)

	if _, err := spool.Submit(context.Background(), sp, nil, queue, "out.pdf", "t"); err == nil {
		t.Error("Submit() should fail without data")
	}
	assertCalls(t, sp, nil)
}

// cancelAfter cancels a context once the wrapped spooler has started a
// page.
type cancelAfter struct {
	*spooltest.Spooler
	cancel context.CancelFunc
}

func (c cancelAfter) StartPage(h spool.Handle) error {
	err := c.Spooler.StartPage(h)
	c.cancel()
	return err
}

func TestSubmit_ContextCancelled(t *testing.T) {
	queue := spooltest.PDFQueue("PDF")

	t.Run("before open", func(t *testing.T) {
		sp := spooltest.New(queue)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		job, err := spool.Submit(ctx, sp, []byte("data"), queue, "out.pdf", "t")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Submit() error = %v, want context.Canceled", err)
		}
		if job.State != spool.JobCancelled {
			t.Errorf("job.State = %v, want cancelled", job.State)
		}
		assertCalls(t, sp, nil)
	})

	t.Run("between calls", func(t *testing.T) {
		sp := spooltest.New(queue)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		job, err := spool.Submit(ctx, cancelAfter{sp, cancel}, []byte("data"), queue, "out.pdf", "t")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Submit() error = %v, want context.Canceled", err)
		}
		var ce *spool.CallError
		if !errors.As(err, &ce) || ce.Call != spool.CallWrite {
			t.Errorf("Submit() error = %v, want WritePrinter not issued", err)
		}
		if job.ID != 7 || job.State != spool.JobCancelled {
			t.Errorf("job = %+v", job)
		}
		assertCalls(t, sp, []string{
			spool.CallOpenPrinter, spool.CallStartDoc, spool.CallStartPage,
			spool.CallSetJob, spool.CallEndPage, spool.CallEndDoc, spool.CallClose,
		})
		if got := sp.Cancelled(); len(got) != 1 || got[0] != 7 {
			t.Errorf("cancelled = %v, want [7]", got)
		}
	})
}
