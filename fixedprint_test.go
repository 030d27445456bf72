package fixedprint

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/tsawler/fixedprint/format"
	"github.com/tsawler/fixedprint/model"
	"github.com/tsawler/fixedprint/resource"
	"github.com/tsawler/fixedprint/spool"
	"github.com/tsawler/fixedprint/spool/spooltest"
)

var fakePDF = []byte("%PDF-1.7\n%fake\n")

// testDocument returns a one-page document with a line of text.
func testDocument(t *testing.T) *model.Document {
	t.Helper()
	doc, err := model.NewDocument(model.Metadata{Title: "Invoice 42"}, model.UnitDIP,
		model.MustPage(793.7, 1122.5, &model.Text{Text: "Hello, printer"}))
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	return doc
}

func outputPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.pdf")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRun_Success(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("Microsoft Print to PDF")).ProduceOutput(fakePDF)
	out := outputPath(t)

	res, err := Print(testDocument(t)).To(out).Spooler(sp).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !res.Confirmed {
		t.Error("result should be confirmed")
	}
	if res.Job.State != spool.JobCompleted {
		t.Errorf("job state = %v, want completed", res.Job.State)
	}
	if res.Pages != 1 || res.Bytes == 0 {
		t.Errorf("result = %+v", res)
	}
	if res.OutputPath != out {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, out)
	}

	got, err := os.ReadFile(out)
	if err != nil || !bytes.Equal(got, fakePDF) {
		t.Errorf("output = %q, %v", got, err)
	}

	doc := sp.Doc()
	if doc.Name != "Invoice 42" || doc.OutputFile != out || doc.Datatype != spool.DatatypeRaw {
		t.Errorf("DocInfo = %+v", doc)
	}
	written := sp.Written()
	if len(written) != res.Bytes || !bytes.HasPrefix(written, []byte("PK")) {
		t.Errorf("written %d bytes, want a %d byte package", len(written), res.Bytes)
	}
	if n := sp.OpenHandles(); n != 0 {
		t.Errorf("open handles = %d, want 0", n)
	}
}

func TestRun_FailFast(t *testing.T) {
	tests := []struct {
		name   string
		queues []spool.Queue
		want   any
	}{
		{"no queue", []spool.Queue{{Name: "Laser", Driver: "HP LaserJet"}}, new(*PrinterNotFoundError)},
		{"incompatible driver", []spool.Queue{{Name: "PDF", Driver: DefaultDriver}}, new(*DriverIncompatibleError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := spooltest.New(tt.queues...)
			out := outputPath(t)

			_, err := Print(testDocument(t)).To(out).Spooler(sp).Run(context.Background())
			if !errors.As(err, tt.want) {
				t.Fatalf("Run() error = %v, want %T", err, tt.want)
			}
			if calls := sp.Calls(); len(calls) != 0 {
				t.Errorf("lifecycle calls = %v, want none", calls)
			}
			if exists(out) {
				t.Error("output file should not exist")
			}
		})
	}
}

func TestRun_SerializationError(t *testing.T) {
	doc, err := model.NewDocument(model.Metadata{}, model.UnitDIP,
		model.MustPage(100, 100, &model.Image{Source: "missing.png"}))
	if err != nil {
		t.Fatal(err)
	}
	sp := spooltest.New(spooltest.PDFQueue("PDF"))

	_, err = Print(doc).To(outputPath(t)).
		Resolver(resource.NewMapResolver(nil)).
		Spooler(sp).
		Run(context.Background())

	var se *SerializationError
	if !errors.As(err, &se) || se.Page != 1 {
		t.Fatalf("Run() error = %v, want SerializationError on page 1", err)
	}
	if calls := sp.Calls(); len(calls) != 0 {
		t.Errorf("lifecycle calls = %v, want none", calls)
	}
}

func TestRun_BothPreparationStepsFail(t *testing.T) {
	doc, err := model.NewDocument(model.Metadata{}, model.UnitDIP,
		model.MustPage(100, 100, &model.Image{Source: "missing.png"}))
	if err != nil {
		t.Fatal(err)
	}

	for range 20 {
		sp := spooltest.New(spool.Queue{Name: "Laser", Driver: "HP LaserJet"})

		_, err := Print(doc).To(outputPath(t)).
			Resolver(resource.NewMapResolver(nil)).
			Spooler(sp).
			Run(context.Background())

		var se *SerializationError
		if !errors.As(err, &se) {
			t.Fatalf("Run() error = %v, want *SerializationError", err)
		}
	}
}

func TestRun_SubmitFailureRemovesOutput(t *testing.T) {
	tests := []struct {
		name    string
		fail    string
		partial bool
	}{
		{"write fault", spool.CallWrite, false},
		{"write fault after driver started", spool.CallWrite, true},
		{"end page fault", spool.CallEndPage, true},
		{"end doc fault", spool.CallEndDoc, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := spooltest.New(spooltest.PDFQueue("PDF")).
				ProduceOutput(fakePDF).
				Fail(tt.fail, syscall.Errno(1804))
			out := outputPath(t)
			if tt.partial {
				if err := os.WriteFile(out, []byte("%PDF-1.7\n"), 0644); err != nil {
					t.Fatal(err)
				}
			}

			res, err := Print(testDocument(t)).To(out).Spooler(sp).Run(context.Background())

			var ce *CallError
			if !errors.As(err, &ce) || ce.Call != tt.fail || ce.Code != 1804 {
				t.Fatalf("Run() error = %v, want %s failure with code 1804", err, tt.fail)
			}
			if !res.Job.Started() {
				t.Error("job id should be reported")
			}
			if got := sp.Cancelled(); len(got) != 1 || got[0] != res.Job.ID {
				t.Errorf("cancelled = %v, want [%d]", got, res.Job.ID)
			}
			if n := sp.Count(spool.CallEndDoc); n != 1 {
				t.Errorf("EndDoc calls = %d, want 1", n)
			}
			if exists(out) {
				t.Error("partial output should be removed")
			}
			if n := sp.OpenHandles(); n != 0 {
				t.Errorf("open handles = %d, want 0", n)
			}
		})
	}
}

func TestRun_JobError(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("PDF")).
		ProduceOutput(fakePDF).
		ScriptJob(spooltest.JobResponse{Status: spool.StatusError})
	out := outputPath(t)

	_, err := Print(testDocument(t)).To(out).Spooler(sp).Run(context.Background())

	var jf *JobFailedError
	if !errors.As(err, &jf) {
		t.Fatalf("Run() error = %v, want *JobFailedError", err)
	}
	if exists(out) {
		t.Error("output should be removed after a job error")
	}
}

func TestRun_PollOnce(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("PDF")).
		ScriptJob(spooltest.JobResponse{Status: spool.StatusSpooling})

	res, err := Print(testDocument(t)).To(outputPath(t)).
		Spooler(sp).
		PollTimeout(0).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Job.State != spool.JobSubmitted || res.Confirmed {
		t.Errorf("result = %+v, want submitted and unconfirmed", res)
	}
	if res.Status != spool.StatusSpooling {
		t.Errorf("Status = %v, want spooling", res.Status)
	}
}

func TestRun_RequireConfirmation(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("PDF"))
	out := outputPath(t)

	_, err := Print(testDocument(t)).To(out).
		Spooler(sp).
		RequireConfirmation().
		PollTimeout(time.Second).
		Run(context.Background())

	var jf *JobFailedError
	if !errors.As(err, &jf) {
		t.Fatalf("Run() error = %v, want *JobFailedError", err)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := Print(nil).To("out.pdf").Run(ctx); !errors.Is(err, model.ErrEmptyDocument) {
		t.Errorf("nil document: error = %v", err)
	}
	if _, err := Print(testDocument(t)).To("").Run(ctx); err == nil {
		t.Error("empty output path should fail")
	}
	if _, err := Print(testDocument(t)).Run(ctx); err == nil {
		t.Error("missing output path should fail")
	}
}

func TestPrinter_CopyOnWrite(t *testing.T) {
	base := Print(testDocument(t)).Title("base")
	derived := base.Title("derived").Driver("Other").MaxDepth(2)

	if base.options.title != "base" || base.options.driver != DefaultDriver {
		t.Errorf("base changed: %+v", base.options)
	}
	if derived.options.title != "derived" || derived.options.maxDepth != 2 {
		t.Errorf("derived = %+v", derived.options)
	}
}

func TestPrinter_Title(t *testing.T) {
	doc := testDocument(t)
	if got := Print(doc).title(); got != "Invoice 42" {
		t.Errorf("title() = %q, want document title", got)
	}
	if got := Print(doc).Title("Custom").title(); got != "Custom" {
		t.Errorf("title() = %q, want Custom", got)
	}

	untitled, _ := model.NewDocument(model.Metadata{}, model.UnitDIP, model.MustPage(10, 10))
	if got := Print(untitled).title(); got != "Document" {
		t.Errorf("title() = %q, want Document", got)
	}
}

func TestStart(t *testing.T) {
	sp := spooltest.New(spooltest.PDFQueue("PDF")).ProduceOutput(fakePDF)

	ch := Start(context.Background(), Print(testDocument(t)).To(outputPath(t)).Spooler(sp))

	select {
	case o := <-ch:
		if o.Err != nil {
			t.Fatalf("Outcome.Err = %v", o.Err)
		}
		if !o.Result.Confirmed {
			t.Error("result should be confirmed")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no outcome delivered")
	}

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after the outcome")
	}
}

func TestSaveXPS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xps")
	if err := SaveXPS(testDocument(t), path); err != nil {
		t.Fatalf("SaveXPS() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}

	got, err := format.DetectFromReader(f, info.Size())
	if err != nil || got != format.XPS {
		t.Errorf("DetectFromReader() = %v, %v, want XPS", got, err)
	}
}
