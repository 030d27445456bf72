// Package fixedprint turns fixed-layout documents into PDF files by
// printing them through a print-to-file spooler queue.
//
// The document is serialized as an XPS package and written to the queue
// whose driver is "Microsoft Print To PDF" as a single RAW job. The
// driver writes the PDF; fixedprint never encodes PDF itself.
//
// Basic usage:
//
//	res, err := fixedprint.PrintToPDF(ctx, doc, `C:\out\report.pdf`, "Report")
//	if err != nil {
//	    // handle error
//	}
//	if !res.Confirmed {
//	    log.Println("the spooler did not confirm the output")
//	}
//
// With options:
//
//	res, err := fixedprint.Print(doc).
//	    To(`C:\out\report.pdf`).
//	    Title("Report").
//	    PollTimeout(time.Minute).
//	    RequireConfirmation().
//	    Run(ctx)
//
// The xps, spool and model packages are available for lower-level use.
package fixedprint

import (
	"context"
	"fmt"
	"os"

	"github.com/tsawler/fixedprint/model"
	"github.com/tsawler/fixedprint/spool"
	"github.com/tsawler/fixedprint/xps"
)

// DefaultDriver is the driver of the queue documents are printed to.
const DefaultDriver = "Microsoft Print To PDF"

// Error kinds returned by the pipeline. All are pointers and work with
// errors.As.
type (
	SerializationError      = xps.SerializationError
	PrinterNotFoundError    = spool.PrinterNotFoundError
	DriverIncompatibleError = spool.DriverIncompatibleError
	CallError               = spool.CallError
	JobFailedError          = spool.JobFailedError
)

// Result describes a finished print run.
type Result struct {
	Job        spool.Job
	OutputPath string
	// Confirmed is true when the spooler reported the job printed or
	// the output file holds a PDF.
	Confirmed bool
	Status    spool.JobStatus
	Pages     int
	Bytes     int // size of the XPS package sent to the queue
}

// PrintToPDF prints doc to outputPath through the system spooler using
// the default driver and options.
//
// Example:
//
//	res, err := fixedprint.PrintToPDF(ctx, doc, "report.pdf", "Quarterly report")
func PrintToPDF(ctx context.Context, doc *model.Document, outputPath, title string) (Result, error) {
	return Print(doc).To(outputPath).Title(title).Run(ctx)
}

// SaveXPS writes doc to path as an XPS package instead of printing it.
func SaveXPS(doc *model.Document, path string, opts ...xps.Option) error {
	data, err := xps.Serialize(doc, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write XPS: %w", err)
	}
	return nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := fixedprint.Must(fixedprint.PrintToPDF(ctx, doc, "out.pdf", "Out"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
