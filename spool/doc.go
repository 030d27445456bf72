// Package spool submits raw page-description data to an operating
// system print queue and reconciles the resulting job.
//
// A submission has three steps:
//
//	queue, err := spool.FindOutputQueue(sp, "Microsoft Print To PDF")
//	job, err := spool.Submit(ctx, sp, data, queue, `C:\out\report.pdf`, "Report")
//	outcome, err := spool.Reconcile(ctx, sp, job)
//
// Submit drives the spooler lifecycle (open, start document, start page,
// write, end page, end document, close) and always releases what it
// acquired, whichever call fails. Reconcile polls the job until it
// completes, fails or disappears, and deletes the partial output file
// when the job failed.
//
// The Spooler interface abstracts the native print spooler. NewSystem
// returns the Windows implementation; on other platforms every call fails
// with ErrNotSupported. Package spooltest provides a scripted fake.
package spool
