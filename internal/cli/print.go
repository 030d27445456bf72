package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint"
)

type printOpts struct {
	output              string
	title               string
	driver              string
	timeout             time.Duration
	requireConfirmation bool
	sample              bool
}

func (c *CLI) printCommand() *cobra.Command {
	opts := printOpts{driver: fixedprint.DefaultDriver, timeout: 30 * time.Second}

	cmd := &cobra.Command{
		Use:   "print [description.toml]",
		Short: "Print a document description to PDF",
		Long: `Print lays out a TOML document description, packages it as XPS and sends it
to the print-to-PDF queue. The driver writes the PDF to --output.`,
		Example: `  fixedprint print report.toml -o report.pdf
  fixedprint print --sample -o sample.pdf --timeout 1m`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrint(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF file to create (required)")
	cmd.Flags().StringVar(&opts.title, "title", "", "job name shown in the queue (default: document title)")
	cmd.Flags().StringVar(&opts.driver, "driver", opts.driver, "driver of the output queue")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "how long to wait for the job (0 checks once)")
	cmd.Flags().BoolVar(&opts.requireConfirmation, "require-confirmation", false, "fail unless the PDF is confirmed")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "print the built-in sample document")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) runPrint(cmd *cobra.Command, args []string, opts printOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	f, err := loadDocument(logger, args, opts.sample)
	if err != nil {
		return err
	}

	p := fixedprint.Print(f.Document).
		To(opts.output).
		Title(opts.title).
		Driver(opts.driver).
		Spooler(c.spoolerOrSystem()).
		Resolver(resolverFor(f)).
		Logger(logger).
		PollTimeout(opts.timeout)
	if opts.requireConfirmation {
		p = p.RequireConfirmation()
	}

	prog := newProgress(logger)
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	prog.done("Printed")

	c.printSuccess("Job %d %s", res.Job.ID, res.Job.State)
	c.printFile(res.OutputPath)
	if !res.Confirmed {
		c.printWarning("the spooler did not confirm the PDF was written")
	}
	return nil
}
