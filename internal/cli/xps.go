package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint"
	"github.com/tsawler/fixedprint/xps"
)

func (c *CLI) xpsCommand() *cobra.Command {
	var (
		output   string
		sample   bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:     "xps [description.toml]",
		Short:   "Save a document description as an XPS package",
		Example: `  fixedprint xps report.toml -o report.xps`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			f, err := loadDocument(logger, args, sample)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			err = fixedprint.SaveXPS(f.Document, output,
				xps.WithResolver(resolverFor(f)),
				xps.WithMaxDepth(maxDepth),
				xps.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			prog.done("Serialized")

			c.printSuccess("Saved %d page(s)", f.Document.PageCount())
			c.printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "XPS file to create (required)")
	cmd.Flags().BoolVar(&sample, "sample", false, "save the built-in sample document")
	cmd.Flags().IntVar(&maxDepth, "max-depth", xps.DefaultMaxDepth, "maximum container nesting")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
