package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint/internal/docfile"
)

func (c *CLI) sampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Write a sample document description to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.out.Write(docfile.Sample())
			return err
		},
	}
}
