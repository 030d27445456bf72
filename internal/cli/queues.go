package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint"
	"github.com/tsawler/fixedprint/spool"
)

func (c *CLI) queuesCommand() *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:   "queues",
		Short: "List print queues and the one print would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := c.spoolerOrSystem()

			queues, err := spool.Queues(sp)
			if err != nil {
				return err
			}

			c.printTitle("Queues")
			for _, q := range queues {
				accepts := "no XPS"
				if q.AcceptsPageDescription {
					accepts = "XPS"
				}
				c.printKeyValue(q.Name, q.Driver+" ("+accepts+")")
			}

			q, err := spool.FindOutputQueue(sp, driver)
			var notFound *spool.PrinterNotFoundError
			var incompatible *spool.DriverIncompatibleError
			switch {
			case err == nil:
				c.printSuccess("print would use %q", q.Name)
			case errors.As(err, &notFound), errors.As(err, &incompatible):
				c.printWarning("%v", err)
			default:
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", fixedprint.DefaultDriver, "driver to look for")
	return cmd
}
