// Package cli implements the fixedprint command-line interface.
//
// # Commands
//
//   - print: print a document description to PDF through the spooler
//   - xps: save a document description as an XPS package
//   - inspect: list the parts and relationships of an XPS package
//   - queues: list print queues and the one print would use
//   - sample: write a sample document description
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is passed to commands through context.Context.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint/internal/docfile"
	"github.com/tsawler/fixedprint/resource"
	"github.com/tsawler/fixedprint/spool"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. The
// main package calls it with values injected through ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out     io.Writer
	spooler spool.Spooler
}

// New creates a CLI writing results to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(logw, level), out: out}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetSpooler replaces the system spooler.
func (c *CLI) SetSpooler(sp spool.Spooler) {
	c.spooler = sp
}

func (c *CLI) spoolerOrSystem() spool.Spooler {
	if c.spooler != nil {
		return c.spooler
	}
	return spool.NewSystem()
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "fixedprint",
		Short:        "fixedprint prints fixed-layout documents to PDF",
		Long:         `fixedprint packages fixed-layout documents as XPS and prints them to PDF through the Windows "Microsoft Print To PDF" queue.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("fixedprint %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.SetOut(c.out)

	root.AddCommand(c.printCommand())
	root.AddCommand(c.xpsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.queuesCommand())
	root.AddCommand(c.sampleCommand())

	return root
}

// loadDocument reads the description named by args, or the built-in
// sample when useSample is set.
func loadDocument(logger *log.Logger, args []string, useSample bool) (*docfile.File, error) {
	f, err := readDocument(args, useSample)
	if err != nil {
		return nil, err
	}

	images := 0
	for _, page := range f.Document.Pages() {
		images += len(page.ImageSources())
	}
	logger.Debug("loaded document",
		"pages", f.Document.PageCount(),
		"depth", f.Document.Depth(),
		"images", images,
	)
	return f, nil
}

func readDocument(args []string, useSample bool) (*docfile.File, error) {
	switch {
	case useSample && len(args) > 0:
		return nil, fmt.Errorf("--sample takes no file argument")
	case useSample:
		return docfile.Parse(docfile.Sample(), ".")
	case len(args) == 1:
		return docfile.Load(args[0])
	default:
		return nil, fmt.Errorf("expected one document description, got %d", len(args))
	}
}

func resolverFor(f *docfile.File) resource.Resolver {
	return resource.NewFileResolver(resource.WithRoot(f.ResourceRoot))
}
