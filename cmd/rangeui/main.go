package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/rangeui/internal/config"
	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries what every command needs once flags and config are resolved.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !useColor(os.Stderr) {
			errors.DisableColors()
		}
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "rangeui",
		Short: "Render and preview rangeui component trees",
		Long: `rangeui renders declarative component trees into an in-memory
document and keeps them up to date through anchor-based reconciliation.

Use it to:

  • Print the markup of the demo application
  • Serve a live preview that forwards browser events
  • Publish rendered pages to S3 or a local directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./rangeui.yaml)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("prune", false, "remove children a new render no longer produces")
	_ = c.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = c.v.BindPFlag("render.prune_stale_children", rootCmd.PersistentFlags().Lookup("prune"))

	rootCmd.AddCommand(
		renderCmd(c),
		serveCmd(c),
		snapshotCmd(c),
		versionCmd(),
	)
	return rootCmd
}

// load reads configuration and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(c.logger)
	if p := cfg.Path(); p != "" {
		c.logger.Debug("using config file", "path", p)
	}
	return nil
}

// runtimeOptions returns the vdom options implied by the configuration.
func (c *cli) runtimeOptions(extra ...vdom.Option) []vdom.Option {
	opts := []vdom.Option{vdom.WithLogger(c.logger)}
	if c.cfg.Render.PruneStaleChildren {
		opts = append(opts, vdom.WithPruneStaleChildren())
	}
	return append(opts, extra...)
}

// newDocument creates an empty document and a runtime rendering into it.
func (c *cli) newDocument(extra ...vdom.Option) (*memhost.Document, *vdom.Runtime) {
	doc := memhost.NewDocument()
	return doc, vdom.New(doc, c.runtimeOptions(extra...)...)
}

// useColor reports whether w is a terminal.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	if useColor(w) {
		fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
		return
	}
	fmt.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
