package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// app carries global flags and output streams for every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer

	dir     string
	verbose bool
	logJSON bool
	noColor bool

	logger *zap.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "kata-registry",
		Short: "Build and serve the kata-shadcn component registry",
		Long: `kata-registry turns registry.json into the files the shadcn CLI installs from.

Commands cover the whole registry lifecycle:

  • init        scaffold a new registry project
  • build       write public/r/<name>.json and the three indexes
  • check       enforce the category taxonomy policy
  • categories  print the category distribution
  • verify      re-hash built or deployed items against the index
  • serve       serve public/r over HTTP, optionally rebuilding on change
  • publish     upload public/r to S3-compatible storage`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor {
				errors.DisableColors()
			}
			a.logger = logging.New(logging.Options{Verbose: a.verbose, JSON: a.logJSON})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.dir, "dir", "C", ".", "Project root containing registry.json")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.logJSON, "log-json", false, "Log as JSON")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(a),
		buildCmd(a),
		checkCmd(a),
		categoriesCmd(a),
		verifyCmd(a),
		serveCmd(a),
		publishCmd(a),
		versionCmd(a),
	)

	return rootCmd
}

// loadConfig loads the project configuration.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.dir)
	if err != nil {
		return nil, err
	}
	if f := cfg.ConfigFile(); f != "" {
		a.logger.Debug("loaded config", zap.String("file", f))
	}
	return cfg, nil
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// success prints a success message.
func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.out, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.out, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func (a *app) errorMsg(format string, args ...any) {
	fmt.Fprintf(a.errOut, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}
