package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kata-shadcn/kata-registry/internal/build"
	"github.com/kata-shadcn/kata-registry/internal/gitinfo"
	"github.com/kata-shadcn/kata-registry/internal/metrics"
)

func buildCmd(a *app) *cobra.Command {
	var (
		metricsFile string
		noGit       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the registry",
		Long: `Build every component listed in registry.json.

This command:
  • Skips template placeholders
  • Inlines each component's source files into public/r/<name>.json
  • Hashes every item over its canonical JSON form
  • Writes lib/component-index.json, public/r/index.json and
    public/r/index-compact.json

Missing source files are reported per component and fail the build
once all artifacts are written.

Examples:
  kata-registry build
  kata-registry build --metrics-file=build.prom
  kata-registry build --no-git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, metricsFile, noGit)
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write build metrics in Prometheus text format")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Skip git lastModified lookups")

	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, metricsFile string, noGit bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	opts := build.Options{
		Logger:     a.logger,
		OnProgress: func(step string) { a.info("%s", step) },
		OnWarning:  func(w build.Warning) { a.warn("%s", w) },
	}
	if noGit {
		opts.Dater = gitinfo.None{}
	}
	if metricsFile != "" {
		opts.Metrics = metrics.New()
	}

	result, buildErr := build.New(cfg, opts).Build(cmd.Context())

	if metricsFile != "" {
		if err := opts.Metrics.WriteTextfile(metricsFile); err != nil {
			a.errorMsg("write metrics: %v", err)
		}
	}
	if buildErr != nil {
		return buildErr
	}

	fmt.Fprintln(a.out)
	a.success("Built %d components in %s", result.Built, result.Duration.Round(time.Millisecond))
	a.info("Templates skipped:  %d", result.Templates)
	a.info("Categories:         %d", result.Distribution.Distinct())
	a.info("Compact index:      %s", formatBytes(int64(result.CompactSize)))
	if n := len(result.Warnings); n > 0 {
		a.info("Warnings:           %s", yellow(n))
	}
	a.info("%s", faint("build "+result.BuildID))
	return nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
