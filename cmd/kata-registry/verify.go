package main

import (
	"github.com/spf13/cobra"

	"github.com/kata-shadcn/kata-registry/internal/registry"
	"github.com/kata-shadcn/kata-registry/internal/verify"
)

func verifyCmd(a *app) *cobra.Command {
	var (
		url         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify registry items against their content hashes",
		Long: `Re-hash every item listed in public/r/index.json and compare it with
the recorded contentHash.

Without --url the local output directory is checked. With --url the
items are fetched from a running or deployed registry.

Examples:
  kata-registry verify
  kata-registry verify --url=https://kata-shadcn.dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			var source verify.Source = verify.Dir(cfg.OutputPath())
			if url != "" {
				source = verify.Remote{Client: registry.NewClient(url, nil)}
			}

			report, err := verify.New(source, verify.Options{
				Concurrency: concurrency,
				Logger:      a.logger,
			}).Verify(cmd.Context())
			if err != nil {
				return err
			}

			for _, m := range report.Mismatches {
				a.errorMsg("%s: content hash %s, index says %s", m.Name, m.Got, m.Want)
			}
			for _, name := range report.Missing {
				a.errorMsg("%s: listed in the index but missing", name)
			}
			if err := report.Err(); err != nil {
				return err
			}

			a.success("Verified %d items", report.Checked)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Registry base URL to verify instead of the local output")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent reads (default: number of CPUs)")

	return cmd
}
