package main

import (
	"github.com/spf13/cobra"

	"github.com/kata-shadcn/kata-registry/internal/build"
	"github.com/kata-shadcn/kata-registry/internal/category"
	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/index"
)

func checkCmd(a *app) *cobra.Command {
	var fromIndex bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the category taxonomy policy",
		Long: `Check the category distribution against the taxonomy policy.

The policy requires between categories.min and categories.max distinct
categories (20 and 35 by default) and no category holding more than
ceil(categories.max_share × total) components (15% by default).

By default categories are resolved from registry.json and the collapse
map. With --from-index the built lib/component-index.json is used.

Examples:
  kata-registry check
  kata-registry check --from-index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(fromIndex)
		},
	}

	cmd.Flags().BoolVar(&fromIndex, "from-index", false, "Check the built browser index instead of the manifest")

	return cmd
}

func (a *app) runCheck(fromIndex bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	dist, err := loadDistribution(cfg, fromIndex)
	if err != nil {
		return err
	}

	policy := cfg.Categories
	var failed []error
	if err := dist.CheckCardinality(policy.Min, policy.Max); err != nil {
		a.errorMsg("%d distinct categories, want %d-%d", dist.Distinct(), policy.Min, policy.Max)
		failed = append(failed, err)
	}
	for _, c := range dist.OverShare(policy.MaxShare) {
		a.errorMsg("%s holds %d of %d components (limit %d)", c.Name, c.Count, dist.Total(), dist.ShareLimit(policy.MaxShare))
	}
	if err := dist.CheckShare(policy.MaxShare); err != nil {
		failed = append(failed, err)
	}

	if len(failed) > 0 {
		return failed[0]
	}

	a.success("%d components in %d categories, largest %d (limit %d)",
		dist.Total(), dist.Distinct(), largest(dist), dist.ShareLimit(policy.MaxShare))
	return nil
}

// loadDistribution computes the category distribution from the manifest or
// the built browser index.
func loadDistribution(cfg *config.Config, fromIndex bool) (*category.Distribution, error) {
	if !fromIndex {
		return build.Categorize(cfg)
	}

	entries, err := index.ReadEntries(cfg.BrowserIndexPath())
	if err != nil {
		return nil, errors.New("KR150").
			WithFile(cfg.BrowserIndexPath()).
			Wrap(err).
			WithSuggestion("Run kata-registry build first")
	}
	dist := category.NewDistribution()
	for _, e := range entries {
		dist.Add(e.Category)
	}
	return dist, nil
}

func largest(dist *category.Distribution) int {
	if sorted := dist.Sorted(); len(sorted) > 0 {
		return sorted[0].Count
	}
	return 0
}
