package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kata-shadcn/kata-registry/internal/category"
	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// categoryReport is the machine-readable category distribution.
type categoryReport struct {
	Total      int              `json:"total" yaml:"total"`
	Distinct   int              `json:"distinct" yaml:"distinct"`
	ShareLimit int              `json:"shareLimit" yaml:"share_limit"`
	Categories []category.Count `json:"categories" yaml:"categories"`
}

func categoriesCmd(a *app) *cobra.Command {
	var (
		output    string
		fromIndex bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the category distribution",
		Long: `Print every category with its component count, largest first.

Categories above the share limit are highlighted in the text output.

Examples:
  kata-registry categories
  kata-registry categories --output=json
  kata-registry categories --output=yaml --from-index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCategories(output, fromIndex)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&fromIndex, "from-index", false, "Read the built browser index instead of the manifest")

	return cmd
}

func (a *app) runCategories(output string, fromIndex bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	dist, err := loadDistribution(cfg, fromIndex)
	if err != nil {
		return err
	}

	report := categoryReport{
		Total:      dist.Total(),
		Distinct:   dist.Distinct(),
		ShareLimit: dist.ShareLimit(cfg.Categories.MaxShare),
		Categories: dist.Sorted(),
	}

	switch output {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	case "text", "":
		a.printCategoryTable(report)
		return nil
	default:
		return errors.New("KR161").
			WithDetailf("unknown output format %q", output).
			WithSuggestion("Use --output=text, json or yaml")
	}
}

func (a *app) printCategoryTable(r categoryReport) {
	width := len("Category")
	for _, c := range r.Categories {
		width = max(width, len(c.Name))
	}

	fmt.Fprintf(a.out, "  %-*s  %5s  %6s\n", width, "Category", "Count", "Share")
	fmt.Fprintf(a.out, "  %s\n", faint(strings.Repeat("─", width+15)))
	for _, c := range r.Categories {
		share := 0.0
		if r.Total > 0 {
			share = float64(c.Count) * 100 / float64(r.Total)
		}
		line := fmt.Sprintf("%-*s  %5d  %5.1f%%", width, c.Name, c.Count, share)
		if c.Count > r.ShareLimit {
			line = red(line)
		}
		fmt.Fprintf(a.out, "  %s\n", line)
	}
	fmt.Fprintln(a.out)
	a.info("%d components in %d categories (share limit %d)", r.Total, r.Distinct, r.ShareLimit)
}
