package category

import (
	"math"
	"sort"
	"strings"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// Count is the number of components in one category.
type Count struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Distribution tallies components per category.
type Distribution struct {
	total  int
	counts map[string]int
}

// NewDistribution returns an empty Distribution.
func NewDistribution() *Distribution {
	return &Distribution{counts: make(map[string]int)}
}

// Add records one component in category.
func (d *Distribution) Add(category string) {
	d.total++
	d.counts[category]++
}

// Total returns the number of components recorded.
func (d *Distribution) Total() int {
	return d.total
}

// Distinct returns the number of distinct categories.
func (d *Distribution) Distinct() int {
	return len(d.counts)
}

// Count returns the number of components in category.
func (d *Distribution) Count(category string) int {
	return d.counts[category]
}

// Sorted returns the counts ordered by size, largest first, then by name.
func (d *Distribution) Sorted() []Count {
	out := make([]Count, 0, len(d.counts))
	for name, n := range d.counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ShareLimit returns ceil(maxShare × total), the most components one
// category may hold.
func (d *Distribution) ShareLimit(maxShare float64) int {
	// 0.15 × 100 is 15.000000000000002 in float64.
	return int(math.Ceil(maxShare*float64(d.total) - 1e-9))
}

// OverShare returns every category holding more than ShareLimit components.
func (d *Distribution) OverShare(maxShare float64) []Count {
	limit := d.ShareLimit(maxShare)
	var out []Count
	for _, c := range d.Sorted() {
		if c.Count > limit {
			out = append(out, c)
		}
	}
	return out
}

// CheckShare returns an error naming every category above the share limit.
func (d *Distribution) CheckShare(maxShare float64) error {
	over := d.OverShare(maxShare)
	if len(over) == 0 {
		return nil
	}
	names := make([]string, len(over))
	for i, c := range over {
		names[i] = c.Name
	}
	return errors.New("KR141").
		WithDetailf("%s exceed %d of %d components (%.0f%%)",
			strings.Join(names, ", "), d.ShareLimit(maxShare), d.total, maxShare*100).
		WithSuggestion("Split the category in lib/category-collapse.json")
}

// CheckCardinality returns an error when the distinct category count is
// outside [min, max].
func (d *Distribution) CheckCardinality(min, max int) error {
	n := d.Distinct()
	if n >= min && n <= max {
		return nil
	}
	suggestion := "Merge segments into fewer categories in lib/category-collapse.json"
	if n < min {
		suggestion = "Map more segments to their own categories in lib/category-collapse.json"
	}
	return errors.New("KR140").
		WithDetailf("%d distinct categories, want between %d and %d", n, min, max).
		WithSuggestion(suggestion)
}
