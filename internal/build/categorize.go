package build

import (
	"github.com/kata-shadcn/kata-registry/internal/category"
	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/registry"
)

// Categorize resolves the category of every non-template manifest item
// without reading sources or writing output.
func Categorize(cfg *config.Config) (*category.Distribution, error) {
	manifest, err := registry.LoadManifest(cfg.ManifestPath())
	if err != nil {
		return nil, err
	}
	collapse, err := category.LoadCollapseMap(cfg.CollapseMapPath())
	if err != nil {
		return nil, err
	}

	resolver := category.NewResolver(collapse)
	dist := category.NewDistribution()
	for _, it := range manifest.Items {
		if cfg.IsTemplate(it.Name) {
			continue
		}
		dist.Add(resolver.Resolve(it.Name, it.Category))
	}
	return dist, nil
}
