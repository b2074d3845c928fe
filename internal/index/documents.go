package index

import (
	"github.com/kata-shadcn/kata-registry/internal/category"
)

// AgentItem is one component in the agent index.
type AgentItem struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	URL          string   `json:"url"`
	Install      string   `json:"install"`
	ContentHash  string   `json:"contentHash"`
	LastModified string   `json:"lastModified,omitempty"`
}

// AgentIndex is public/r/index.json.
type AgentIndex struct {
	Registry   string           `json:"registry"`
	Namespace  string           `json:"namespace"`
	Homepage   string           `json:"homepage,omitempty"`
	Total      int              `json:"total"`
	Categories []category.Count `json:"categories"`
	Items      []AgentItem      `json:"items"`
}

// AgentOptions describe the registry in the agent index.
type AgentOptions struct {
	Registry  string
	Namespace string
	Homepage  string
	// BaseURL prefixes item URLs; empty keeps them registry-relative.
	BaseURL string
}

// NewAgentIndex projects entries into the agent index.
func NewAgentIndex(entries []Entry, dist *category.Distribution, opts AgentOptions) *AgentIndex {
	idx := &AgentIndex{
		Registry:   opts.Registry,
		Namespace:  opts.Namespace,
		Homepage:   opts.Homepage,
		Total:      len(entries),
		Categories: dist.Sorted(),
		Items:      make([]AgentItem, 0, len(entries)),
	}
	for _, e := range entries {
		idx.Items = append(idx.Items, AgentItem{
			Name:         e.Name,
			Type:         e.Type,
			Title:        e.Title,
			Description:  e.Description,
			Category:     e.Category,
			Tags:         e.Tags,
			URL:          opts.BaseURL + ItemURL(e.Name),
			Install:      InstallCommand(opts.Namespace, e.Name),
			ContentHash:  e.ContentHash,
			LastModified: e.LastModified,
		})
	}
	return idx
}

// InstallCommand returns the shadcn CLI invocation for a component.
func InstallCommand(namespace, name string) string {
	if namespace == "" {
		return "npx shadcn add " + name
	}
	return "npx shadcn add " + namespace + "/" + name
}

// CompactItem is one component in the compact index.
type CompactItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// CompactIndex is public/r/index-compact.json.
type CompactIndex struct {
	Total int           `json:"total"`
	Items []CompactItem `json:"items"`
}

// NewCompactIndex projects entries into the compact index.
func NewCompactIndex(entries []Entry) *CompactIndex {
	idx := &CompactIndex{
		Total: len(entries),
		Items: make([]CompactItem, 0, len(entries)),
	}
	for _, e := range entries {
		idx.Items = append(idx.Items, CompactItem{
			Name:     e.Name,
			Category: e.Category,
			URL:      ItemURL(e.Name),
		})
	}
	return idx
}
