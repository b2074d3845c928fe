package registry

import (
	"encoding/json"
	"os"
)

// RegistryItem is the published /r/<name>.json document.
type RegistryItem struct {
	Schema               string     `json:"$schema"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Dependencies         []string   `json:"dependencies,omitempty"`
	DevDependencies      []string   `json:"devDependencies,omitempty"`
	RegistryDependencies []string   `json:"registryDependencies,omitempty"`
	Files                []ItemFile `json:"files"`
}

// ItemFile is one inlined source file.
type ItemFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Target  string `json:"target,omitempty"`
}

// ReadItem decodes a registry item file.
func ReadItem(path string) (*RegistryItem, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var it RegistryItem
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, data, err
	}
	return &it, data, nil
}
