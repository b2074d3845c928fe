package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"regexp"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// DefaultItemType is assumed for items that declare no type.
const DefaultItemType = "registry:component"

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Manifest is the parsed registry.json.
type Manifest struct {
	Schema   string `json:"$schema,omitempty"`
	Name     string `json:"name,omitempty"`
	Homepage string `json:"homepage,omitempty"`
	Items    []Item `json:"items"`
}

// UnmarshalJSON accepts either the registry object or a bare item array.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &m.Items)
	}
	type plain Manifest
	return json.Unmarshal(data, (*plain)(m))
}

// Item is one component definition in the manifest.
type Item struct {
	Name                 string   `json:"name"`
	Type                 string   `json:"type,omitempty"`
	Title                string   `json:"title,omitempty"`
	Description          string   `json:"description,omitempty"`
	Category             string   `json:"category,omitempty"`
	Files                []File   `json:"files"`
	Dependencies         []string `json:"dependencies,omitempty"`
	DevDependencies      []string `json:"devDependencies,omitempty"`
	RegistryDependencies []string `json:"registryDependencies,omitempty"`
}

// ItemType returns the declared type or DefaultItemType.
func (it Item) ItemType() string {
	if it.Type == "" {
		return DefaultItemType
	}
	return it.Type
}

// File is a source file reference. In JSON it is either a path string or an
// object with path, type and target.
type File struct {
	Path   string `json:"path"`
	Type   string `json:"type,omitempty"`
	Target string `json:"target,omitempty"`
}

// UnmarshalJSON accepts a plain path string or a file object.
func (f *File) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &f.Path)
	}
	type plain File
	return json.Unmarshal(data, (*plain)(f))
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("KR100").
				WithFile(path).
				WithSuggestion("Run kata-registry from the project root or set paths.manifest")
		}
		return nil, errors.New("KR104").WithFile(path).Wrap(err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes and validates manifest data. path is only used for
// error locations.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New("KR101").
			WithLocationFromJSON(path, data, err).
			Wrap(err).
			WithSuggestion("Check that registry.json is valid JSON")
	}
	if err := m.Validate(); err != nil {
		if ke := errors.FromError(err, "KR102"); ke.Location == nil {
			ke.WithFile(path)
		}
		return nil, err
	}
	return &m, nil
}

// Validate checks item names and file lists.
func (m *Manifest) Validate() error {
	seen := make(map[string]int, len(m.Items))
	for i, it := range m.Items {
		if it.Name == "" {
			return errors.New("KR102").WithDetailf("item %d has no name", i)
		}
		if !validName.MatchString(it.Name) {
			return errors.New("KR102").
				WithDetailf("item %d name %q must match %s", i, it.Name, validName.String())
		}
		if prev, dup := seen[it.Name]; dup {
			return errors.New("KR103").
				WithDetailf("%q appears at items %d and %d", it.Name, prev, i)
		}
		seen[it.Name] = i

		for j, f := range it.Files {
			if f.Path == "" {
				return errors.New("KR102").
					WithDetailf("item %q file %d has no path", it.Name, j)
			}
		}
	}
	return nil
}

// Lookup returns the item with name.
func (m *Manifest) Lookup(name string) (Item, bool) {
	for _, it := range m.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}
