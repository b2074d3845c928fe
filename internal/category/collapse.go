package category

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// Fallback is the category used when nothing else can be derived.
const Fallback = "Other"

// CollapseMap maps name segments to category names.
type CollapseMap map[string]string

// LoadCollapseMap reads and strictly validates the collapse map at path.
// The file must exist, parse as JSON, be a JSON object and hold only string
// values.
func LoadCollapseMap(path string) (CollapseMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("KR110").
				WithFile(path).
				WithSuggestion("Create it with a JSON object such as {\"hero\": \"Hero\"}")
		}
		return nil, errors.New("KR114").WithFile(path).Wrap(err)
	}
	return ParseCollapseMap(path, data)
}

// ParseCollapseMap validates data as a collapse map. path is only used for
// error locations.
func ParseCollapseMap(path string, data []byte) (CollapseMap, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New("KR111").
			WithLocationFromJSON(path, data, err).
			Wrap(err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("KR112").
			WithFile(path).
			WithDetailf("expected a JSON object, got %s", jsonKind(raw))
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := make(CollapseMap, len(obj))
	for _, k := range keys {
		s, ok := obj[k].(string)
		if !ok {
			return nil, errors.New("KR113").
				WithFile(path).
				WithDetailf("value for %q must be a string, got %s", k, jsonKind(obj[k]))
		}
		m[k] = s
	}
	return m, nil
}

// Categories returns the distinct target categories, sorted.
func (m CollapseMap) Categories() []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, c := range m {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Resolver assigns categories to components.
type Resolver struct {
	collapse CollapseMap
}

// NewResolver creates a Resolver backed by m.
func NewResolver(m CollapseMap) *Resolver {
	return &Resolver{collapse: m}
}

// Resolve picks the category for a component. The collapse map entry for the
// name segment wins, then the manifest's explicit category, then the
// title-cased segment.
func (r *Resolver) Resolve(name, explicit string) string {
	segment := DeriveSegment(name)
	if c, ok := r.collapse[segment]; ok && c != "" {
		return c
	}
	if explicit != "" {
		return explicit
	}
	if segment != "" {
		return titleCase(segment)
	}
	return Fallback
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
