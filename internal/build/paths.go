package build

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// RewritePath maps a manifest source path to the path consumers install it
// at. The longest matching prefix in rewrites wins; unmatched paths go to
// fallback joined with the file's base name. Prefixes match
// case-insensitively since config keys are lowercased on load.
func RewritePath(src string, rewrites map[string]string, fallback string) string {
	src = path.Clean(filepath.ToSlash(src))

	best := ""
	for prefix := range rewrites {
		if hasPrefixFold(src, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return rewrites[best] + src[len(best):]
	}
	return path.Join(fallback, path.Base(src))
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// sourcePath resolves a manifest path against root and rejects paths that
// leave it.
func sourcePath(root, item, src string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(src))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("KR122").
			WithDetailf("%s: %q is outside the project root", item, src)
	}
	return filepath.Join(root, clean), nil
}
