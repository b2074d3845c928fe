// Package gitinfo looks up last-modified dates from git history.
package gitinfo

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Dater returns the last commit date touching any of paths. An empty string
// means the date is unknown.
type Dater interface {
	LastModified(ctx context.Context, paths []string) string
}

// Git shells out to `git log`.
type Git struct {
	// Dir is the repository working directory.
	Dir string

	// Timeout bounds each lookup. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// Binary overrides the git executable.
	Binary string
}

// New creates a Git dater rooted at dir.
func New(dir string, timeout time.Duration) *Git {
	return &Git{Dir: dir, Timeout: timeout}
}

// LastModified returns the strict ISO-8601 committer date of the newest commit
// touching paths, or "" when git is unavailable, the paths are untracked or
// the lookup fails.
func (g *Git) LastModified(ctx context.Context, paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	args := append([]string{"log", "-1", "--format=%cI", "--"}, paths...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = g.Dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

// None never knows a date.
type None struct{}

// LastModified always returns "".
func (None) LastModified(context.Context, []string) string { return "" }

// Static returns fixed dates by first path, for tests and reproducible builds.
type Static map[string]string

// LastModified returns the date recorded for the first path with one.
func (s Static) LastModified(_ context.Context, paths []string) string {
	for _, p := range paths {
		if d, ok := s[p]; ok {
			return d
		}
	}
	return ""
}
