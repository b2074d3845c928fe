package gitinfo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGit_NoRepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero1.tsx"), []byte("x"), 0644))

	g := New(dir, time.Second)
	assert.Empty(t, g.LastModified(context.Background(), []string{"hero1.tsx"}))
}

func TestGit_MissingBinary(t *testing.T) {
	g := &Git{Dir: t.TempDir(), Binary: "git-does-not-exist"}
	assert.Empty(t, g.LastModified(context.Background(), []string{"a"}))
}

func TestGit_NoPaths(t *testing.T) {
	assert.Empty(t, New(t.TempDir(), 0).LastModified(context.Background(), nil))
}

func TestGit_Committed(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=kata", "GIT_AUTHOR_EMAIL=kata@example.com",
			"GIT_COMMITTER_NAME=kata", "GIT_COMMITTER_EMAIL=kata@example.com",
			"GIT_COMMITTER_DATE=2026-03-04T05:06:07Z", "GIT_AUTHOR_DATE=2026-03-04T05:06:07Z",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero1.tsx"), []byte("x"), 0644))
	run("add", "hero1.tsx")
	run("-c", "commit.gpgsign=false", "commit", "-q", "-m", "add hero1")

	got := New(dir, 5*time.Second).LastModified(context.Background(), []string{"hero1.tsx"})
	parsed, err := time.Parse(time.RFC3339, got)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)))
}

func TestStatic(t *testing.T) {
	s := Static{"b.tsx": "2026-01-01T00:00:00Z"}
	assert.Equal(t, "2026-01-01T00:00:00Z", s.LastModified(context.Background(), []string{"a.tsx", "b.tsx"}))
	assert.Empty(t, None{}.LastModified(context.Background(), []string{"a.tsx"}))
}
