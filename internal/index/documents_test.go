package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kata-shadcn/kata-registry/internal/category"
)

func sampleEntries() []Entry {
	return []Entry{
		{Name: "hero1", Type: "registry:block", Title: "Hero 1", Category: "Hero", Tags: []string{"hero"}, ContentHash: "aa", PeerComponents: []string{}},
		{Name: "feature-1", Type: "registry:block", Title: "Feature 1", Category: "Features", Tags: []string{"feature"}, ContentHash: "bb", LastModified: "2026-01-02T03:04:05Z", PeerComponents: []string{}},
	}
}

func TestNewCompactIndex(t *testing.T) {
	idx := NewCompactIndex(sampleEntries())
	require.Equal(t, 2, idx.Total)
	require.Len(t, idx.Items, 2)

	data, err := Encode(idx, false)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")
	assert.NotContains(t, string(data), " ")

	var decoded struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, item := range decoded.Items {
		assert.Len(t, item, 3)
		assert.Contains(t, item, "name")
		assert.Contains(t, item, "category")
		assert.Equal(t, "/r/"+item["name"].(string)+".json", item["url"])
	}
}

func TestNewAgentIndex(t *testing.T) {
	dist := category.NewDistribution()
	dist.Add("Hero")
	dist.Add("Features")

	idx := NewAgentIndex(sampleEntries(), dist, AgentOptions{
		Registry:  "kata-shadcn",
		Namespace: "@kata-shadcn",
		BaseURL:   "https://kata-shadcn.dev",
	})

	assert.Equal(t, 2, idx.Total)
	assert.Len(t, idx.Categories, 2)
	assert.Equal(t, "https://kata-shadcn.dev/r/hero1.json", idx.Items[0].URL)
	assert.Equal(t, "npx shadcn add @kata-shadcn/hero1", idx.Items[0].Install)
	assert.Equal(t, "2026-01-02T03:04:05Z", idx.Items[1].LastModified)
}

func TestInstallCommand(t *testing.T) {
	assert.Equal(t, "npx shadcn add hero1", InstallCommand("", "hero1"))
	assert.Equal(t, "npx shadcn add @acme/hero1", InstallCommand("@acme", "hero1"))
}

func TestEntry_JSONShape(t *testing.T) {
	data, err := Encode(sampleEntries()[0], false)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "lastModified")
	assert.Equal(t, []any{}, decoded["peerComponents"])
	assert.Contains(t, decoded, "complexity")
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("one"))
	assert.Equal(t, 1, CountLines("one\n"))
	assert.Equal(t, 3, CountLines("one\ntwo\nthree"))
}

func TestWriteFileAndRead(t *testing.T) {
	dir := t.TempDir()
	entries := sampleEntries()

	browser := filepath.Join(dir, "lib", "component-index.json")
	n, err := WriteFile(browser, entries, true)
	require.NoError(t, err)

	info, err := os.Stat(browser)
	require.NoError(t, err)
	assert.Equal(t, int64(n), info.Size())

	got, err := ReadEntries(browser)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	compact := filepath.Join(dir, "public", "r", "index-compact.json")
	_, err = WriteFile(compact, NewCompactIndex(entries), false)
	require.NoError(t, err)

	ci, err := ReadCompactIndex(compact)
	require.NoError(t, err)
	assert.Equal(t, 2, ci.Total)
}

func TestEncode_NoHTMLEscape(t *testing.T) {
	data, err := Encode(map[string]string{"content": "<Button />"}, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Button />")
}
