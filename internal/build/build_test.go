package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kata-shadcn/kata-registry/internal/category"
	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/contenthash"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/gitinfo"
	"github.com/kata-shadcn/kata-registry/internal/index"
	"github.com/kata-shadcn/kata-registry/internal/metrics"
	"github.com/kata-shadcn/kata-registry/internal/registry"
)

type fixture struct {
	t    *testing.T
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, root: t.TempDir()}
	f.collapse(map[string]string{"hero": "Hero", "feature": "Features"})
	return f
}

func (f *fixture) write(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) collapse(m map[string]string) {
	f.t.Helper()
	data, err := json.Marshal(m)
	require.NoError(f.t, err)
	f.write("lib/category-collapse.json", string(data))
}

func (f *fixture) manifest(items ...registry.Item) {
	f.t.Helper()
	data, err := json.MarshalIndent(registry.Manifest{Name: "kata", Items: items}, "", "  ")
	require.NoError(f.t, err)
	f.write("registry.json", string(data))
}

// component adds a block with one source file and returns its manifest item.
func (f *fixture) component(name, description string) registry.Item {
	f.t.Helper()
	src := "registry/default/blocks/" + name + "/" + name + ".tsx"
	f.write(src, "export function "+strings.ReplaceAll(name, "-", "")+"() {\n  return null\n}\n")
	return registry.Item{
		Name:        name,
		Type:        "registry:block",
		Title:       name,
		Description: description,
		Files:       []registry.File{{Path: src, Type: "registry:block"}},
	}
}

func (f *fixture) config() *config.Config {
	cfg := config.New(f.root)
	cfg.Build.GitDates = false
	return cfg
}

func (f *fixture) build(opts Options) (*Result, error) {
	f.t.Helper()
	return New(f.config(), opts).Build(context.Background())
}

func (f *fixture) read(rel string) []byte {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(f.t, err)
	return data
}

func TestNew_DefaultDater(t *testing.T) {
	cfg := config.New(t.TempDir())

	cfg.Build.GitDates = true
	_, isGit := New(cfg, Options{}).dater.(*gitinfo.Git)
	assert.True(t, isGit)

	cfg.Build.GitDates = false
	assert.Equal(t, gitinfo.None{}, New(cfg, Options{}).dater)

	static := gitinfo.Static{}
	assert.Equal(t, static, New(cfg, Options{Dater: static}).dater)
}

func TestBuild_WritesArtifacts(t *testing.T) {
	f := newFixture(t)
	f.manifest(
		f.component("hero1", "A centered hero with a call to action"),
		f.component("feature-2", "Three column feature grid"),
		f.component("pricing", "Pricing table"),
		registry.Item{Name: "hello-world", Files: []registry.File{{Path: "registry/default/hello.tsx"}}},
	)

	var steps []string
	result, err := f.build(Options{OnProgress: func(s string) { steps = append(steps, s) }})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Built)
	assert.Equal(t, 1, result.Templates)
	assert.Empty(t, result.Skipped)
	assert.Zero(t, result.MissingFiles)
	assert.Len(t, result.BuildID, 36)
	assert.NotEmpty(t, steps)

	_, err = os.Stat(filepath.Join(f.root, "public/r/hello-world.json"))
	assert.True(t, os.IsNotExist(err), "templates are not built")

	var item registry.RegistryItem
	require.NoError(t, json.Unmarshal(f.read("public/r/hero1.json"), &item))
	assert.Equal(t, config.DefaultSchemaURL, item.Schema)
	assert.Equal(t, "registry:block", item.Type)
	require.Len(t, item.Files, 1)
	assert.Equal(t, "components/blocks/hero1/hero1.tsx", item.Files[0].Path)
	assert.Contains(t, item.Files[0].Content, "export function hero1()")

	entries, err := index.ReadEntries(filepath.Join(f.root, "lib/component-index.json"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"hero1", "feature-2", "pricing"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
	assert.Equal(t, "Hero", entries[0].Category)
	assert.Equal(t, "Features", entries[1].Category)
	assert.Equal(t, "Pricing", entries[2].Category)
	assert.Equal(t, []string{"hero", "centered", "call", "action"}, entries[0].Tags)
	assert.Equal(t, index.Complexity{Files: 1, Lines: 3}, entries[0].Complexity)
	assert.NotNil(t, entries[0].PeerComponents)
	assert.Empty(t, entries[0].LastModified)

	tagged := 0
	for _, e := range entries {
		if len(e.Tags) > 0 {
			tagged++
		}
	}
	assert.GreaterOrEqual(t, tagged*2, len(entries), "at least half the entries carry tags")

	agent, err := index.ReadAgentIndex(filepath.Join(f.root, "public/r/index.json"))
	require.NoError(t, err)
	assert.Equal(t, "kata", agent.Registry)
	assert.Equal(t, 3, agent.Total)
	assert.Equal(t, "/r/hero1.json", agent.Items[0].URL)
	assert.Equal(t, index.InstallCommand(config.DefaultNamespace, "hero1"), agent.Items[0].Install)
}

func TestBuild_IndexCountsAgree(t *testing.T) {
	f := newFixture(t)
	items := []registry.Item{
		f.component("hero1", "Hero"),
		f.component("hero2", "Hero"),
		f.component("feature1", "Feature"),
	}
	for _, name := range config.DefaultTemplates {
		items = append(items, registry.Item{Name: name, Files: []registry.File{{Path: "missing.tsx"}}})
	}
	f.manifest(items...)

	result, err := f.build(Options{})
	require.NoError(t, err)

	entries, err := index.ReadEntries(filepath.Join(f.root, "lib/component-index.json"))
	require.NoError(t, err)
	compact, err := index.ReadCompactIndex(filepath.Join(f.root, "public/r/index-compact.json"))
	require.NoError(t, err)

	assert.Equal(t, 3, len(entries))
	assert.Equal(t, len(entries), len(compact.Items))
	assert.Equal(t, len(entries), compact.Total)
	assert.Equal(t, len(config.DefaultTemplates), result.Templates)
}

func TestBuild_CompactIndexShape(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"), f.component("about", "About"))

	_, err := f.build(Options{})
	require.NoError(t, err)

	data := f.read("public/r/index-compact.json")
	assert.NotContains(t, string(data), "\n")

	var raw struct {
		Total int                          `json:"total"`
		Items []map[string]json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Items, 2)
	for _, item := range raw.Items {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		assert.Equal(t, []string{"category", "name", "url"}, keys)

		var name, url string
		require.NoError(t, json.Unmarshal(item["name"], &name))
		require.NoError(t, json.Unmarshal(item["url"], &url))
		assert.Equal(t, "/r/"+name+".json", url)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	f := newFixture(t)
	f.manifest(
		f.component("hero1", "A hero <b>with</b> markup & entities"),
		f.component("feature-1", "Feature grid"),
	)

	outputs := []string{
		"public/r/hero1.json",
		"public/r/feature-1.json",
		"public/r/index.json",
		"public/r/index-compact.json",
		"lib/component-index.json",
	}

	_, err := f.build(Options{})
	require.NoError(t, err)
	first := make(map[string][]byte)
	for _, p := range outputs {
		first[p] = f.read(p)
	}

	_, err = f.build(Options{})
	require.NoError(t, err)
	for _, p := range outputs {
		assert.Equal(t, string(first[p]), string(f.read(p)), p)
	}
	assert.Contains(t, string(first["public/r/hero1.json"]), "<b>with</b> markup & entities")
}

func TestBuild_ContentHashMatchesItemFile(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"))

	result, err := f.build(Options{})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	sum, err := contenthash.SumJSON(f.read("public/r/hero1.json"))
	require.NoError(t, err)
	assert.Equal(t, result.Entries[0].ContentHash, sum)
	assert.Len(t, sum, 64)
}

func TestBuild_CategoryPolicy(t *testing.T) {
	f := newFixture(t)

	collapse := make(map[string]string)
	var items []registry.Item
	for i := 0; i < 25; i++ {
		segment := fmt.Sprintf("kind%c", 'a'+i)
		collapse[segment] = fmt.Sprintf("Kind %c", 'A'+i)
		for n := 1; n <= 4; n++ {
			items = append(items, f.component(fmt.Sprintf("%s-%d", segment, n), "Generated"))
		}
	}
	f.collapse(collapse)
	f.manifest(items...)

	cfg := f.config()
	result, err := New(cfg, Options{}).Build(context.Background())
	require.NoError(t, err)

	dist := result.Distribution
	assert.Equal(t, 100, dist.Total())
	assert.Equal(t, 25, dist.Distinct())
	assert.NoError(t, dist.CheckCardinality(cfg.Categories.Min, cfg.Categories.Max))
	assert.NoError(t, dist.CheckShare(cfg.Categories.MaxShare))
	assert.Empty(t, result.Warnings)
}

func TestBuild_ShareIsWarning(t *testing.T) {
	f := newFixture(t)
	f.manifest(
		f.component("hero1", "Hero"),
		f.component("hero2", "Hero"),
		f.component("hero3", "Hero"),
		f.component("about", "About"),
	)

	var warned []Warning
	result, err := f.build(Options{OnWarning: func(w Warning) { warned = append(warned, w) }})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, result.Warnings, warned)
	assert.Contains(t, result.Warnings[0].String(), `category "Hero" holds 3 of 4`)
}

func TestBuild_CompactCapIsWarning(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"))

	cfg := f.config()
	cfg.Build.CompactMaxBytes = 10
	cfg.Categories.MaxShare = 1
	result, err := New(cfg, Options{}).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "index-compact.json")
	assert.Greater(t, result.CompactSize, 10)
}

func TestBuild_CollapseMapErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"invalid json", "{not json", "KR111"},
		{"array", `["hero"]`, "KR112"},
		{"non-string value", `{"hero": true}`, "KR113"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.manifest(f.component("hero1", "Hero"))
			f.write("lib/category-collapse.json", tt.content)

			_, err := f.build(Options{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		f.manifest(f.component("hero1", "Hero"))
		require.NoError(t, os.Remove(filepath.Join(f.root, "lib/category-collapse.json")))

		_, err := f.build(Options{})
		assert.True(t, errors.HasCode(err, "KR110"), "got %v", err)
	})
}

func TestBuild_ManifestErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.build(Options{})
	assert.True(t, errors.HasCode(err, "KR100"), "got %v", err)

	f.write("registry.json", `{"items": [`)
	_, err = f.build(Options{})
	assert.True(t, errors.HasCode(err, "KR101"), "got %v", err)

	for _, name := range []string{"index", "index-compact", "Index"} {
		t.Run("reserved "+name, func(t *testing.T) {
			f := newFixture(t)
			f.manifest(f.component(name, "Shadows an index"), f.component("hero1", "Hero"))

			_, err := f.build(Options{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, "KR102"), "got %v", err)
			assert.Contains(t, err.Error(), "collides")

			_, statErr := os.Stat(filepath.Join(f.root, "public/r/index.json"))
			assert.True(t, os.IsNotExist(statErr), "nothing is written")
		})
	}
}

func TestBuild_InvalidUTF8IsWarning(t *testing.T) {
	f := newFixture(t)
	hero := f.component("hero1", "Hero")
	f.write(hero.Files[0].Path, "export const x = \"\xff\"\n")
	f.manifest(hero)

	var warnings []Warning
	result, err := f.build(Options{OnWarning: func(w Warning) { warnings = append(warnings, w) }})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Built)

	require.Len(t, warnings, 1)
	assert.Equal(t, "hero1", warnings[0].Item)
	assert.Contains(t, warnings[0].Message, "not valid UTF-8")

	var item registry.RegistryItem
	require.NoError(t, json.Unmarshal(f.read("public/r/hero1.json"), &item))
	assert.Contains(t, item.Files[0].Content, "\uFFFD")

	hash, err := contenthash.SumJSON(f.read("public/r/hero1.json"))
	require.NoError(t, err)
	assert.Equal(t, result.Entries[0].ContentHash, hash)
}

func TestBuild_PartialMissingFiles(t *testing.T) {
	f := newFixture(t)
	hero := f.component("hero1", "Hero")
	hero.Files = append(hero.Files, registry.File{Path: "registry/default/blocks/hero1/gone.tsx"})
	ghost := registry.Item{
		Name:  "ghost",
		Files: []registry.File{{Path: "registry/default/blocks/ghost/ghost.tsx"}},
	}
	f.manifest(hero, ghost, f.component("about", "About"))

	result, err := f.build(Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR121"), "got %v", err)

	assert.Equal(t, 2, result.MissingFiles)
	assert.Equal(t, 2, result.Built)
	assert.Equal(t, []string{"ghost"}, result.Skipped)

	var item registry.RegistryItem
	require.NoError(t, json.Unmarshal(f.read("public/r/hero1.json"), &item))
	assert.Len(t, item.Files, 1)

	_, statErr := os.Stat(filepath.Join(f.root, "public/r/ghost.json"))
	assert.True(t, os.IsNotExist(statErr))

	compact, readErr := index.ReadCompactIndex(filepath.Join(f.root, "public/r/index-compact.json"))
	require.NoError(t, readErr)
	assert.Equal(t, 2, compact.Total)
}

func TestBuild_UnreadableSourceIsFatal(t *testing.T) {
	f := newFixture(t)
	broken := f.component("hero1", "Hero")
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "registry/default/blocks/dir.tsx"), 0755))
	broken.Files = append(broken.Files, registry.File{Path: "registry/default/blocks/dir.tsx"})
	f.manifest(broken, f.component("about", "About"))

	result, err := f.build(Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "KR120"), "got %v", err)
	assert.Zero(t, result.Built)

	_, statErr := os.Stat(filepath.Join(f.root, "public/r/index.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_PathOutsideRoot(t *testing.T) {
	f := newFixture(t)
	f.manifest(registry.Item{Name: "escape", Files: []registry.File{{Path: "../secret.tsx"}}})

	_, err := f.build(Options{})
	assert.True(t, errors.HasCode(err, "KR122"), "got %v", err)
}

func TestBuild_LastModified(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"), f.component("about", "About"))

	dater := gitinfo.Static{"registry/default/blocks/hero1/hero1.tsx": "2024-05-01T10:00:00+00:00"}
	result, err := f.build(Options{Dater: dater})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01T10:00:00+00:00", result.Entries[0].LastModified)
	assert.Empty(t, result.Entries[1].LastModified)
	assert.NotContains(t, string(f.read("lib/component-index.json")), `"lastModified": ""`)
}

func TestBuild_Canceled(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.config(), Options{}).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"), registry.Item{Name: "hello-world"})

	m := metrics.New()
	_, err := f.build(Options{Metrics: m})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "build.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "kata_registry_components_built_total 1")
	assert.Contains(t, text, `kata_registry_components_skipped_total{reason="template"} 1`)
	assert.Contains(t, text, `kata_registry_builds_total{status="success"} 1`)
	assert.Contains(t, text, `kata_registry_category_components{category="Hero"} 1`)
}

func TestDistributionMatchesEntries(t *testing.T) {
	f := newFixture(t)
	f.manifest(f.component("hero1", "Hero"), f.component("hero2", "Hero"), f.component("about", "About"))

	result, err := f.build(Options{})
	require.NoError(t, err)

	want := category.NewDistribution()
	for _, e := range result.Entries {
		want.Add(e.Category)
	}
	assert.Equal(t, want.Sorted(), result.Distribution.Sorted())
}
