package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// RegistryName is the manifest name.
	RegistryName string

	// Namespace is the shadcn install namespace. Defaults to "@" + RegistryName.
	Namespace string

	// Homepage is the registry homepage.
	Homepage string

	// Force overwrites an existing manifest.
	Force bool
}

func (c Config) withDefaults() Config {
	if c.RegistryName == "" {
		c.RegistryName = config.DefaultRegistryName
	}
	if c.Namespace == "" {
		c.Namespace = "@" + c.RegistryName
	}
	return c
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of slash-separated relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"blocks":  blocksTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("KR162").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the template's file paths, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	cfg = cfg.withDefaults()

	manifest := filepath.Join(dir, config.DefaultManifest)
	if _, err := os.Stat(manifest); err == nil && !cfg.Force {
		return errors.New("KR132").
			WithFile(manifest).
			WithSuggestion("Pass --force to overwrite it")
	}

	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryOutput, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryOutput, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return errors.New("KR130").WithFile(fullPath).Wrap(err)
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return errors.New("KR130").WithFile(fullPath).Wrap(err)
		}
	}

	return nil
}

// block returns the source of a trivial React block.
func block(fn, heading string) string {
	return `export default function ` + fn + `() {
  return (
    <section className="container py-16">
      <h2 className="text-3xl font-bold">` + heading + `</h2>
    </section>
  )
}
`
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single hero block",
		Files: map[string]string{
			"registry.json": `{
  "$schema": "https://ui.shadcn.com/schema/registry.json",
  "name": "{{.RegistryName}}",
  "homepage": "{{.Homepage}}",
  "items": [
    {
      "name": "hero1",
      "type": "registry:block",
      "title": "Hero 1",
      "description": "Centered hero section with a headline",
      "files": [
        {
          "path": "registry/default/blocks/hero1/hero1.tsx",
          "type": "registry:block"
        }
      ]
    }
  ]
}
`,
			"lib/category-collapse.json": `{
  "hero": "Hero"
}
`,
			"registry/default/blocks/hero1/hero1.tsx": block("Hero1", "Build faster"),
		},
	}
}

func blocksTemplate() *Template {
	return &Template{
		Name:        "blocks",
		Description: "Blocks across several categories with a config file",
		Files: map[string]string{
			"kata-registry.yaml": `namespace: "{{.Namespace}}"
registry_name: "{{.RegistryName}}"
homepage: "{{.Homepage}}"

build:
  git_dates: true

serve:
  addr: ":8080"
  watch_paths:
    - registry

publish:
  prefix: r/
`,
			"registry.json": `{
  "$schema": "https://ui.shadcn.com/schema/registry.json",
  "name": "{{.RegistryName}}",
  "homepage": "{{.Homepage}}",
  "items": [
    {
      "name": "hero1",
      "type": "registry:block",
      "title": "Hero 1",
      "description": "Centered hero section with a headline and call to action",
      "files": ["registry/default/blocks/hero1/hero1.tsx"]
    },
    {
      "name": "feature1",
      "type": "registry:block",
      "title": "Feature 1",
      "description": "Three column feature grid with icons",
      "files": ["registry/default/blocks/feature1/feature1.tsx"]
    },
    {
      "name": "pricing1",
      "type": "registry:block",
      "title": "Pricing 1",
      "description": "Pricing table with monthly and yearly plans",
      "dependencies": ["lucide-react"],
      "registryDependencies": ["button", "card"],
      "files": ["registry/default/blocks/pricing1/pricing1.tsx"]
    },
    {
      "name": "cta-1",
      "type": "registry:block",
      "title": "CTA 1",
      "description": "Call to action banner",
      "files": ["registry/default/blocks/cta-1/cta-1.tsx"]
    },
    {
      "name": "hello-world",
      "type": "registry:block",
      "title": "Hello World",
      "description": "Template placeholder that is never built",
      "files": ["registry/default/hello-world/hello-world.tsx"]
    }
  ]
}
`,
			"lib/category-collapse.json": `{
  "hero": "Hero",
  "feature": "Features",
  "pricing": "Pricing",
  "cta": "Call to Action"
}
`,
			"registry/default/blocks/hero1/hero1.tsx":       block("Hero1", "Build faster"),
			"registry/default/blocks/feature1/feature1.tsx": block("Feature1", "Features"),
			"registry/default/blocks/pricing1/pricing1.tsx": block("Pricing1", "Pricing"),
			"registry/default/blocks/cta-1/cta-1.tsx":       block("Cta1", "Get started"),
		},
	}
}
