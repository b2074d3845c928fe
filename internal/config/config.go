package config

import (
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

const (
	// ConfigName is the base name of the optional configuration file.
	ConfigName = "kata-registry"

	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "KATA_REGISTRY"

	// DefaultNamespace is the shadcn registry namespace consumers install from.
	DefaultNamespace = "@kata-shadcn"

	// DefaultRegistryName is the registry name written to the agent index.
	DefaultRegistryName = "kata-shadcn"

	// DefaultSchemaURL is the registry-item schema every item declares.
	DefaultSchemaURL = "https://ui.shadcn.com/schema/registry-item.json"

	// DefaultManifest is the manifest path relative to the project root.
	DefaultManifest = "registry.json"

	// DefaultCollapseMap is the collapse map path relative to the project root.
	DefaultCollapseMap = "lib/category-collapse.json"

	// DefaultOutput is the per-component output directory.
	DefaultOutput = "public/r"

	// DefaultBrowserIndex is the browser-facing index path.
	DefaultBrowserIndex = "lib/component-index.json"

	// DefaultServeAddr is the default listen address for serve.
	DefaultServeAddr = ":8080"
)

// DefaultTemplates are placeholder items the shadcn registry template ships
// with. They are never built.
var DefaultTemplates = []string{
	"hello-world",
	"example-form",
	"complex-component",
	"example-with-css",
}

// DefaultPathRewrites maps source path prefixes to consumer-facing prefixes.
var DefaultPathRewrites = map[string]string{
	"registry/default/blocks/":     "components/blocks/",
	"registry/default/components/": "components/",
	"registry/default/ui/":         "components/ui/",
	"registry/default/hooks/":      "hooks/",
	"registry/default/lib/":        "lib/",
}

// Config represents the complete kata-registry configuration.
type Config struct {
	// Namespace is the shadcn namespace used in install commands.
	Namespace string `mapstructure:"namespace"`

	// RegistryName is the registry name recorded in the agent index.
	RegistryName string `mapstructure:"registry_name"`

	// Homepage is the public registry homepage.
	Homepage string `mapstructure:"homepage"`

	// BaseURL prefixes item URLs in the agent index. Empty keeps them relative.
	BaseURL string `mapstructure:"base_url"`

	// SchemaURL is written as $schema in every registry item.
	SchemaURL string `mapstructure:"schema_url"`

	// Paths contains input and output locations.
	Paths PathsConfig `mapstructure:"paths"`

	// Build contains build pipeline settings.
	Build BuildConfig `mapstructure:"build"`

	// Categories contains the category taxonomy policy.
	Categories CategoriesConfig `mapstructure:"categories"`

	// Serve contains registry server settings.
	Serve ServeConfig `mapstructure:"serve"`

	// Publish contains object storage settings.
	Publish PublishConfig `mapstructure:"publish"`

	// root is the absolute project root.
	root string

	// configFile is the file the config was loaded from, if any.
	configFile string
}

// PathsConfig contains input and output locations relative to the project root.
type PathsConfig struct {
	Manifest     string `mapstructure:"manifest"`
	CollapseMap  string `mapstructure:"collapse_map"`
	Output       string `mapstructure:"output"`
	BrowserIndex string `mapstructure:"browser_index"`
}

// BuildConfig contains build pipeline settings.
type BuildConfig struct {
	// Templates are item names that are never built.
	Templates []string `mapstructure:"templates"`

	// PathRewrites maps source path prefixes to consumer-facing prefixes.
	// Keys are lowercased when read from a config file; prefixes match
	// source paths case-insensitively.
	PathRewrites map[string]string `mapstructure:"path_rewrites"`

	// FallbackDir receives files that match no rewrite.
	FallbackDir string `mapstructure:"fallback_dir"`

	// MaxDescriptionTags caps tags taken from descriptions.
	MaxDescriptionTags int `mapstructure:"max_description_tags"`

	// CompactMaxBytes is the soft size cap for index-compact.json.
	CompactMaxBytes int `mapstructure:"compact_max_bytes"`

	// GitTimeout bounds the git log lookup per component.
	GitTimeout time.Duration `mapstructure:"git_timeout"`

	// GitDates enables lastModified lookups.
	GitDates bool `mapstructure:"git_dates"`
}

// CategoriesConfig contains the category taxonomy policy.
type CategoriesConfig struct {
	// MaxShare is the largest fraction of all components one category may hold.
	MaxShare float64 `mapstructure:"max_share"`

	// Min is the smallest allowed number of distinct categories.
	Min int `mapstructure:"min"`

	// Max is the largest allowed number of distinct categories.
	Max int `mapstructure:"max"`
}

// ServeConfig contains registry server settings.
type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	Watch        bool          `mapstructure:"watch"`
	WatchPaths   []string      `mapstructure:"watch_paths"`
	WatchIgnore  []string      `mapstructure:"watch_ignore"`
	Debounce     time.Duration `mapstructure:"debounce"`
	CacheMaxAge  int           `mapstructure:"cache_max_age"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PublishConfig contains S3-compatible object storage settings.
type PublishConfig struct {
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Region      string `mapstructure:"region"`
	Endpoint    string `mapstructure:"endpoint"`
	PathStyle   bool   `mapstructure:"path_style"`
	Concurrency int    `mapstructure:"concurrency"`
}

// setDefaults registers every default on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("registry_name", DefaultRegistryName)
	v.SetDefault("homepage", "")
	v.SetDefault("base_url", "")
	v.SetDefault("schema_url", DefaultSchemaURL)

	v.SetDefault("paths.manifest", DefaultManifest)
	v.SetDefault("paths.collapse_map", DefaultCollapseMap)
	v.SetDefault("paths.output", DefaultOutput)
	v.SetDefault("paths.browser_index", DefaultBrowserIndex)

	v.SetDefault("build.templates", DefaultTemplates)
	v.SetDefault("build.path_rewrites", DefaultPathRewrites)
	v.SetDefault("build.fallback_dir", "components/")
	v.SetDefault("build.max_description_tags", 8)
	v.SetDefault("build.compact_max_bytes", 300*1024)
	v.SetDefault("build.git_timeout", 5*time.Second)
	v.SetDefault("build.git_dates", true)

	v.SetDefault("categories.max_share", 0.15)
	v.SetDefault("categories.min", 20)
	v.SetDefault("categories.max", 35)

	v.SetDefault("serve.addr", DefaultServeAddr)
	v.SetDefault("serve.watch", false)
	v.SetDefault("serve.watch_paths", []string{"registry"})
	v.SetDefault("serve.watch_ignore", []string{})
	v.SetDefault("serve.debounce", 500*time.Millisecond)
	v.SetDefault("serve.cache_max_age", 300)
	v.SetDefault("serve.read_timeout", 10*time.Second)
	v.SetDefault("serve.write_timeout", 30*time.Second)

	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "r/")
	v.SetDefault("publish.region", "us-east-1")
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.path_style", false)
	v.SetDefault("publish.concurrency", 8)
}

// New creates a Config with default values rooted at root.
func New(root string) *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	cfg.root = absRoot(root)
	return cfg
}

// Load reads configuration for the project rooted at root.
// A missing config file is not an error; defaults and environment apply.
func Load(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(ConfigName)
	v.AddConfigPath(root)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New("KR160").
				WithFile(v.ConfigFileUsed()).
				Wrap(err).
				WithSuggestion("Check that " + ConfigName + ".json is valid")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("KR160").Wrap(err)
	}

	cfg.root = absRoot(root)
	cfg.configFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Categories.MaxShare <= 0 || c.Categories.MaxShare > 1 {
		return errors.New("KR161").
			WithDetailf("categories.max_share must be in (0, 1], got %g", c.Categories.MaxShare)
	}
	if c.Categories.Min < 1 || c.Categories.Max < c.Categories.Min {
		return errors.New("KR161").
			WithDetailf("categories range [%d, %d] is invalid", c.Categories.Min, c.Categories.Max)
	}
	if c.Build.MaxDescriptionTags < 0 {
		return errors.New("KR161").
			WithDetail("build.max_description_tags must not be negative")
	}
	if c.Paths.Manifest == "" || c.Paths.CollapseMap == "" || c.Paths.Output == "" || c.Paths.BrowserIndex == "" {
		return errors.New("KR161").
			WithDetail("paths.manifest, paths.collapse_map, paths.output and paths.browser_index must be set")
	}
	if c.Publish.Concurrency < 1 {
		return errors.New("KR161").
			WithDetail("publish.concurrency must be at least 1")
	}
	return nil
}

// Root returns the absolute project root.
func (c *Config) Root() string {
	return c.root
}

// ConfigFile returns the config file that was loaded, or "" when defaults were used.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// ManifestPath returns the absolute path to registry.json.
func (c *Config) ManifestPath() string {
	return c.resolve(c.Paths.Manifest)
}

// CollapseMapPath returns the absolute path to the category collapse map.
func (c *Config) CollapseMapPath() string {
	return c.resolve(c.Paths.CollapseMap)
}

// OutputPath returns the absolute path to the per-component output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Paths.Output)
}

// BrowserIndexPath returns the absolute path to the browser-facing index.
func (c *Config) BrowserIndexPath() string {
	return c.resolve(c.Paths.BrowserIndex)
}

// AgentIndexPath returns the absolute path to the agent-facing index.
func (c *Config) AgentIndexPath() string {
	return filepath.Join(c.OutputPath(), "index.json")
}

// CompactIndexPath returns the absolute path to the compact index.
func (c *Config) CompactIndexPath() string {
	return filepath.Join(c.OutputPath(), "index-compact.json")
}

// WatchPaths returns the absolute paths serve --watch polls: the manifest,
// the collapse map and every configured source root.
func (c *Config) WatchPaths() []string {
	paths := []string{c.ManifestPath(), c.CollapseMapPath()}
	for _, p := range c.Serve.WatchPaths {
		if p != "" {
			paths = append(paths, c.resolve(p))
		}
	}
	return paths
}

// IsTemplate reports whether name is a template placeholder.
func (c *Config) IsTemplate(name string) bool {
	for _, t := range c.Build.Templates {
		if t == name {
			return true
		}
	}
	return false
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.root, path)
}

func absRoot(root string) string {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}
