package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/category"
	"github.com/kata-shadcn/kata-registry/internal/config"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/gitinfo"
	"github.com/kata-shadcn/kata-registry/internal/index"
	"github.com/kata-shadcn/kata-registry/internal/metrics"
	"github.com/kata-shadcn/kata-registry/internal/registry"
)

const tracerName = "github.com/kata-shadcn/kata-registry/internal/build"

// Warning is a non-fatal build diagnostic.
type Warning struct {
	// Item is the component the warning is about, or "" for build-wide warnings.
	Item string

	// Message describes the problem.
	Message string
}

func (w Warning) String() string {
	if w.Item == "" {
		return w.Message
	}
	return w.Item + ": " + w.Message
}

// Result contains the build output.
type Result struct {
	// BuildID identifies this build in logs and traces.
	BuildID string

	// Duration is how long the build took.
	Duration time.Duration

	// Built is the number of registry items written.
	Built int

	// Templates is the number of template placeholders skipped.
	Templates int

	// Skipped lists items skipped because none of their files exist.
	Skipped []string

	// MissingFiles is the number of listed source files that did not exist.
	MissingFiles int

	// Entries are the index entries in manifest order.
	Entries []index.Entry

	// Distribution is the category distribution of Entries.
	Distribution *category.Distribution

	// CompactSize is the size of index-compact.json in bytes.
	CompactSize int

	// Warnings collects every warning raised during the build.
	Warnings []Warning
}

// Options configures the builder.
type Options struct {
	// Logger receives debug and warning output. Defaults to a no-op logger.
	Logger *zap.Logger

	// Dater looks up lastModified dates. Defaults to git when
	// build.git_dates is enabled.
	Dater gitinfo.Dater

	// Metrics records build metrics when set.
	Metrics *metrics.Metrics

	// OnProgress is called with progress updates.
	OnProgress func(step string)

	// OnWarning is called for every warning as it happens.
	OnWarning func(w Warning)
}

// Builder runs registry builds.
type Builder struct {
	config  *config.Config
	options Options
	logger  *zap.Logger
	dater   gitinfo.Dater
	tracer  trace.Tracer

	// warnings of the build in progress
	warnings []Warning
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dater := options.Dater
	if dater == nil {
		if cfg.Build.GitDates {
			dater = gitinfo.New(cfg.Root(), cfg.Build.GitTimeout)
		} else {
			dater = gitinfo.None{}
		}
	}

	return &Builder{
		config:  cfg,
		options: options,
		logger:  logger,
		dater:   dater,
		tracer:  otel.Tracer(tracerName),
	}
}

// Build performs a registry build. When source files are missing the
// artifacts are still written and the result is returned alongside a KR121
// error.
func (b *Builder) Build(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	b.warnings = nil
	result = &Result{
		BuildID:      uuid.NewString(),
		Distribution: category.NewDistribution(),
	}

	ctx, span := b.tracer.Start(ctx, "registry.build",
		trace.WithAttributes(attribute.String("build.id", result.BuildID)))
	defer func() {
		result.Duration = time.Since(start)
		result.Warnings = b.warnings
		b.options.Metrics.BuildFinished(result.Duration, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := b.logger.With(zap.String("build_id", result.BuildID))

	b.progress("Loading manifest...")
	manifest, err := registry.LoadManifest(b.config.ManifestPath())
	if err != nil {
		return result, err
	}
	if err := b.checkReservedNames(manifest); err != nil {
		return result, err
	}

	b.progress("Loading category collapse map...")
	collapse, err := category.LoadCollapseMap(b.config.CollapseMapPath())
	if err != nil {
		return result, err
	}
	resolver := category.NewResolver(collapse)

	if err := os.MkdirAll(b.config.OutputPath(), 0755); err != nil {
		return result, errors.New("KR130").WithFile(b.config.OutputPath()).Wrap(err)
	}

	b.progress(fmt.Sprintf("Building %d components...", len(manifest.Items)))
	if err := b.buildItems(ctx, manifest, resolver, result); err != nil {
		return result, err
	}

	b.progress("Writing indexes...")
	if err := b.writeIndexes(ctx, manifest, result); err != nil {
		return result, err
	}

	for _, c := range result.Distribution.OverShare(b.config.Categories.MaxShare) {
		b.warn("", fmt.Sprintf("category %q holds %d of %d components (limit %d)",
			c.Name, c.Count, result.Distribution.Total(),
			result.Distribution.ShareLimit(b.config.Categories.MaxShare)))
	}

	counts := make(map[string]int, result.Distribution.Distinct())
	for _, c := range result.Distribution.Sorted() {
		counts[c.Name] = c.Count
	}
	b.options.Metrics.SetCategories(counts)
	b.options.Metrics.FilesMissing(result.MissingFiles)

	span.SetAttributes(
		attribute.Int("build.built", result.Built),
		attribute.Int("build.missing_files", result.MissingFiles),
	)
	logger.Debug("build finished",
		zap.Int("built", result.Built),
		zap.Int("templates", result.Templates),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("missing_files", result.MissingFiles),
	)

	if result.MissingFiles > 0 {
		return result, errors.New("KR121").
			WithDetailf("%d source file(s) listed in %s do not exist", result.MissingFiles, b.config.Paths.Manifest)
	}
	return result, nil
}

func (b *Builder) buildItems(ctx context.Context, manifest *registry.Manifest, resolver *category.Resolver, result *Result) error {
	ctx, span := b.tracer.Start(ctx, "registry.build.items")
	defer span.End()

	for _, it := range manifest.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		if b.config.IsTemplate(it.Name) {
			result.Templates++
			b.options.Metrics.ComponentSkipped("template")
			b.logger.Debug("skipping template", zap.String("name", it.Name))
			continue
		}

		categoryName := resolver.Resolve(it.Name, it.Category)
		res, err := b.buildItem(ctx, it, categoryName)
		result.MissingFiles += res.missing
		if err != nil {
			return err
		}
		if res.skipped {
			result.Skipped = append(result.Skipped, it.Name)
			b.options.Metrics.ComponentSkipped("missing")
			continue
		}

		result.Entries = append(result.Entries, res.entry)
		result.Distribution.Add(categoryName)
		result.Built++
		b.options.Metrics.ComponentBuilt()
	}

	span.SetAttributes(attribute.Int("items", len(manifest.Items)))
	return nil
}

func (b *Builder) writeIndexes(ctx context.Context, manifest *registry.Manifest, result *Result) error {
	_, span := b.tracer.Start(ctx, "registry.build.indexes")
	defer span.End()

	entries := result.Entries
	if entries == nil {
		entries = []index.Entry{}
	}

	if _, err := index.WriteFile(b.config.BrowserIndexPath(), entries, true); err != nil {
		return errors.New("KR130").WithFile(b.config.BrowserIndexPath()).Wrap(err)
	}

	registryName := b.config.RegistryName
	if manifest.Name != "" {
		registryName = manifest.Name
	}
	homepage := b.config.Homepage
	if homepage == "" {
		homepage = manifest.Homepage
	}
	agent := index.NewAgentIndex(entries, result.Distribution, index.AgentOptions{
		Registry:  registryName,
		Namespace: b.config.Namespace,
		Homepage:  homepage,
		BaseURL:   b.config.BaseURL,
	})
	if _, err := index.WriteFile(b.config.AgentIndexPath(), agent, true); err != nil {
		return errors.New("KR130").WithFile(b.config.AgentIndexPath()).Wrap(err)
	}

	size, err := index.WriteFile(b.config.CompactIndexPath(), index.NewCompactIndex(entries), false)
	if err != nil {
		return errors.New("KR130").WithFile(b.config.CompactIndexPath()).Wrap(err)
	}
	result.CompactSize = size
	b.options.Metrics.SetCompactIndexBytes(size)

	if limit := b.config.Build.CompactMaxBytes; limit > 0 && size > limit {
		b.warn("", fmt.Sprintf("index-compact.json is %d bytes, above the %d byte cap", size, limit))
	}
	return nil
}

// checkReservedNames rejects items whose output file would be overwritten
// by an aggregate index.
func (b *Builder) checkReservedNames(manifest *registry.Manifest) error {
	reserved := []string{
		filepath.Base(b.config.AgentIndexPath()),
		filepath.Base(b.config.CompactIndexPath()),
	}
	for i, it := range manifest.Items {
		for _, r := range reserved {
			if strings.EqualFold(it.Name+".json", r) {
				return errors.New("KR102").
					WithFile(b.config.ManifestPath()).
					WithDetailf("item %d name %q collides with the %s index in %s", i, it.Name, r, b.config.Paths.Output).
					WithSuggestion("Rename the component")
			}
		}
	}
	return nil
}

// progress reports a progress update.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// warn records a warning and reports it.
func (b *Builder) warn(item, message string) {
	w := Warning{Item: item, Message: message}
	b.warnings = append(b.warnings, w)
	if b.options.OnWarning != nil {
		b.logger.Debug(message, zap.String("item", item))
		b.options.OnWarning(w)
		return
	}
	b.logger.Warn(message, zap.String("item", item))
}
