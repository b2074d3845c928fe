package dev

import (
	"path/filepath"
	"time"

	"github.com/kata-shadcn/kata-registry/internal/config"
)

// NewWatcherForConfig creates a watcher over the project's registry inputs.
// The output directory and browser index are always ignored so a rebuild
// never retriggers itself.
func NewWatcherForConfig(cfg *config.Config) *Watcher {
	ignore := append([]string{}, DefaultIgnore...)
	ignore = append(ignore, cfg.Serve.WatchIgnore...)
	ignore = append(ignore,
		filepath.ToSlash(cfg.Paths.Output),
		filepath.ToSlash(cfg.Paths.BrowserIndex),
	)

	return NewWatcher(WatcherConfig{
		Paths:       CollectWatchPaths(cfg),
		Manifest:    cfg.ManifestPath(),
		CollapseMap: cfg.CollapseMapPath(),
		Ignore:      ignore,
		Interval:    100 * time.Millisecond,
	})
}

// CollectWatchPaths returns a normalized, de-duplicated list of watch paths.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := cfg.WatchPaths()

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}
