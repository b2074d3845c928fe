package dev

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType represents what kind of registry input changed.
type ChangeType int

const (
	ChangeSource ChangeType = iota
	ChangeManifest
	ChangeCollapseMap
)

func (t ChangeType) String() string {
	switch t {
	case ChangeManifest:
		return "manifest"
	case ChangeCollapseMap:
		return "collapse-map"
	default:
		return "source"
	}
}

// Change represents a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to poll.
	Paths []string

	// Manifest and CollapseMap classify changes to those files.
	Manifest    string
	CollapseMap string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	".next",
	".DS_Store",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls registry inputs for changes.
type Watcher struct {
	config      WatcherConfig
	onChange    func([]Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for changes. It receives every change found in
// one poll, sorted by path.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scanInitial records the current modification times.
func (w *Watcher) scanInitial() {
	current := w.scan()

	w.mu.Lock()
	w.timestamps = current
	w.initialized = true
	w.mu.Unlock()
}

// scan walks every watched path and returns file modification times.
func (w *Watcher) scan() map[string]time.Time {
	found := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if p != root && w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.shouldIgnore(p) {
				found[p] = info.ModTime()
			}
			return nil
		})
	}
	return found
}

// checkForChanges compares a fresh scan with the recorded times.
func (w *Watcher) checkForChanges() {
	current := w.scan()

	w.mu.Lock()
	callback := w.onChange
	if !w.initialized {
		w.timestamps = current
		w.initialized = true
		w.mu.Unlock()
		return
	}

	var changes []Change
	for p, modTime := range current {
		if last, ok := w.timestamps[p]; !ok || !modTime.Equal(last) {
			changes = append(changes, Change{Path: p, Type: w.classify(p)})
		}
	}
	for p := range w.timestamps {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Type: w.classify(p), Removed: true})
		}
	}
	w.timestamps = current
	w.mu.Unlock()

	if callback == nil || len(changes) == 0 {
		return
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	callback(changes)
}

// classify determines the change type from the configured input paths.
func (w *Watcher) classify(p string) ChangeType {
	clean := filepath.Clean(p)
	switch {
	case w.config.Manifest != "" && clean == filepath.Clean(w.config.Manifest):
		return ChangeManifest
	case w.config.CollapseMap != "" && clean == filepath.Clean(w.config.CollapseMap):
		return ChangeCollapseMap
	default:
		return ChangeSource
	}
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.ContainsAny(pattern, `/\`)
		if strings.ContainsAny(pattern, "*?[") {
			target, glob := name, pattern
			if hasPathSep {
				target, glob = normalized, filepath.ToSlash(pattern)
			}
			if matched, _ := path.Match(glob, target); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}
		if pathHasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range splitPathSegments(p) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(p, pattern string) bool {
	pathParts := splitPathSegments(p)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(p string) []string {
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
