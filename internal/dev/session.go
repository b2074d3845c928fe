package dev

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/build"
	"github.com/kata-shadcn/kata-registry/internal/logging"
)

// Builder runs one registry build.
type Builder interface {
	Build(ctx context.Context) (*build.Result, error)
}

// SessionOptions configures a watch session.
type SessionOptions struct {
	// Builder rebuilds the registry.
	Builder Builder

	// Watcher reports input changes. Nil disables watching.
	Watcher *Watcher

	// Hub receives rebuild notifications. Nil disables notifications.
	Hub *ReloadHub

	// Debounce is the quiet period after a change before rebuilding.
	Debounce time.Duration

	Logger *zap.Logger

	// OnRebuild is called after every build.
	OnRebuild func(result *build.Result, err error, changed []string)
}

// Session rebuilds the registry whenever its inputs change. Builds never
// overlap.
type Session struct {
	opts   SessionOptions
	logger *zap.Logger

	buildMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending []string
}

// NewSession creates a watch session.
func NewSession(opts SessionOptions) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	logger := logging.OrNop(opts.Logger)
	return &Session{opts: opts, logger: logger}
}

// Rebuild runs a build now and notifies clients of the outcome.
func (s *Session) Rebuild(ctx context.Context, changed []string) (*build.Result, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	result, err := s.opts.Builder.Build(ctx)

	if err != nil {
		s.logger.Warn("rebuild failed", zap.Error(err), zap.Strings("changed", changed))
		if s.opts.Hub != nil {
			s.opts.Hub.NotifyError(err.Error())
		}
	} else {
		s.logger.Info("rebuilt registry",
			zap.String("build_id", result.BuildID),
			zap.Int("built", result.Built),
			zap.Duration("duration", result.Duration))
		if s.opts.Hub != nil {
			s.opts.Hub.NotifyRebuilt(result.BuildID, result.Built, len(result.Warnings), result.Duration, changed)
		}
	}

	if s.opts.OnRebuild != nil {
		s.opts.OnRebuild(result, err, changed)
	}
	return result, err
}

// Run watches for changes until ctx is done. It does not perform an
// initial build.
func (s *Session) Run(ctx context.Context) error {
	if s.opts.Watcher == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	s.opts.Watcher.OnChange(func(changes []Change) {
		paths := make([]string, len(changes))
		for i, c := range changes {
			paths[i] = c.Path
		}
		s.schedule(ctx, paths)
	})
	defer s.cancelPending()

	return s.opts.Watcher.Start(ctx)
}

// schedule debounces a rebuild for changed paths.
func (s *Session) schedule(ctx context.Context, paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, paths...)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.mu.Lock()
		changed := s.pending
		s.pending = nil
		s.timer = nil
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		s.Rebuild(ctx, changed)
	})
}

func (s *Session) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}
