// Package parallel runs registry fan-out work (verify, publish) with bounded
// concurrency.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	minConcurrency = 2
	// maxConcurrencyCap keeps registry and object storage request rates modest.
	maxConcurrencyCap = 16
)

// DefaultConcurrency returns the default concurrency for the host.
func DefaultConcurrency() int {
	return min(max(runtime.NumCPU(), minConcurrency), maxConcurrencyCap)
}

// Task is one unit of work.
type Task func(ctx context.Context) error

// Executor runs tasks with at most a fixed number in flight.
type Executor struct {
	limit int64
}

// NewExecutor creates an Executor. A limit <= 0 uses DefaultConcurrency.
func NewExecutor(limit int) *Executor {
	if limit <= 0 {
		limit = DefaultConcurrency()
	}
	return &Executor{limit: int64(limit)}
}

// Limit returns the concurrency limit.
func (e *Executor) Limit() int {
	return int(e.limit)
}

// Run executes every task and returns the first error. A failing task
// cancels the context passed to the others.
func (e *Executor) Run(ctx context.Context, tasks ...Task) error {
	switch len(tasks) {
	case 0:
		return nil
	case 1:
		return tasks[0](ctx)
	}

	sem := semaphore.NewWeighted(e.limit)
	group, groupCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		task := task
		if err := sem.Acquire(groupCtx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			return task(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	// Acquire only fails once groupCtx is done; surface the parent's error.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("parallel run: %w", err)
	}
	return nil
}

// Collector gathers values from concurrent tasks.
type Collector[T any] struct {
	mu     sync.Mutex
	values []T
}

// Add appends v.
func (c *Collector[T]) Add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

// Values returns a copy of the collected values.
func (c *Collector[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}
