// Package verify re-hashes published registry items against the content
// hashes recorded in the agent index.
package verify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/contenthash"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/logging"
	"github.com/kata-shadcn/kata-registry/internal/index"
	"github.com/kata-shadcn/kata-registry/internal/parallel"
	"github.com/kata-shadcn/kata-registry/internal/registry"
)

// ErrMissing is returned by a Source for items it does not have.
var ErrMissing = stderrors.New("registry item missing")

// Source reads raw registry item documents.
type Source interface {
	// Index returns the agent index.
	Index(ctx context.Context) (*index.AgentIndex, error)

	// Item returns the raw document for name, or an error wrapping ErrMissing.
	Item(ctx context.Context, name string) ([]byte, error)
}

// Dir reads a local output directory such as public/r.
type Dir string

// Index reads index.json from the directory.
func (d Dir) Index(context.Context) (*index.AgentIndex, error) {
	path := filepath.Join(string(d), "index.json")
	idx, err := index.ReadAgentIndex(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("KR150").WithFile(path).
				WithSuggestion("Run kata-registry build first")
		}
		return nil, errors.New("KR150").WithFile(path).Wrap(err)
	}
	return idx, nil
}

// Item reads <name>.json from the directory.
func (d Dir) Item(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(string(d), name+".json"))
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrMissing)
	}
	return data, err
}

// Remote reads from a running registry.
type Remote struct {
	Client *registry.Client
}

// Index fetches /r/index.json.
func (r Remote) Index(ctx context.Context) (*index.AgentIndex, error) {
	data, err := r.Client.Fetch(ctx, "/r/index.json")
	if err != nil {
		return nil, err
	}
	var idx index.AgentIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.New("KR150").WithDetail("Invalid /r/index.json").Wrap(err)
	}
	return &idx, nil
}

// Item fetches /r/<name>.json.
func (r Remote) Item(ctx context.Context, name string) ([]byte, error) {
	data, err := r.Client.Fetch(ctx, "/r/"+name+".json")
	if stderrors.Is(err, registry.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", name, ErrMissing)
	}
	return data, err
}

// Mismatch is an item whose content no longer matches its recorded hash.
type Mismatch struct {
	Name string `json:"name"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// Report is the outcome of a verification.
type Report struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
	Missing    []string   `json:"missing"`
}

// OK reports whether every item matched.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && len(r.Missing) == 0
}

// Err returns a KR142 error describing the failures, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	if len(r.Mismatches) > 0 {
		names := make([]string, len(r.Mismatches))
		for i, m := range r.Mismatches {
			names[i] = m.Name
		}
		parts = append(parts, "changed: "+strings.Join(names, ", "))
	}
	if len(r.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(r.Missing, ", "))
	}
	return errors.New("KR142").
		WithDetailf("%d of %d items failed verification (%s)",
			len(r.Mismatches)+len(r.Missing), r.Checked, strings.Join(parts, "; "))
}

// Options configures a Verifier.
type Options struct {
	// Concurrency bounds in-flight reads. Zero uses the host default.
	Concurrency int

	Logger *zap.Logger
}

// Verifier checks items from a Source.
type Verifier struct {
	source   Source
	executor *parallel.Executor
	logger   *zap.Logger
}

// New creates a Verifier.
func New(source Source, opts Options) *Verifier {
	logger := logging.OrNop(opts.Logger)
	return &Verifier{
		source:   source,
		executor: parallel.NewExecutor(opts.Concurrency),
		logger:   logger,
	}
}

// Verify loads the index and checks every item it lists. Read failures other
// than missing items abort the run.
func (v *Verifier) Verify(ctx context.Context) (*Report, error) {
	idx, err := v.source.Index(ctx)
	if err != nil {
		return nil, err
	}

	var mismatches parallel.Collector[Mismatch]
	var missing parallel.Collector[string]

	tasks := make([]parallel.Task, 0, len(idx.Items))
	for _, item := range idx.Items {
		item := item
		tasks = append(tasks, func(ctx context.Context) error {
			data, err := v.source.Item(ctx, item.Name)
			if stderrors.Is(err, ErrMissing) {
				missing.Add(item.Name)
				return nil
			}
			if err != nil {
				return err
			}

			got, err := contenthash.SumJSON(data)
			if err != nil {
				return errors.New("KR142").
					WithDetailf("%s is not valid JSON", item.Name).
					Wrap(err)
			}
			if got != item.ContentHash {
				mismatches.Add(Mismatch{Name: item.Name, Want: item.ContentHash, Got: got})
			}
			v.logger.Debug("verified item",
				zap.String("name", item.Name),
				zap.Bool("match", got == item.ContentHash))
			return nil
		})
	}

	if err := v.executor.Run(ctx, tasks...); err != nil {
		return nil, err
	}

	report := &Report{
		Checked:    len(idx.Items),
		Mismatches: mismatches.Values(),
		Missing:    missing.Values(),
	}
	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Name < report.Mismatches[j].Name
	})
	sort.Strings(report.Missing)
	return report, nil
}
