package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/dataset"
	"github.com/san-kum/pathcoef/internal/ksweep"
	"github.com/san-kum/pathcoef/internal/pathcoef"
	"github.com/san-kum/pathcoef/internal/selection"
)

// InvalidConfigError reports an unusable analysis configuration.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Options is the full analysis configuration.
type Options struct {
	Response   string
	Predictors []string // empty: all numeric columns except response/grouping
	Exclude    bool     // Predictors lists columns to drop from the default set
	Grouping   string

	// Correction is the fixed diagonal k. Leaving it nil triggers the k
	// sweep instead.
	Correction *float64
	KGridSize  int

	RunSelection bool
	MaxVIF       float64

	Policy   corr.Policy
	Observer selection.Observer
}

func DefaultOptions() Options {
	return Options{
		KGridSize: ksweep.DefaultGridSize,
		MaxVIF:    10,
		Policy:    corr.Pairwise,
	}
}

func (o Options) Validate() error {
	if o.Response == "" {
		return &InvalidConfigError{Field: "response", Reason: "required"}
	}
	if o.Correction != nil && (*o.Correction < 0 || *o.Correction >= 1) {
		return &InvalidConfigError{Field: "correction",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", *o.Correction)}
	}
	if o.KGridSize < 2 {
		return &InvalidConfigError{Field: "k_grid_size",
			Reason: fmt.Sprintf("must be at least 2, got %d", o.KGridSize)}
	}
	if o.MaxVIF <= 1 {
		return &InvalidConfigError{Field: "max_vif",
			Reason: fmt.Sprintf("must be greater than 1, got %g", o.MaxVIF)}
	}
	if o.Policy != corr.Pairwise && o.Policy != corr.Listwise {
		return &InvalidConfigError{Field: "missing_data_policy",
			Reason: fmt.Sprintf("unknown policy %d", int(o.Policy))}
	}
	return nil
}

// Analysis is the full result record for one predictor set on one table.
type Analysis struct {
	Predictors  []string
	Response    string
	Corr        *corr.Matrix
	ResponseCor *corr.ResponseVector
	Path        *pathcoef.Result
	Diagnostics *pathcoef.Diagnostics

	// Sweep is present when no fixed correction was configured.
	Sweep *ksweep.Table

	// Selection outputs, present when RunSelection is set.
	Pruning  *selection.PruneResult
	Selected []string
	Ladder   []selection.LadderStep
}

// GroupResult is one group's analysis in a grouped run. A failed group
// carries its error here; siblings are unaffected.
type GroupResult struct {
	Key      string
	Analysis *Analysis
	Err      error
}

// Result is either a single analysis or a grouped collection, in input group
// order.
type Result struct {
	Analysis *Analysis
	Groups   []GroupResult
}

// Run resolves the schema once, then executes the engine on the whole table
// or independently per group. Groups run concurrently; output order follows
// first appearance in the data, not completion order.
func Run(ctx context.Context, tbl *dataset.Table, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	predictors, err := tbl.Resolve(dataset.Schema{
		Response:   opts.Response,
		Predictors: opts.Predictors,
		Exclude:    opts.Exclude,
		Grouping:   opts.Grouping,
	})
	if err != nil {
		return nil, &InvalidConfigError{Field: "predictors", Reason: err.Error()}
	}

	if opts.Grouping == "" {
		a, err := analyze(tbl, predictors, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Analysis: a}, nil
	}

	groups, err := tbl.SplitBy(opts.Grouping)
	if err != nil {
		return nil, &InvalidConfigError{Field: "grouping", Reason: err.Error()}
	}

	results := make([]GroupResult, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(idx int, g dataset.Group) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[idx] = GroupResult{Key: g.Key, Err: err}
				return
			}
			a, err := analyze(g.Table, predictors, opts)
			results[idx] = GroupResult{Key: g.Key, Analysis: a, Err: err}
		}(i, g)
	}
	wg.Wait()

	return &Result{Groups: results}, nil
}

func analyze(tbl *dataset.Table, predictors []string, opts Options) (*Analysis, error) {
	m, ry, err := corr.Build(tbl, predictors, opts.Response, opts.Policy)
	if err != nil {
		return nil, err
	}

	d, err := pathcoef.Diagnose(m)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Predictors:  m.Names(),
		Response:    opts.Response,
		Corr:        m,
		ResponseCor: ry,
		Diagnostics: d,
	}

	if opts.Correction == nil {
		sweep, err := ksweep.Run(m, ry, opts.KGridSize)
		if err != nil {
			return nil, err
		}
		a.Sweep = sweep
	}

	k := 0.0
	if opts.Correction != nil {
		k = *opts.Correction
	}
	path, err := pathcoef.Solve(m, ry, k)
	if err != nil {
		// The sweep and diagnostics still describe the collinearity that
		// caused the failure, so a grouped run keeps the partial record.
		return a, err
	}
	a.Path = path

	if opts.RunSelection {
		pruned, err := selection.Prune(tbl, predictors, opts.Response, opts.Policy, opts.MaxVIF, opts.Observer)
		if err != nil {
			return nil, err
		}
		ladder, err := selection.BuildLadder(tbl, pruned.Selected, opts.Response, opts.Policy, k, opts.Observer)
		if err != nil {
			return nil, err
		}
		a.Pruning = pruned
		a.Selected = pruned.Selected
		a.Ladder = ladder
	}
	return a, nil
}
