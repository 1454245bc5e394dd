package selection

import (
	"fmt"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/dataset"
	"github.com/san-kum/pathcoef/internal/pathcoef"
)

// Observer receives progress checkpoints during selection. All methods are
// optional in spirit; pass nil to run silently.
type Observer interface {
	PruneStep(removed string, vif, maxAfter float64, remaining int)
	LadderStep(step int, predictors []string, r2, conditionNumber float64)
}

// ExhaustedError means VIF pruning hit the 2-predictor floor with the
// collinearity threshold still unmet.
type ExhaustedError struct {
	MaxVIF    float64
	Threshold float64
	Remaining []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("selection exhausted: max VIF %.3f still above %.3f with only %d predictors left",
		e.MaxVIF, e.Threshold, len(e.Remaining))
}

// PruneRecord is one pruning iteration.
type PruneRecord struct {
	Removed     string
	VIF         float64 // the VIF that triggered the removal
	MaxVIFAfter float64
	Remaining   int
}

// PruneResult is the outcome of the greedy VIF phase.
type PruneResult struct {
	Selected []string
	Steps    []PruneRecord
}

// Prune repeatedly rebuilds the correlation diagnostics on the current
// predictor set and removes the predictor with the largest VIF until every
// VIF is at or below maxVIF. Ties keep the earliest predictor in the current
// ordering. Predictor order is otherwise preserved.
func Prune(tbl *dataset.Table, predictors []string, response string, policy corr.Policy, maxVIF float64, obs Observer) (*PruneResult, error) {
	if len(predictors) < 2 {
		return nil, fmt.Errorf("need at least 2 predictors, got %d", len(predictors))
	}

	cur := make([]string, len(predictors))
	copy(cur, predictors)

	res := &PruneResult{}
	pending := -1
	for {
		m, _, err := corr.Build(tbl, cur, response, policy)
		if err != nil {
			return nil, err
		}
		d, err := pathcoef.Diagnose(m)
		if err != nil {
			return nil, err
		}
		max, idx := d.MaxVIF()

		if pending >= 0 {
			rec := &res.Steps[pending]
			rec.MaxVIFAfter = max
			if obs != nil {
				obs.PruneStep(rec.Removed, rec.VIF, rec.MaxVIFAfter, rec.Remaining)
			}
		}

		if max <= maxVIF {
			break
		}
		if len(cur) <= 2 {
			return nil, &ExhaustedError{MaxVIF: max, Threshold: maxVIF, Remaining: cur}
		}

		res.Steps = append(res.Steps, PruneRecord{
			Removed:   cur[idx],
			VIF:       max,
			Remaining: len(cur) - 1,
		})
		pending = len(res.Steps) - 1
		cur = append(cur[:idx], cur[idx+1:]...)
	}

	res.Selected = cur
	return res, nil
}
