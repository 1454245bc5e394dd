package selection

import (
	"fmt"
	"math"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/dataset"
	"github.com/san-kum/pathcoef/internal/pathcoef"
)

// LadderStep is one model in the descending sequence.
type LadderStep struct {
	Predictors  []string
	Path        *pathcoef.Result
	Diagnostics *pathcoef.Diagnostics
	MaxVIF      float64
	// Dropped is the predictor removed after this step, empty on the final
	// 2-predictor model.
	Dropped string
}

// BuildLadder fits path models on nested predictor subsets, starting from all
// selected predictors and dropping the one with the smallest absolute direct
// effect each step, down to 2 predictors. p predictors yield p-1 steps. The
// correction k is held fixed across the whole ladder.
func BuildLadder(tbl *dataset.Table, selected []string, response string, policy corr.Policy, k float64, obs Observer) ([]LadderStep, error) {
	if len(selected) < 2 {
		return nil, fmt.Errorf("need at least 2 selected predictors, got %d", len(selected))
	}

	cur := make([]string, len(selected))
	copy(cur, selected)

	steps := make([]LadderStep, 0, len(selected)-1)
	for {
		m, ry, err := corr.Build(tbl, cur, response, policy)
		if err != nil {
			return nil, err
		}
		res, err := pathcoef.Solve(m, ry, k)
		if err != nil {
			return nil, err
		}
		d, err := pathcoef.Diagnose(m)
		if err != nil {
			return nil, err
		}
		maxVIF, _ := d.MaxVIF()

		step := LadderStep{
			Predictors:  res.Predictors,
			Path:        res,
			Diagnostics: d,
			MaxVIF:      maxVIF,
		}

		if obs != nil {
			obs.LadderStep(len(steps), step.Predictors, res.R2, d.ConditionNumber)
		}

		if len(cur) == 2 {
			steps = append(steps, step)
			return steps, nil
		}

		weakest := 0
		for i := 1; i < len(res.Direct); i++ {
			if math.Abs(res.Direct[i]) < math.Abs(res.Direct[weakest]) {
				weakest = i
			}
		}
		step.Dropped = cur[weakest]
		steps = append(steps, step)
		cur = append(cur[:weakest], cur[weakest+1:]...)
	}
}
