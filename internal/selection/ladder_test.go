package selection

import (
	"math"
	"testing"

	"github.com/san-kum/pathcoef/internal/corr"
)

func TestBuildLadder(t *testing.T) {
	tbl := collinearTable(t)
	selected := []string{"x2", "x3", "x4", "x5"}
	obs := &recordingObserver{}

	steps, err := BuildLadder(tbl, selected, "y", corr.Pairwise, 0, obs)
	if err != nil {
		t.Fatalf("ladder failed: %v", err)
	}

	if len(steps) != 3 {
		t.Fatalf("expected 3 steps for 4 predictors, got %d", len(steps))
	}
	for i, want := range []int{4, 3, 2} {
		if len(steps[i].Predictors) != want {
			t.Errorf("step %d: expected %d predictors, got %d", i, want, len(steps[i].Predictors))
		}
	}
	if obs.ladders != 3 {
		t.Errorf("observer should see 3 ladder steps, got %d", obs.ladders)
	}

	// each step drops the predictor with the smallest absolute direct effect
	for i := 0; i < len(steps)-1; i++ {
		step := steps[i]
		weakest := 0
		for j := 1; j < len(step.Path.Direct); j++ {
			if math.Abs(step.Path.Direct[j]) < math.Abs(step.Path.Direct[weakest]) {
				weakest = j
			}
		}
		if step.Dropped != step.Predictors[weakest] {
			t.Errorf("step %d: expected %s dropped, got %s", i, step.Predictors[weakest], step.Dropped)
		}

		next := steps[i+1].Predictors
		seen := make(map[string]bool, len(next))
		for _, name := range next {
			seen[name] = true
		}
		if seen[step.Dropped] {
			t.Errorf("step %d: dropped predictor %s still present in next step", i, step.Dropped)
		}
	}
	if last := steps[len(steps)-1]; last.Dropped != "" {
		t.Errorf("final step should drop nothing, got %s", last.Dropped)
	}

	// diagnostics ride along on every step
	for i, step := range steps {
		if step.Diagnostics == nil || step.Path == nil {
			t.Fatalf("step %d missing results", i)
		}
		if step.MaxVIF < 1 {
			t.Errorf("step %d: max VIF below 1: %f", i, step.MaxVIF)
		}
		if step.Path.R2 < 0 || step.Path.R2 > 1 {
			t.Errorf("step %d: R2 out of range: %f", i, step.Path.R2)
		}
	}
}

func TestBuildLadderTwoPredictors(t *testing.T) {
	tbl := collinearTable(t)

	steps, err := BuildLadder(tbl, []string{"x3", "x4"}, "y", corr.Pairwise, 0, nil)
	if err != nil {
		t.Fatalf("ladder failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 step for 2 predictors, got %d", len(steps))
	}
	if steps[0].Dropped != "" {
		t.Error("single step should not drop a predictor")
	}
}

func TestBuildLadderTooFew(t *testing.T) {
	tbl := collinearTable(t)
	if _, err := BuildLadder(tbl, []string{"x3"}, "y", corr.Pairwise, 0, nil); err == nil {
		t.Error("expected error for fewer than 2 predictors")
	}
}
