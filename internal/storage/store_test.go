package storage

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pathcoef/internal/dataset"
	"github.com/san-kum/pathcoef/internal/runner"
)

func sampleResult(t *testing.T, gridSize int) (*runner.Result, runner.Options) {
	t.Helper()
	tbl := dataset.New(8)
	cols := []struct {
		name string
		vals []float64
	}{
		{"x1", []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"x2", []float64{1, -1, 1, -1, 1, -1, 1, -1}},
		{"x3", []float64{3, 4, 1, 2, 7, 8, 5, 6}},
		{"y", []float64{2, 2, 4, 5, 5, 7, 8, 8}},
	}
	for _, c := range cols {
		if err := tbl.AddColumn(c.name, c.vals); err != nil {
			t.Fatal(err)
		}
	}

	opts := runner.DefaultOptions()
	opts.Response = "y"
	opts.KGridSize = gridSize

	res, err := runner.Run(context.Background(), tbl, opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res, opts
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	res, opts := sampleResult(t, 5)
	runID, err := store.Save("trial.csv", res, opts)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Data != "trial.csv" || meta.Response != "y" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if len(meta.Groups) != 1 {
		t.Fatalf("expected 1 group summary, got %d", len(meta.Groups))
	}
	g := meta.Groups[0]
	if len(g.Predictors) != 3 {
		t.Errorf("expected 3 predictors, got %v", g.Predictors)
	}
	if g.R2 <= 0 || g.R2 >= 1 {
		t.Errorf("implausible stored R2 %f", g.R2)
	}
	if g.ConditionNumber == "" {
		t.Error("condition number should be stored")
	}
}

func TestLoadSweepRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	res, opts := sampleResult(t, 5)
	runID, err := store.Save("trial.csv", res, opts)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	groups, err := store.LoadSweep(runID)
	if err != nil {
		t.Fatalf("load sweep failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 sweep group, got %d", len(groups))
	}

	got := groups[0].Table
	want := res.Analysis.Sweep
	if len(got.Points) != len(want.Points) {
		t.Fatalf("expected %d points, got %d", len(want.Points), len(got.Points))
	}
	if len(got.Predictors) != len(want.Predictors) {
		t.Fatalf("predictor count mismatch: %v vs %v", got.Predictors, want.Predictors)
	}
	for i, p := range got.Points {
		if math.Abs(p.K-want.Points[i].K) > 1e-6 {
			t.Errorf("point %d: k %f vs %f", i, p.K, want.Points[i].K)
		}
		for j := range p.Direct {
			if math.Abs(p.Direct[j]-want.Points[i].Direct[j]) > 1e-5 {
				t.Errorf("point %d predictor %d: %f vs %f",
					i, j, p.Direct[j], want.Points[i].Direct[j])
			}
		}
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	res, opts := sampleResult(t, 5)
	if _, err := store.Save("trial.csv", res, opts); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListEmptyBase(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
