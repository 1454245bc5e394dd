package ksweep

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/pathcoef/internal/corr"
)

func matrix(names []string, r float64) *corr.Matrix {
	data := mat.NewSymDense(2, []float64{1, r, r, 1})
	return corr.NewMatrix(names, data)
}

func TestRunGrid(t *testing.T) {
	m := matrix([]string{"a", "b"}, 0.5)
	ry := corr.NewResponseVector([]string{"a", "b"}, []float64{0.6, 0.5})

	table, err := Run(m, ry, 11)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(table.Points) != 11 {
		t.Fatalf("expected 11 points, got %d", len(table.Points))
	}
	for i, p := range table.Points {
		want := float64(i) * 0.1
		if math.Abs(p.K-want) > 1e-12 {
			t.Errorf("point %d: expected k %f, got %f", i, want, p.K)
		}
		for j, d := range p.Direct {
			if math.IsNaN(d) {
				t.Errorf("point %d predictor %d: unexpected NaN", i, j)
			}
		}
	}
	if table.Points[0].K != 0 || table.Points[10].K != 1 {
		t.Error("grid should span [0, 1] inclusive")
	}
}

func TestRunSingularAtZero(t *testing.T) {
	m := matrix([]string{"a", "b"}, 1.0)
	ry := corr.NewResponseVector([]string{"a", "b"}, []float64{0.8, 0.8})

	table, err := Run(m, ry, 11)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !math.IsNaN(table.Points[0].Direct[0]) {
		t.Error("k=0 on a singular matrix should record NaN")
	}
	for _, p := range table.Points[1:] {
		for j, d := range p.Direct {
			if math.IsNaN(d) || math.IsInf(d, 0) {
				t.Errorf("k=%f predictor %d: expected finite effect, got %f", p.K, j, d)
			}
		}
	}
}

func TestRunGridTooSmall(t *testing.T) {
	m := matrix([]string{"a", "b"}, 0.5)
	ry := corr.NewResponseVector([]string{"a", "b"}, []float64{0.6, 0.5})

	if _, err := Run(m, ry, 1); err == nil {
		t.Error("expected error for 1-point grid")
	}
}

func TestSeries(t *testing.T) {
	m := matrix([]string{"a", "b"}, 0.5)
	ry := corr.NewResponseVector([]string{"a", "b"}, []float64{0.6, 0.5})

	table, err := Run(m, ry, 5)
	if err != nil {
		t.Fatal(err)
	}

	s := table.Series(0)
	if len(s) != 5 {
		t.Fatalf("expected 5 values, got %d", len(s))
	}
	for i, p := range table.Points {
		if s[i] != p.Direct[0] {
			t.Errorf("series value %d mismatch", i)
		}
	}
}
