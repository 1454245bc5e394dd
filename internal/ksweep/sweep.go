// Package ksweep evaluates path-coefficient solves across a grid of diagonal
// corrections. The table it produces is advisory: it shows how each direct
// effect stabilizes as k grows so a k can be chosen by inspection, it never
// picks one.
package ksweep

import (
	"fmt"
	"math"

	"github.com/san-kum/pathcoef/internal/corr"
	"github.com/san-kum/pathcoef/internal/pathcoef"
)

// DefaultGridSize is the number of k values swept when none is configured.
const DefaultGridSize = 50

// Point is one grid entry: the correction k and the direct effect of every
// predictor under it. Direct is all NaN when the solve failed at that k
// (typically only k = 0 on a singular matrix).
type Point struct {
	K      float64
	Direct []float64
}

// Table is an immutable direct-effect-vs-k sensitivity table.
type Table struct {
	Predictors []string
	Points     []Point
}

// Run sweeps n equally spaced corrections over [0, 1], solving the path model
// at each one.
func Run(m *corr.Matrix, ry *corr.ResponseVector, n int) (*Table, error) {
	if n < 2 {
		return nil, fmt.Errorf("k grid needs at least 2 values, got %d", n)
	}

	t := &Table{
		Predictors: m.Names(),
		Points:     make([]Point, 0, n),
	}
	step := 1.0 / float64(n-1)
	for i := 0; i < n; i++ {
		k := float64(i) * step
		p := Point{K: k}

		res, err := pathcoef.Solve(m, ry, k)
		if err != nil {
			p.Direct = nanVector(m.Dim())
		} else {
			p.Direct = res.Direct
		}
		t.Points = append(t.Points, p)
	}
	return t, nil
}

// Series returns predictor i's direct effect across the grid, in k order.
func (t *Table) Series(i int) []float64 {
	out := make([]float64, len(t.Points))
	for j, p := range t.Points {
		out[j] = p.Direct[i]
	}
	return out
}

func nanVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}
