package pathcoef

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/pathcoef/internal/corr"
)

// SingularMatrixError means the (possibly corrected) correlation matrix could
// not be inverted. Without a correction this is the expected failure mode for
// strongly collinear predictors.
type SingularMatrixError struct {
	K   float64
	Err error
}

func (e *SingularMatrixError) Error() string {
	if e.K == 0 {
		return fmt.Sprintf("correlation matrix is singular or near-singular: %v (consider a diagonal correction)", e.Err)
	}
	return fmt.Sprintf("correlation matrix is singular even with correction k=%g: %v", e.K, e.Err)
}

func (e *SingularMatrixError) Unwrap() error { return e.Err }

// Result holds one path-coefficient solve.
//
// Effects[i][j] is the part of predictor i's association with the response
// mediated through predictor j; the diagonal holds the direct effects, so
// summing row i recovers corr(i, response) when k = 0.
type Result struct {
	Predictors []string
	K          float64
	Direct     []float64
	Effects    [][]float64
	R2         float64
	Residual   float64
	Warnings   []string
}

// Solve inverts the correlation matrix (after adding k to its diagonal when
// k > 0) and derives direct effects, indirect effects, R², and the residual
// effect.
func Solve(m *corr.Matrix, ry *corr.ResponseVector, k float64) (*Result, error) {
	n := m.Dim()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 predictors, got %d", n)
	}
	if ry.Len() != n {
		return nil, fmt.Errorf("response vector has %d entries, matrix has %d", ry.Len(), n)
	}
	if k < 0 {
		return nil, fmt.Errorf("correction k must be >= 0, got %g", k)
	}

	work := m
	if k > 0 {
		work = m.Corrected(k)
	}

	var inv mat.Dense
	if err := inv.Inverse(work.Sym()); err != nil {
		return nil, &SingularMatrixError{K: k, Err: err}
	}

	rv := mat.NewVecDense(n, ry.Values())
	b := mat.NewVecDense(n, nil)
	b.MulVec(&inv, rv)

	res := &Result{
		Predictors: m.Names(),
		K:          k,
		Direct:     make([]float64, n),
		Effects:    make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		res.Direct[i] = b.AtVec(i)
	}
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				row[j] = res.Direct[i]
				continue
			}
			row[j] = res.Direct[j] * work.At(i, j)
		}
		res.Effects[i] = row
	}

	res.R2 = mat.Dot(b, rv)
	if res.R2 > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("R2=%.6f exceeds 1, residual effect clipped to 0", res.R2))
		res.Residual = 0
	} else {
		res.Residual = math.Sqrt(1 - res.R2)
	}
	return res, nil
}
