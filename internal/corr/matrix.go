package corr

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix is a predictor correlation matrix: symmetric, unit diagonal before
// correction, indexed by predictor order. Corrections return a new Matrix;
// nothing mutates one in place.
type Matrix struct {
	names []string
	data  *mat.SymDense
}

func NewMatrix(names []string, data *mat.SymDense) *Matrix {
	return &Matrix{names: names, data: data}
}

func (m *Matrix) Dim() int { return len(m.names) }

func (m *Matrix) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }

// Sym exposes the underlying symmetric matrix for linear algebra.
func (m *Matrix) Sym() *mat.SymDense { return m.data }

// Corrected returns a copy with k added to every diagonal entry, the
// ridge-style stabilization for ill-conditioned matrices. k = 0 is a plain
// copy.
func (m *Matrix) Corrected(k float64) *Matrix {
	n := m.Dim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(m.data)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, m.data.At(i, i)+k)
	}
	return &Matrix{names: m.Names(), data: out}
}

// Without returns the submatrix excluding predictor i together with the
// correlations of predictor i against the remaining predictors, in submatrix
// order. This is the sub-system solved when computing VIF(i).
func (m *Matrix) Without(i int) (*Matrix, []float64) {
	n := m.Dim()
	names := make([]string, 0, n-1)
	ri := make([]float64, 0, n-1)
	idx := make([]int, 0, n-1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		names = append(names, m.names[j])
		ri = append(ri, m.data.At(i, j))
		idx = append(idx, j)
	}

	sub := mat.NewSymDense(len(idx), nil)
	for a, ja := range idx {
		for b := a; b < len(idx); b++ {
			sub.SetSym(a, b, m.data.At(ja, idx[b]))
		}
	}
	return &Matrix{names: names, data: sub}, ri
}

// ResponseVector holds each predictor's correlation with the response,
// indexed like the Matrix rows.
type ResponseVector struct {
	names []string
	vals  []float64
}

func NewResponseVector(names []string, vals []float64) *ResponseVector {
	return &ResponseVector{names: names, vals: vals}
}

func (v *ResponseVector) Len() int          { return len(v.vals) }
func (v *ResponseVector) At(i int) float64  { return v.vals[i] }
func (v *ResponseVector) Name(i int) string { return v.names[i] }

func (v *ResponseVector) Values() []float64 {
	out := make([]float64, len(v.vals))
	copy(out, v.vals)
	return out
}
