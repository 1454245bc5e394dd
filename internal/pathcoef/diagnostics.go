package pathcoef

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/pathcoef/internal/corr"
)

// eigenNoise is how far below zero an eigenvalue may fall before it stops
// looking like floating-point noise.
const eigenNoise = 1e-10

// Diagnostics quantifies the multicollinearity of an uncorrected predictor
// correlation matrix.
type Diagnostics struct {
	Predictors      []string
	Eigenvalues     []float64   // descending
	Eigenvectors    [][]float64 // Eigenvectors[i] pairs with Eigenvalues[i]
	ConditionNumber float64
	Determinant     float64
	VIF             []float64
	// WeightVar is the predictor with the largest absolute loading in the
	// eigenvector of the smallest eigenvalue: the variable most responsible
	// for the strongest near-collinearity.
	WeightVar string
	Warnings  []string
}

// Diagnose eigendecomposes the correlation matrix and computes per-predictor
// variance inflation factors. Call it on the uncorrected matrix; a corrected
// diagonal would mask the collinearity being measured.
func Diagnose(m *corr.Matrix) (*Diagnostics, error) {
	n := m.Dim()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 predictors, got %d", n)
	}

	var es mat.EigenSym
	if !es.Factorize(m.Sym(), true) {
		return nil, fmt.Errorf("eigendecomposition failed")
	}
	asc := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	d := &Diagnostics{
		Predictors:   m.Names(),
		Eigenvalues:  make([]float64, n),
		Eigenvectors: make([][]float64, n),
	}

	// gonum returns eigenvalues ascending; the summary is kept descending.
	for i := 0; i < n; i++ {
		ev := asc[n-1-i]
		if ev < 0 {
			if ev > -eigenNoise {
				d.Warnings = append(d.Warnings,
					fmt.Sprintf("eigenvalue %g clamped to 0 (floating-point noise)", ev))
			} else {
				d.Warnings = append(d.Warnings,
					fmt.Sprintf("negative eigenvalue %g clamped to 0", ev))
			}
			ev = 0
		}
		d.Eigenvalues[i] = ev

		vec := make([]float64, n)
		for j := 0; j < n; j++ {
			vec[j] = vecs.At(j, n-1-i)
		}
		d.Eigenvectors[i] = vec
	}

	max, min := d.Eigenvalues[0], d.Eigenvalues[n-1]
	if min <= 0 {
		d.ConditionNumber = math.Inf(1)
	} else {
		d.ConditionNumber = max / min
	}

	det := 1.0
	for _, ev := range d.Eigenvalues {
		det *= ev
	}
	d.Determinant = det

	smallest := d.Eigenvectors[n-1]
	best := 0
	for j := 1; j < n; j++ {
		if math.Abs(smallest[j]) > math.Abs(smallest[best]) {
			best = j
		}
	}
	d.WeightVar = d.Predictors[best]

	d.VIF = make([]float64, n)
	for i := 0; i < n; i++ {
		d.VIF[i] = vif(m, i)
	}
	return d, nil
}

// vif regresses predictor i on the remaining predictors through the same
// correlation-system solve as the main path model and returns 1/(1 - R²).
// A singular sub-system means predictor i is an exact combination of the
// others, so its VIF is +Inf.
func vif(m *corr.Matrix, i int) float64 {
	sub, ri := m.Without(i)

	var inv mat.Dense
	if err := inv.Inverse(sub.Sym()); err != nil {
		return math.Inf(1)
	}

	rv := mat.NewVecDense(len(ri), ri)
	b := mat.NewVecDense(len(ri), nil)
	b.MulVec(&inv, rv)

	r2 := mat.Dot(b, rv)
	if r2 >= 1 {
		return math.Inf(1)
	}
	v := 1 / (1 - r2)
	if v < 1 {
		return 1
	}
	return v
}

// MaxVIF returns the largest VIF and its index; ties keep the earliest
// predictor so pruning is deterministic.
func (d *Diagnostics) MaxVIF() (float64, int) {
	best := 0
	for i := 1; i < len(d.VIF); i++ {
		if d.VIF[i] > d.VIF[best] {
			best = i
		}
	}
	return d.VIF[best], best
}
