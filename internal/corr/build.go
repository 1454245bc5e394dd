package corr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pathcoef/internal/dataset"
)

// Policy controls how missing values are handled when building correlations.
type Policy int

const (
	// Pairwise uses, for each pair of columns, every row where both values
	// are present.
	Pairwise Policy = iota
	// Listwise drops any row with a missing value in any analysis column
	// before computing all correlations.
	Listwise
)

func (p Policy) String() string {
	switch p {
	case Pairwise:
		return "pairwise"
	case Listwise:
		return "listwise"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "pairwise", "":
		return Pairwise, nil
	case "listwise":
		return Listwise, nil
	}
	return 0, fmt.Errorf("unknown missing-data policy %q", s)
}

// InsufficientDataError reports a column pair with fewer than the 3 complete
// observations a correlation needs.
type InsufficientDataError struct {
	Var1, Var2   string
	Observations int
}

func (e *InsufficientDataError) Error() string {
	if e.Var1 == "" {
		return fmt.Sprintf("insufficient data: %d complete rows after listwise deletion, need 3", e.Observations)
	}
	return fmt.Sprintf("insufficient data: %d complete observations for %s and %s, need 3", e.Observations, e.Var1, e.Var2)
}

// Build computes the predictor correlation matrix and the predictor-response
// correlation vector from raw columns.
func Build(tbl *dataset.Table, predictors []string, response string, policy Policy) (*Matrix, *ResponseVector, error) {
	cols := make([][]float64, len(predictors))
	for i, name := range predictors {
		cols[i] = tbl.Column(name)
		if cols[i] == nil {
			return nil, nil, fmt.Errorf("predictor column %q not found or not numeric", name)
		}
	}
	resp := tbl.Column(response)
	if resp == nil {
		return nil, nil, fmt.Errorf("response column %q not found or not numeric", response)
	}

	if policy == Listwise {
		var err error
		cols, resp, err = completeRows(cols, resp)
		if err != nil {
			return nil, nil, err
		}
	}

	n := len(predictors)
	data := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		data.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			r, err := pairCorrelation(cols[i], cols[j], predictors[i], predictors[j])
			if err != nil {
				return nil, nil, err
			}
			data.SetSym(i, j, r)
		}
	}

	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		r, err := pairCorrelation(cols[i], resp, predictors[i], response)
		if err != nil {
			return nil, nil, err
		}
		vals[i] = r
	}

	names := make([]string, n)
	copy(names, predictors)
	return NewMatrix(names, data), NewResponseVector(names, vals), nil
}

// pairCorrelation drops rows where either value is missing, then computes the
// Pearson correlation. Under the listwise policy the inputs are already
// complete, so the filter is a no-op.
func pairCorrelation(x, y []float64, xname, yname string) (float64, error) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 3 {
		return 0, &InsufficientDataError{Var1: xname, Var2: yname, Observations: len(xs)}
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, fmt.Errorf("correlation undefined for %s and %s: zero variance", xname, yname)
	}
	return r, nil
}

func completeRows(cols [][]float64, resp []float64) ([][]float64, []float64, error) {
	keep := make([]int, 0, len(resp))
rows:
	for i := range resp {
		if math.IsNaN(resp[i]) {
			continue
		}
		for _, col := range cols {
			if math.IsNaN(col[i]) {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	if len(keep) < 3 {
		return nil, nil, &InsufficientDataError{Observations: len(keep)}
	}

	out := make([][]float64, len(cols))
	for c, col := range cols {
		vals := make([]float64, len(keep))
		for i, r := range keep {
			vals[i] = col[r]
		}
		out[c] = vals
	}
	outResp := make([]float64, len(keep))
	for i, r := range keep {
		outResp[i] = resp[r]
	}
	return out, outResp, nil
}
