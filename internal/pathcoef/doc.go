// Package pathcoef implements the multicollinearity-aware path-coefficient
// engine.
//
// A solve decomposes each predictor's correlation with the response into a
// direct effect (its standardized coefficient) and indirect effects mediated
// through the other predictors:
//
//	m, ry, _ := corr.Build(tbl, predictors, "yield", corr.Pairwise)
//	res, err := pathcoef.Solve(m, ry, 0)
//
// When the correlation matrix is ill-conditioned, [Solve] fails with
// [SingularMatrixError]; passing k > 0 adds a ridge-style diagonal correction
// that stabilizes the inversion. [Diagnose] quantifies the collinearity
// itself: eigenstructure, condition number, determinant, per-predictor VIF,
// and the variable loading heaviest on the near-null eigen direction.
package pathcoef
