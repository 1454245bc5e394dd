// Package selection implements two-phase predictor selection: greedy VIF
// pruning down to an acceptable collinearity level, then a descending ladder
// of nested path models built by dropping the weakest remaining predictor at
// each step. Both phases are sequential by construction; each iteration
// consumes the previous one's predictor set.
package selection
