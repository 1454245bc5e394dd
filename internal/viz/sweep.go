// Package viz renders k-sweep output for the terminal: a static asciigraph
// plot of every predictor's direct effect against the diagonal correction,
// and an interactive explorer for picking a k by eye.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pathcoef/internal/ksweep"
)

// SweepPlot draws all predictors' direct effects against k on one chart.
// Grid points where the solve failed (NaN) are dropped from every series so
// the lines stay aligned on the k axis.
func SweepPlot(t *ksweep.Table, height, width int) string {
	series, kept := alignedSeries(t)
	if len(kept) == 0 {
		return "no solvable k values in sweep"
	}

	caption := fmt.Sprintf("direct effect vs k (k = %.2f .. %.2f)",
		t.Points[kept[0]].K, t.Points[kept[len(kept)-1]].K)
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)

	var sb strings.Builder
	sb.WriteString(graph)
	sb.WriteString("\n\nseries: ")
	sb.WriteString(strings.Join(t.Predictors, ", "))
	if len(kept) < len(t.Points) {
		sb.WriteString(fmt.Sprintf("\n(%d of %d k values unsolvable, omitted)",
			len(t.Points)-len(kept), len(t.Points)))
	}
	return sb.String()
}

// seriesPlot draws a single predictor's direct effect against k.
func seriesPlot(t *ksweep.Table, predictor int, height, width int) string {
	vals := make([]float64, 0, len(t.Points))
	for _, p := range t.Points {
		if math.IsNaN(p.Direct[predictor]) {
			continue
		}
		vals = append(vals, p.Direct[predictor])
	}
	if len(vals) == 0 {
		return "no solvable k values"
	}
	return asciigraph.Plot(vals,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s: direct effect vs k", t.Predictors[predictor])),
	)
}

func alignedSeries(t *ksweep.Table) ([][]float64, []int) {
	kept := make([]int, 0, len(t.Points))
points:
	for i, p := range t.Points {
		for _, v := range p.Direct {
			if math.IsNaN(v) {
				continue points
			}
		}
		kept = append(kept, i)
	}

	series := make([][]float64, len(t.Predictors))
	for s := range series {
		vals := make([]float64, len(kept))
		for i, idx := range kept {
			vals[i] = t.Points[idx].Direct[s]
		}
		series[s] = vals
	}
	return series, kept
}
