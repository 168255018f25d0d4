package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/verisim/verisim/internal/stats"
)

// dimensions maps grid field names to their value in a point.
var dimensions = map[string]func(Record) float64{
	"iterations": func(r Record) float64 { return float64(r.Point.Iterations) },
	"step_size":  func(r Record) float64 { return r.Point.StepSize },
	"mass":       func(r Record) float64 { return r.Point.Mass },
	"gravity":    func(r Record) float64 { return r.Point.Gravity },
	"force":      func(r Record) float64 { return r.Point.Force },
	"tolerance":  func(r Record) float64 { return r.Point.Tolerance },
}

// Plot renders one statistic of one bundle against a grid dimension as
// an ASCII graph, in log10 when the values span decades. Records with an
// error or without the requested bundle are skipped.
func Plot(records []Record, bundle string, kind stats.Kind, dimension string) (string, error) {
	dim, ok := dimensions[dimension]
	if !ok {
		return "", fmt.Errorf("report: unknown dimension %q", dimension)
	}

	type pt struct{ x, y float64 }
	pts := make([]pt, 0, len(records))
	for _, rec := range records {
		if rec.Error != "" {
			continue
		}
		b, ok := rec.Bundles[bundle]
		if !ok {
			continue
		}
		pts = append(pts, pt{x: dim(rec), y: b[kind]})
	}
	if len(pts) == 0 {
		return "", fmt.Errorf("report: no values for bundle %q", bundle)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	ys := make([]float64, len(pts))
	for i, p := range pts {
		ys[i] = p.y
	}
	logScale := useLogScale(ys)
	if logScale {
		for i := range ys {
			ys[i] = math.Log10(ys[i])
		}
	}

	caption := fmt.Sprintf("%s %s vs %s", bundle, kind, dimension)
	if logScale {
		caption = "log10 " + caption
	}
	graph := asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
	return graph, nil
}

// useLogScale holds when all values are positive and spread over more
// than three decades, which flat-lines a linear plot.
func useLogScale(ys []float64) bool {
	min, max := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		if y <= 0 {
			return false
		}
		min = math.Min(min, y)
		max = math.Max(max, y)
	}
	return max/min > 1e3
}
