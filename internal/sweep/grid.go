// Package sweep expands parameter grids into configuration points and
// runs the conservation benchmark at each one.
package sweep

import "fmt"

// Point is one immutable combination of sweep parameters. Gravity and
// Force are z-components in the world frame, matching the drop-test
// scenario.
type Point struct {
	Engine     string  `json:"engine" yaml:"engine"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	StepSize   float64 `json:"step_size" yaml:"step_size"`
	Mass       float64 `json:"mass" yaml:"mass"`
	Gravity    float64 `json:"gravity" yaml:"gravity"`
	Force      float64 `json:"force" yaml:"force"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance"`
}

// Key embeds every field, so any two distinct points key differently and
// a reporting layer can group results by any subset of dimensions.
func (p Point) Key() string {
	return fmt.Sprintf("%s_i%d_dt%g_m%g_g%g_f%g_tol%g",
		p.Engine, p.Iterations, p.StepSize, p.Mass, p.Gravity, p.Force, p.Tolerance)
}

// Grid holds the per-field value sets a sweep enumerates.
type Grid struct {
	Engines    []string  `yaml:"engines"`
	Iterations []int     `yaml:"iterations"`
	StepSizes  []float64 `yaml:"step_sizes"`
	Masses     []float64 `yaml:"masses"`
	Gravities  []float64 `yaml:"gravities"`
	Forces     []float64 `yaml:"forces"`
	Tolerances []float64 `yaml:"tolerances"`
}

// Count is the size of the Cartesian product.
func (g Grid) Count() int {
	return len(g.Engines) * len(g.Iterations) * len(g.StepSizes) *
		len(g.Masses) * len(g.Gravities) * len(g.Forces) * len(g.Tolerances)
}

// Points expands the full Cartesian product in a fixed order (engines
// outermost, tolerances innermost). The expansion is a pure function of
// the grid, so a sweep can be resumed from any index.
func (g Grid) Points() []Point {
	points := make([]Point, 0, g.Count())
	for _, engine := range g.Engines {
		for _, iters := range g.Iterations {
			for _, dt := range g.StepSizes {
				for _, mass := range g.Masses {
					for _, gravity := range g.Gravities {
						for _, force := range g.Forces {
							for _, tol := range g.Tolerances {
								points = append(points, Point{
									Engine:     engine,
									Iterations: iters,
									StepSize:   dt,
									Mass:       mass,
									Gravity:    gravity,
									Force:      force,
									Tolerance:  tol,
								})
							}
						}
					}
				}
			}
		}
	}
	return points
}

// Validate rejects grids with an empty dimension, which would silently
// expand to zero points.
func (g Grid) Validate() error {
	dims := []struct {
		name string
		n    int
	}{
		{"engines", len(g.Engines)},
		{"iterations", len(g.Iterations)},
		{"step_sizes", len(g.StepSizes)},
		{"masses", len(g.Masses)},
		{"gravities", len(g.Gravities)},
		{"forces", len(g.Forces)},
		{"tolerances", len(g.Tolerances)},
	}
	for _, d := range dims {
		if d.n == 0 {
			return fmt.Errorf("sweep: grid dimension %s is empty", d.name)
		}
	}
	return nil
}
