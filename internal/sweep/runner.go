package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/op/go-logging"

	"github.com/verisim/verisim/internal/phys"
	"github.com/verisim/verisim/internal/sampler"
	"github.com/verisim/verisim/internal/stats"
)

// ErrTemporalDrift indicates the engine's simulated time deviated from
// the requested duration by more than one step size, meaning steps were
// silently dropped or merged.
var ErrTemporalDrift = errors.New("sweep: simulated time drifted from requested duration")

// Scalar metric names in a run result.
const (
	ScalarWallTime     = "wallTime"
	ScalarSimTime      = "simTime"
	ScalarTimeRatio    = "timeRatio"
	ScalarEnergy0      = "energy0"
	ScalarAngMomentum0 = "angMomentum0"
)

// Scenario fixes everything about a run that is not swept: the body
// geometry, its initial condition and the simulated duration. Initial
// angular velocity must be nonzero or every baseline is degenerate.
type Scenario struct {
	Duration          float64   `json:"duration" yaml:"duration"`
	Radius            float64   `json:"radius" yaml:"radius"`
	InitialPosition   phys.Vec3 `json:"initial_position" yaml:"initial_position"`
	InitialVelocity   phys.Vec3 `json:"initial_velocity" yaml:"initial_velocity"`
	InitialAngularVel phys.Vec3 `json:"initial_angular_vel" yaml:"initial_angular_vel"`
}

// Steps is the fixed step count for one run at the given step size.
func (s Scenario) Steps(dt float64) int {
	return int(math.Ceil(s.Duration / dt))
}

// Result is the outcome of one configuration point. Statistics stay
// populated even when Err is set (temporal drift), so a failed run can
// still be diagnosed.
type Result struct {
	Point   Point
	Scalars map[string]float64
	Bundles map[string]map[stats.Kind]float64
	Steps   int
	Passed  bool
	Err     error
}

// Runner executes configuration points against engines from a registry.
// Runs are independent: every point gets a fresh engine and sampler.
type Runner struct {
	registry *phys.Registry
	scenario Scenario
	kinds    []stats.Kind
	log      *logging.Logger
}

func NewRunner(registry *phys.Registry, scenario Scenario, kinds []stats.Kind, log *logging.Logger) *Runner {
	return &Runner{registry: registry, scenario: scenario, kinds: kinds, log: log}
}

// RunPoint drives one configuration point through configure, baseline,
// run, aggregate and report. It never panics the sweep: every failure
// mode lands in the result's Err.
func (r *Runner) RunPoint(ctx context.Context, p Point) *Result {
	res := &Result{Point: p}
	if r.log != nil {
		r.log.Debugf("point %s: iters=%d dt=%g mass=%g gravity=%g force=%g tolerance=%g",
			p.Engine, p.Iterations, p.StepSize, p.Mass, p.Gravity, p.Force, p.Tolerance)
	}

	// Configure
	eng, err := r.registry.Get(p.Engine)
	if err != nil {
		res.Err = err
		return res
	}
	cfg := phys.Config{
		Mass:              p.Mass,
		Radius:            r.scenario.Radius,
		Gravity:           phys.Vec3{Z: p.Gravity},
		StepSize:          p.StepSize,
		Iterations:        p.Iterations,
		Tolerance:         p.Tolerance,
		InitialPosition:   r.scenario.InitialPosition,
		InitialVelocity:   r.scenario.InitialVelocity,
		InitialAngularVel: r.scenario.InitialAngularVel,
	}
	if err := eng.Configure(cfg); err != nil {
		res.Err = fmt.Errorf("configure %s: %w", p.Engine, err)
		return res
	}

	// Baseline
	baseline := sampler.CaptureBaseline(eng.State())
	diagNames := eng.Diagnostics()
	smp, err := sampler.New(baseline, r.kinds, diagNames)
	if err != nil {
		res.Err = err
		return res
	}

	// Run
	steps := r.scenario.Steps(p.StepSize)
	force := phys.Vec3{Z: p.Force}
	start := time.Now()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			res.Err = ctx.Err()
			return res
		default:
		}

		eng.ApplyForce(force)
		if err := eng.Step(1); err != nil {
			res.Err = fmt.Errorf("step %d: %w", i, err)
			return res
		}
		smp.SampleStep(eng.State())
		for _, name := range diagNames {
			if v, ok := eng.Diagnostic(name); ok {
				smp.SampleDiagnostic(name, v)
			}
		}
	}
	wall := time.Since(start).Seconds()

	// Aggregate
	simTime := eng.SimTime()
	res.Steps = steps
	res.Bundles = smp.Report()
	res.Scalars = map[string]float64{
		ScalarWallTime:     wall,
		ScalarSimTime:      simTime,
		ScalarEnergy0:      baseline.Energy,
		ScalarAngMomentum0: baseline.AngMomentumMag,
	}
	if simTime > 0 {
		res.Scalars[ScalarTimeRatio] = wall / simTime
	}

	// Report
	if math.Abs(simTime-r.scenario.Duration) > 1.1*p.StepSize {
		res.Err = fmt.Errorf("%w: simulated %gs of requested %gs",
			ErrTemporalDrift, simTime, r.scenario.Duration)
		return res
	}
	res.Passed = r.withinTolerance(res)
	return res
}

// withinTolerance applies the point's residual tolerance to the two
// conserved quantities. Tolerance 0 disables the threshold, as in the
// calibration grid, and the run passes on completion alone.
func (r *Runner) withinTolerance(res *Result) bool {
	if res.Point.Tolerance <= 0 {
		return true
	}
	energy := res.Bundles[sampler.BundleEnergyError][stats.MaxAbs]
	angMom := res.Bundles[sampler.BundleAngMomentumErr][stats.MaxAbs]
	return energy <= res.Point.Tolerance && angMom <= res.Point.Tolerance
}

// Observer is notified after each completed point.
type Observer func(idx, total int, res *Result)

// RunAll executes every point of the grid sequentially. Per-point
// failures are recorded in their results and never abort the sweep; the
// returned error is non-nil only when the context is canceled.
func (r *Runner) RunAll(ctx context.Context, grid Grid, obs Observer) ([]*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	points := grid.Points()
	results := make([]*Result, 0, len(points))
	for i, p := range points {
		res := r.RunPoint(ctx, p)
		results = append(results, res)
		if obs != nil {
			obs(i, len(points), res)
		}
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return results, res.Err
		}
	}
	return results, nil
}
