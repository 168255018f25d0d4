package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/verisim/verisim/internal/phys"
	"github.com/verisim/verisim/internal/sampler"
	"github.com/verisim/verisim/internal/stats"
)

func testScenario() Scenario {
	return Scenario{
		Duration:          10.0,
		Radius:            0.5,
		InitialPosition:   phys.Vec3{X: 0, Y: 0, Z: 10},
		InitialAngularVel: phys.Vec3{X: 0, Y: 0, Z: 2.0},
	}
}

// calibrationGrid mirrors the standard six-mass drop-test sweep.
func calibrationGrid() Grid {
	return Grid{
		Engines:    []string{"analytic"},
		Iterations: []int{50},
		StepSizes:  []float64{0.001},
		Masses:     []float64{0.1, 1.0, 10.0, 100.0, 1000.0, 10000.0},
		Gravities:  []float64{-1.0},
		Forces:     []float64{0.0},
		Tolerances: []float64{0.0},
	}
}

func TestGridExpansion(t *testing.T) {
	g := calibrationGrid()
	if g.Count() != 6 {
		t.Fatalf("count = %d, want 6", g.Count())
	}
	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("points = %d, want 6", len(points))
	}

	keys := make(map[string]bool)
	for _, p := range points {
		keys[p.Key()] = true
	}
	if len(keys) != 6 {
		t.Errorf("expected 6 unique keys, got %d", len(keys))
	}

	// Expansion is deterministic.
	again := g.Points()
	for i := range points {
		if points[i] != again[i] {
			t.Fatalf("expansion not deterministic at index %d", i)
		}
	}
}

func TestGridValidate(t *testing.T) {
	g := calibrationGrid()
	g.Forces = nil
	if err := g.Validate(); err == nil {
		t.Error("expected error for empty dimension")
	}
}

func TestFreeFallConservation(t *testing.T) {
	r := NewRunner(phys.NewRegistry(), testScenario(), stats.DefaultKinds(), nil)
	res := r.RunPoint(context.Background(), Point{
		Engine:     "analytic",
		Iterations: 50,
		StepSize:   0.001,
		Mass:       1.0,
		Gravity:    -1.0,
	})
	if res.Err != nil {
		t.Fatalf("run failed: %v", res.Err)
	}
	if res.Steps != 10000 {
		t.Errorf("steps = %d, want 10000", res.Steps)
	}
	if simTime := res.Scalars[ScalarSimTime]; math.Abs(simTime-10.0) > 0.0011 {
		t.Errorf("sim time = %v, want 10.0 within 0.0011", simTime)
	}

	// Energy and angular momentum are conserved by the analytic engine.
	if e := res.Bundles[sampler.BundleEnergyError][stats.MaxAbs]; e > 1e-9 {
		t.Errorf("energy error = %v, want ~0", e)
	}
	if h := res.Bundles[sampler.BundleAngMomentumErr][stats.MaxAbs]; h > 1e-12 {
		t.Errorf("angular momentum error = %v, want ~0", h)
	}

	// Position drift is real physics, not an invariant violation: the
	// body falls ½gt² = 50 m over the run.
	if p := res.Bundles[sampler.BundleLinPositionErr][stats.MaxAbs]; math.Abs(p-50.0) > 0.02 {
		t.Errorf("position drift = %v, want ~50", p)
	}
	if !res.Passed {
		t.Error("zero tolerance run should pass on completion")
	}
}

func TestCalibrationSweep(t *testing.T) {
	r := NewRunner(phys.NewRegistry(), testScenario(), stats.DefaultKinds(), nil)
	results, err := r.RunAll(context.Background(), calibrationGrid(), nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("results = %d, want 6", len(results))
	}
	keys := make(map[string]bool)
	masses := make(map[float64]bool)
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("point %s failed: %v", res.Point.Key(), res.Err)
		}
		keys[res.Point.Key()] = true
		masses[res.Point.Mass] = true
	}
	if len(keys) != 6 || len(masses) != 6 {
		t.Errorf("expected 6 unique keys and masses, got %d/%d", len(keys), len(masses))
	}
}

func TestConfigFailureDoesNotAbortSweep(t *testing.T) {
	g := calibrationGrid()
	g.Engines = []string{"no-such-engine", "analytic"}
	g.Masses = []float64{1.0}

	r := NewRunner(phys.NewRegistry(), testScenario(), stats.DefaultKinds(), nil)
	results, err := r.RunAll(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err == nil {
		t.Error("unknown engine should fail its point")
	}
	if results[1].Err != nil {
		t.Errorf("healthy point failed: %v", results[1].Err)
	}
}

func TestDegenerateScenarioFailsFast(t *testing.T) {
	sc := testScenario()
	sc.InitialAngularVel = phys.Vec3{}

	r := NewRunner(phys.NewRegistry(), sc, stats.DefaultKinds(), nil)
	res := r.RunPoint(context.Background(), Point{
		Engine: "analytic", Iterations: 1, StepSize: 0.001, Mass: 1.0, Gravity: -1.0,
	})
	if !errors.Is(res.Err, sampler.ErrDegenerateBaseline) {
		t.Errorf("expected ErrDegenerateBaseline, got %v", res.Err)
	}
}

// laggy wraps an engine and under-reports simulated time, as if steps
// were silently merged.
type laggy struct {
	phys.Engine
}

func (l *laggy) SimTime() float64 { return l.Engine.SimTime() / 2 }

func TestTemporalDriftIsFlagged(t *testing.T) {
	reg := phys.NewRegistry()
	reg.Register("laggy", func() phys.Engine { return &laggy{Engine: phys.NewAnalytic()} })

	sc := testScenario()
	sc.Duration = 1.0
	r := NewRunner(reg, sc, stats.DefaultKinds(), nil)
	res := r.RunPoint(context.Background(), Point{
		Engine: "laggy", Iterations: 1, StepSize: 0.001, Mass: 1.0, Gravity: -1.0,
	})
	if !errors.Is(res.Err, ErrTemporalDrift) {
		t.Fatalf("expected ErrTemporalDrift, got %v", res.Err)
	}
	if res.Passed {
		t.Error("drifted run must not pass")
	}
	// Statistics are still surfaced for diagnosis.
	if res.Bundles == nil || len(res.Bundles[sampler.BundleEnergyError]) == 0 {
		t.Error("drifted run must still report its statistics")
	}
}

func TestToleranceGate(t *testing.T) {
	sc := testScenario()
	sc.Duration = 1.0
	r := NewRunner(phys.NewRegistry(), sc, stats.DefaultKinds(), nil)

	// The symplectic engine's energy error at dt=10ms is small but
	// nonzero, so a generous tolerance passes and a tiny one fails.
	base := Point{Engine: "symplectic", Iterations: 1, StepSize: 0.01, Mass: 1.0, Gravity: -1.0}

	loose := base
	loose.Tolerance = 0.5
	if res := r.RunPoint(context.Background(), loose); res.Err != nil || !res.Passed {
		t.Errorf("loose tolerance: passed=%v err=%v", res.Passed, res.Err)
	}

	tight := base
	tight.Tolerance = 1e-15
	if res := r.RunPoint(context.Background(), tight); res.Err != nil || res.Passed {
		t.Errorf("tight tolerance: passed=%v err=%v", res.Passed, res.Err)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	sc := testScenario()
	sc.Duration = 1.0
	r := NewRunner(phys.NewRegistry(), sc, stats.DefaultKinds(), nil)

	g := calibrationGrid()
	seq, err := r.RunAll(context.Background(), g, nil)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := r.RunParallel(context.Background(), g, 4, nil)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if len(par) != len(seq) {
		t.Fatalf("parallel results = %d, want %d", len(par), len(seq))
	}
	for i := range seq {
		if seq[i].Point != par[i].Point {
			t.Errorf("order mismatch at %d: %v vs %v", i, seq[i].Point, par[i].Point)
		}
		if seq[i].Bundles[sampler.BundleEnergyError][stats.MaxAbs] !=
			par[i].Bundles[sampler.BundleEnergyError][stats.MaxAbs] {
			t.Errorf("nondeterministic statistics at %d", i)
		}
	}
}

func TestCancellationStopsSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(phys.NewRegistry(), testScenario(), stats.DefaultKinds(), nil)
	results, err := r.RunAll(ctx, calibrationGrid(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) >= 6 {
		t.Errorf("canceled sweep should stop early, got %d results", len(results))
	}
}
