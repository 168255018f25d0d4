// Package sampler turns raw rigid-body state into normalized
// conservation-error streams and accumulates them into online
// statistics, one sample per simulation step.
package sampler

import (
	"errors"
	"fmt"

	"github.com/verisim/verisim/internal/phys"
	"github.com/verisim/verisim/internal/stats"
)

// ErrDegenerateBaseline indicates the baseline energy or angular
// momentum is zero, leaving the normalized error streams undefined. The
// scenario must guarantee both are nonzero by construction.
var ErrDegenerateBaseline = errors.New("sampler: degenerate baseline")

// Canonical bundle names in a sampler report.
const (
	BundleEnergyError    = "energyError"
	BundleAngMomentumErr = "angMomentumErr"
	BundleLinPositionErr = "linPositionErr"
	BundleLinVelocityErr = "linVelocityErr"
)

// Baseline is the reference snapshot captured at simulation start.
type Baseline struct {
	Position       phys.Vec3
	Velocity       phys.Vec3
	AngMomentum    phys.Vec3
	AngMomentumMag float64
	Energy         float64
}

// CaptureBaseline snapshots the quantities all later errors are measured
// against.
func CaptureBaseline(s phys.BodyState) Baseline {
	h := s.AngularMomentum()
	return Baseline{
		Position:       s.Position,
		Velocity:       s.LinearVel,
		AngMomentum:    h,
		AngMomentumMag: h.Norm(),
		Energy:         s.Energy,
	}
}

// Sampler owns the statistics for one run. It is created fresh for every
// configuration point and never shared; see New.
type Sampler struct {
	baseline Baseline

	linPos *stats.VectorStats
	linVel *stats.VectorStats
	angMom *stats.VectorStats
	energy *stats.SignalStats

	diagNames []string
	diags     map[string]*stats.SignalStats

	samples uint64
}

// New builds a Sampler from a baseline snapshot. It fails fast when the
// baseline energy or angular-momentum magnitude is zero, so a bad
// scenario surfaces before the run loop instead of as NaN statistics.
// diagNames lists the engine diagnostics this run will sample; each gets
// its own bundle with the same kind set.
func New(baseline Baseline, kinds []stats.Kind, diagNames []string) (*Sampler, error) {
	if baseline.Energy == 0 {
		return nil, fmt.Errorf("%w: initial energy is zero", ErrDegenerateBaseline)
	}
	if baseline.AngMomentumMag == 0 {
		return nil, fmt.Errorf("%w: initial angular momentum is zero", ErrDegenerateBaseline)
	}

	s := &Sampler{
		baseline:  baseline,
		diagNames: diagNames,
		diags:     make(map[string]*stats.SignalStats, len(diagNames)),
	}
	var err error
	if s.linPos, err = stats.NewVectorStats(kinds...); err != nil {
		return nil, err
	}
	if s.linVel, err = stats.NewVectorStats(kinds...); err != nil {
		return nil, err
	}
	if s.angMom, err = stats.NewVectorStats(kinds...); err != nil {
		return nil, err
	}
	if s.energy, err = stats.NewSignalStats(kinds...); err != nil {
		return nil, err
	}
	for _, name := range diagNames {
		b, err := stats.NewSignalStats(kinds...)
		if err != nil {
			return nil, err
		}
		s.diags[name] = b
	}
	return s, nil
}

// Baseline returns the reference snapshot.
func (s *Sampler) Baseline() Baseline { return s.baseline }

// SampleStep folds one post-step state into every conservation stream.
// Call it exactly once per simulation step, in step order.
func (s *Sampler) SampleStep(state phys.BodyState) {
	dp := state.Position.Sub(s.baseline.Position)
	s.linPos.InsertData(dp.X, dp.Y, dp.Z)

	dv := state.LinearVel.Sub(s.baseline.Velocity)
	s.linVel.InsertData(dv.X, dv.Y, dv.Z)

	dh := state.AngularMomentum().Sub(s.baseline.AngMomentum).Scale(1 / s.baseline.AngMomentumMag)
	s.angMom.InsertData(dh.X, dh.Y, dh.Z)

	s.energy.InsertData((state.Energy - s.baseline.Energy) / s.baseline.Energy)

	s.samples++
}

// SampleDiagnostic folds one engine diagnostic value into its bundle.
// Unknown names are ignored, matching the capability-query contract: an
// engine that never exposed a diagnostic simply contributes no samples.
func (s *Sampler) SampleDiagnostic(name string, v float64) {
	if b, ok := s.diags[name]; ok {
		b.InsertData(v)
	}
}

// Samples reports how many steps have been folded in.
func (s *Sampler) Samples() uint64 { return s.samples }

// Accessors for axis-level reporting.
func (s *Sampler) LinPositionErr() *stats.VectorStats { return s.linPos }
func (s *Sampler) LinVelocityErr() *stats.VectorStats { return s.linVel }
func (s *Sampler) AngMomentumErr() *stats.VectorStats { return s.angMom }
func (s *Sampler) EnergyErr() *stats.SignalStats      { return s.energy }

// Report aggregates every stream into its kind→value map. Vector streams
// report their magnitude bundle; diagnostic bundles appear only when at
// least one sample arrived, so a missing engine capability leaves no
// empty entry behind.
func (s *Sampler) Report() map[string]map[stats.Kind]float64 {
	out := map[string]map[stats.Kind]float64{
		BundleEnergyError:    s.energy.Map(),
		BundleAngMomentumErr: s.angMom.Mag().Map(),
		BundleLinPositionErr: s.linPos.Mag().Map(),
		BundleLinVelocityErr: s.linVel.Mag().Map(),
	}
	for _, name := range s.diagNames {
		if b := s.diags[name]; b.Count() > 0 {
			out[name] = b.Map()
		}
	}
	return out
}
