// Package phys provides reference rigid-body engines behind a single
// opaque stepper interface.
//
// The engines simulate one unconstrained body under uniform gravity and
// an externally applied force. They differ only in integration scheme:
//
//   - [Analytic]: closed-form constant-acceleration flight, exact up to
//     floating-point rounding for the sphere scenario
//   - [Symplectic]: semi-implicit Euler
//   - [RK4]: classic 4th-order Runge–Kutta
//
// Engines are NOT thread-safe; every concurrent run must own its own
// instance.
package phys

import (
	"errors"
	"fmt"
)

// ErrConfig indicates an engine rejected its configuration.
var ErrConfig = errors.New("phys: invalid configuration")

// BodyState is the observable state of the simulated body.
type BodyState struct {
	Position   Vec3
	LinearVel  Vec3
	AngularVel Vec3
	Inertia    Inertia
	Mass       float64
	Energy     float64
}

// AngularMomentum returns H = Iw in the world frame.
func (s BodyState) AngularMomentum() Vec3 {
	return s.Inertia.MulVec(s.AngularVel)
}

// Config describes one body and the engine's stepping parameters.
type Config struct {
	Mass   float64
	Radius float64

	Gravity  Vec3
	StepSize float64

	// Iterations is the solver iteration count; the reference engines
	// interpret it as inner substeps per Step call.
	Iterations int

	// Tolerance is the solver residual tolerance. The reference engines
	// record it but have no constraint solver to apply it to.
	Tolerance float64

	InitialPosition   Vec3
	InitialVelocity   Vec3
	InitialAngularVel Vec3
}

func (c Config) validate() error {
	if c.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrConfig, c.Mass)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %g", ErrConfig, c.Radius)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("%w: step size must be positive, got %g", ErrConfig, c.StepSize)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrConfig, c.Iterations)
	}
	return nil
}

// Engine is the opaque stepper surface the sweep drives. Forces applied
// via ApplyForce accumulate and act over the next Step call only,
// matching how per-update forces work in full physics engines.
type Engine interface {
	Configure(cfg Config) error
	ApplyForce(f Vec3)
	Step(n int) error
	State() BodyState
	SimTime() float64

	// Diagnostics names the engine-specific scalar diagnostics this
	// engine exposes; Diagnostic reads one by name. A missing name
	// returns ok=false rather than an error.
	Diagnostics() []string
	Diagnostic(name string) (float64, bool)
}

// body carries the state shared by all reference engines.
type body struct {
	cfg        Config
	pos        Vec3
	vel        Vec3
	angVel     Vec3
	inertia    Inertia
	force      Vec3
	simTime    float64
	configured bool
}

func (b *body) configure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	b.cfg = cfg
	b.pos = cfg.InitialPosition
	b.vel = cfg.InitialVelocity
	b.angVel = cfg.InitialAngularVel
	b.inertia = SphereInertia(cfg.Mass, cfg.Radius)
	b.force = Vec3{}
	b.simTime = 0
	b.configured = true
	return nil
}

func (b *body) ApplyForce(f Vec3) { b.force = b.force.Add(f) }

func (b *body) SimTime() float64 { return b.simTime }

// energy is kinetic plus gravitational potential, −m·g·p, so it is
// invariant under gravity-only flight.
func (b *body) energy() float64 {
	ke := 0.5*b.cfg.Mass*b.vel.Dot(b.vel) + 0.5*b.angVel.Dot(b.inertia.MulVec(b.angVel))
	pe := -b.cfg.Mass * b.cfg.Gravity.Dot(b.pos)
	return ke + pe
}

func (b *body) State() BodyState {
	return BodyState{
		Position:   b.pos,
		LinearVel:  b.vel,
		AngularVel: b.angVel,
		Inertia:    b.inertia,
		Mass:       b.cfg.Mass,
		Energy:     b.energy(),
	}
}

// acceleration for the pending step: gravity plus applied force.
func (b *body) acceleration() Vec3 {
	return b.cfg.Gravity.Add(b.force.Scale(1 / b.cfg.Mass))
}

// eulerTorqueFree is dw/dt from Euler's rigid-body equations with zero
// torque: w' = I⁻¹(Iw × w).
func (b *body) eulerTorqueFree(w Vec3) Vec3 {
	return b.inertia.SolveVec(b.inertia.MulVec(w).Cross(w))
}

func (b *body) checkConfigured() error {
	if !b.configured {
		return fmt.Errorf("%w: engine stepped before Configure", ErrConfig)
	}
	return nil
}
