package phys

import "math"

// DiagEnergyResidual is the per-step energy change exposed by the
// numerical engines.
const DiagEnergyResidual = "energy_residual"

// Symplectic advances the body with semi-implicit Euler: velocity first,
// then position from the updated velocity. Iterations sets the number of
// inner substeps per Step call.
type Symplectic struct {
	body
	residual float64
}

func NewSymplectic() *Symplectic { return &Symplectic{} }

func (e *Symplectic) Configure(cfg Config) error { return e.configure(cfg) }

func (e *Symplectic) Step(n int) error {
	if err := e.checkConfigured(); err != nil {
		return err
	}
	h := e.cfg.StepSize / float64(e.cfg.Iterations)
	for i := 0; i < n; i++ {
		before := e.energy()
		a := e.acceleration()
		for j := 0; j < e.cfg.Iterations; j++ {
			e.vel = e.vel.Add(a.Scale(h))
			e.pos = e.pos.Add(e.vel.Scale(h))
			e.angVel = e.angVel.Add(e.eulerTorqueFree(e.angVel).Scale(h))
		}
		e.simTime += e.cfg.StepSize
		e.residual = math.Abs(e.energy() - before)
	}
	e.force = Vec3{}
	return nil
}

func (e *Symplectic) Diagnostics() []string { return []string{DiagEnergyResidual} }

func (e *Symplectic) Diagnostic(name string) (float64, bool) {
	if name == DiagEnergyResidual {
		return e.residual, true
	}
	return 0, false
}
