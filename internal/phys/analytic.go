package phys

// Analytic advances the body with the closed-form constant-acceleration
// solution. For an isotropic inertia tensor (the solid sphere) the
// torque-free angular velocity is constant, so the engine holds it fixed
// and conserves energy and angular momentum to rounding error. It serves
// as the error-free baseline the other engines are measured against.
type Analytic struct {
	body
}

func NewAnalytic() *Analytic { return &Analytic{} }

func (e *Analytic) Configure(cfg Config) error { return e.configure(cfg) }

func (e *Analytic) Step(n int) error {
	if err := e.checkConfigured(); err != nil {
		return err
	}
	dt := e.cfg.StepSize
	for i := 0; i < n; i++ {
		a := e.acceleration()
		e.pos = e.pos.Add(e.vel.Scale(dt)).Add(a.Scale(0.5 * dt * dt))
		e.vel = e.vel.Add(a.Scale(dt))
		e.simTime += dt
	}
	e.force = Vec3{}
	return nil
}

func (e *Analytic) Diagnostics() []string { return nil }

func (e *Analytic) Diagnostic(string) (float64, bool) { return 0, false }
