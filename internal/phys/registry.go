package phys

import (
	"fmt"
	"sort"
)

// Registry maps engine names to factories. Every lookup returns a fresh
// instance so concurrent runs never share integrator state.
type Registry struct {
	engines map[string]func() Engine
}

func NewRegistry() *Registry {
	r := &Registry{engines: make(map[string]func() Engine)}
	r.engines["analytic"] = func() Engine { return NewAnalytic() }
	r.engines["symplectic"] = func() Engine { return NewSymplectic() }
	r.engines["rk4"] = func() Engine { return NewRK4() }
	return r
}

// Register adds an engine factory, replacing any existing entry with the
// same name. External engine bindings hook in here.
func (r *Registry) Register(name string, factory func() Engine) {
	r.engines[name] = factory
}

func (r *Registry) Get(name string) (Engine, error) {
	fn, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("phys: unknown engine: %s", name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
