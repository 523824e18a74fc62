package arbiter

import (
	"fmt"
	"sort"

	"github.com/wdmsim/wdmsim/sim"
)

// Registry maps arbiter names to program factories. Registration is explicit
// — callers build a registry and register into it — so the set of available
// arbiters is always visible at the call site rather than assembled by
// import side effects.
type Registry struct {
	factories map[string]ProgramFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProgramFactory)}
}

// Register binds a name to a program factory. Re-registering a name is a
// configuration error and panics.
func (r *Registry) Register(name string, factory ProgramFactory) {
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("arbiter: %q registered twice", name))
	}
	r.factories[name] = factory
}

// Lookup returns the factory bound to name.
func (r *Registry) Lookup(name string) (ProgramFactory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names sorted ascending.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a driver running the named arbiter over the given slices.
func (r *Registry) New(name string, slices []*sim.RxSlice, targetLaneOrder []int) (*Driver, error) {
	factory, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("arbiter %q not registered (have %v)", name, r.Names())
	}
	return NewDriver(name, slices, targetLaneOrder, factory), nil
}

// SUTFactory adapts the named arbiter into the engine's factory signature.
// The returned factory panics on an unknown name; resolve the name with
// Lookup first when it comes from user input.
func (r *Registry) SUTFactory(name string) sim.ArbiterFactory {
	return func(slices []*sim.RxSlice, targetLaneOrder []int) sim.Arbiter {
		d, err := r.New(name, slices, targetLaneOrder)
		if err != nil {
			panic(err)
		}
		return d
	}
}

// Builtin returns a registry with the stock arbiters:
//   - one-by-one: sequential lock in chain order, least-significant policy
//   - one-by-one-nearest: sequential lock, nearest policy (minimizes DAC
//     slew across laser hot swaps)
//   - broadside: all slices in one tick, the duplicate-prone baseline
func Builtin() *Registry {
	r := NewRegistry()
	r.Register("one-by-one", newOneByOne(sim.LockLeastSignificant))
	r.Register("one-by-one-nearest", newOneByOne(sim.LockNearest))
	r.Register("broadside", newBroadside(sim.LockLeastSignificant))
	return r
}
