package simulator

import (
	"strings"

	"github.com/sarchlab/xsmpcore/component"
)

// Resolver implements the standard XsmpResolver service (grounded on
// original_source/src/Xsmp/Services/XsmpResolver.h): resolves an absolute
// or relative dotted path to a live component under the simulator's
// Models/Services containers. An absolute path never names the simulator
// itself, even though the simulator is the top-level object (the original
// keeps names as short as possible and avoids a dependency on the
// simulator's own name).
type Resolver struct {
	sim *Simulator
}

func newResolver(sim *Simulator) *Resolver { return &Resolver{sim: sim} }

func (r *Resolver) String() string { return "Resolver" }

// ResolveAbsolute resolves a '.'-separated path naming a direct child of
// the Models or Services container (e.g. "Models.thruster" or just
// "thruster"; Models is searched first), returning nil if no component
// matches. A path with more segments below the child returns nil.
func (r *Resolver) ResolveAbsolute(path string) component.Named {
	segs := strings.Split(path, ".")
	if len(segs) == 0 {
		return nil
	}

	for _, containerName := range []string{"Models", "Services"} {
		ct, ok := r.sim.Container(containerName)
		if !ok {
			continue
		}

		start := segs
		if segs[0] == containerName {
			start = segs[1:]
		}

		if len(start) == 0 {
			continue
		}

		child, ok := ct.Child(start[0])
		if !ok {
			continue
		}

		if len(start) == 1 {
			return child
		}
	}

	return nil
}

// ResolveRelative resolves path relative to sender by walking up to the
// Simulator root then resolving absolutely; the core doesn't model
// arbitrary nested composites within a Model, so "relative" here means
// "relative to the simulator root", matching the flat Models/Services
// topology this implementation supports.
func (r *Resolver) ResolveRelative(path string, sender component.Named) component.Named {
	return r.ResolveAbsolute(path)
}
