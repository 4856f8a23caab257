// Package pkgregistry expresses the package ABI contract of spec §6 as
// plain Go interfaces: a Factory builds typed instances under a
// registered uuid, and a Package bundles the Go analogue of the original's
// C-linkage `Initialise_<pkg>`/`Finalise_<pkg>` symbols (idiomatic Go has
// no shared-library ABI, so the contract is expressed as a pair of
// functions registered against a Host rather than dlopen'd symbols; the
// out-of-scope "platform shared-library loading" spec.md names is left to
// an embedding host).
package pkgregistry

import (
	"sync"

	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

// Instance is the minimal shape a factory-built component reports back
// (spec §6: "an instance {name, description, parent}").
type Instance interface {
	Name() string
	Uuid() uuid.Uuid
}

// Factory builds named instances of one declared type (spec §6's Factory
// contract): {name, description, uuid, typeName}, plus Create.
type Factory interface {
	Name() string
	Description() string
	Uuid() uuid.Uuid
	TypeName() string
	Create(name, description string) (Instance, error)
}

// Host is the narrow view of a Simulator a package initializer needs:
// register factories against the simulator's factory catalog and reach
// its type registry to add custom types (spec §6's Initialise_<pkg>
// contract: "registers factories and/or adds services").
type Host interface {
	AddFactory(f Factory) error
	TypeRegistry() *types.Registry
}

// Initialiser is the Go analogue of `Initialise_<pkg>(simulator,
// typeRegistry) -> bool`.
type Initialiser func(host Host) (bool, error)

// Finaliser is the Go analogue of `Finalise_<pkg>() -> bool`.
type Finaliser func() (bool, error)

// Package bundles one package's Initialise/Finalise pair under its name.
type Package struct {
	Name       string
	Initialise Initialiser
	Finalise   Finaliser
}

// Registry tracks, per Host, which packages have already been
// initialised, making a double-initialise against the same Host a no-op
// success (spec §6) rather than re-running Initialise. This is the
// counterpart of the only true global in the original (a `set<Simulator*>` per package
// initializer); here it's instance state on the Registry itself, keyed by
// (package name, Host), rather than a bare package-level set, so a
// process embedding more than one Registry never cross-contaminates.
type Registry struct {
	mu    sync.Mutex
	done  map[string]map[Host]bool
	order []*Package
}

// New builds an empty package registry.
func New() *Registry {
	return &Registry{done: make(map[string]map[Host]bool)}
}

// Load runs pkg.Initialise against host unless it has already succeeded
// for this exact (pkg.Name, host) pair, in which case it is a no-op
// success (spec §6: "a double-initialise against the same simulator is a
// no-op success").
func (r *Registry) Load(pkg *Package, host Host) (bool, error) {
	r.mu.Lock()
	hosts, ok := r.done[pkg.Name]
	if !ok {
		hosts = make(map[Host]bool)
		r.done[pkg.Name] = hosts
	}

	if hosts[host] {
		r.mu.Unlock()
		return true, nil
	}
	r.mu.Unlock()

	ok2, err := pkg.Initialise(host)
	if err != nil || !ok2 {
		return false, err
	}

	r.mu.Lock()
	hosts[host] = true
	r.order = append(r.order, pkg)
	r.mu.Unlock()

	return true, nil
}

// Unload runs every loaded package's Finalise, symmetric with Load (spec
// §6: "Finalise is symmetric"), in reverse load order.
func (r *Registry) Unload() []error {
	r.mu.Lock()
	pkgs := append([]*Package(nil), r.order...)
	r.order = nil
	r.done = make(map[string]map[Host]bool)
	r.mu.Unlock()

	var errs []error

	for i := len(pkgs) - 1; i >= 0; i-- {
		if ok, err := pkgs[i].Finalise(); err != nil {
			errs = append(errs, err)
		} else if !ok {
			errs = append(errs, smperrors.InvalidLibrary(smperrors.Sender("pkgregistry"), pkgs[i].Name, "Finalise reported failure"))
		}
	}

	return errs
}

// CheckFactory validates spec §6's Factory contract: the uuid reported by
// an instance f just built must equal f's own declared uuid.
func CheckFactory(f Factory, inst Instance) error {
	if inst.Uuid() != f.Uuid() {
		return smperrors.InvalidFactory(smperrors.Sender("pkgregistry"), f.Name())
	}

	return nil
}
