package component

import (
	"sync"

	"github.com/sarchlab/xsmpcore/internal/xsmputil"
	"github.com/sarchlab/xsmpcore/smperrors"
)

// Named is the minimal capability a container/reference child must offer.
type Named interface {
	Name() string
}

// Container is a named, bounded, owning collection of a Composite's
// children (spec §3's Composite entity). Upper of -1 means unbounded.
type Container struct {
	name        string
	description string
	lower       int
	upper       int

	mu       sync.Mutex
	children []Named
}

func (ct *Container) String() string { return ct.name }

// Name returns the container's identifier.
func (ct *Container) Name() string { return ct.name }

// Description returns the container's free-text description.
func (ct *Container) Description() string { return ct.description }

// Bounds returns the container's lower and upper limits.
func (ct *Container) Bounds() (lower, upper int) { return ct.lower, ct.upper }

// Count returns the current number of children.
func (ct *Container) Count() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	return len(ct.children)
}

// Children returns the container's children in insertion order.
func (ct *Container) Children() []Named {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	return append([]Named(nil), ct.children...)
}

// Child looks up a child by name.
func (ct *Container) Child(name string) (Named, bool) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	for _, c := range ct.children {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

// Composite is a component extension owning a set of Containers (spec
// §3/§4.5's Composite entity). Child names must be unique across the
// combined namespace of the composite's published fields/operations/
// properties, any registered extra namespaces (event sources/sinks,
// failures), and sibling containers' children.
type Composite struct {
	*Component

	mu             sync.Mutex
	containers     map[string]*Container
	containerOrder []string
	extraNames     []func(name string) bool
}

// NewComposite constructs a Composite in state Created.
func NewComposite(name, description string, self any) *Composite {
	return &Composite{
		Component:  NewComponent(name, description, self),
		containers: make(map[string]*Container),
	}
}

// AddContainer declares a new named container with the given bounds.
// A name already used by another container is rejected (DuplicateName);
// container names are not checked against children, fields or operations.
func (co *Composite) AddContainer(name, description string, lower, upper int) (*Container, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if _, dup := co.containers[name]; dup {
		return nil, smperrors.DuplicateName(co, name)
	}

	ct := &Container{name: name, description: description, lower: lower, upper: upper}
	co.containers[name] = ct
	co.containerOrder = append(co.containerOrder, name)

	return ct, nil
}

// Container looks up a declared container by name.
func (co *Composite) Container(name string) (*Container, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()

	ct, ok := co.containers[name]
	return ct, ok
}

// Containers returns declared containers in declaration order.
func (co *Composite) Containers() []*Container {
	co.mu.Lock()
	defer co.mu.Unlock()

	out := make([]*Container, len(co.containerOrder))
	for i, n := range co.containerOrder {
		out[i] = co.containers[n]
	}

	return out
}

// AddNamespaceChecker registers an additional name-collision source (used
// by the event package to fold event source/sink names into the
// composite's combined namespace without component importing event).
func (co *Composite) AddNamespaceChecker(fn func(name string) bool) {
	co.mu.Lock()
	co.extraNames = append(co.extraNames, fn)
	co.mu.Unlock()
}

func (co *Composite) nameInUse(name string) bool {
	if pub := co.Publication(); pub != nil {
		if _, ok := pub.Field(name); ok {
			return true
		}

		if _, ok := pub.Operation(name); ok {
			return true
		}

		for _, p := range pub.Properties() {
			if p.Name == name {
				return true
			}
		}
	}

	co.mu.Lock()
	checkers := append([]func(string) bool(nil), co.extraNames...)
	containers := make([]*Container, 0, len(co.containers))

	for _, n := range co.containerOrder {
		containers = append(containers, co.containers[n])
	}

	co.mu.Unlock()

	for _, fn := range checkers {
		if fn(name) {
			return true
		}
	}

	for _, ct := range containers {
		if _, ok := ct.Child(name); ok {
			return true
		}
	}

	return false
}

// Add inserts child into the named container, rejecting a name already in
// use anywhere in the composite's combined namespace (DuplicateName) or a
// container at its upper bound (ContainerFull).
func (co *Composite) Add(containerName string, child Named) error {
	if err := xsmputil.CheckName(co, child.Name()); err != nil {
		return err
	}

	co.mu.Lock()
	ct, ok := co.containers[containerName]
	co.mu.Unlock()

	if !ok {
		return smperrors.NotContained(co, containerName)
	}

	if co.nameInUse(child.Name()) {
		return smperrors.DuplicateName(co, child.Name())
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ct.upper >= 0 && len(ct.children) >= ct.upper {
		return smperrors.ContainerFull(co, containerName, int64(ct.upper))
	}

	ct.children = append(ct.children, child)

	if setter, ok := child.(interface{ setParent(*Composite) }); ok {
		setter.setParent(co)
	}

	return nil
}

// Remove deletes the named child from the named container, rejecting the
// removal if it would violate the container's lower bound (CannotDelete)
// or the child is not present (NotContained).
func (co *Composite) Remove(containerName, childName string) error {
	co.mu.Lock()
	ct, ok := co.containers[containerName]
	co.mu.Unlock()

	if !ok {
		return smperrors.NotContained(co, containerName)
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	for i, c := range ct.children {
		if c.Name() == childName {
			if len(ct.children)-1 < ct.lower {
				return smperrors.CannotDelete(co, containerName, int64(ct.lower))
			}

			ct.children = append(ct.children[:i], ct.children[i+1:]...)
			return nil
		}
	}

	return smperrors.NotContained(co, childName)
}
