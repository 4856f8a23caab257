package component

import (
	"fmt"
	"sync"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// ReferenceCollection is a named, bounded, non-owning collection of an
// Aggregate's referenced components (spec §3's Aggregate entity). Unlike a
// Container, name collisions among referenced components are permitted;
// lookup by name may return any matching entry.
type ReferenceCollection struct {
	name        string
	description string
	lower       int
	upper       int

	mu   sync.Mutex
	refs []Named
}

func (rc *ReferenceCollection) String() string { return rc.name }

// Name returns the reference collection's identifier.
func (rc *ReferenceCollection) Name() string { return rc.name }

// Description returns the collection's free-text description.
func (rc *ReferenceCollection) Description() string { return rc.description }

// Bounds returns the collection's lower and upper limits.
func (rc *ReferenceCollection) Bounds() (lower, upper int) { return rc.lower, rc.upper }

// Count returns the current number of references.
func (rc *ReferenceCollection) Count() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return len(rc.refs)
}

// References returns the referenced components in insertion order.
func (rc *ReferenceCollection) References() []Named {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return append([]Named(nil), rc.refs...)
}

// ByName returns any one referenced component with the given name, since
// aggregates permit name collisions among references.
func (rc *ReferenceCollection) ByName(name string) (Named, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for _, r := range rc.refs {
		if r.Name() == name {
			return r, true
		}
	}

	return nil, false
}

// Aggregate is a component extension owning a set of ReferenceCollections
// (spec §3/§4.5's Aggregate entity): same count-bound semantics as
// Composite's Container, but non-owning and collision-tolerant.
type Aggregate struct {
	*Component

	mu        sync.Mutex
	refs      map[string]*ReferenceCollection
	refsOrder []string
}

// NewAggregate constructs an Aggregate in state Created.
func NewAggregate(name, description string, self any) *Aggregate {
	return &Aggregate{
		Component: NewComponent(name, description, self),
		refs:      make(map[string]*ReferenceCollection),
	}
}

// AddReferenceCollection declares a new named reference collection with
// the given bounds.
func (ag *Aggregate) AddReferenceCollection(name, description string, lower, upper int) (*ReferenceCollection, error) {
	ag.mu.Lock()
	defer ag.mu.Unlock()

	if _, dup := ag.refs[name]; dup {
		return nil, smperrors.DuplicateName(ag, name)
	}

	rc := &ReferenceCollection{name: name, description: description, lower: lower, upper: upper}
	ag.refs[name] = rc
	ag.refsOrder = append(ag.refsOrder, name)

	return rc, nil
}

// ReferenceCollection looks up a declared reference collection by name.
func (ag *Aggregate) ReferenceCollection(name string) (*ReferenceCollection, bool) {
	ag.mu.Lock()
	defer ag.mu.Unlock()

	rc, ok := ag.refs[name]
	return rc, ok
}

// ReferenceCollections returns declared collections in declaration order.
func (ag *Aggregate) ReferenceCollections() []*ReferenceCollection {
	ag.mu.Lock()
	defer ag.mu.Unlock()

	out := make([]*ReferenceCollection, len(ag.refsOrder))
	for i, n := range ag.refsOrder {
		out[i] = ag.refs[n]
	}

	return out
}

// AddReference appends target to the named collection, rejecting a
// collection already at its upper bound (ReferenceFull).
func (ag *Aggregate) AddReference(collectionName string, target Named) error {
	ag.mu.Lock()
	rc, ok := ag.refs[collectionName]
	ag.mu.Unlock()

	if !ok {
		return smperrors.NotContained(ag, collectionName)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.upper >= 0 && len(rc.refs) >= rc.upper {
		return smperrors.ReferenceFull(ag, collectionName, int64(rc.upper))
	}

	rc.refs = append(rc.refs, target)

	return nil
}

// RemoveReference deletes the first reference in the named collection
// matching targetName, rejecting the removal if it would violate the
// collection's lower bound (CannotRemove) or no match exists
// (NotReferenced).
func (ag *Aggregate) RemoveReference(collectionName, targetName string) error {
	ag.mu.Lock()
	rc, ok := ag.refs[collectionName]
	ag.mu.Unlock()

	if !ok {
		return smperrors.NotContained(ag, collectionName)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	for i, r := range rc.refs {
		if r.Name() == targetName {
			if len(rc.refs)-1 < rc.lower {
				return smperrors.CannotRemove(ag, fmt.Sprintf("reference %q, lower %d", collectionName, rc.lower))
			}

			rc.refs = append(rc.refs[:i], rc.refs[i+1:]...)
			return nil
		}
	}

	return smperrors.NotReferenced(ag, targetName)
}
