// Package linkregistry implements the reference-counted directed link
// multiset of spec §3/§4.9 (C9): a source-to-target edge count plus a
// reverse index rooted at each target, so RemoveLinks(target) can ask
// every current source to tear down its own outgoing edges.
package linkregistry

import (
	"sync"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// Named is the minimal identity a link endpoint needs.
type Named interface {
	Name() string
}

// LinkingComponent is a source that can remove its own outgoing edges to
// a target, invoked by RemoveLinks (spec §4.9's "source walks its own
// outgoing graph" contract). A source that doesn't implement this blocks
// RemoveLinks for any target it links to.
type LinkingComponent interface {
	Named
	RemoveLinksTo(targetName string)
}

type edgeKey struct{ source, target string }

// Registry is the process-wide link multiset. Internally serialized by
// two fine-grained locks (spec §4.9): one over the edge-count map, one
// over the reverse index, since most operations touch both but the
// reverse index is also read independently by GetLinkSources.
type Registry struct {
	edgesMu sync.Mutex
	edges   map[edgeKey]uint32

	reverseMu sync.Mutex
	reverse   map[string]map[string]Named
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		edges:   make(map[edgeKey]uint32),
		reverse: make(map[string]map[string]Named),
	}
}

func (r *Registry) String() string { return "LinkRegistry" }

// AddLink increments the edge count from source to target.
func (r *Registry) AddLink(source, target Named) {
	key := edgeKey{source.Name(), target.Name()}

	r.edgesMu.Lock()
	r.edges[key]++
	r.edgesMu.Unlock()

	r.reverseMu.Lock()
	set, ok := r.reverse[target.Name()]
	if !ok {
		set = make(map[string]Named)
		r.reverse[target.Name()] = set
	}
	set[source.Name()] = source
	r.reverseMu.Unlock()
}

// RemoveLink decrements the edge count from source to target, erasing the
// entry (and its reverse-index membership) on reaching zero. Removing a
// non-existent edge is a no-op.
func (r *Registry) RemoveLink(source, target Named) {
	key := edgeKey{source.Name(), target.Name()}

	r.edgesMu.Lock()
	n, ok := r.edges[key]
	if !ok {
		r.edgesMu.Unlock()
		return
	}

	n--
	if n == 0 {
		delete(r.edges, key)
	} else {
		r.edges[key] = n
	}
	r.edgesMu.Unlock()

	if n != 0 {
		return
	}

	r.reverseMu.Lock()
	if set, ok := r.reverse[target.Name()]; ok {
		delete(set, source.Name())
		if len(set) == 0 {
			delete(r.reverse, target.Name())
		}
	}
	r.reverseMu.Unlock()
}

// GetLinkCount returns the current edge count from source to target.
func (r *Registry) GetLinkCount(source, target Named) uint32 {
	r.edgesMu.Lock()
	defer r.edgesMu.Unlock()

	return r.edges[edgeKey{source.Name(), target.Name()}]
}

// GetLinkSources returns a snapshot of the sources currently linked to
// target (spec §4.9's "borrowed collection view rooted at the target").
func (r *Registry) GetLinkSources(target Named) []Named {
	r.reverseMu.Lock()
	defer r.reverseMu.Unlock()

	set, ok := r.reverse[target.Name()]
	if !ok {
		return nil
	}

	out := make([]Named, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}

	return out
}

func (r *Registry) sourcesSnapshot(targetName string) ([]Named, bool) {
	r.reverseMu.Lock()
	defer r.reverseMu.Unlock()

	set, ok := r.reverse[targetName]
	if !ok {
		return nil, false
	}

	out := make([]Named, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}

	return out, true
}

// CanRemove reports whether every current source linked to target
// implements LinkingComponent (spec §4.9).
func (r *Registry) CanRemove(target Named) bool {
	sources, ok := r.sourcesSnapshot(target.Name())
	if !ok {
		return true
	}

	for _, s := range sources {
		if _, ok := s.(LinkingComponent); !ok {
			return false
		}
	}

	return true
}

// RemoveLinks asks each source linked to target (that implements
// LinkingComponent) to remove its own edges to target; source-side
// removal decrements edge counts via RemoveLink (spec §4.9). Raises
// CannotRemove if any current source does not implement LinkingComponent.
func (r *Registry) RemoveLinks(target Named) error {
	sources, ok := r.sourcesSnapshot(target.Name())
	if !ok {
		return nil
	}

	for _, s := range sources {
		if _, ok := s.(LinkingComponent); !ok {
			return smperrors.CannotRemove(r, "source \""+s.Name()+"\" does not implement a linking collaborator")
		}
	}

	for _, s := range sources {
		s.(LinkingComponent).RemoveLinksTo(target.Name())
	}

	return nil
}
