// Package event implements the typed EventSource/EventSink fan-out
// mechanism of spec §3/§8 (C8): a source carries a fixed primitive
// argument kind and an ordered subscriber list; emission walks a snapshot
// of that list in subscription order.
package event

import (
	"sync"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
)

// Sink receives emissions from a Source whose ArgKind matches its own.
// Sinks are contractually required not to panic; Emit collects any
// returned error rather than aborting the walk.
type Sink interface {
	ArgKind() anysimple.Kind
	Notify(arg anysimple.AnySimple) error
}

// FuncSink adapts a plain function to Sink. Always used by pointer so
// subscriber identity comparisons (Subscribe/Unsubscribe) compare pointer
// identity, never the wrapped func value.
type FuncSink struct {
	kind anysimple.Kind
	fn   func(anysimple.AnySimple) error
}

// NewFuncSink builds a Sink that forwards Notify to fn.
func NewFuncSink(kind anysimple.Kind, fn func(anysimple.AnySimple) error) *FuncSink {
	return &FuncSink{kind: kind, fn: fn}
}

func (f *FuncSink) ArgKind() anysimple.Kind { return f.kind }

func (f *FuncSink) Notify(arg anysimple.AnySimple) error { return f.fn(arg) }

// Source is a named event source with a fixed argument kind (spec §3's
// EventSource entity).
type Source struct {
	mu sync.Mutex

	name        string
	description string
	argKind     anysimple.Kind
	subscribers []Sink
}

func newSource(name, description string, argKind anysimple.Kind) *Source {
	return &Source{name: name, description: description, argKind: argKind}
}

func (s *Source) String() string { return s.name }

// Name returns the source's identifier.
func (s *Source) Name() string { return s.name }

// Description returns the source's free-text description.
func (s *Source) Description() string { return s.description }

// ArgKind returns the primitive kind carried by this source's emissions
// (anysimple.KindNone for an argument-less event).
func (s *Source) ArgKind() anysimple.Kind { return s.argKind }

// Subscribe registers sink, rejecting an argument-kind mismatch
// (InvalidEventSink) or a sink already subscribed
// (EventSinkAlreadySubscribed).
func (s *Source) Subscribe(sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sink.ArgKind() != s.argKind {
		return smperrors.InvalidEventSink(s)
	}

	for _, sub := range s.subscribers {
		if sub == sink {
			return smperrors.EventSinkAlreadySubscribed(s)
		}
	}

	s.subscribers = append(s.subscribers, sink)

	return nil
}

// Unsubscribe removes sink, raising EventSinkNotSubscribed if it was not
// subscribed.
func (s *Source) Unsubscribe(sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == sink {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return nil
		}
	}

	return smperrors.EventSinkNotSubscribed(s)
}

// SubscriberCount reports the number of currently subscribed sinks.
func (s *Source) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subscribers)
}

// Emit invokes every subscriber in subscription order against a snapshot
// taken under lock, so a sink that subscribes/unsubscribes from within
// Notify doesn't race the walk. Every Notify error is collected; the walk
// never stops early.
func (s *Source) Emit(arg anysimple.AnySimple) []error {
	s.mu.Lock()
	subs := append([]Sink(nil), s.subscribers...)
	s.mu.Unlock()

	var errs []error

	for _, sub := range subs {
		if err := sub.Notify(arg); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// Catalog is the per-component registry of published event sources and
// reserved sink names, folded into the owning Composite's combined
// namespace via HasName (spec §3's Composite uniqueness rule names
// "event sources, event sinks" alongside fields/operations/properties).
type Catalog struct {
	mu sync.Mutex

	sources     map[string]*Source
	sourceOrder []string
	sinkNames   map[string]struct{}
}

// NewCatalog builds an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{sources: make(map[string]*Source), sinkNames: make(map[string]struct{})}
}

func (c *Catalog) String() string { return "EventCatalog" }

func (c *Catalog) nameInUseLocked(name string) bool {
	if _, ok := c.sources[name]; ok {
		return true
	}

	_, ok := c.sinkNames[name]

	return ok
}

// HasName reports whether name is already used by a published source or
// sink, for Composite.AddNamespaceChecker.
func (c *Catalog) HasName(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nameInUseLocked(name)
}

// PublishEventSource registers a new named Source.
func (c *Catalog) PublishEventSource(name, description string, argKind anysimple.Kind) (*Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nameInUseLocked(name) {
		return nil, smperrors.DuplicateName(c, name)
	}

	s := newSource(name, description, argKind)
	c.sources[name] = s
	c.sourceOrder = append(c.sourceOrder, name)

	return s, nil
}

// PublishEventSink reserves name in the namespace for a sink the caller
// constructs directly (e.g. via NewFuncSink); the Catalog only tracks the
// name, since a sink has no published state of its own.
func (c *Catalog) PublishEventSink(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nameInUseLocked(name) {
		return smperrors.DuplicateName(c, name)
	}

	c.sinkNames[name] = struct{}{}

	return nil
}

// Source looks up a previously published source by name.
func (c *Catalog) Source(name string) (*Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sources[name]

	return s, ok
}

// Sources returns published sources in publication order.
func (c *Catalog) Sources() []*Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Source, len(c.sourceOrder))
	for i, n := range c.sourceOrder {
		out[i] = c.sources[n]
	}

	return out
}
