// Package eventmanager implements the process-wide named-event bijection
// of spec §3/§4.7 (C10): event names map to stable ids, pre-loaded with
// the 19 standard simulator-lifecycle events at fixed ids, with entry
// points subscribed per event id.
package eventmanager

import (
	"sync"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// Standard lifecycle event ids, in the exact declaration order of the
// original implementation (1..19); user event ids continue from 20.
const (
	LeaveConnectingId = int64(iota + 1)
	EnterInitialisingId
	LeaveInitialisingId
	EnterStandbyId
	LeaveStandbyId
	EnterExecutingId
	LeaveExecutingId
	EnterStoringId
	LeaveStoringId
	EnterRestoringId
	LeaveRestoringId
	EnterExitingId
	EnterAbortingId
	EpochTimeChangedId
	MissionTimeChangedId
	EnterReconnectingId
	LeaveReconnectingId
	PreSimTimeChangeId
	PostSimTimeChangeId
)

var standardEventNames = []string{
	"LeaveConnecting",
	"EnterInitialising",
	"LeaveInitialising",
	"EnterStandby",
	"LeaveStandby",
	"EnterExecuting",
	"LeaveExecuting",
	"EnterStoring",
	"LeaveStoring",
	"EnterRestoring",
	"LeaveRestoring",
	"EnterExiting",
	"EnterAborting",
	"EpochTimeChanged",
	"MissionTimeChanged",
	"EnterReconnecting",
	"LeaveReconnecting",
	"PreSimTimeChange",
	"PostSimTimeChange",
}

// EntryPoint is a subscribable, zero-argument callback (spec §3's entry
// point concept, reused across EventManager and Scheduler subscriptions).
type EntryPoint interface {
	Execute() error
}

// FuncEntryPoint adapts a plain function to EntryPoint. Always referenced
// by pointer so subscription-identity comparisons never compare the
// wrapped func value.
type FuncEntryPoint struct {
	fn func() error
}

// NewFuncEntryPoint builds an EntryPoint that calls fn on Execute.
func NewFuncEntryPoint(fn func() error) *FuncEntryPoint {
	return &FuncEntryPoint{fn: fn}
}

func (f *FuncEntryPoint) Execute() error { return f.fn() }

// Manager is the process-wide event name/id bijection and subscription
// table (spec §4.7).
type Manager struct {
	mu sync.Mutex

	nameToID map[string]int64
	idToName map[int64]string
	nextID   int64

	subs map[int64][]EntryPoint
}

// New builds a Manager pre-loaded with the 19 standard lifecycle events
// at fixed ids 1..19; user-registered names start at id 20.
func New() *Manager {
	m := &Manager{
		nameToID: make(map[string]int64),
		idToName: make(map[int64]string),
		nextID:   int64(len(standardEventNames) + 1),
		subs:     make(map[int64][]EntryPoint),
	}

	for i, name := range standardEventNames {
		id := int64(i + 1)
		m.nameToID[name] = id
		m.idToName[id] = name
	}

	return m
}

func (m *Manager) String() string { return "EventManager" }

// QueryEventId returns the stable id for name, registering a new one on
// first use (spec §8 property 6: repeated calls return the same id).
func (m *Manager) QueryEventId(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.nameToID[name]; ok {
		return id
	}

	id := m.nextID
	m.nextID++
	m.nameToID[name] = id
	m.idToName[id] = name

	return id
}

func (m *Manager) lookupID(name string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.nameToID[name]

	return id, ok
}

// EventName returns the name registered for id, or InvalidEventId if none.
func (m *Manager) EventName(id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.idToName[id]
	if !ok {
		return "", smperrors.InvalidEventId(m, id)
	}

	return name, nil
}

// Subscribe registers ep against eventName (creating the id on first use),
// rejecting an empty name (InvalidEventName) or a duplicate subscription
// (EntryPointAlreadySubscribed).
func (m *Manager) Subscribe(eventName string, ep EntryPoint) error {
	if eventName == "" {
		return smperrors.InvalidEventName(m, eventName)
	}

	id := m.QueryEventId(eventName)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.subs[id] {
		if e == ep {
			return smperrors.EntryPointAlreadySubscribed(m)
		}
	}

	m.subs[id] = append(m.subs[id], ep)

	return nil
}

// Unsubscribe removes ep from eventName's subscriber list, raising
// EntryPointNotSubscribed if it was not subscribed (including when
// eventName itself was never registered).
func (m *Manager) Unsubscribe(eventName string, ep EntryPoint) error {
	id, ok := m.lookupID(eventName)
	if !ok {
		return smperrors.EntryPointNotSubscribed(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.subs[id]
	for i, e := range list {
		if e == ep {
			m.subs[id] = append(list[:i], list[i+1:]...)
			return nil
		}
	}

	return smperrors.EntryPointNotSubscribed(m)
}

// Emit executes every entry point subscribed to eventName, in
// subscription order, against a snapshot taken under lock so a handler
// that subscribes/unsubscribes from within Execute doesn't race the
// walk. Emitting an unregistered name is a silent no-op. Every Execute
// error is collected; the walk never stops early.
func (m *Manager) Emit(eventName string) []error {
	id, ok := m.lookupID(eventName)
	if !ok {
		return nil
	}

	return m.emitByID(id)
}

func (m *Manager) emitByID(id int64) []error {
	m.mu.Lock()
	list := append([]EntryPoint(nil), m.subs[id]...)
	m.mu.Unlock()

	var errs []error

	for _, ep := range list {
		if err := ep.Execute(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// EmitId executes every entry point subscribed to id directly, skipping
// the name lookup (used by the scheduler's lifecycle transitions, which
// already know the standard event's fixed id).
func (m *Manager) EmitId(id int64) []error {
	return m.emitByID(id)
}

// SubscriberCount reports the number of entry points currently subscribed
// to eventName.
func (m *Manager) SubscriberCount(eventName string) int {
	id, ok := m.lookupID(eventName)
	if !ok {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs[id])
}
