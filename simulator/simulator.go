// Package simulator implements the top-level composite and simulator
// state machine of spec §4.10 (C13): it owns the six standard services
// (Logger, Resolver, TimeKeeper, EventManager, LinkRegistry, Scheduler —
// confirmed against original_source/tests/Xsmp/SimulatorTest.cpp's
// GetLogger/GetResolver/GetTimeKeeper/GetEventManager/GetLinkRegistry/
// GetScheduler accessors), drives every registered Model/Service through
// its component lifecycle, and coordinates Run/Hold/Store/Restore/
// Reconnect/Exit/Abort against the Building->Connecting->Initialising->
// Standby<->Executing(<->Storing/Restoring/Reconnecting)->Exiting/Aborting
// state machine.
package simulator

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/eventmanager"
	"github.com/sarchlab/xsmpcore/linkregistry"
	"github.com/sarchlab/xsmpcore/logging"
	"github.com/sarchlab/xsmpcore/pkgregistry"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/scheduler"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/timekeeper"
	"github.com/sarchlab/xsmpcore/types"
)

// State is the simulator's position in its own state machine (spec
// §4.10), distinct from component.State (which governs each child's
// Publish/Configure/Connect/Disconnect lifecycle).
type State uint8

const (
	StateBuilding State = iota
	StateConnecting
	StateInitialising
	StateStandby
	StateExecuting
	StateStoring
	StateRestoring
	StateReconnecting
	StateExiting
	StateAborting
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "Building"
	case StateConnecting:
		return "Connecting"
	case StateInitialising:
		return "Initialising"
	case StateStandby:
		return "Standby"
	case StateExecuting:
		return "Executing"
	case StateStoring:
		return "Storing"
	case StateRestoring:
		return "Restoring"
	case StateReconnecting:
		return "Reconnecting"
	case StateExiting:
		return "Exiting"
	case StateAborting:
		return "Aborting"
	default:
		return "Unknown"
	}
}

// publishable/configurable/connectable/disconnectable are narrow views of
// the lifecycle methods every *component.Component-embedding Model/
// Service exposes (promoted by embedding); Simulator drives them the same
// way component.Composite drives optional hooks, via type assertion
// against the Named value stored in its containers.
type publishable interface {
	Publish(reg *types.Registry) (*publication.Publication, error)
}

type configurable interface {
	Configure(logger component.Logger, links component.LinkRegistry) error
}

type connectable interface {
	Connect(sim component.Simulator) error
}

type disconnectable interface {
	Disconnect() error
}

// linkRegistryAdapter lets *linkregistry.Registry satisfy
// component.LinkRegistry: both declare AddLink(source, target Named) but
// as two distinct named interface types, so Go needs an adapter rather
// than structural interface-to-interface satisfaction of a concrete type.
type linkRegistryAdapter struct{ r *linkregistry.Registry }

func (a linkRegistryAdapter) AddLink(source, target component.Named) {
	a.r.AddLink(source, target)
}

// Simulator is the top-level Composite (spec §4.10): it owns two
// containers ("Models", "Services") plus the six standard services, and
// drives the simulator-wide state machine.
type Simulator struct {
	*component.Composite

	mu    sync.Mutex
	state State

	logger       *logging.Service
	eventManager *eventmanager.Manager
	timeKeeper   *timekeeper.Keeper
	linkRegistry *linkregistry.Registry
	scheduler    *scheduler.Scheduler
	resolver     *Resolver
	typeRegistry *types.Registry

	factoriesMu sync.Mutex
	factories   map[string]pkgregistry.Factory
	pkgs        *pkgregistry.Registry

	initEntryPoints []eventmanager.EntryPoint

	holding  int32
	exiting  int32
	aborting int32

	persistPath string
}

// New builds a Simulator in state Building, with the six standard
// services constructed and an empty type registry preloaded with the
// standard primitives (spec §4.1).
func New(name, description string) *Simulator {
	s := &Simulator{
		factories:    make(map[string]pkgregistry.Factory),
		pkgs:         pkgregistry.New(),
		typeRegistry: types.NewRegistry(),
	}

	s.Composite = component.NewComposite(name, description, s)
	s.logger = logging.NewNop(name)
	s.eventManager = eventmanager.New()
	s.timeKeeper = timekeeper.New(s.eventManager)
	s.linkRegistry = linkregistry.New()
	s.scheduler = scheduler.New(s.eventManager, s.timeKeeper, s.logger)
	s.resolver = newResolver(s)

	_, _ = s.Composite.AddContainer("Models", "User models and services", 0, -1)
	_, _ = s.Composite.AddContainer("Services", "Standard and user-added services", 0, -1)

	atexit.Register(s.atexitHook)

	return s
}

// SetLogger replaces the default no-op logger (e.g. with logging.New for
// a production zap sink). The scheduler keeps reporting entry-point
// failures through the logger it was built with in New.
func (s *Simulator) SetLogger(l *logging.Service) {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// SetPersistPath configures the file Store writes to when the atexit
// hook fires a best-effort save (SPEC_FULL.md B: tebeka/atexit wiring);
// an empty path (the default) disables the hook's save step.
func (s *Simulator) SetPersistPath(path string) {
	s.mu.Lock()
	s.persistPath = path
	s.mu.Unlock()
}

func (s *Simulator) atexitHook() {
	s.mu.Lock()
	st := s.state
	path := s.persistPath
	s.mu.Unlock()

	if path != "" && (st == StateExecuting || st == StateStandby) {
		if f, err := os.Create(path); err == nil {
			_ = s.Store(f)
			_ = f.Close()
		}
	}

	_ = s.logger.Sync()
}

// Logger returns the Logger standard service.
func (s *Simulator) Logger() *logging.Service { return s.logger }

// EventManager returns the EventManager standard service.
func (s *Simulator) EventManager() *eventmanager.Manager { return s.eventManager }

// TimeKeeper returns the TimeKeeper standard service.
func (s *Simulator) TimeKeeper() *timekeeper.Keeper { return s.timeKeeper }

// LinkRegistry returns the LinkRegistry standard service.
func (s *Simulator) LinkRegistry() *linkregistry.Registry { return s.linkRegistry }

// Scheduler returns the Scheduler standard service.
func (s *Simulator) Scheduler() *scheduler.Scheduler { return s.scheduler }

// Resolver returns the Resolver standard service.
func (s *Simulator) Resolver() *Resolver { return s.resolver }

// TypeRegistry returns the type registry (pkgregistry.Host, spec §6).
func (s *Simulator) TypeRegistry() *types.Registry { return s.typeRegistry }

// State reports the simulator's current state-machine position.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Simulator) gate(expected ...State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range expected {
		if s.state == e {
			return nil
		}
	}

	return smperrors.InvalidSimulatorState(s, s.state.String(), expected[0].String())
}

func (s *Simulator) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// AddFactory registers f, satisfying pkgregistry.Host (spec §6).
func (s *Simulator) AddFactory(f pkgregistry.Factory) error {
	s.factoriesMu.Lock()
	defer s.factoriesMu.Unlock()

	if _, dup := s.factories[f.Name()]; dup {
		return smperrors.DuplicateName(s, f.Name())
	}

	s.factories[f.Name()] = f

	return nil
}

// Factory looks up a previously registered factory by name.
func (s *Simulator) Factory(name string) (pkgregistry.Factory, bool) {
	s.factoriesMu.Lock()
	defer s.factoriesMu.Unlock()

	f, ok := s.factories[name]

	return f, ok
}

// LoadPackage runs pkg's Initialise against this simulator (spec §6); a
// repeat load of the same package against this same Simulator is a no-op
// success.
func (s *Simulator) LoadPackage(pkg *pkgregistry.Package) (bool, error) {
	return s.pkgs.Load(pkg, s)
}

// UnloadPackages runs Finalise on every package loaded so far, in reverse
// load order (spec §6).
func (s *Simulator) UnloadPackages() []error {
	return s.pkgs.Unload()
}

// CreateInstance builds a new instance via the named factory and adds it
// to the named container ("Models" or "Services"), validating the
// factory contract (spec §6: the instance's uuid must equal the
// factory's).
func (s *Simulator) CreateInstance(factoryName, containerName, instanceName, description string) (pkgregistry.Instance, error) {
	f, ok := s.Factory(factoryName)
	if !ok {
		return nil, smperrors.InvalidObjectName(s, factoryName)
	}

	inst, err := f.Create(instanceName, description)
	if err != nil {
		return nil, err
	}

	if err := pkgregistry.CheckFactory(f, inst); err != nil {
		return nil, err
	}

	named, ok := inst.(component.Named)
	if !ok {
		return nil, smperrors.InvalidObjectType(s, instanceName)
	}

	if err := s.Composite.Add(containerName, named); err != nil {
		return nil, err
	}

	return inst, nil
}

// AddInitEntryPoint registers ep to run once during the automatic
// Initialising->Standby transition (spec §4.10's "(run init
// entrypoints)").
func (s *Simulator) AddInitEntryPoint(ep eventmanager.EntryPoint) {
	s.mu.Lock()
	s.initEntryPoints = append(s.initEntryPoints, ep)
	s.mu.Unlock()
}

func (s *Simulator) modelsAndServices() []component.Named {
	var all []component.Named

	for _, name := range []string{"Services", "Models"} {
		if ct, ok := s.Container(name); ok {
			all = append(all, ct.Children()...)
		}
	}

	return all
}

// Publish walks every child not yet published, publishing it against the
// type registry (spec §4.10's Building state; idempotent — children
// already published are skipped).
func (s *Simulator) Publish() error {
	if err := s.gate(StateBuilding); err != nil {
		return err
	}

	for _, child := range s.modelsAndServices() {
		if p, ok := child.(publishable); ok {
			if _, err := p.Publish(s.typeRegistry); err != nil {
				if !isState(err, "InvalidComponentState") {
					return err
				}
			}
		}
	}

	return nil
}

// Configure walks every published-but-not-yet-configured child, invoking
// DoConfigure with the Logger and LinkRegistry services (spec §4.10's
// Building state).
func (s *Simulator) Configure() error {
	if err := s.gate(StateBuilding); err != nil {
		return err
	}

	links := linkRegistryAdapter{s.linkRegistry}

	for _, child := range s.modelsAndServices() {
		if c, ok := child.(configurable); ok {
			if err := c.Configure(s.logger, links); err != nil {
				if !isState(err, "InvalidComponentState") {
					return err
				}
			}
		}
	}

	return nil
}

// Connect transitions Building->Connecting, connects every child (passing
// the Simulator itself as the narrow component.Simulator view), then
// automatically advances through Initialising to Standby, running any
// registered init entry points and emitting the standard lifecycle events
// (spec §4.10).
func (s *Simulator) Connect() error {
	if err := s.gate(StateBuilding); err != nil {
		return err
	}

	s.setState(StateConnecting)

	for _, child := range s.modelsAndServices() {
		if c, ok := child.(connectable); ok {
			if err := c.Connect(s); err != nil {
				if !isState(err, "InvalidComponentState") {
					s.setState(StateAborting)
					s.eventManager.EmitId(eventmanager.EnterAbortingId)

					return err
				}
			}
		}
	}

	s.eventManager.EmitId(eventmanager.LeaveConnectingId)
	s.setState(StateInitialising)
	s.eventManager.EmitId(eventmanager.EnterInitialisingId)

	for _, ep := range s.initEntryPointsSnapshot() {
		_ = ep.Execute()
	}

	s.eventManager.EmitId(eventmanager.LeaveInitialisingId)
	s.setState(StateStandby)
	s.eventManager.EmitId(eventmanager.EnterStandbyId)

	return nil
}

func (s *Simulator) initEntryPointsSnapshot() []eventmanager.EntryPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]eventmanager.EntryPoint(nil), s.initEntryPoints...)
}

func (s *Simulator) leaveStandby() error {
	if err := s.gate(StateStandby); err != nil {
		return err
	}

	s.eventManager.EmitId(eventmanager.LeaveStandbyId)

	return nil
}

// Run drives the scheduler forward from Standby by duration nanoseconds
// of simulation time, returning when that much time has elapsed or Hold/
// Exit/Abort is signalled (spec §5's Run(duration) contract). It steps
// the scheduler one due-event-time at a time so Hold/Exit/Abort
// requested from within a fired entry point (running on this same
// thread) are observed between events rather than only after the full
// duration.
func (s *Simulator) Run(duration int64) error {
	if err := s.leaveStandby(); err != nil {
		return err
	}

	s.setState(StateExecuting)
	s.eventManager.EmitId(eventmanager.EnterExecutingId)

	start := s.timeKeeper.GetSimulationTime()
	target := start + duration

	for {
		if atomic.LoadInt32(&s.aborting) != 0 {
			s.eventManager.EmitId(eventmanager.EnterAbortingId)
			s.setState(StateAborting)

			return nil
		}

		if atomic.LoadInt32(&s.exiting) != 0 {
			s.eventManager.EmitId(eventmanager.LeaveExecutingId)
			s.eventManager.EmitId(eventmanager.EnterExitingId)
			s.setState(StateExiting)

			return nil
		}

		if atomic.LoadInt32(&s.holding) != 0 {
			atomic.StoreInt32(&s.holding, 0)
			break
		}

		if s.timeKeeper.GetSimulationTime() >= target {
			break
		}

		stepTarget := target

		if nextT := s.scheduler.GetNextScheduledEventTime(); nextT >= 0 && nextT < stepTarget {
			stepTarget = nextT
		}

		s.scheduler.RunUntil(stepTarget)
	}

	s.eventManager.EmitId(eventmanager.LeaveExecutingId)
	s.setState(StateStandby)
	s.eventManager.EmitId(eventmanager.EnterStandbyId)

	return nil
}

// Hold requests the Run loop return to Standby at its next checkpoint
// (spec §4.10's Executing--Hold-->Standby transition).
func (s *Simulator) Hold() {
	if s.State() == StateExecuting {
		atomic.StoreInt32(&s.holding, 1)
	}
}

// Exit requests the Run loop (or an idle Standby caller) transition to
// the terminal Exiting state (spec §4.10).
func (s *Simulator) Exit() {
	st := s.State()
	if st != StateExecuting && st != StateStandby {
		return
	}

	atomic.StoreInt32(&s.exiting, 1)

	if st == StateStandby {
		s.eventManager.EmitId(eventmanager.LeaveStandbyId)
		s.eventManager.EmitId(eventmanager.EnterExitingId)
		s.setState(StateExiting)
	}
}

// Abort transitions to the terminal Aborting state from any state (spec
// §4.10); intended for SafeExecute call sites reacting to a framework
// error surfaced from user code.
func (s *Simulator) Abort() {
	atomic.StoreInt32(&s.aborting, 1)

	if s.State() != StateExecuting {
		s.eventManager.EmitId(eventmanager.EnterAbortingId)
		s.setState(StateAborting)
	}
}

// Reconnect drives any newly added children through Connect without
// reinitialising already-connected ones (spec §4.10's Standby--
// Reconnect-->Reconnecting--(auto)-->Standby, triggered when children
// were added post-connect).
func (s *Simulator) Reconnect() error {
	if err := s.leaveStandby(); err != nil {
		return err
	}

	s.setState(StateReconnecting)
	s.eventManager.EmitId(eventmanager.EnterReconnectingId)

	for _, child := range s.modelsAndServices() {
		if c, ok := child.(connectable); ok {
			_ = c.Connect(s) // InvalidComponentState on already-connected children is expected and ignored
		}
	}

	s.eventManager.EmitId(eventmanager.LeaveReconnectingId)
	s.setState(StateStandby)
	s.eventManager.EmitId(eventmanager.EnterStandbyId)

	return nil
}

// Disconnect disconnects every connected child (used ahead of teardown;
// not itself a named state-machine transition in spec §4.10, which only
// names the forward path through Connect).
func (s *Simulator) Disconnect() []error {
	var errs []error

	for _, child := range s.modelsAndServices() {
		if d, ok := child.(disconnectable); ok {
			if err := d.Disconnect(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

func isState(err error, name string) bool {
	se, ok := err.(*smperrors.Error)
	return ok && se.Name == name
}

func (s *Simulator) String() string { return fmt.Sprintf("Simulator(%s)", s.Name()) }
