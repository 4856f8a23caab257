// Package scheduler implements the discrete-event dispatcher of spec
// §4.6 (C12): four time-ordered queues (Simulation, Mission, Epoch, Zulu),
// a main loop that drives the simulation clock from one due event to the
// next, and an independently clocked Zulu queue that fires regardless of
// simulator state (spec §8 scenario S6).
package scheduler

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/timekeeper"
)

// Clock names the time base an event is queued against.
type Clock uint8

const (
	ClockSimulation Clock = iota
	ClockMission
	ClockEpoch
	ClockZulu
)

// EntryPoint is a zero-argument callback, the same shape subscribed to
// the event manager (spec §3).
type EntryPoint interface {
	Execute() error
}

// EventManager is the narrow slice of eventmanager.Manager the scheduler
// drives: it only ever emits the two standard time-change events.
type EventManager interface {
	EmitId(id int64) []error
	Emit(name string) []error
}

// Logger is the narrow logging hook an entry point panic or error is
// reported through; nil is accepted and silently drops the report.
type Logger interface {
	Log(level, message string)
}

func safeExecute(logger Logger, ep EntryPoint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("entry point panicked: %v", r)
			if logger != nil {
				logger.Log("Error", err.Error())
			}
		}
	}()

	err = ep.Execute()
	if err != nil && logger != nil {
		logger.Log("Error", err.Error())
	}

	return err
}

// Scheduler is the process-wide event queue set (spec §4.6). The
// Simulation, Mission and Epoch queues are all keyed by an absolute
// simulation-time fire instant (Mission/Epoch targets are converted at
// add/set time using the timekeeper's current offsets, which is exact
// because the clock relations are all fixed-slope translations of the
// simulation clock); Zulu runs on its own lock and goroutine so it fires
// independent of the simulator's state.
type Scheduler struct {
	mu     sync.Mutex
	queues [3]eventHeap // indexed by Clock: Simulation, Mission, Epoch
	byID   map[int64]*Event

	zuluMu    sync.Mutex
	zuluQueue eventHeap
	zuluByID  map[int64]*Event
	zuluWake  chan struct{}
	zuluStop  chan struct{}

	idCounter  uint64
	seqCounter uint64

	currentEventID int64 // atomic

	em     EventManager
	tk     *timekeeper.Keeper
	logger Logger
}

// New builds a Scheduler wired to em (for Pre/PostSimTimeChange) and tk
// (for reading/advancing the simulation clock), and starts the Zulu
// dispatch goroutine.
func New(em EventManager, tk *timekeeper.Keeper, logger Logger) *Scheduler {
	s := &Scheduler{
		byID:     make(map[int64]*Event),
		zuluByID: make(map[int64]*Event),
		zuluWake: make(chan struct{}, 1),
		zuluStop: make(chan struct{}),
		em:       em,
		tk:       tk,
		logger:   logger,
	}

	atomic.StoreInt64(&s.currentEventID, -1)

	for i := range s.queues {
		heap.Init(&s.queues[i])
	}

	heap.Init(&s.zuluQueue)

	go s.runZulu()

	return s
}

func (s *Scheduler) String() string { return "Scheduler" }

// Close stops the Zulu dispatch goroutine. The Simulation/Mission/Epoch
// queues need no teardown: they only ever advance from RunUntil calls.
func (s *Scheduler) Close() { close(s.zuluStop) }

func (s *Scheduler) nextID() int64   { return int64(atomic.AddUint64(&s.idCounter, 1)) }
func (s *Scheduler) nextSeq() uint64 { return atomic.AddUint64(&s.seqCounter, 1) }

// AddImmediateEvent queues ep to fire once at the current simulation
// time, ordered after anything else already due at that instant.
func (s *Scheduler) AddImmediateEvent(ep EntryPoint) int64 {
	id, _ := s.AddSimulationTimeEvent(ep, s.tk.GetSimulationTime(), 0, 0)
	return id
}

// AddSimulationTimeEvent queues ep to fire at the absolute simulation
// time simTime, repeating every cycleTime for repeat more firings after
// the first (repeat<0 means forever, repeat==0 means one-shot).
func (s *Scheduler) AddSimulationTimeEvent(ep EntryPoint, simTime, cycleTime, repeat int64) (int64, error) {
	if simTime < 0 {
		return -1, smperrors.InvalidEventTime(s, "simTime must be >= 0")
	}

	if repeat != 0 && cycleTime <= 0 {
		return -1, smperrors.InvalidCycleTime(s)
	}

	return s.add(ClockSimulation, ep, simTime, cycleTime, repeat), nil
}

// AddMissionTimeEvent queues ep to fire when the mission clock reaches
// missionTime, which must not be in the mission clock's past.
func (s *Scheduler) AddMissionTimeEvent(ep EntryPoint, missionTime, cycleTime, repeat int64) (int64, error) {
	if missionTime < s.tk.GetMissionTime() {
		return -1, smperrors.InvalidEventTime(s, "missionTime is in the past")
	}

	if repeat != 0 && cycleTime <= 0 {
		return -1, smperrors.InvalidCycleTime(s)
	}

	fireSim := s.tk.GetSimulationTime() + (missionTime - s.tk.GetMissionTime())

	return s.add(ClockMission, ep, fireSim, cycleTime, repeat), nil
}

// AddEpochTimeEvent queues ep to fire when the epoch clock reaches
// epochTime, which must not be in the epoch clock's past.
func (s *Scheduler) AddEpochTimeEvent(ep EntryPoint, epochTime, cycleTime, repeat int64) (int64, error) {
	if epochTime < s.tk.GetEpochTime() {
		return -1, smperrors.InvalidEventTime(s, "epochTime is in the past")
	}

	if repeat != 0 && cycleTime <= 0 {
		return -1, smperrors.InvalidCycleTime(s)
	}

	fireSim := s.tk.GetSimulationTime() + (epochTime - s.tk.GetEpochTime())

	return s.add(ClockEpoch, ep, fireSim, cycleTime, repeat), nil
}

// AddZuluTimeEvent queues ep against the wall clock, dispatched by an
// independent goroutine regardless of the simulator's state.
func (s *Scheduler) AddZuluTimeEvent(ep EntryPoint, zuluTime, cycleTime, repeat int64) (int64, error) {
	if zuluTime < s.tk.GetZuluTime() {
		return -1, smperrors.InvalidEventTime(s, "zuluTime is in the past")
	}

	if repeat != 0 && cycleTime <= 0 {
		return -1, smperrors.InvalidCycleTime(s)
	}

	e := &Event{
		id:               s.nextID(),
		clock:            ClockZulu,
		entryPoint:       ep,
		nextFireTime:     zuluTime,
		cycleTime:        cycleTime,
		repeatsRemaining: repeat,
		seq:              s.nextSeq(),
	}

	s.zuluMu.Lock()
	heap.Push(&s.zuluQueue, e)
	s.zuluByID[e.id] = e
	s.zuluMu.Unlock()

	select {
	case s.zuluWake <- struct{}{}:
	default:
	}

	return e.id, nil
}

func (s *Scheduler) add(clock Clock, ep EntryPoint, fireTime, cycleTime, repeat int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &Event{
		id:               s.nextID(),
		clock:            clock,
		entryPoint:       ep,
		nextFireTime:     fireTime,
		cycleTime:        cycleTime,
		repeatsRemaining: repeat,
		seq:              s.nextSeq(),
	}

	heap.Push(&s.queues[clock], e)
	s.byID[e.id] = e

	return e.id
}

func (s *Scheduler) setEventTime(id int64, clock Clock, fireTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok || e.clock != clock {
		return smperrors.InvalidEventId(s, id)
	}

	e.nextFireTime = fireTime
	heap.Fix(&s.queues[clock], e.index)

	return nil
}

// SetEventSimulationTime re-times a Simulation-clock event to t.
func (s *Scheduler) SetEventSimulationTime(id, t int64) error {
	return s.setEventTime(id, ClockSimulation, t)
}

// SetEventMissionTime re-times a Mission-clock event to fire when the
// mission clock reaches t.
func (s *Scheduler) SetEventMissionTime(id, t int64) error {
	fireSim := s.tk.GetSimulationTime() + (t - s.tk.GetMissionTime())
	return s.setEventTime(id, ClockMission, fireSim)
}

// SetEventEpochTime re-times an Epoch-clock event to fire when the epoch
// clock reaches t.
func (s *Scheduler) SetEventEpochTime(id, t int64) error {
	fireSim := s.tk.GetSimulationTime() + (t - s.tk.GetEpochTime())
	return s.setEventTime(id, ClockEpoch, fireSim)
}

// SetEventZuluTime re-times a Zulu-clock event to t.
func (s *Scheduler) SetEventZuluTime(id, t int64) error {
	s.zuluMu.Lock()
	defer s.zuluMu.Unlock()

	e, ok := s.zuluByID[id]
	if !ok {
		return smperrors.InvalidEventId(s, id)
	}

	e.nextFireTime = t
	heap.Fix(&s.zuluQueue, e.index)

	return nil
}

// SetEventCycleTime changes the repeat interval of id, which must still
// exist on any queue; c must be positive.
func (s *Scheduler) SetEventCycleTime(id, c int64) error {
	if c <= 0 {
		return smperrors.InvalidCycleTime(s)
	}

	s.mu.Lock()
	if e, ok := s.byID[id]; ok {
		e.cycleTime = c
		s.mu.Unlock()

		return nil
	}
	s.mu.Unlock()

	s.zuluMu.Lock()
	defer s.zuluMu.Unlock()

	e, ok := s.zuluByID[id]
	if !ok {
		return smperrors.InvalidEventId(s, id)
	}

	e.cycleTime = c

	return nil
}

// SetEventRepeat changes how many more times id repeats after its next
// firing; a nonzero r requires id already has a positive cycle time.
func (s *Scheduler) SetEventRepeat(id, r int64) error {
	s.mu.Lock()
	if e, ok := s.byID[id]; ok {
		if r != 0 && e.cycleTime <= 0 {
			s.mu.Unlock()
			return smperrors.InvalidCycleTime(s)
		}

		e.repeatsRemaining = r
		s.mu.Unlock()

		return nil
	}
	s.mu.Unlock()

	s.zuluMu.Lock()
	defer s.zuluMu.Unlock()

	e, ok := s.zuluByID[id]
	if !ok {
		return smperrors.InvalidEventId(s, id)
	}

	if r != 0 && e.cycleTime <= 0 {
		return smperrors.InvalidCycleTime(s)
	}

	e.repeatsRemaining = r

	return nil
}

// RemoveEvent cancels id on whichever queue holds it.
func (s *Scheduler) RemoveEvent(id int64) error {
	s.mu.Lock()
	if e, ok := s.byID[id]; ok {
		heap.Remove(&s.queues[e.clock], e.index)
		delete(s.byID, id)
		s.mu.Unlock()

		return nil
	}
	s.mu.Unlock()

	s.zuluMu.Lock()
	if e, ok := s.zuluByID[id]; ok {
		heap.Remove(&s.zuluQueue, e.index)
		delete(s.zuluByID, id)
		s.zuluMu.Unlock()

		return nil
	}
	s.zuluMu.Unlock()

	return smperrors.InvalidEventId(s, id)
}

// GetCurrentEventId returns the id of the event currently executing, or
// -1 if none is.
func (s *Scheduler) GetCurrentEventId() int64 {
	return atomic.LoadInt64(&s.currentEventID)
}

// GetNextScheduledEventTime returns the minimum fire time across the
// Simulation/Mission/Epoch queues (Zulu is excluded, it runs on its own
// clock), or -1 if all three are empty.
func (s *Scheduler) GetNextScheduledEventTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.peekMinLocked()
	if !ok {
		return -1
	}

	return t
}

func (s *Scheduler) peekMinLocked() (int64, bool) {
	best := int64(0)
	found := false

	for c := 0; c < 3; c++ {
		if len(s.queues[c]) == 0 {
			continue
		}

		t := s.queues[c][0].nextFireTime
		if !found || t < best {
			best = t
			found = true
		}
	}

	return best, found
}

// RunUntil drives the main loop (spec §4.6 steps 1-7) from the current
// simulation time up to and including targetSimTime: repeatedly peeking
// the nearest due event across Simulation/Mission/Epoch, advancing the
// clock to it inside a Pre/PostSimTimeChange window, firing everything
// due at that instant in (time, insertion-order) order, and re-queuing
// repeats. When nothing remains due at or before targetSimTime, the
// clock is advanced straight to targetSimTime with no event firing.
func (s *Scheduler) RunUntil(targetSimTime int64) {
	for {
		minTime, ok := s.peekMin()
		if !ok || minTime > targetSimTime {
			if s.tk.GetSimulationTime() < targetSimTime {
				s.advanceTo(targetSimTime, targetSimTime)
			}

			return
		}

		s.advanceTo(minTime, minTime)
		s.fireDue(minTime)
	}
}

func (s *Scheduler) peekMin() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.peekMinLocked()
}

func (s *Scheduler) advanceTo(t, nextEventTime int64) {
	s.em.Emit("PreSimTimeChange")
	_ = s.tk.SetSimulationTime(t, nextEventTime)
	s.em.Emit("PostSimTimeChange")
}

func (s *Scheduler) fireDue(simNow int64) {
	var due []*Event

	s.mu.Lock()
	for c := 0; c < 3; c++ {
		for len(s.queues[c]) > 0 && s.queues[c][0].nextFireTime <= simNow {
			e, _ := heap.Pop(&s.queues[c]).(*Event)
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].nextFireTime != due[j].nextFireTime {
			return due[i].nextFireTime < due[j].nextFireTime
		}

		return due[i].seq < due[j].seq
	})

	for _, e := range due {
		atomic.StoreInt64(&s.currentEventID, e.id)
		_ = safeExecute(s.logger, e.entryPoint)
		atomic.StoreInt64(&s.currentEventID, -1)

		s.mu.Lock()
		if e.repeatsRemaining != 0 {
			if e.repeatsRemaining > 0 {
				e.repeatsRemaining--
			}

			e.nextFireTime += e.cycleTime
			e.seq = s.nextSeq()
			heap.Push(&s.queues[e.clock], e)
		} else {
			delete(s.byID, e.id)
		}
		s.mu.Unlock()
	}
}

func (s *Scheduler) runZulu() {
	timer := time.NewTimer(24 * time.Hour)
	defer timer.Stop()

	for {
		wait := s.zuluWait()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.zuluStop:
			return
		case <-s.zuluWake:
			continue
		case <-timer.C:
			s.fireDueZulu()
		}
	}
}

func (s *Scheduler) zuluWait() time.Duration {
	s.zuluMu.Lock()
	defer s.zuluMu.Unlock()

	if len(s.zuluQueue) == 0 {
		return 24 * time.Hour
	}

	due := s.zuluQueue[0].nextFireTime
	now := s.tk.GetZuluTime()

	if due <= now {
		return 0
	}

	return time.Duration(due - now)
}

func (s *Scheduler) fireDueZulu() {
	now := s.tk.GetZuluTime()

	var due []*Event

	s.zuluMu.Lock()
	for len(s.zuluQueue) > 0 && s.zuluQueue[0].nextFireTime <= now {
		e, _ := heap.Pop(&s.zuluQueue).(*Event)
		due = append(due, e)
	}
	s.zuluMu.Unlock()

	for _, e := range due {
		atomic.StoreInt64(&s.currentEventID, e.id)
		_ = safeExecute(s.logger, e.entryPoint)
		atomic.StoreInt64(&s.currentEventID, -1)

		s.zuluMu.Lock()
		if e.repeatsRemaining != 0 {
			if e.repeatsRemaining > 0 {
				e.repeatsRemaining--
			}

			e.nextFireTime += e.cycleTime
			e.seq = s.nextSeq()
			heap.Push(&s.zuluQueue, e)
		} else {
			delete(s.zuluByID, e.id)
		}
		s.zuluMu.Unlock()
	}
}
