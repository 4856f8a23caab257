// Package timekeeper implements the four linked time bases of spec
// §3/§4.8 (C11): a monotonic simulation clock in nanoseconds, plus
// mission/epoch offsets and an independent wall-clock Zulu reading.
package timekeeper

import (
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/xsmpcore/eventmanager"
	"github.com/sarchlab/xsmpcore/smperrors"
)

// Keeper holds the simulation clock and its derived epoch/mission offsets
// (spec §3's clock relations: EpochTime = sim-epochStart, MissionTime =
// sim-epochStart-missionStart, ZuluTime = wall clock).
type Keeper struct {
	mu sync.Mutex

	simNow       int64
	epochStart   int64
	missionStart int64
	windowOpen   bool

	em *eventmanager.Manager
}

// New builds a Keeper at simulation time zero, subscribing itself to the
// event manager's PreSimTimeChange/PostSimTimeChange events to gate
// SetSimulationTime's write window (spec §4.8).
func New(em *eventmanager.Manager) *Keeper {
	k := &Keeper{em: em}

	_ = em.Subscribe("PreSimTimeChange", eventmanager.NewFuncEntryPoint(k.openWindow))
	_ = em.Subscribe("PostSimTimeChange", eventmanager.NewFuncEntryPoint(k.closeWindow))

	return k
}

func (k *Keeper) String() string { return "TimeKeeper" }

func (k *Keeper) openWindow() error {
	k.mu.Lock()
	k.windowOpen = true
	k.mu.Unlock()

	return nil
}

func (k *Keeper) closeWindow() error {
	k.mu.Lock()
	k.windowOpen = false
	k.mu.Unlock()

	return nil
}

// SetSimulationTime advances the simulation clock to t, valid only
// between a PreSimTimeChange and the matching PostSimTimeChange emission;
// outside that window it is a silent no-op (spec §4.8). t must satisfy
// currentSim <= t <= nextEventTime, the latter supplied by the caller
// (the scheduler, which already computed it for this sweep).
func (k *Keeper) SetSimulationTime(t, nextEventTime int64) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.windowOpen {
		return nil
	}

	if t < k.simNow || t > nextEventTime {
		return smperrors.InvalidSimulationTime(k, fmt.Sprintf("t=%d not in [%d,%d]", t, k.simNow, nextEventTime))
	}

	k.simNow = t

	return nil
}

// GetSimulationTime returns the current simulation clock, in nanoseconds.
func (k *Keeper) GetSimulationTime() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.simNow
}

// GetEpochTime returns sim - epochStart.
func (k *Keeper) GetEpochTime() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.simNow - k.epochStart
}

// GetMissionTime returns sim - epochStart - missionStart.
func (k *Keeper) GetMissionTime() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.simNow - k.epochStart - k.missionStart
}

// GetZuluTime returns the current wall-clock time in nanoseconds,
// unrelated to the simulation clock.
func (k *Keeper) GetZuluTime() int64 { return time.Now().UnixNano() }

// SetEpochTime adjusts epochStart so GetEpochTime() reads e at the
// current simulation time, then emits EpochTimeChanged globally.
func (k *Keeper) SetEpochTime(e int64) {
	k.mu.Lock()
	k.epochStart = k.simNow - e
	k.mu.Unlock()

	k.em.Emit("EpochTimeChanged")
}

// SetMissionTime adjusts missionStart so GetMissionTime() reads m at the
// current simulation time, then emits MissionTimeChanged globally.
func (k *Keeper) SetMissionTime(m int64) {
	k.mu.Lock()
	k.missionStart = k.simNow - k.epochStart - m
	k.mu.Unlock()

	k.em.Emit("MissionTimeChanged")
}

// SetMissionStartTime sets missionStart directly, then emits
// MissionTimeChanged globally.
func (k *Keeper) SetMissionStartTime(ms int64) {
	k.mu.Lock()
	k.missionStart = ms
	k.mu.Unlock()

	k.em.Emit("MissionTimeChanged")
}
