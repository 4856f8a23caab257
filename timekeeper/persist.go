package timekeeper

import "github.com/sarchlab/xsmpcore/persist"

// Store writes the simulation clock and its derived-offset state (spec
// §3's clock relations); Zulu is the live wall clock and is never
// persisted.
func (k *Keeper) Store(w *persist.Writer) {
	k.mu.Lock()
	defer k.mu.Unlock()

	w.WriteInt64(k.simNow)
	w.WriteInt64(k.epochStart)
	w.WriteInt64(k.missionStart)
}

// Restore reads back the simulation clock and offsets written by Store.
// It does not emit EpochTimeChanged/MissionTimeChanged: a restore
// reinstates a prior state rather than changing it from the caller's
// perspective (spec §4.10 places Restore in the Standby-only Storing/
// Restoring states, before any entry point could observe an emission).
func (k *Keeper) Restore(r *persist.Reader) {
	simNow := r.ReadInt64()
	epochStart := r.ReadInt64()
	missionStart := r.ReadInt64()

	k.mu.Lock()
	k.simNow = simNow
	k.epochStart = epochStart
	k.missionStart = missionStart
	k.mu.Unlock()
}
