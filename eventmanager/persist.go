package eventmanager

import "github.com/sarchlab/xsmpcore/persist"

// Store writes the user-registered portion of the name<->id bijection
// (ids 20+; the 19 standard events are re-created identically by New on
// restore, so they need no bytes) plus, for each, the number of entry
// points currently subscribed (spec §4.7: "Persistence stores the
// name<->id bijection and the subscriptions"). Entry points themselves are
// live closures bound to a running component tree and cannot be
// serialized; Restore returns the stored counts and does not itself
// compare them with the restored tree's subscriptions.
func (m *Manager) Store(w *persist.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userIDs := make([]int64, 0, len(m.idToName))

	for id := range m.idToName {
		if id > int64(len(standardEventNames)) {
			userIDs = append(userIDs, id)
		}
	}

	w.WriteUint32(uint32(len(userIDs)))

	for _, id := range userIDs {
		w.WriteString(m.idToName[id])
		w.WriteInt64(id)
		w.WriteUint32(uint32(len(m.subs[id])))
	}
}

// Restore reads back the user-registered bijection, re-registering each
// name at its original id (QueryEventId would otherwise hand out a
// different id if names were queried in a different order), and returns
// the stored subscriber counts keyed by name for the caller to verify
// against its own re-subscription.
func (m *Manager) Restore(r *persist.Reader) map[string]int {
	n := r.ReadUint32()
	counts := make(map[string]int, n)

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := uint32(0); i < n; i++ {
		name := r.ReadString()
		id := r.ReadInt64()
		count := r.ReadUint32()

		m.nameToID[name] = id
		m.idToName[id] = name

		if id >= m.nextID {
			m.nextID = id + 1
		}

		counts[name] = int(count)
	}

	return counts
}
