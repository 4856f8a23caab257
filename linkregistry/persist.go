package linkregistry

import "github.com/sarchlab/xsmpcore/persist"

// LinkRecord is one persisted (source, target, count) edge.
type LinkRecord struct {
	Source string
	Target string
	Count  uint32
}

// Store writes every edge as a (source name, target name, count) triple.
// Unlike AddLink/RemoveLink, which operate on live Named components,
// persistence only needs the names: restoring a link is re-establishing
// it against whatever live components the caller resolves those names to.
func (r *Registry) Store(w *persist.Writer) {
	r.edgesMu.Lock()
	defer r.edgesMu.Unlock()

	w.WriteUint32(uint32(len(r.edges)))

	for k, n := range r.edges {
		w.WriteString(k.source)
		w.WriteString(k.target)
		w.WriteUint32(n)
	}
}

// RestoreRecords reads back the records written by Store. It does not touch the
// live registry: the caller re-establishes each edge via AddLink once it
// has resolved the source/target names to live components (spec §4.10
// keeps Store/Restore to the Standby state, before reconnection).
func RestoreRecords(r *persist.Reader) []LinkRecord {
	n := r.ReadUint32()
	out := make([]LinkRecord, 0, n)

	for i := uint32(0); i < n; i++ {
		src := r.ReadString()
		tgt := r.ReadString()
		count := r.ReadUint32()

		out = append(out, LinkRecord{Source: src, Target: tgt, Count: count})
	}

	return out
}
