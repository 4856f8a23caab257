package persist

import (
	"hash/fnv"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// TypeID hashes a type's qualified name into the stable 8-byte id the
// envelope prefixes every top-level compound write with. FNV-1a64 is
// used for its simplicity and because this hash only needs to be stable
// within a single build, never across builds or versions (spec §3's
// "implementation-defined but stable within a build").
func TypeID(qualifiedName string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(qualifiedName))

	return h.Sum64()
}

// WriteEnvelope writes typeID's 8-byte hash, then calls body to write the
// framed value.
func WriteEnvelope(w *Writer, typeID uint64, body func(*Writer)) {
	w.WriteUint64(typeID)
	body(w)
}

// ReadEnvelope reads an 8-byte type-id hash and compares it against want,
// raising CannotRestore on mismatch before calling body to consume the
// framed value.
func ReadEnvelope(r *Reader, sender interface{ String() string }, want uint64, body func(*Reader)) error {
	got := r.ReadUint64()
	if r.Err() != nil {
		return r.Err()
	}

	if got != want {
		return smperrors.CannotRestore(sender, "type-id hash mismatch")
	}

	body(r)

	return r.Err()
}
