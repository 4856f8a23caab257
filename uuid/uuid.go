// Package uuid implements the 128-bit type-identity value of spec §3: a
// {uint32, uint16[3], uint8[6]} tuple with a canonical textual form, a
// total order and a hash. Parsing and formatting are delegated to
// google/uuid (the canonical 8-4-4-4-12 form is byte-identical), wrapped
// so the rest of the module sees the SMP field layout rather than a bare
// [16]byte.
package uuid

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// Uuid is the SMP value: {Data1 uint32, Data2 [3]uint16, Data3 [6]uint8}.
// Its 16 bytes are laid out exactly as RFC 4122 so Google's uuid package
// can be reused for generation, parsing and formatting.
type Uuid struct {
	Data1 uint32
	Data2 [3]uint16
	Data3 [6]uint8
}

// Void is the nil/sentinel uuid used e.g. as Class.BaseClassUuid when a
// class has no declared base.
var Void = Uuid{}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// validateCanonicalShape reproduces the original's character-by-character
// check (src/Smp/Uuid.cpp): exactly 36 characters, dashes at 8/13/18/23,
// hex digits everywhere else. google/uuid.Parse is more permissive (it
// also accepts braces, urn: prefixes, and no-dash forms); the spec's
// invariant is that only the canonical shape is accepted.
func validateCanonicalShape(s string) bool {
	if len(s) != 36 {
		return false
	}

	for i := 0; i < 36; i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return false
			}
		default:
			if !isHexDigit(s[i]) {
				return false
			}
		}
	}

	return true
}

// Parse rejects any deviation from the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
// shape, case-insensitively on input (spec §8 property 10).
func Parse(s string) (Uuid, error) {
	if !validateCanonicalShape(s) {
		return Uuid{}, smperrors.InvalidObjectName(smperrors.Sender("Uuid"), s)
	}

	g, err := uuid.Parse(s)
	if err != nil {
		return Uuid{}, smperrors.InvalidObjectName(smperrors.Sender("Uuid"), s)
	}

	return fromBytes(g), nil
}

// MustParse panics on invalid input; intended for static uuid tables
// (standard primitive type uuids, standard event ids).
func MustParse(s string) Uuid {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return u
}

// New generates a random (version 4) Uuid.
func New() Uuid {
	return fromBytes(uuid.New())
}

func fromBytes(g uuid.UUID) Uuid {
	b := [16]byte(g)

	return Uuid{
		Data1: uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		Data2: [3]uint16{
			uint16(b[4])<<8 | uint16(b[5]),
			uint16(b[6])<<8 | uint16(b[7]),
			uint16(b[8])<<8 | uint16(b[9]),
		},
		Data3: [6]uint8{b[10], b[11], b[12], b[13], b[14], b[15]},
	}
}

func (u Uuid) toGoogle() uuid.UUID {
	var b [16]byte
	b[0] = byte(u.Data1 >> 24)
	b[1] = byte(u.Data1 >> 16)
	b[2] = byte(u.Data1 >> 8)
	b[3] = byte(u.Data1)

	for i, v := range u.Data2 {
		b[4+2*i] = byte(v >> 8)
		b[4+2*i+1] = byte(v)
	}

	copy(b[10:16], u.Data3[:])

	return uuid.UUID(b)
}

// String renders the canonical lower-case form.
func (u Uuid) String() string {
	return strings.ToLower(u.toGoogle().String())
}

// Compare returns -1/0/1, ordering lexicographically on (Data1, Data2,
// Data3) as required by spec §3.
func (u Uuid) Compare(other Uuid) int {
	if u.Data1 != other.Data1 {
		if u.Data1 < other.Data1 {
			return -1
		}

		return 1
	}

	for i := range u.Data2 {
		if u.Data2[i] != other.Data2[i] {
			if u.Data2[i] < other.Data2[i] {
				return -1
			}

			return 1
		}
	}

	for i := range u.Data3 {
		if u.Data3[i] != other.Data3[i] {
			if u.Data3[i] < other.Data3[i] {
				return -1
			}

			return 1
		}
	}

	return 0
}

// Less is a convenience wrapper around Compare for use as a sort.Interface
// comparator or a map key normalizer.
func (u Uuid) Less(other Uuid) bool { return u.Compare(other) < 0 }

// Equal reports whether two uuids are identical.
func (u Uuid) Equal(other Uuid) bool { return u.Compare(other) == 0 }

// IsVoid reports whether u is the Void sentinel.
func (u Uuid) IsVoid() bool { return u == Void }

// Hash returns a value suitable as a map key component; Uuid is already
// comparable so most callers can use it directly as a map key, but this
// exists for callers that need a single scalar. It multiplies by the
// FNV-64 prime; persistence type-id envelopes hash names separately
// with FNV-1a (see persist.TypeID).
func (u Uuid) Hash() uint64 {
	h := uint64(u.Data1)
	for _, v := range u.Data2 {
		h = h*1099511628211 ^ uint64(v)
	}

	for _, v := range u.Data3 {
		h = h*1099511628211 ^ uint64(v)
	}

	return h
}
