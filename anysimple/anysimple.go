// Package anysimple implements the tagged primitive-value union of spec
// §3: the universal carrier for field values and request parameters.
package anysimple

import "time"

// Kind enumerates the 15 primitive value kinds, plus None for "not a
// value" (void return, unset structure placeholder).
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindChar8
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindDuration
	KindDateTime
	KindString8
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBool:
		return "Bool"
	case KindChar8:
		return "Char8"
	case KindInt8:
		return "Int8"
	case KindUInt8:
		return "UInt8"
	case KindInt16:
		return "Int16"
	case KindUInt16:
		return "UInt16"
	case KindInt32:
		return "Int32"
	case KindUInt32:
		return "UInt32"
	case KindInt64:
		return "Int64"
	case KindUInt64:
		return "UInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindDuration:
		return "Duration"
	case KindDateTime:
		return "DateTime"
	case KindString8:
		return "String8"
	default:
		return "Unknown"
	}
}

// IsInteger reports whether k is one of the 8 integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt8, KindUInt8, KindInt16, KindUInt16, KindInt32, KindUInt32, KindInt64, KindUInt64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is Float32 or Float64.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Duration is nanoseconds as a signed 64-bit integer (spec §3).
type Duration int64

// mjd2000Epoch is the MJD2000 + 0.5 days epoch (2000-01-01T12:00:00Z),
// the reference instant for DateTime.
var mjd2000Epoch = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// DateTime is nanoseconds relative to the MJD2000+0.5 epoch.
type DateTime int64

// ToTime converts a DateTime to an absolute wall-clock instant.
func (d DateTime) ToTime() time.Time {
	return mjd2000Epoch.Add(time.Duration(d))
}

// DateTimeFromTime converts an absolute instant to a DateTime value.
func DateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Sub(mjd2000Epoch).Nanoseconds())
}

// AnySimple is the {kind, value} pair. Only the field matching Kind is
// meaningful; String8 is a borrowed pointer per spec §3 — copying an
// AnySimple does not copy the string, callers that need to outlive the
// source must copy the string themselves.
type AnySimple struct {
	Kind     Kind
	boolVal  bool
	intVal   int64
	uintVal  uint64
	f32Val   float32
	f64Val   float64
	duration Duration
	datetime DateTime
	strVal   *string
}

// None is the absence of a value.
var None = AnySimple{Kind: KindNone}

func FromBool(v bool) AnySimple       { return AnySimple{Kind: KindBool, boolVal: v} }
func FromChar8(v byte) AnySimple      { return AnySimple{Kind: KindChar8, uintVal: uint64(v)} }
func FromInt8(v int8) AnySimple       { return AnySimple{Kind: KindInt8, intVal: int64(v)} }
func FromUInt8(v uint8) AnySimple     { return AnySimple{Kind: KindUInt8, uintVal: uint64(v)} }
func FromInt16(v int16) AnySimple     { return AnySimple{Kind: KindInt16, intVal: int64(v)} }
func FromUInt16(v uint16) AnySimple   { return AnySimple{Kind: KindUInt16, uintVal: uint64(v)} }
func FromInt32(v int32) AnySimple     { return AnySimple{Kind: KindInt32, intVal: int64(v)} }
func FromUInt32(v uint32) AnySimple   { return AnySimple{Kind: KindUInt32, uintVal: uint64(v)} }
func FromInt64(v int64) AnySimple     { return AnySimple{Kind: KindInt64, intVal: v} }
func FromUInt64(v uint64) AnySimple   { return AnySimple{Kind: KindUInt64, uintVal: v} }
func FromFloat32(v float32) AnySimple { return AnySimple{Kind: KindFloat32, f32Val: v} }
func FromFloat64(v float64) AnySimple { return AnySimple{Kind: KindFloat64, f64Val: v} }
func FromDuration(v Duration) AnySimple {
	return AnySimple{Kind: KindDuration, duration: v}
}
func FromDateTime(v DateTime) AnySimple {
	return AnySimple{Kind: KindDateTime, datetime: v}
}
func FromString8(v *string) AnySimple { return AnySimple{Kind: KindString8, strVal: v} }

func (a AnySimple) Bool() bool          { return a.boolVal }
func (a AnySimple) Char8() byte         { return byte(a.uintVal) }
func (a AnySimple) Int8() int8          { return int8(a.intVal) }
func (a AnySimple) UInt8() uint8        { return uint8(a.uintVal) }
func (a AnySimple) Int16() int16        { return int16(a.intVal) }
func (a AnySimple) UInt16() uint16      { return uint16(a.uintVal) }
func (a AnySimple) Int32() int32        { return int32(a.intVal) }
func (a AnySimple) UInt32() uint32      { return uint32(a.uintVal) }
func (a AnySimple) Int64() int64        { return a.intVal }
func (a AnySimple) UInt64() uint64      { return a.uintVal }
func (a AnySimple) Float32() float32    { return a.f32Val }
func (a AnySimple) Float64() float64    { return a.f64Val }
func (a AnySimple) Duration() Duration  { return a.duration }
func (a AnySimple) DateTime() DateTime  { return a.datetime }
func (a AnySimple) String8() *string    { return a.strVal }

// AsInt64 widens any integer-kind value to int64, for range-check code
// that does not want a type switch per integer width.
func (a AnySimple) AsInt64() int64 {
	switch a.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return a.intVal
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return int64(a.uintVal)
	default:
		return 0
	}
}

// AsFloat64 widens Float32/Float64 to float64.
func (a AnySimple) AsFloat64() float64 {
	if a.Kind == KindFloat32 {
		return float64(a.f32Val)
	}

	return a.f64Val
}

// Equal compares two AnySimple values by kind and underlying payload.
func (a AnySimple) Equal(b AnySimple) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNone:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindFloat32:
		return a.f32Val == b.f32Val
	case KindFloat64:
		return a.f64Val == b.f64Val
	case KindDuration:
		return a.duration == b.duration
	case KindDateTime:
		return a.datetime == b.datetime
	case KindString8:
		if a.strVal == nil || b.strVal == nil {
			return a.strVal == b.strVal
		}

		return *a.strVal == *b.strVal
	case KindChar8, KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return a.uintVal == b.uintVal
	default:
		return a.intVal == b.intVal
	}
}
