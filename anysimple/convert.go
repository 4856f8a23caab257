package anysimple

import (
	"fmt"

	"github.com/sarchlab/xsmpcore/smperrors"
)

// ConvertTo extracts a concrete Go value from an AnySimple, grounded on the
// original's AnySimpleConverter.h: one typed accessor per native type
// rather than a single reflective Convert(). Returns InvalidAnyType if the
// kind does not match T.
func ConvertTo[T any](a AnySimple, sender fmt.Stringer) (T, error) {
	var zero T

	v, ok := any(nil), false

	switch any(zero).(type) {
	case bool:
		if a.Kind == KindBool {
			v, ok = a.Bool(), true
		}
	case int8:
		if a.Kind == KindInt8 {
			v, ok = a.Int8(), true
		}
	case uint8:
		if a.Kind == KindUInt8 || a.Kind == KindChar8 {
			v, ok = uint8(a.uintVal), true
		}
	case int16:
		if a.Kind == KindInt16 {
			v, ok = a.Int16(), true
		}
	case uint16:
		if a.Kind == KindUInt16 {
			v, ok = a.UInt16(), true
		}
	case int32:
		if a.Kind == KindInt32 {
			v, ok = a.Int32(), true
		}
	case uint32:
		if a.Kind == KindUInt32 {
			v, ok = a.UInt32(), true
		}
	case int64:
		if a.Kind == KindInt64 {
			v, ok = a.Int64(), true
		}
	case uint64:
		if a.Kind == KindUInt64 {
			v, ok = a.UInt64(), true
		}
	case float32:
		if a.Kind == KindFloat32 {
			v, ok = a.Float32(), true
		}
	case float64:
		if a.Kind == KindFloat64 {
			v, ok = a.Float64(), true
		}
	case Duration:
		if a.Kind == KindDuration {
			v, ok = a.Duration(), true
		}
	case DateTime:
		if a.Kind == KindDateTime {
			v, ok = a.DateTime(), true
		}
	case *string:
		if a.Kind == KindString8 {
			v, ok = a.String8(), true
		}
	}

	if !ok {
		return zero, smperrors.InvalidAnyType(sender)
	}

	return v.(T), nil
}
