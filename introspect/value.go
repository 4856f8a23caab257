package introspect

import "github.com/sarchlab/xsmpcore/anysimple"

// valueOf widens v to whatever native Go value JSON can render directly,
// mirroring persist.Writer.WriteAny's kind switch but for display rather
// than wire encoding.
func valueOf(kind anysimple.Kind, v anysimple.AnySimple) interface{} {
	switch kind {
	case anysimple.KindNone:
		return nil
	case anysimple.KindBool:
		return v.Bool()
	case anysimple.KindChar8, anysimple.KindUInt8:
		return v.UInt8()
	case anysimple.KindInt8:
		return v.Int8()
	case anysimple.KindInt16, anysimple.KindUInt16, anysimple.KindInt32, anysimple.KindUInt32, anysimple.KindInt64, anysimple.KindUInt64:
		return v.AsInt64()
	case anysimple.KindFloat32, anysimple.KindFloat64:
		return v.AsFloat64()
	case anysimple.KindDuration:
		return int64(v.Duration())
	case anysimple.KindDateTime:
		return int64(v.DateTime())
	case anysimple.KindString8:
		if s := v.String8(); s != nil {
			return *s
		}

		return ""
	default:
		return nil
	}
}
