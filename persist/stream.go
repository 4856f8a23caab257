// Package persist implements the persistence protocol of spec §3/§4.9
// (C14): an opaque, sequential, little-endian byte stream written in
// field-declaration order, with compound writes framed by an 8-byte
// type-id hash that restore checks before trusting the body.
package persist

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
)

// Writer is a typed, sequential byte-stream sink. Every method appends;
// there is no seeking or random access, matching the save path's single
// forward walk of the field tree.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w. The first write error sticks; subsequent calls
// become no-ops so callers can chain writes without checking every one.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error { return w.err }

func (w *Writer) raw(p []byte) {
	if w.err != nil {
		return
	}

	_, w.err = w.w.Write(p)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.raw([]byte{1})
	} else {
		w.raw([]byte{0})
	}
}

func (w *Writer) WriteUint8(v uint8) { w.raw([]byte{v}) }

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.raw(b[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.raw(b[:])
}

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteBytes writes a uint32 length prefix followed by p's raw bytes.
func (w *Writer) WriteBytes(p []byte) {
	w.WriteUint32(uint32(len(p)))
	w.raw(p)
}

// WriteString writes a uint32 byte-length prefix followed by s's bytes.
func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

// WriteAny writes an AnySimple as its kind byte followed by the payload
// matching that kind (spec §3's 16 primitive kinds).
func (w *Writer) WriteAny(v anysimple.AnySimple) {
	w.WriteUint8(uint8(v.Kind))

	switch v.Kind {
	case anysimple.KindNone:
	case anysimple.KindBool:
		w.WriteBool(v.Bool())
	case anysimple.KindChar8, anysimple.KindUInt8:
		w.WriteUint8(v.UInt8())
	case anysimple.KindInt8:
		w.WriteUint8(uint8(v.Int8()))
	case anysimple.KindInt16, anysimple.KindUInt16:
		w.WriteUint32(uint32(v.AsInt64()))
	case anysimple.KindInt32, anysimple.KindUInt32:
		w.WriteUint32(uint32(v.AsInt64()))
	case anysimple.KindInt64, anysimple.KindUInt64:
		w.WriteInt64(v.AsInt64())
	case anysimple.KindFloat32:
		w.WriteFloat32(v.Float32())
	case anysimple.KindFloat64:
		w.WriteFloat64(v.AsFloat64())
	case anysimple.KindDuration:
		w.WriteInt64(int64(v.Duration()))
	case anysimple.KindDateTime:
		w.WriteInt64(int64(v.DateTime()))
	case anysimple.KindString8:
		s := v.String8()
		if s == nil {
			w.WriteString("")
		} else {
			w.WriteString(*s)
		}
	}
}

// Reader is a typed, sequential byte-stream source, mirroring Writer.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

func (r *Reader) raw(n int) []byte {
	if r.err != nil {
		return nil
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = err
		return nil
	}

	return b
}

func (r *Reader) ReadBool() bool {
	b := r.raw(1)
	return len(b) == 1 && b[0] != 0
}

func (r *Reader) ReadUint8() uint8 {
	b := r.raw(1)
	if len(b) != 1 {
		return 0
	}

	return b[0]
}

func (r *Reader) ReadUint32() uint32 {
	b := r.raw(4)
	if len(b) != 4 {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadUint64() uint64 {
	b := r.raw(8)
	if len(b) != 8 {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUint32()) }
func (r *Reader) ReadFloat64() float64 { return math.Float64frombits(r.ReadUint64()) }

// ReadBytes reads a uint32 length prefix then that many raw bytes.
func (r *Reader) ReadBytes() []byte {
	n := r.ReadUint32()
	if r.err != nil {
		return nil
	}

	return r.raw(int(n))
}

// ReadString reads a uint32 byte-length prefix then that many bytes.
func (r *Reader) ReadString() string { return string(r.ReadBytes()) }

// ReadAny reads a kind byte followed by the payload matching that kind,
// producing the equivalent of the AnySimple WriteAny wrote.
func (r *Reader) ReadAny() anysimple.AnySimple {
	kind := anysimple.Kind(r.ReadUint8())

	switch kind {
	case anysimple.KindNone:
		return anysimple.None
	case anysimple.KindBool:
		return anysimple.FromBool(r.ReadBool())
	case anysimple.KindChar8:
		return anysimple.FromChar8(r.ReadUint8())
	case anysimple.KindUInt8:
		return anysimple.FromUInt8(r.ReadUint8())
	case anysimple.KindInt8:
		return anysimple.FromInt8(int8(r.ReadUint8()))
	case anysimple.KindInt16:
		return anysimple.FromInt16(int16(r.ReadUint32()))
	case anysimple.KindUInt16:
		return anysimple.FromUInt16(uint16(r.ReadUint32()))
	case anysimple.KindInt32:
		return anysimple.FromInt32(int32(r.ReadUint32()))
	case anysimple.KindUInt32:
		return anysimple.FromUInt32(r.ReadUint32())
	case anysimple.KindInt64:
		return anysimple.FromInt64(r.ReadInt64())
	case anysimple.KindUInt64:
		return anysimple.FromUInt64(r.ReadUint64())
	case anysimple.KindFloat32:
		return anysimple.FromFloat32(r.ReadFloat32())
	case anysimple.KindFloat64:
		return anysimple.FromFloat64(r.ReadFloat64())
	case anysimple.KindDuration:
		return anysimple.FromDuration(anysimple.Duration(r.ReadInt64()))
	case anysimple.KindDateTime:
		return anysimple.FromDateTime(anysimple.DateTime(r.ReadInt64()))
	case anysimple.KindString8:
		s := r.ReadString()
		return anysimple.FromString8(&s)
	default:
		if r.err == nil {
			r.err = smperrors.InvalidAnyType(smperrors.Sender("persist.Reader"))
		}

		return anysimple.None
	}
}
