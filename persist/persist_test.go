package persist_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/field"
	"github.com/sarchlab/xsmpcore/persist"
	"github.com/sarchlab/xsmpcore/types"
)

func TestPersist(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Persist Suite")
}

var _ = Describe("Writer/Reader primitives", func() {
	It("round-trips every scalar kind written", func() {
		var buf bytes.Buffer
		w := persist.NewWriter(&buf)

		w.WriteBool(true)
		w.WriteUint8(42)
		w.WriteUint32(123456)
		w.WriteUint64(9876543210)
		w.WriteInt64(-7)
		w.WriteFloat32(3.5)
		w.WriteFloat64(2.71828)
		w.WriteString("telemetry.position.x")
		w.WriteBytes([]byte{1, 2, 3})
		Expect(w.Err()).NotTo(HaveOccurred())

		r := persist.NewReader(&buf)
		Expect(r.ReadBool()).To(BeTrue())
		Expect(r.ReadUint8()).To(Equal(uint8(42)))
		Expect(r.ReadUint32()).To(Equal(uint32(123456)))
		Expect(r.ReadUint64()).To(Equal(uint64(9876543210)))
		Expect(r.ReadInt64()).To(Equal(int64(-7)))
		Expect(r.ReadFloat32()).To(Equal(float32(3.5)))
		Expect(r.ReadFloat64()).To(Equal(2.71828))
		Expect(r.ReadString()).To(Equal("telemetry.position.x"))
		Expect(r.ReadBytes()).To(Equal([]byte{1, 2, 3}))
		Expect(r.Err()).NotTo(HaveOccurred())
	})

	It("surfaces a short stream as an error rather than panicking", func() {
		r := persist.NewReader(bytes.NewReader(nil))
		Expect(func() { r.ReadUint64() }).NotTo(Panic())
		Expect(r.Err()).To(HaveOccurred())
	})
})

var _ = Describe("WriteAny/ReadAny (spec §8 R1)", func() {
	It("round-trips every AnySimple kind", func() {
		s := "hello"

		values := []anysimple.AnySimple{
			anysimple.None,
			anysimple.FromBool(true),
			anysimple.FromChar8('x'),
			anysimple.FromUInt8(200),
			anysimple.FromInt8(-12),
			anysimple.FromInt16(-300),
			anysimple.FromUInt16(300),
			anysimple.FromInt32(-70000),
			anysimple.FromUInt32(70000),
			anysimple.FromInt64(-1 << 40),
			anysimple.FromUInt64(1 << 40),
			anysimple.FromFloat32(1.5),
			anysimple.FromFloat64(1.23456789),
			anysimple.FromDuration(anysimple.Duration(1000)),
			anysimple.FromDateTime(anysimple.DateTime(2000)),
			anysimple.FromString8(&s),
		}

		var buf bytes.Buffer
		w := persist.NewWriter(&buf)

		for _, v := range values {
			w.WriteAny(v)
		}

		Expect(w.Err()).NotTo(HaveOccurred())

		r := persist.NewReader(&buf)

		for _, want := range values {
			got := r.ReadAny()
			Expect(r.Err()).NotTo(HaveOccurred())
			Expect(got.Equal(want)).To(BeTrue(), "value of kind %s", want.Kind)
			Expect(got.Kind).To(Equal(want.Kind))
		}
	})
})

var _ = Describe("Envelope", func() {
	It("accepts a matching type-id hash", func() {
		var buf bytes.Buffer
		w := persist.NewWriter(&buf)

		id := persist.TypeID("xsmpcore.test.widget")
		persist.WriteEnvelope(w, id, func(w *persist.Writer) { w.WriteUint32(7) })

		r := persist.NewReader(&buf)

		var got uint32
		err := persist.ReadEnvelope(r, stubSender{}, id, func(r *persist.Reader) { got = r.ReadUint32() })
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(uint32(7)))
	})

	It("rejects a mismatched type-id hash", func() {
		var buf bytes.Buffer
		w := persist.NewWriter(&buf)

		persist.WriteEnvelope(w, persist.TypeID("xsmpcore.test.widget"), func(w *persist.Writer) { w.WriteUint32(7) })

		r := persist.NewReader(&buf)

		err := persist.ReadEnvelope(r, stubSender{}, persist.TypeID("xsmpcore.test.other"), func(r *persist.Reader) {})
		Expect(err).To(HaveOccurred())
	})
})

type stubSender struct{}

func (stubSender) String() string { return "stub" }

var _ = Describe("StoreField/RestoreField", func() {
	It("round-trips a Simple field's value", func() {
		reg := types.NewRegistry()
		intType, ok := reg.GetPrimitiveType(anysimple.KindInt32)
		Expect(ok).To(BeTrue())

		f := field.NewSimple("x", "", intType, field.Traits{IsState: true})
		Expect(f.SetValue(anysimple.FromInt32(99))).NotTo(HaveOccurred())

		var buf bytes.Buffer
		w := persist.NewWriter(&buf)
		persist.StoreField(w, f)
		Expect(w.Err()).NotTo(HaveOccurred())

		g := field.NewSimple("x", "", intType, field.Traits{IsState: true})

		r := persist.NewReader(&buf)
		Expect(persist.RestoreField(r, g)).NotTo(HaveOccurred())

		v, err := g.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.AsInt64()).To(Equal(int64(99)))
	})

	It("skips a Simple field not marked IsState on both store and restore", func() {
		reg := types.NewRegistry()
		intType, ok := reg.GetPrimitiveType(anysimple.KindInt32)
		Expect(ok).To(BeTrue())

		f := field.NewSimple("x", "", intType, field.Traits{IsState: false})

		var buf bytes.Buffer
		w := persist.NewWriter(&buf)
		persist.StoreField(w, f)
		Expect(buf.Len()).To(Equal(0))

		g := field.NewSimple("x", "", intType, field.Traits{IsState: false})
		r := persist.NewReader(&buf)
		Expect(persist.RestoreField(r, g)).NotTo(HaveOccurred())
	})
})
