package field_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/field"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

func TestField(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Field Suite")
}

func boolType() types.Type {
	r := types.NewRegistry()
	t, _ := r.GetPrimitiveType(anysimple.KindBool)
	return t
}

func int8Type() types.Type {
	r := types.NewRegistry()
	t, _ := r.GetPrimitiveType(anysimple.KindInt8)
	return t
}

var _ = Describe("Dataflow", func() {
	It("propagates a value on Push (S1, property 2)", func() {
		bt := boolType()
		out := field.NewSimple("out", "", bt, field.Traits{IsOutput: true})
		in := field.NewSimple("in", "", bt, field.Traits{IsInput: true})

		Expect(field.Connect(out, in)).To(Succeed())

		Expect(out.SetValue(anysimple.FromBool(true))).To(Succeed())
		out.Push()

		v, err := in.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Bool()).To(BeTrue())
	})

	It("rejects a second identical connection (FieldAlreadyConnected)", func() {
		bt := boolType()
		out := field.NewSimple("out", "", bt, field.Traits{IsOutput: true})
		in := field.NewSimple("in", "", bt, field.Traits{IsInput: true})

		Expect(field.Connect(out, in)).To(Succeed())
		err := field.Connect(out, in)
		Expect(err).To(MatchError(smperrors.Named("FieldAlreadyConnected")))
	})

	It("rejects mismatched primitive kinds with InvalidTarget", func() {
		out := field.NewSimple("out", "", boolType(), field.Traits{IsOutput: true})
		in := field.NewSimple("in", "", int8Type(), field.Traits{IsInput: true})

		err := field.Connect(out, in)
		Expect(err).To(MatchError(smperrors.Named("InvalidTarget")))
	})

	It("requires equivalent structure shape (AreEquivalent)", func() {
		bt := boolType()
		a := field.NewSimple("a", "", bt, field.Traits{})
		b := field.NewSimple("b", "", bt, field.Traits{})
		Expect(field.AreEquivalent(a, b)).To(BeTrue())

		c := field.NewSimple("c", "", int8Type(), field.Traits{})
		Expect(field.AreEquivalent(a, c)).To(BeFalse())
	})

	It("removes links belonging to the given owner's subtree", func() {
		bt := boolType()
		out := field.NewSimple("out", "", bt, field.Traits{IsOutput: true})
		in := field.NewSimple("in", "", bt, field.Traits{IsInput: true})
		in.SetOwner(testOwner("consumer"))

		Expect(field.Connect(out, in)).To(Succeed())
		out.RemoveLinks(testOwner("consumer"))

		// Re-push should no longer reach the removed subscriber.
		Expect(out.SetValue(anysimple.FromBool(true))).To(Succeed())
		out.Push()
		v, _ := in.GetValue()
		Expect(v.Bool()).To(BeFalse())
	})
})

type testOwner string

func (t testOwner) Name() string { return string(t) }

var _ = Describe("Forcible field (S2)", func() {
	It("pins the value until Unforce is called", func() {
		f := field.NewSimple("f", "", int8Type(), field.Traits{IsForcible: true})

		Expect(f.SetValue(anysimple.FromInt8(5))).To(Succeed())
		Expect(f.Force(anysimple.FromInt8(10))).To(Succeed())
		Expect(f.SetValue(anysimple.FromInt8(6))).To(Succeed())

		v, _ := f.GetValue()
		Expect(v.Int8()).To(Equal(int8(10)))

		Expect(f.Unforce()).To(Succeed())
		Expect(f.SetValue(anysimple.FromInt8(6))).To(Succeed())

		v, _ = f.GetValue()
		Expect(v.Int8()).To(Equal(int8(6)))
	})

	It("Freeze pins the current live value", func() {
		f := field.NewSimple("f", "", int8Type(), field.Traits{IsForcible: true})
		Expect(f.SetValue(anysimple.FromInt8(7))).To(Succeed())
		Expect(f.Freeze()).To(Succeed())
		Expect(f.SetValue(anysimple.FromInt8(99))).To(Succeed())

		v, _ := f.GetValue()
		Expect(v.Int8()).To(Equal(int8(7)))
	})
})

var _ = Describe("Range validation", func() {
	It("rejects an out-of-range integer write", func() {
		r := types.NewRegistry()
		it, _ := r.AddInteger("Percent", "", uuid.New(), anysimple.KindInt32, 0, 100, "%")
		f := field.NewSimple("f", "", it, field.Traits{})

		err := f.SetValue(anysimple.FromInt32(150))
		Expect(err).To(MatchError(smperrors.Named("InvalidFieldValue")))
	})
})
