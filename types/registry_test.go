package types_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

func TestTypes(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Types Suite")
}

var _ = Describe("Registry", func() {
	var r *types.Registry

	BeforeEach(func() {
		r = types.NewRegistry()
	})

	It("preloads the standard primitive types", func() {
		t, ok := r.GetPrimitiveType(anysimple.KindBool)
		Expect(ok).To(BeTrue())
		Expect(t.PrimitiveKind()).To(Equal(anysimple.KindBool))
	})

	It("rejects a non-integer kind for AddInteger", func() {
		_, err := r.AddInteger("X", "", uuid.New(), anysimple.KindFloat32, 0, 10, "")
		Expect(err).To(MatchError(smperrors.Named("InvalidPrimitiveType")))
	})

	It("rejects a non-float kind for AddFloat", func() {
		_, err := r.AddFloat("X", "", uuid.New(), anysimple.KindInt32, 0, 10, true, true, "")
		Expect(err).To(MatchError(smperrors.Named("InvalidPrimitiveType")))
	})

	It("validates integer range", func() {
		it, err := r.AddInteger("Percent", "", uuid.New(), anysimple.KindInt32, 0, 100, "%")
		Expect(err).NotTo(HaveOccurred())
		Expect(it.InRange(50)).To(BeTrue())
		Expect(it.InRange(150)).To(BeFalse())
	})

	It("validates float range with independent bound inclusivity", func() {
		ft, err := r.AddFloat("Ratio", "", uuid.New(), anysimple.KindFloat64, 0, 1, true, false, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(ft.InRange(0)).To(BeTrue())
		Expect(ft.InRange(1)).To(BeFalse())
	})

	It("rejects duplicate enumeration literal values", func() {
		_, err := r.AddEnumeration("Color", "", uuid.New(), []types.EnumerationLiteral{
			{Name: "Red", Value: 0},
			{Name: "Blue", Value: 0},
		}, 4)
		Expect(err).To(MatchError(smperrors.Named("DuplicateLiteral")))
	})

	It("rejects an invalid enum memory size", func() {
		_, err := r.AddEnumeration("Color", "", uuid.New(), nil, 3)
		Expect(err).To(MatchError(smperrors.Named("InvalidPrimitiveType")))
	})

	It("raises TypeAlreadyRegistered on a second add under the same uuid", func() {
		id := uuid.New()
		_, err := r.AddString("S1", "", id, 32)
		Expect(err).NotTo(HaveOccurred())

		_, err = r.AddString("S2", "", id, 64)
		Expect(err).To(MatchError(smperrors.Named("TypeAlreadyRegistered")))
	})

	It("requires a class's base uuid to be a previously registered class, or Void", func() {
		_, err := r.AddClass("Derived", "", uuid.New(), nil, uuid.New())
		Expect(err).To(HaveOccurred())

		base, err := r.AddClass("Base", "", uuid.New(), nil, uuid.Void)
		Expect(err).NotTo(HaveOccurred())

		derived, err := r.AddClass("Derived2", "", uuid.New(), nil, base.Uuid())
		Expect(err).NotTo(HaveOccurred())
		Expect(derived.BaseClassUuid).To(Equal(base.Uuid()))
	})

	It("rejects a class whose own uuid equals its declared base", func() {
		id := uuid.New()
		_, err := r.AddClass("Self", "", id, nil, id)
		Expect(err).To(HaveOccurred())
	})
})
