package uuid_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/uuid"
)

func TestUuid(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Uuid Suite")
}

var _ = Describe("Uuid", func() {
	It("round-trips canonical strings (R... property 10)", func() {
		s := "2cb7a8f0-1234-4abc-9def-0123456789ab"
		u, err := uuid.Parse(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.String()).To(Equal(s))
	})

	It("is case-insensitive on input, lower-case on output", func() {
		s := "2CB7A8F0-1234-4ABC-9DEF-0123456789AB"
		u, err := uuid.Parse(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.String()).To(Equal("2cb7a8f0-1234-4abc-9def-0123456789ab"))
	})

	DescribeTable("rejects any deviation from the canonical shape",
		func(s string) {
			_, err := uuid.Parse(s)
			Expect(err).To(HaveOccurred())
		},
		Entry("too short", "2cb7a8f0-1234-4abc-9def-0123456789a"),
		Entry("missing dash", "2cb7a8f012344abc9def0123456789ab"),
		Entry("non-hex char", "zzb7a8f0-1234-4abc-9def-0123456789ab"),
		Entry("braces", "{2cb7a8f0-1234-4abc-9def-0123456789ab}"),
		Entry("empty", ""),
	)

	It("orders lexicographically on (Data1, Data2, Data3)", func() {
		a := uuid.Uuid{Data1: 1}
		b := uuid.Uuid{Data1: 2}
		Expect(a.Less(b)).To(BeTrue())
		Expect(b.Less(a)).To(BeFalse())

		c := uuid.Uuid{Data1: 1, Data2: [3]uint16{0, 0, 1}}
		Expect(a.Less(c)).To(BeTrue())
	})

	It("treats the zero value as Void", func() {
		Expect(uuid.Uuid{}.IsVoid()).To(BeTrue())
		Expect(uuid.New().IsVoid()).To(BeFalse())
	})
})
