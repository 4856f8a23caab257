package xsmputil_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/internal/xsmputil"
)

func TestXsmputil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Xsmputil Suite")
}

type fakeSender string

func (f fakeSender) String() string { return string(f) }

var _ = Describe("CheckName", func() {
	It("accepts a plain identifier", func() {
		Expect(xsmputil.CheckName(fakeSender("s"), "thruster")).NotTo(HaveOccurred())
	})

	It("rejects an empty name", func() {
		Expect(xsmputil.CheckName(fakeSender("s"), "")).To(HaveOccurred())
	})

	It("rejects a name containing the path separator", func() {
		Expect(xsmputil.CheckName(fakeSender("s"), "a.b")).To(HaveOccurred())
	})

	It("rejects a name containing a slash", func() {
		Expect(xsmputil.CheckName(fakeSender("s"), "a/b")).To(HaveOccurred())
	})
})

var _ = Describe("FieldPath", func() {
	It("joins segments with a dot", func() {
		Expect(xsmputil.FieldPath("telemetry", "position", "x")).To(Equal("telemetry.position.x"))
	})

	It("returns a single segment unchanged", func() {
		Expect(xsmputil.FieldPath("thruster")).To(Equal("thruster"))
	})
})
