package publication_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/types"
)

var _ = Describe("Dump", func() {
	It("renders published fields and operations as tables", func() {
		reg := types.NewRegistry()
		pub := publication.New(reg, owner("thruster"))

		boolT, _ := reg.GetPrimitiveType(anysimple.KindBool)
		_, err := pub.PublishField("enabled", "", boolT.Uuid(), types.ViewAll, true, false, false)
		Expect(err).NotTo(HaveOccurred())

		pub.PublishOperation("fire", "", types.ViewAll)

		out := pub.Dump()
		Expect(out).To(ContainSubstring("thruster"))
		Expect(out).To(ContainSubstring("enabled"))
		Expect(out).To(ContainSubstring("fire"))
	})

	It("renders nothing for a Publication with no published elements", func() {
		reg := types.NewRegistry()
		pub := publication.New(reg, owner("empty"))

		Expect(pub.Dump()).To(Equal(""))
	})
})
