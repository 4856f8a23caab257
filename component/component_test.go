package component_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
)

func TestComponent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Component Suite")
}

type plainModel struct {
	*component.Component
	published bool
}

func newPlainModel(name string) *plainModel {
	m := &plainModel{}
	m.Component = component.NewComponent(name, "", m)
	return m
}

func (m *plainModel) DoPublish(pub *publication.Publication) { m.published = true }

type hookedModel struct {
	*component.Component
	published  bool
	configured bool
	connected  bool
}

func newHookedModel(name string) *hookedModel {
	m := &hookedModel{}
	m.Component = component.NewComponent(name, "", m)
	return m
}

func (m *hookedModel) DoConfigure(logger component.Logger, links component.LinkRegistry) error {
	m.configured = true
	return nil
}

func (m *hookedModel) DoConnect(sim component.Simulator) error {
	m.connected = true
	return nil
}

var _ = Describe("Component lifecycle (spec §8 property 1)", func() {
	var (
		reg *types.Registry
		m   *hookedModel
	)

	BeforeEach(func() {
		reg = types.NewRegistry()
		m = newHookedModel("m")
	})

	It("starts Created", func() {
		Expect(m.State()).To(Equal(component.StateCreated))
	})

	It("walks Created->Publishing->Configured->Connected->Disconnected, invoking hooks", func() {
		_, err := m.Publish(reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.State()).To(Equal(component.StatePublishing))

		Expect(m.Configure(nil, nil)).To(Succeed())
		Expect(m.State()).To(Equal(component.StateConfigured))
		Expect(m.configured).To(BeTrue())

		Expect(m.Connect(nil)).To(Succeed())
		Expect(m.State()).To(Equal(component.StateConnected))
		Expect(m.connected).To(BeTrue())

		Expect(m.Disconnect()).To(Succeed())
		Expect(m.State()).To(Equal(component.StateDisconnected))
	})

	It("rejects a skipped transition with InvalidComponentState", func() {
		err := m.Connect(nil)
		Expect(err).To(MatchError(smperrors.Named("InvalidComponentState")))
	})

	It("rejects a backwards transition", func() {
		_, err := m.Publish(reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Configure(nil, nil)).To(Succeed())
		Expect(m.Connect(nil)).To(Succeed())
		Expect(m.Disconnect()).To(Succeed())

		err = m.Configure(nil, nil)
		Expect(err).To(MatchError(smperrors.Named("InvalidComponentState")))
	})
})

type dummyChild struct{ name string }

func (d dummyChild) Name() string { return d.name }

var _ = Describe("Composite containers (spec §8 property 3, scenario S4)", func() {
	It("enforces the upper bound and rejects duplicate names", func() {
		co := component.NewComposite("c", "", nil)
		_, err := co.AddContainer("children", "", 0, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(co.Add("children", dummyChild{"x"})).To(Succeed())

		err = co.Add("children", dummyChild{"x"})
		Expect(err).To(MatchError(smperrors.Named("DuplicateName")))

		Expect(co.Add("children", dummyChild{"y"})).To(Succeed())

		err = co.Add("children", dummyChild{"z"})
		Expect(err).To(MatchError(smperrors.Named("ContainerFull")))
	})

	It("rejects deleting below the lower bound", func() {
		co := component.NewComposite("c", "", nil)
		_, err := co.AddContainer("children", "", 1, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(co.Add("children", dummyChild{"a"})).To(Succeed())

		err = co.Remove("children", "a")
		Expect(err).To(MatchError(smperrors.Named("CannotDelete")))
	})
})

var _ = Describe("Aggregate references", func() {
	It("permits name collisions and enforces bounds", func() {
		ag := component.NewAggregate("a", "", nil)
		_, err := ag.AddReferenceCollection("peers", "", 0, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(ag.AddReference("peers", dummyChild{"x"})).To(Succeed())
		Expect(ag.AddReference("peers", dummyChild{"x"})).To(Succeed())

		err = ag.AddReference("peers", dummyChild{"y"})
		Expect(err).To(MatchError(smperrors.Named("ReferenceFull")))

		Expect(ag.RemoveReference("peers", "x")).To(Succeed())
		Expect(ag.RemoveReference("peers", "x")).To(Succeed())

		err = ag.RemoveReference("peers", "x")
		Expect(err).To(MatchError(smperrors.Named("NotReferenced")))
	})
})

var _ = Describe("plainModel DoPublish hook", func() {
	It("invokes DoPublish on Publish", func() {
		reg := types.NewRegistry()
		m := newPlainModel("m")
		_, err := m.Publish(reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.published).To(BeTrue())
	})
})
