package publication_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/field"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/request"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

func TestPublication(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Publication Suite")
}

type owner string

func (o owner) Name() string { return string(o) }

type invokableStub struct{ table request.HandlerTable }

func (i *invokableStub) HandlerTable() *request.HandlerTable { return &i.table }

var _ = Describe("Publication", func() {
	var (
		reg *types.Registry
		pub *publication.Publication
	)

	BeforeEach(func() {
		reg = types.NewRegistry()
		pub = publication.New(reg, owner("comp"))
	})

	It("publishes a Simple field for a primitive type", func() {
		boolT, _ := reg.GetPrimitiveType(anysimple.KindBool)
		f, err := pub.PublishField("enabled", "", boolT.Uuid(), types.ViewAll, true, false, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind()).To(Equal(field.KindSimple))
		Expect(f.Owner().Name()).To(Equal("comp"))
	})

	It("rejects publishing a duplicate field name", func() {
		boolT, _ := reg.GetPrimitiveType(anysimple.KindBool)
		_, err := pub.PublishField("x", "", boolT.Uuid(), types.ViewAll, true, false, false)
		Expect(err).NotTo(HaveOccurred())

		_, err = pub.PublishField("x", "", boolT.Uuid(), types.ViewAll, true, false, false)
		Expect(err).To(HaveOccurred())
	})

	It("recursively publishes a Structure field walking the type's descriptors", func() {
		int32T, _ := reg.GetPrimitiveType(anysimple.KindInt32)
		boolT, _ := reg.GetPrimitiveType(anysimple.KindBool)

		structT, err := reg.AddStructure("Point", "", uuid.New(), []types.FieldDescriptor{
			{Name: "X", Uuid: int32T.Uuid(), IsState: true},
			{Name: "Active", Uuid: boolT.Uuid(), IsState: true},
		})
		Expect(err).NotTo(HaveOccurred())

		f, err := pub.PublishField("p", "", structT.Uuid(), types.ViewAll, true, false, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Kind()).To(Equal(field.KindStructure))
		Expect(f.Children()).To(HaveLen(2))

		x, ok := f.ChildByName("X")
		Expect(ok).To(BeTrue())
		Expect(x.Kind()).To(Equal(field.KindSimple))
	})

	It("clears parameters when an operation is re-published", func() {
		int32T, _ := reg.GetPrimitiveType(anysimple.KindInt32)

		op := pub.PublishOperation("Do", "", types.ViewAll)
		Expect(op.AddParameter("a", int32T.Uuid(), request.DirIn)).To(Succeed())
		Expect(op.Parameters()).To(HaveLen(1))

		op2 := pub.PublishOperation("Do", "new description", types.ViewAll)
		Expect(op2).To(BeIdenticalTo(op))
		Expect(op2.Parameters()).To(BeEmpty())
	})

	It("returns nil from CreateRequest for a non-invokable operation", func() {
		classT, err := reg.AddClass("Opaque", "", uuid.New(), nil, uuid.Void)
		Expect(err).NotTo(HaveOccurred())

		op := pub.PublishOperation("Weird", "", types.ViewAll)
		Expect(op.AddParameter("x", classT.Uuid(), request.DirIn)).To(Succeed())

		Expect(pub.CreateRequest("Weird")).To(BeNil())
	})

	It("returns nil from CreateRequest for an unknown operation name", func() {
		Expect(pub.CreateRequest("NoSuchOp")).To(BeNil())
	})

	It("wires a read-write property to get_/set_ handlers", func() {
		int32T, _ := reg.GetPrimitiveType(anysimple.KindInt32)
		inv := &invokableStub{}

		_, err := pub.PublishProperty("Count", "", int32T.Uuid(), publication.AccessReadWrite, types.ViewAll, inv)
		Expect(err).NotTo(HaveOccurred())

		setReq := pub.CreateRequest("set_Count")
		Expect(setReq).NotTo(BeNil())
		Expect(setReq.SetParameterValue(0, anysimple.FromInt32(42))).To(Succeed())

		setHandler, ok := inv.table.Lookup("set_Count")
		Expect(ok).To(BeTrue())
		Expect(setHandler(setReq)).To(Succeed())

		getReq := pub.CreateRequest("get_Count")
		Expect(getReq).NotTo(BeNil())
		getHandler, _ := inv.table.Lookup("get_Count")
		Expect(getHandler(getReq)).To(Succeed())

		v, err := getReq.GetReturnValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Int32()).To(Equal(int32(42)))
	})
})
