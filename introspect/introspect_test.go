package introspect_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/introspect"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/simulator"
	"github.com/sarchlab/xsmpcore/types"
)

func TestIntrospect(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Introspect Suite")
}

// gauge is a minimal fixture Model publishing one state field, the same
// shape simulator_test.go's thruster fixture uses.
type gauge struct {
	*component.Component
}

func newGauge(name string) *gauge {
	g := &gauge{}
	g.Component = component.NewComponent(name, "a gauge", g)

	return g
}

func (g *gauge) ComponentBase() *component.Component { return g.Component }

func (g *gauge) DoPublish(pub *publication.Publication) {
	reg := pub.Registry()
	intType, _ := reg.GetPrimitiveType(anysimple.KindInt32)
	_, _ = pub.PublishField("reading", "", intType.Uuid(), types.ViewAll, true, false, false)
}

func buildSim() *simulator.Simulator {
	sim := simulator.New("TestSim", "")
	g := newGauge("gauge1")

	Expect(sim.Add("Models", g)).NotTo(HaveOccurred())
	Expect(sim.Publish()).NotTo(HaveOccurred())

	fld, _ := g.Publication().Field("reading")
	Expect(fld.SetValue(anysimple.FromInt32(42))).NotTo(HaveOccurred())

	return sim
}

func getJSON(h http.Handler, path string, out interface{}) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := rec.Result()
	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}

	return resp
}

var _ = Describe("introspect.Server", func() {
	It("lists Models container contents", func() {
		h := introspect.NewServer(buildSim()).Handler()

		var names []string
		resp := getJSON(h, "/models", &names)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(names).To(Equal([]string{"gauge1"}))
	})

	It("lists a component's published fields", func() {
		h := introspect.NewServer(buildSim()).Handler()

		var fields []map[string]interface{}
		resp := getJSON(h, "/components/Models/gauge1/fields", &fields)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(fields).To(HaveLen(1))
		Expect(fields[0]["name"]).To(Equal("reading"))
	})

	It("reads a single field's current value", func() {
		h := introspect.NewServer(buildSim()).Handler()

		var out map[string]interface{}
		resp := getJSON(h, "/components/Models/gauge1/fields/reading", &out)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(out["value"]).To(BeNumerically("==", 42))
	})

	It("404s on an unknown component", func() {
		h := introspect.NewServer(buildSim()).Handler()

		resp := getJSON(h, "/components/Models/nope/fields", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("renders a go-pretty table dump", func() {
		h := introspect.NewServer(buildSim()).Handler()

		req := httptest.NewRequest(http.MethodGet, "/components/Models/gauge1/dump", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("reading"))
	})

	It("resolves a registered primitive type by uuid", func() {
		sim := buildSim()
		intType, _ := sim.TypeRegistry().GetPrimitiveType(anysimple.KindInt32)
		h := introspect.NewServer(sim).Handler()

		var out map[string]interface{}
		resp := getJSON(h, "/types/"+intType.Uuid().String(), &out)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(out["primitiveKind"]).To(Equal("Int32"))
	})
})
