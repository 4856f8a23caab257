// Package introspect is a read-only HTTP debug surface over a running
// Simulator's field tree, type registry, and Models/Services containers
// (SPEC_FULL.md section B). It is a library, not the host CLI spec.md
// places out of scope: an embedding host mounts Handler() on whatever
// net/http server it already runs.
package introspect

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sarchlab/xsmpcore/component"
	"github.com/sarchlab/xsmpcore/field"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/simulator"
	"github.com/sarchlab/xsmpcore/uuid"
)

// componentLike mirrors simulator's own narrow view of a Model/Service
// (the same ComponentBase() method, redeclared here because simulator's
// componentLike is unexported; same decoupling pattern as
// field.Owner/publication.Invokable).
type componentLike interface {
	ComponentBase() *component.Component
}

// Server wraps a *simulator.Simulator with a gorilla/mux router exposing
// its introspectable surface. It never mutates simulator state; every
// route is a GET.
type Server struct {
	sim    *simulator.Simulator
	router *mux.Router
}

// NewServer builds a Server bound to sim and wires its routes.
func NewServer(sim *simulator.Simulator) *Server {
	s := &Server{sim: sim, router: mux.NewRouter()}
	s.routes()

	return s
}

// Handler returns the server's http.Handler, ready to be mounted by an
// embedding host (ListenAndServe, httptest, or a larger mux).
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.HandleFunc("/models", s.listContainer("Models")).Methods(http.MethodGet)
	s.router.HandleFunc("/services", s.listContainer("Services")).Methods(http.MethodGet)
	s.router.HandleFunc("/components/{container}/{name}/dump", s.dumpComponent).Methods(http.MethodGet)
	s.router.HandleFunc("/components/{container}/{name}/fields", s.listFields).Methods(http.MethodGet)
	s.router.HandleFunc("/components/{container}/{name}/fields/{field}", s.getField).Methods(http.MethodGet)
	s.router.HandleFunc("/types/{uuid}", s.getType).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) listContainer(containerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct, ok := s.sim.Container(containerName)
		if !ok {
			writeError(w, http.StatusNotFound, "no "+containerName+" container")
			return
		}

		names := make([]string, 0, ct.Count())
		for _, child := range ct.Children() {
			names = append(names, child.Name())
		}

		writeJSON(w, http.StatusOK, names)
	}
}

func (s *Server) findComponent(w http.ResponseWriter, r *http.Request) *publication.Publication {
	vars := mux.Vars(r)

	ct, ok := s.sim.Container(vars["container"])
	if !ok {
		writeError(w, http.StatusNotFound, "no such container")
		return nil
	}

	child, ok := ct.Child(vars["name"])
	if !ok {
		writeError(w, http.StatusNotFound, "no such component")
		return nil
	}

	c, ok := child.(componentLike)
	if !ok {
		writeError(w, http.StatusNotFound, "component exposes no publication")
		return nil
	}

	pub := c.ComponentBase().Publication()
	if pub == nil {
		writeError(w, http.StatusConflict, "component not yet published")
		return nil
	}

	return pub
}

func (s *Server) dumpComponent(w http.ResponseWriter, r *http.Request) {
	pub := s.findComponent(w, r)
	if pub == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(pub.Dump()))
}

type fieldSummary struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	State  bool   `json:"state"`
	Input  bool   `json:"input"`
	Output bool   `json:"output"`
}

func (s *Server) listFields(w http.ResponseWriter, r *http.Request) {
	pub := s.findComponent(w, r)
	if pub == nil {
		return
	}

	out := make([]fieldSummary, 0, len(pub.Fields()))
	for _, f := range pub.Fields() {
		out = append(out, fieldSummary{
			Name:   f.Name(),
			Kind:   kindName(f.Kind()),
			State:  f.IsState(),
			Input:  f.IsInput(),
			Output: f.IsOutput(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func kindName(k field.Kind) string {
	switch k {
	case field.KindSimple:
		return "Simple"
	case field.KindSimpleArray:
		return "SimpleArray"
	case field.KindArray:
		return "Array"
	case field.KindStructure:
		return "Structure"
	default:
		return "Unknown"
	}
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	pub := s.findComponent(w, r)
	if pub == nil {
		return
	}

	name := mux.Vars(r)["field"]

	f, ok := pub.Field(name)
	if !ok {
		writeError(w, http.StatusNotFound, "no such field")
		return
	}

	switch f.Kind() {
	case field.KindSimple:
		v, err := f.GetValue()
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":  f.Name(),
			"kind":  v.Kind.String(),
			"value": valueOf(v.Kind, v),
		})

	case field.KindSimpleArray:
		items, err := f.Items()
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}

		values := make([]interface{}, len(items))
		for i, it := range items {
			values[i] = valueOf(it.Kind, it)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"name": f.Name(), "items": values})

	default:
		children := make([]string, 0, len(f.Children()))
		for _, c := range f.Children() {
			children = append(children, c.Name())
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"name": f.Name(), "children": children})
	}
}

func (s *Server) getType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, ok := s.sim.TypeRegistry().GetType(id)
	if !ok {
		writeError(w, http.StatusNotFound, "type not registered")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":          t.Name(),
		"description":   t.Description(),
		"uuid":          t.Uuid().String(),
		"primitiveKind": t.PrimitiveKind().String(),
	})
}
