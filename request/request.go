// Package request implements the dynamic operation-invocation protocol of
// spec §4.2-§4.3 (C6): parameters are flattened into a name-indexed value
// vector (a Request), dispatched to a handler looked up by operation name.
package request

import (
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

// Direction is a parameter's data-flow direction; Return marks the single
// optional return parameter.
type Direction uint8

const (
	DirIn Direction = iota
	DirOut
	DirInOut
	DirReturn
)

// Parameter is one declared, ordered formal parameter of an Operation.
type Parameter struct {
	Name      string
	TypeUuid  uuid.Uuid
	Direction Direction
}

// Operation is a published, dynamically invokable method signature.
type Operation struct {
	name        string
	description string
	view        types.ViewKind
	params      []Parameter
}

func (op *Operation) String() string      { return op.name }
func (op *Operation) Name() string        { return op.name }
func (op *Operation) Description() string { return op.description }
func (op *Operation) Parameters() []Parameter {
	return append([]Parameter(nil), op.params...)
}

// ReturnParameter reports the operation's return parameter, if any.
func (op *Operation) ReturnParameter() (Parameter, bool) {
	for _, p := range op.params {
		if p.Direction == DirReturn {
			return p, true
		}
	}

	return Parameter{}, false
}

// NewOperation constructs an empty operation ready for AddParameter calls,
// as returned by Publication.PublishOperation (spec §4.2).
func NewOperation(name, description string, view types.ViewKind) *Operation {
	return &Operation{name: name, description: description, view: view}
}

// AddParameter appends a parameter in declaration order. At most one
// parameter may have Direction DirReturn; adding a second raises
// InvalidParameterIndex (there is no slot for a second return value).
func (op *Operation) AddParameter(name string, typeUuid uuid.Uuid, dir Direction) error {
	if dir == DirReturn {
		if _, ok := op.ReturnParameter(); ok {
			return smperrors.InvalidParameterIndex(op, len(op.params))
		}
	}

	op.params = append(op.params, Parameter{Name: name, TypeUuid: typeUuid, Direction: dir})

	return nil
}

// ClearParameters drops all parameters, used when re-publishing an
// operation under an existing name (spec §4.2).
func (op *Operation) ClearParameters() { op.params = nil }

// Slot is one flattened leaf value exchanged with a Request. LeafType is
// the resolved leaf Type (Primitive/Integer/Float/Enumeration/String),
// retained so Invoke can apply the leaf's own range validation rather
// than just its primitive Kind.
type Slot struct {
	Name     string
	Kind     anysimple.Kind
	LeafType types.Type
	Value    anysimple.AnySimple
}

// Request is a parameter-indexed value vector leased from an owning
// Publication (spec §3/§4.2). A void operation's returnIndex is -1.
type Request struct {
	ID          xid.ID
	operation   *Operation
	slots       []Slot
	returnIndex int
}

func (r *Request) String() string { return "Request(" + r.operation.name + ")" }

// OperationName returns the name of the operation this request targets.
func (r *Request) OperationName() string { return r.operation.name }

// ParameterCount returns the number of flattened slots (spec §8 property 8).
func (r *Request) ParameterCount() int { return len(r.slots) }

// GetParameterIndex returns the slot index for a flattened parameter
// name (e.g. "p", "arr[2]", "s.field"), or -1 if not found.
func (r *Request) GetParameterIndex(name string) int {
	for i, s := range r.slots {
		if s.Name == name {
			return i
		}
	}

	return -1
}

// GetParameterValue reads a slot by index.
func (r *Request) GetParameterValue(index int) (anysimple.AnySimple, error) {
	if index < 0 || index >= len(r.slots) {
		return anysimple.None, smperrors.InvalidParameterIndex(r, index)
	}

	return r.slots[index].Value, nil
}

// SetParameterValue writes a slot by index, validating kind.
func (r *Request) SetParameterValue(index int, v anysimple.AnySimple) error {
	if index < 0 || index >= len(r.slots) {
		return smperrors.InvalidParameterIndex(r, index)
	}

	if v.Kind != r.slots[index].Kind {
		return smperrors.InvalidParameterType(r, r.slots[index].Name)
	}

	r.slots[index].Value = v

	return nil
}

// HasReturnValue reports whether the targeted operation declares a
// return parameter.
func (r *Request) HasReturnValue() bool { return r.returnIndex >= 0 }

// GetReturnValue reads the return slot; VoidOperation if the operation
// has none.
func (r *Request) GetReturnValue() (anysimple.AnySimple, error) {
	if r.returnIndex < 0 {
		return anysimple.None, smperrors.VoidOperation(r)
	}

	return r.slots[r.returnIndex].Value, nil
}

// SetReturnValue writes the return slot; VoidOperation if the operation
// has none.
func (r *Request) SetReturnValue(v anysimple.AnySimple) error {
	if r.returnIndex < 0 {
		return smperrors.VoidOperation(r)
	}

	return r.SetParameterValue(r.returnIndex, v)
}

// TypeResolver is the subset of *types.Registry the flattening algorithm
// needs; accepting an interface keeps request decoupled from how the
// registry is constructed.
type TypeResolver interface {
	GetType(id uuid.Uuid) (types.Type, bool)
}

// flatten implements spec §4.2's flattening rule: a primitive-kind
// parameter emits one slot named name; an array parameter emits
// name[i] per item recursively; a structure parameter emits name.field
// recursively. Returns ok=false if any leaf bottoms out in a non-
// primitive, non-decomposable type (the operation is then not invokable).
func flatten(reg TypeResolver, name string, id uuid.Uuid) ([]Slot, bool) {
	t, ok := reg.GetType(id)
	if !ok {
		return nil, false
	}

	switch t.Variant() {
	case types.VariantArray:
		at := t.(*types.ArrayType)

		var out []Slot

		for i := 0; i < at.Count; i++ {
			sub, ok := flatten(reg, fmt.Sprintf("%s[%d]", name, i), at.ItemTypeUuid)
			if !ok {
				return nil, false
			}

			out = append(out, sub...)
		}

		return out, true
	case types.VariantStructure:
		st := t.(*types.StructureType)

		var out []Slot

		for _, fd := range st.Fields {
			sub, ok := flatten(reg, name+"."+fd.Name, fd.Uuid)
			if !ok {
				return nil, false
			}

			out = append(out, sub...)
		}

		return out, true
	default:
		k := t.PrimitiveKind()
		if k == anysimple.KindNone {
			return nil, false
		}

		return []Slot{{Name: name, Kind: k, LeafType: t}}, true
	}
}

// BuildRequest flattens op's parameters into a Request. Returns ok=false
// if op is not invokable (some parameter or the return type does not
// bottom out in a primitive kind), matching Publication.CreateRequest's
// "returns null" contract.
func BuildRequest(reg TypeResolver, op *Operation) (*Request, bool) {
	req := &Request{ID: xid.New(), operation: op, returnIndex: -1}

	for _, p := range op.params {
		slots, ok := flatten(reg, p.Name, p.TypeUuid)
		if !ok {
			return nil, false
		}

		if p.Direction == DirReturn {
			if len(slots) != 1 {
				return nil, false
			}

			req.returnIndex = len(req.slots)
		}

		req.slots = append(req.slots, slots...)
	}

	return req, true
}

// ParamNamesJoined is a small debug helper that renders a request's
// flattened signature as its slot names joined by ", ".
func ParamNamesJoined(req *Request) string {
	names := make([]string, len(req.slots))
	for i, s := range req.slots {
		names[i] = s.Name
	}

	return strings.Join(names, ", ")
}
