// Package publication implements the per-component field/operation/
// property catalog of spec §4.2 (C5): Publish() time registration of
// Fields, Operations and Properties, and leased Request creation.
package publication

import (
	"sync"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/field"
	"github.com/sarchlab/xsmpcore/internal/xsmputil"
	"github.com/sarchlab/xsmpcore/request"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

// Access is a property's read/write capability.
type Access uint8

const (
	AccessReadOnly Access = iota
	AccessWriteOnly
	AccessReadWrite
)

// Property is a named get_/set_ pair bound to a type, exposed through the
// owning component's dynamic-invocation handler table.
type Property struct {
	Name        string
	Description string
	TypeUuid    uuid.Uuid
	Access      Access
	View        types.ViewKind
}

// Invokable is the minimal capability a component must support for
// PublishProperty to wire get_<name>/set_<name> handlers (spec §4.2); it
// is the Go analogue of the original's dynamic-invocation interface.
type Invokable interface {
	HandlerTable() *request.HandlerTable
}

// Publication is the per-component catalog bound to a type registry,
// built once at Publish() time (spec §4.2).
type Publication struct {
	mu sync.Mutex

	registry *types.Registry
	owner    field.Owner

	fieldOrder []string
	fields     map[string]*field.Field

	opOrder    []string
	operations map[string]*request.Operation

	propOrder  []string
	properties map[string]*Property

	leased map[*request.Request]struct{}
}

// New binds a fresh Publication to reg for owner.
func New(reg *types.Registry, owner field.Owner) *Publication {
	return &Publication{
		registry:   reg,
		owner:      owner,
		fields:     make(map[string]*field.Field),
		operations: make(map[string]*request.Operation),
		properties: make(map[string]*Property),
		leased:     make(map[*request.Request]struct{}),
	}
}

func (p *Publication) String() string { return "Publication(" + p.owner.Name() + ")" }

// Registry returns the bound type registry.
func (p *Publication) Registry() *types.Registry { return p.registry }

// PublishField constructs the appropriate Field variant for typeUuid and
// registers it by name (spec §4.2). Structures are published recursively
// by walking the Type's field descriptors; arrays by walking Count items.
func (p *Publication) PublishField(name, description string, typeUuid uuid.Uuid, view types.ViewKind, isState, isInput, isOutput bool) (*field.Field, error) {
	if err := xsmputil.CheckName(p, name); err != nil {
		return nil, err
	}

	t, ok := p.registry.GetType(typeUuid)
	if !ok {
		return nil, smperrors.TypeNotRegistered(p, typeUuid.String())
	}

	tr := field.Traits{IsState: isState, IsInput: isInput, IsOutput: isOutput, View: view}

	f, err := p.buildField(name, description, t, tr)
	if err != nil {
		return nil, err
	}

	f.SetOwner(p.owner)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, dup := p.fields[name]; dup {
		return nil, smperrors.DuplicateName(p, name)
	}

	p.fields[name] = f
	p.fieldOrder = append(p.fieldOrder, name)

	return f, nil
}

func (p *Publication) buildField(name, description string, t types.Type, tr field.Traits) (*field.Field, error) {
	switch t.Variant() {
	case types.VariantArray:
		at := t.(*types.ArrayType)

		itemType, ok := p.registry.GetType(at.ItemTypeUuid)
		if !ok {
			return nil, smperrors.TypeNotRegistered(p, at.ItemTypeUuid.String())
		}

		if at.IsSimple {
			return field.NewSimpleArray(name, description, at, itemType.PrimitiveKind(), tr), nil
		}

		var buildErr error

		f := field.NewArray(name, description, at, tr, func(i int) *field.Field {
			itemName := itemNameFor(i)

			child, err := p.buildField(itemName, "", itemType, tr)
			if err != nil {
				buildErr = err
				return field.NewSimple(itemName, "", itemType, tr)
			}

			return child
		})

		if buildErr != nil {
			return nil, buildErr
		}

		return f, nil
	case types.VariantStructure, types.VariantClass:
		var fields []types.FieldDescriptor

		switch st := t.(type) {
		case *types.StructureType:
			fields = st.Fields
		case *types.ClassType:
			fields = st.Fields
		}

		children := make([]*field.Field, 0, len(fields))

		for _, fd := range fields {
			fieldType, ok := p.registry.GetType(fd.Uuid)
			if !ok {
				return nil, smperrors.TypeNotRegistered(p, fd.Uuid.String())
			}

			childTraits := field.Traits{IsState: fd.IsState, IsInput: fd.IsInput, IsOutput: fd.IsOutput, View: fd.View}

			child, err := p.buildField(fd.Name, fd.Description, fieldType, childTraits)
			if err != nil {
				return nil, err
			}

			children = append(children, child)
		}

		return field.NewStructure(name, description, t, tr, children), nil
	default:
		return field.NewSimple(name, description, t, tr), nil
	}
}

func itemNameFor(i int) string {
	const digits = "0123456789"

	if i < 10 {
		return "[" + string(digits[i]) + "]"
	}

	// Rare (>9 item arrays); fall back to a plain decimal encoding.
	var buf []byte

	n := i
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}

	return "[" + string(buf) + "]"
}

// Field looks up a previously published field by name.
func (p *Publication) Field(name string) (*field.Field, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.fields[name]
	return f, ok
}

// Fields returns published fields in publication order.
func (p *Publication) Fields() []*field.Field {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*field.Field, len(p.fieldOrder))
	for i, n := range p.fieldOrder {
		out[i] = p.fields[n]
	}

	return out
}

// PublishOperation returns a handle through which parameters are added in
// order. Re-publishing an existing name clears its parameters and returns
// the same Operation; its description and view stay as first published.
func (p *Publication) PublishOperation(name, description string, view types.ViewKind) *request.Operation {
	p.mu.Lock()
	defer p.mu.Unlock()

	if op, ok := p.operations[name]; ok {
		op.ClearParameters()
		return op
	}

	op := request.NewOperation(name, description, view)
	p.operations[name] = op
	p.opOrder = append(p.opOrder, name)

	return op
}

// Operation looks up a previously published operation by name.
func (p *Publication) Operation(name string) (*request.Operation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, ok := p.operations[name]
	return op, ok
}

// Operations returns published operations in publication order.
func (p *Publication) Operations() []*request.Operation {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*request.Operation, len(p.opOrder))
	for i, n := range p.opOrder {
		out[i] = p.operations[n]
	}

	return out
}

// PublishProperty creates a Property bound to auto-generated
// get_<name>/set_<name> operation handlers on owner (spec §4.2). owner
// must support dynamic invocation.
func (p *Publication) PublishProperty(name, description string, typeUuid uuid.Uuid, access Access, view types.ViewKind, owner Invokable) (*Property, error) {
	t, ok := p.registry.GetType(typeUuid)
	if !ok {
		return nil, smperrors.TypeNotRegistered(p, typeUuid.String())
	}

	prop := &Property{Name: name, Description: description, TypeUuid: typeUuid, Access: access, View: view}

	p.mu.Lock()
	if _, dup := p.properties[name]; dup {
		p.mu.Unlock()
		return nil, smperrors.DuplicateName(p, name)
	}

	p.properties[name] = prop
	p.propOrder = append(p.propOrder, name)
	p.mu.Unlock()

	table := owner.HandlerTable()
	backing := &propertyBacking{kind: t.PrimitiveKind()}

	if access == AccessReadOnly || access == AccessReadWrite {
		getOp := p.PublishOperation("get_"+name, "get "+description, view)
		_ = getOp.AddParameter("result", typeUuid, request.DirReturn)
		table.Add("get_"+name, backing.get)
	}

	if access == AccessWriteOnly || access == AccessReadWrite {
		setOp := p.PublishOperation("set_"+name, "set "+description, view)
		_ = setOp.AddParameter("value", typeUuid, request.DirIn)
		table.Add("set_"+name, backing.set)
	}

	return prop, nil
}

// Properties returns published properties in publication order.
func (p *Publication) Properties() []*Property {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Property, len(p.propOrder))
	for i, n := range p.propOrder {
		out[i] = p.properties[n]
	}

	return out
}

// propertyBacking stores the current value behind an auto-generated
// get_/set_ operation pair; PublishProperty backs every property with one
// and never binds it to a field of the owner. It is intentionally simpler than
// field.Field (no forcing, no dataflow): a property is a plain accessor,
// not a dataflow endpoint.
type propertyBacking struct {
	mu    sync.Mutex
	kind  anysimple.Kind
	value anysimple.AnySimple
}

func (b *propertyBacking) get(r *request.Request) error {
	b.mu.Lock()
	v := b.value
	b.mu.Unlock()

	return r.SetReturnValue(v)
}

func (b *propertyBacking) set(r *request.Request) error {
	v, err := r.GetParameterValue(0)
	if err != nil {
		return err
	}

	if v.Kind != b.kind {
		return smperrors.InvalidParameterType(nil, "value")
	}

	b.mu.Lock()
	b.value = v
	b.mu.Unlock()

	return nil
}

// CreateRequest returns a Request only if operationName names an
// invokable published operation (spec §4.2); otherwise nil. The request
// is leased from this Publication; the caller must DeleteRequest it.
func (p *Publication) CreateRequest(operationName string) *request.Request {
	p.mu.Lock()
	op, ok := p.operations[operationName]
	p.mu.Unlock()

	if !ok {
		return nil
	}

	req, ok := request.BuildRequest(p.registry, op)
	if !ok {
		return nil
	}

	p.mu.Lock()
	p.leased[req] = struct{}{}
	p.mu.Unlock()

	return req
}

// DeleteRequest reclaims a leased Request.
func (p *Publication) DeleteRequest(r *request.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.leased, r)
}

// LeasedCount reports the number of currently leased, undeleted requests.
func (p *Publication) LeasedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.leased)
}
