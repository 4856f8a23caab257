package field

import (
	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/types"
)

// Traits bundles the orthogonal input/output/forcible/failure flags
// accepted by every constructor, matching Publication.PublishField's
// parameter list (spec §4.2).
type Traits struct {
	IsState    bool
	IsInput    bool
	IsOutput   bool
	IsForcible bool
	HasFailure bool
	View       types.ViewKind
}

// NewSimple builds a Simple field for a primitive (or Integer/Float/
// Enumeration/String) type.
func NewSimple(name, description string, t types.Type, tr Traits) *Field {
	return &Field{
		name: name, description: description,
		declaredType: t, typeUuid: t.Uuid(), kind: KindSimple,
		isState: tr.IsState, isInput: tr.IsInput, isOutput: tr.IsOutput,
		isForcible: tr.IsForcible, hasFailure: tr.HasFailure, view: tr.View,
		primKind: t.PrimitiveKind(),
	}
}

// NewSimpleArray builds a flat SimpleArray field over an ArrayType whose
// IsSimple flag is true.
func NewSimpleArray(name, description string, t *types.ArrayType, itemKind anysimple.Kind, tr Traits) *Field {
	return &Field{
		name: name, description: description,
		declaredType: t, typeUuid: t.Uuid(), kind: KindSimpleArray,
		isState: tr.IsState, isInput: tr.IsInput, isOutput: tr.IsOutput,
		isForcible: tr.IsForcible, hasFailure: tr.HasFailure, view: tr.View,
		items: make([]anysimple.AnySimple, t.Count), itemKind: itemKind,
	}
}

// NewArray builds a tree-shaped Array field: one child Field per item,
// each built by itemFactory.
func NewArray(name, description string, t *types.ArrayType, tr Traits, itemFactory func(index int) *Field) *Field {
	f := &Field{
		name: name, description: description,
		declaredType: t, typeUuid: t.Uuid(), kind: KindArray,
		isState: tr.IsState, isInput: tr.IsInput, isOutput: tr.IsOutput,
		isForcible: tr.IsForcible, hasFailure: tr.HasFailure, view: tr.View,
	}

	f.children = make([]*Field, t.Count)
	for i := 0; i < t.Count; i++ {
		c := itemFactory(i)
		c.parent = f
		f.children[i] = c
	}

	return f
}

// NewStructure builds a tree-shaped Structure field from already-built
// child fields, in declaration order (spec §4.2's recursive publication
// walk builds these children from the Type's FieldDescriptor list).
func NewStructure(name, description string, t types.Type, tr Traits, children []*Field) *Field {
	f := &Field{
		name: name, description: description,
		declaredType: t, typeUuid: t.Uuid(), kind: KindStructure,
		isState: tr.IsState, isInput: tr.IsInput, isOutput: tr.IsOutput,
		isForcible: tr.IsForcible, hasFailure: tr.HasFailure, view: tr.View,
	}

	f.children = make([]*Field, len(children))

	for i, c := range children {
		c.parent = f
		f.children[i] = c
	}

	return f
}

// SetOwner stamps the owning component on a root field, called once by
// Publication when a top-level field is registered.
func (f *Field) SetOwner(o Owner) { f.owner = o }

// WithFailureCallback registers the callback a Fallible model uses to
// observe changes to this field's failure flag.
func (f *Field) WithFailureCallback(cb func(bool)) *Field {
	f.onFailed = cb
	return f
}
