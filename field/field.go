// Package field implements the typed, named, parented field tree of spec
// §3-§4.4 (C4): simple / array / simple-array / structure fields, with
// orthogonal input/output/forcible/failure traits, and the dataflow
// connection + push machinery between output and input leaves.
package field

import (
	"sync"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
	"github.com/sarchlab/xsmpcore/uuid"
)

// Kind discriminates the field tree shape.
type Kind uint8

const (
	KindSimple Kind = iota
	KindSimpleArray
	KindArray
	KindStructure
)

// Owner is the minimal view of an owning component the field tree needs:
// just enough identity to compare "does this subscriber belong to target"
// during RemoveLinks, without field importing the component package.
type Owner interface {
	Name() string
}

// Field is a Type instance addressable at a memory location (spec §3). A
// single concrete type represents all four kinds; the Kind tag selects
// which payload is meaningful, mirroring the original's tree-of-Field
// design (Xsmp::Publication::Field) without requiring interface dispatch
// at every leaf.
type Field struct {
	mu sync.Mutex

	name        string
	description string
	parent      *Field
	owner       Owner // set only on the root field of a published tree

	declaredType types.Type
	typeUuid     uuid.Uuid
	kind         Kind
	isState      bool
	view         types.ViewKind

	isInput    bool
	isOutput   bool
	isForcible bool
	hasFailure bool

	// Simple payload.
	value    anysimple.AnySimple
	primKind anysimple.Kind
	forced   bool
	forcedV  anysimple.AnySimple
	failed   bool
	onFailed func(bool)

	// SimpleArray payload (flat).
	items    []anysimple.AnySimple
	itemKind anysimple.Kind

	// Array/Structure payload (tree).
	children []*Field

	// Dataflow: populated only when isOutput is true, only meaningful at
	// Simple/SimpleArray leaves.
	subscribers []*Field
}

func (f *Field) String() string { return f.name }

// Name returns the field's identifier within its parent.
func (f *Field) Name() string { return f.name }

// Description returns the field's free-text description.
func (f *Field) Description() string { return f.description }

// Parent returns the owning field in the tree, or nil at the root.
func (f *Field) Parent() *Field { return f.parent }

// Kind reports which of the four field shapes this is.
func (f *Field) Kind() Kind { return f.kind }

// TypeUuid is the uuid of the field's declared Type.
func (f *Field) TypeUuid() uuid.Uuid { return f.typeUuid }

// IsState, IsInput, IsOutput, IsForcible, HasFailure report the field's
// orthogonal traits (spec §3).
func (f *Field) IsState() bool    { return f.isState }
func (f *Field) IsInput() bool    { return f.isInput }
func (f *Field) IsOutput() bool   { return f.isOutput }
func (f *Field) IsForcible() bool { return f.isForcible }
func (f *Field) HasFailure() bool { return f.hasFailure }

// View returns the field's view kind (Debug/Operator/All/Hidden).
func (f *Field) View() types.ViewKind { return f.view }

// Children returns the ordered sub-fields of an Array or Structure field.
func (f *Field) Children() []*Field { return f.children }

// Root walks up to the top-most field of the tree.
func (f *Field) Root() *Field {
	n := f
	for n.parent != nil {
		n = n.parent
	}

	return n
}

// Owner returns the component that published this field tree, resolved
// by walking to the root.
func (f *Field) Owner() Owner { return f.Root().owner }

// GetValue returns the field's current value: the forced value while
// Force()d, else the live value (spec §3 Forcible field).
func (f *Field) GetValue() (anysimple.AnySimple, error) {
	if f.kind != KindSimple {
		return anysimple.None, smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forced {
		return f.forcedV, nil
	}

	return f.value, nil
}

// SetValue validates kind and, for typed aggregates, range before writing.
// While Force()d, writes are silently ignored per the Forcible contract.
func (f *Field) SetValue(v anysimple.AnySimple) error {
	if f.kind != KindSimple {
		return smperrors.InvalidFieldType(f, f.name)
	}

	if v.Kind != f.primKind {
		return smperrors.InvalidFieldValue(f, f.name)
	}

	if err := f.validateRange(v); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forced {
		return nil
	}

	f.value = v

	return nil
}

func (f *Field) validateRange(v anysimple.AnySimple) error {
	switch t := f.declaredType.(type) {
	case *types.IntegerType:
		if !t.InRange(v.AsInt64()) {
			return smperrors.InvalidFieldValue(f, f.name)
		}
	case *types.FloatType:
		if !t.InRange(v.AsFloat64()) {
			return smperrors.InvalidFieldValue(f, f.name)
		}
	case *types.EnumerationType:
		if !t.IsMember(v.Int32()) {
			return smperrors.InvalidFieldValue(f, f.name)
		}
	case *types.StringType:
		if v.String8() != nil && len(*v.String8()) > t.MaxLength {
			return smperrors.InvalidFieldValue(f, f.name)
		}
	}

	return nil
}

// Force pins the field to v until Unforce is called; further SetValue
// calls are ignored while forced.
func (f *Field) Force(v anysimple.AnySimple) error {
	if !f.isForcible || f.kind != KindSimple {
		return smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.forced = true
	f.forcedV = v

	return nil
}

// Freeze forces the field at its current live value.
func (f *Field) Freeze() error {
	if !f.isForcible || f.kind != KindSimple {
		return smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.forced = true
	f.forcedV = f.value

	return nil
}

// Unforce releases a forced field, restoring normal write behavior.
func (f *Field) Unforce() error {
	if !f.isForcible || f.kind != KindSimple {
		return smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.forced = false

	return nil
}

// IsForced reports whether Force/Freeze is currently pinning the value.
func (f *Field) IsForced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.forced
}

// Failed reports the failure flag of a field with the failure trait.
func (f *Field) Failed() (bool, error) {
	if !f.hasFailure {
		return false, smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failed, nil
}

// SetFailed sets the failure flag, notifying the enclosing Fallible model
// if one was registered via WithFailureCallback.
func (f *Field) SetFailed(v bool) error {
	if !f.hasFailure {
		return smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	f.failed = v
	cb := f.onFailed
	f.mu.Unlock()

	if cb != nil {
		cb(v)
	}

	return nil
}

// Items returns a copy of a SimpleArray field's flat value slice.
func (f *Field) Items() ([]anysimple.AnySimple, error) {
	if f.kind != KindSimpleArray {
		return nil, smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]anysimple.AnySimple, len(f.items))
	copy(out, f.items)

	return out, nil
}

// SetItem writes one element of a SimpleArray field.
func (f *Field) SetItem(index int, v anysimple.AnySimple) error {
	if f.kind != KindSimpleArray {
		return smperrors.InvalidFieldType(f, f.name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if index < 0 || index >= len(f.items) {
		return smperrors.InvalidArrayIndex(f, index, len(f.items))
	}

	if v.Kind != f.itemKind {
		return smperrors.InvalidArrayValue(f)
	}

	f.items[index] = v

	return nil
}

// ChildByName looks up an immediate child of an Array or Structure field.
func (f *Field) ChildByName(name string) (*Field, bool) {
	for _, c := range f.children {
		if c.name == name {
			return c, true
		}
	}

	return nil, false
}
