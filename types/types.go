// Package types implements the dynamic type registry of spec §4.1 (C3):
// primitive/integer/float/enum/string/array/struct/class types resolved
// by Uuid, with the validation contracts of §4.1 enforced at add time.
package types

import (
	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/uuid"
)

// ViewKind controls whether a published element is visible to a debugger,
// an operator console, or hidden entirely — ported from the original's
// Smp::ViewKind.
type ViewKind uint8

const (
	ViewHidden ViewKind = iota
	ViewDebug
	ViewOperator
	ViewAll
)

// Variant discriminates the Type union.
type Variant uint8

const (
	VariantPrimitive Variant = iota
	VariantInteger
	VariantFloat
	VariantEnumeration
	VariantString
	VariantArray
	VariantStructure
	VariantClass
)

// Type is the common interface of every type-registry entry.
type Type interface {
	Name() string
	Description() string
	Uuid() uuid.Uuid
	Variant() Variant
	// PrimitiveKind is the underlying AnySimple kind a field of this type
	// marshals through; KindNone for aggregates (Array, Structure, Class).
	PrimitiveKind() anysimple.Kind
	String() string
}

type base struct {
	name        string
	description string
	id          uuid.Uuid
	variant     Variant
	primKind    anysimple.Kind
}

func (b *base) Name() string                  { return b.name }
func (b *base) Description() string           { return b.description }
func (b *base) Uuid() uuid.Uuid                { return b.id }
func (b *base) Variant() Variant              { return b.variant }
func (b *base) PrimitiveKind() anysimple.Kind { return b.primKind }
func (b *base) String() string                { return b.name }

// Primitive is a leaf type with no extra validation (Bool, Char8, ...).
type Primitive struct{ base }

// IntegerType adds range and unit metadata to an integer primitive kind.
type IntegerType struct {
	base
	Min, Max int64
	Unit     string
}

// InRange reports whether v satisfies the declared [Min, Max] bound.
func (t *IntegerType) InRange(v int64) bool {
	return v >= t.Min && v <= t.Max
}

// FloatType adds range metadata, with independently toggleable bound
// inclusivity, to Float32/Float64.
type FloatType struct {
	base
	Min, Max                       float64
	MinInclusive, MaxInclusive     bool
	Unit                           string
}

// InRange reports whether v satisfies the declared bound, honoring the
// inclusive/exclusive flags.
func (t *FloatType) InRange(v float64) bool {
	if t.MinInclusive {
		if v < t.Min {
			return false
		}
	} else if v <= t.Min {
		return false
	}

	if t.MaxInclusive {
		if v > t.Max {
			return false
		}
	} else if v >= t.Max {
		return false
	}

	return true
}

// EnumerationLiteral is one named, valued member of an Enumeration type.
type EnumerationLiteral struct {
	Name        string
	Description string
	Value       int32
}

// EnumerationType is an underlying-integer-width type with a closed set
// of named values.
type EnumerationType struct {
	base
	Literals   []EnumerationLiteral
	MemorySize int // 1, 2, 4 or 8
}

// LiteralByValue looks up a literal by its integer value.
func (t *EnumerationType) LiteralByValue(v int32) (EnumerationLiteral, bool) {
	for _, l := range t.Literals {
		if l.Value == v {
			return l, true
		}
	}

	return EnumerationLiteral{}, false
}

// IsMember reports whether v is one of the declared literal values.
func (t *EnumerationType) IsMember(v int32) bool {
	_, ok := t.LiteralByValue(v)
	return ok
}

// StringType bounds String8 field length, excluding the terminator.
type StringType struct {
	base
	MaxLength int
}

// ArrayType describes a fixed-size homogeneous array. IsSimple selects
// whether fields of this type publish as a flat ISimpleArrayField or as a
// tree of per-item fields (spec §3).
type ArrayType struct {
	base
	ItemTypeUuid uuid.Uuid
	ItemSize     int
	Count        int
	IsSimple     bool
}

// FieldDescriptor is one ordered member of a Structure/Class type.
type FieldDescriptor struct {
	Name        string
	Description string
	Uuid        uuid.Uuid
	Offset      uintptr
	View        ViewKind
	IsState     bool
	IsInput     bool
	IsOutput    bool
}

// StructureType is an ordered list of field descriptors.
type StructureType struct {
	base
	Fields []FieldDescriptor
}

// ClassType extends StructureType with single inheritance; BaseClassUuid
// is uuid.Void when the class has no declared base.
type ClassType struct {
	StructureType
	BaseClassUuid uuid.Uuid
}
