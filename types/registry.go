package types

import (
	"fmt"
	"sync"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/uuid"
)

// Standard primitive type uuids. Values are implementation-defined but
// fixed within this build, matching spec §3's "preloaded with all
// primitive types keyed by their standard uuids".
var standardPrimitiveUuids = map[anysimple.Kind]uuid.Uuid{
	anysimple.KindBool:     uuid.MustParse("9a7aa605-423c-4f77-8304-d9c0d097d2d1"),
	anysimple.KindChar8:    uuid.MustParse("a6e35d6e-f71b-4c45-b6b7-4d3a3f0b5c00"),
	anysimple.KindInt8:     uuid.MustParse("1e4323e2-8b60-4d7b-8ed5-3e1e3f0b5c01"),
	anysimple.KindUInt8:    uuid.MustParse("7fd16f8c-4b4e-4d87-9b66-3e1e3f0b5c02"),
	anysimple.KindInt16:    uuid.MustParse("b1bc9d97-8d4f-4bc8-97bc-3e1e3f0b5c03"),
	anysimple.KindUInt16:   uuid.MustParse("e3f6e7b1-9d36-4f53-8f0b-3e1e3f0b5c04"),
	anysimple.KindInt32:    uuid.MustParse("4a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c05"),
	anysimple.KindUInt32:   uuid.MustParse("9f6b6f9a-5d3b-4a2e-8a16-3e1e3f0b5c06"),
	anysimple.KindInt64:    uuid.MustParse("2e4f6f9a-5d3b-4a2e-8a16-3e1e3f0b5c07"),
	anysimple.KindUInt64:   uuid.MustParse("8c6b6f9a-5d3b-4a2e-8a16-3e1e3f0b5c08"),
	anysimple.KindFloat32:  uuid.MustParse("5a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c09"),
	anysimple.KindFloat64:  uuid.MustParse("6a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c0a"),
	anysimple.KindDuration: uuid.MustParse("7a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c0b"),
	anysimple.KindDateTime: uuid.MustParse("8a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c0c"),
	anysimple.KindString8:  uuid.MustParse("9a6f9d14-3b6f-4b2e-8f16-3e1e3f0b5c0d"),
}

// Registry is the type registry (C3): resolves primitive/integer/float/
// enum/string/array/struct/class types by Uuid or by primitive kind.
type Registry struct {
	mu          sync.RWMutex
	byUuid      map[uuid.Uuid]Type
	byPrimitive map[anysimple.Kind]Type
}

func (r *Registry) String() string { return "TypeRegistry" }

// NewRegistry builds a registry preloaded with the 15 standard primitive
// types (every kind except None).
func NewRegistry() *Registry {
	r := &Registry{
		byUuid:      make(map[uuid.Uuid]Type),
		byPrimitive: make(map[anysimple.Kind]Type),
	}

	for kind, id := range standardPrimitiveUuids {
		t := &Primitive{base{
			name:     kind.String(),
			id:       id,
			variant:  VariantPrimitive,
			primKind: kind,
		}}
		r.byUuid[id] = t
		r.byPrimitive[kind] = t
	}

	return r
}

func (r *Registry) register(id uuid.Uuid, t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUuid[id]; ok {
		return smperrors.TypeAlreadyRegistered(r, id.String())
	}

	r.byUuid[id] = t

	return nil
}

// GetType resolves a type by Uuid, returning (nil, false) if unregistered.
func (r *Registry) GetType(id uuid.Uuid) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byUuid[id]
	return t, ok
}

// GetPrimitiveType resolves the standard type for a primitive kind.
func (r *Registry) GetPrimitiveType(k anysimple.Kind) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byPrimitive[k]
	return t, ok
}

// AddInteger registers an Integer type. kind must be an integer primitive
// kind.
func (r *Registry) AddInteger(name, description string, id uuid.Uuid, kind anysimple.Kind, min, max int64, unit string) (*IntegerType, error) {
	if !kind.IsInteger() {
		return nil, smperrors.InvalidPrimitiveType(r, fmt.Sprintf("%s is not an integer kind", kind))
	}

	t := &IntegerType{
		base: base{name: name, description: description, id: id, variant: VariantInteger, primKind: kind},
		Min:  min, Max: max, Unit: unit,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddFloat registers a Float type. kind must be Float32 or Float64.
func (r *Registry) AddFloat(name, description string, id uuid.Uuid, kind anysimple.Kind, min, max float64, minIncl, maxIncl bool, unit string) (*FloatType, error) {
	if !kind.IsFloat() {
		return nil, smperrors.InvalidPrimitiveType(r, fmt.Sprintf("%s is not a float kind", kind))
	}

	t := &FloatType{
		base:         base{name: name, description: description, id: id, variant: VariantFloat, primKind: kind},
		Min:          min,
		Max:          max,
		MinInclusive: minIncl,
		MaxInclusive: maxIncl,
		Unit:         unit,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddEnumeration registers an Enumeration type. memorySize must be one of
// {1, 2, 4, 8}, and literal values must be unique.
func (r *Registry) AddEnumeration(name, description string, id uuid.Uuid, literals []EnumerationLiteral, memorySize int) (*EnumerationType, error) {
	switch memorySize {
	case 1, 2, 4, 8:
	default:
		return nil, smperrors.InvalidPrimitiveType(r, fmt.Sprintf("enum memory size %d not in {1,2,4,8}", memorySize))
	}

	seen := make(map[int32]struct{}, len(literals))
	for _, l := range literals {
		if _, dup := seen[l.Value]; dup {
			return nil, smperrors.DuplicateLiteral(r, int64(l.Value))
		}

		seen[l.Value] = struct{}{}
	}

	t := &EnumerationType{
		base:       base{name: name, description: description, id: id, variant: VariantEnumeration, primKind: anysimple.KindInt32},
		Literals:   literals,
		MemorySize: memorySize,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddString registers a String type with the given max length (excluding
// the terminator).
func (r *Registry) AddString(name, description string, id uuid.Uuid, maxLength int) (*StringType, error) {
	t := &StringType{
		base:      base{name: name, description: description, id: id, variant: VariantString, primKind: anysimple.KindString8},
		MaxLength: maxLength,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddArray registers an Array type over itemTypeUuid.
func (r *Registry) AddArray(name, description string, id, itemTypeUuid uuid.Uuid, itemSize, count int, isSimple bool) (*ArrayType, error) {
	t := &ArrayType{
		base:         base{name: name, description: description, id: id, variant: VariantArray, primKind: anysimple.KindNone},
		ItemTypeUuid: itemTypeUuid,
		ItemSize:     itemSize,
		Count:        count,
		IsSimple:     isSimple,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddStructure registers a Structure type with an ordered field list.
func (r *Registry) AddStructure(name, description string, id uuid.Uuid, fields []FieldDescriptor) (*StructureType, error) {
	t := &StructureType{
		base:   base{name: name, description: description, id: id, variant: VariantStructure, primKind: anysimple.KindNone},
		Fields: fields,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}

// AddClass registers a Class type. baseClassUuid must refer to a
// previously registered Class type, or be uuid.Void. The class's own
// uuid must differ from its base's (a self-referential or aliasing base
// is rejected at registration).
func (r *Registry) AddClass(name, description string, id uuid.Uuid, fields []FieldDescriptor, baseClassUuid uuid.Uuid) (*ClassType, error) {
	if !baseClassUuid.IsVoid() {
		if id.Equal(baseClassUuid) {
			return nil, smperrors.InvalidObjectType(r, name)
		}

		baseType, ok := r.GetType(baseClassUuid)
		if !ok || baseType.Variant() != VariantClass {
			return nil, smperrors.TypeNotRegistered(r, baseClassUuid.String())
		}
	}

	t := &ClassType{
		StructureType: StructureType{
			base:   base{name: name, description: description, id: id, variant: VariantClass, primKind: anysimple.KindNone},
			Fields: fields,
		},
		BaseClassUuid: baseClassUuid,
	}

	if err := r.register(id, t); err != nil {
		return nil, err
	}

	return t, nil
}
