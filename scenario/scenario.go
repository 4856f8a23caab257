// Package scenario implements the declarative configuration layer of
// SPEC_FULL.md A.3: a yaml.v3-loaded manifest naming which packages to
// load, which factories to instantiate under which containers, and which
// published fields start out Force()d, plus a fluent Builder for
// assembling the same manifest in code. It plays the role the teacher's
// config.DeviceBuilder plays for a CGRA device, adapted to a simulator's
// package/factory/forced-field model instead of a tile mesh.
package scenario

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/publication"
	"github.com/sarchlab/xsmpcore/simulator"
)

// InstanceSpec names one factory-built instance to create and the
// container it joins ("Models" or "Services").
type InstanceSpec struct {
	Factory     string `yaml:"factory"`
	Container   string `yaml:"container"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ForcedFieldSpec names a published field (by dotted path rooted at an
// instance name) and the single scalar it should be Force()d to. Exactly
// one of Bool/Int/Float/String is set; a manifest with none or more than
// one set is rejected by Apply.
type ForcedFieldSpec struct {
	Path   string   `yaml:"path"`
	Bool   *bool    `yaml:"bool,omitempty"`
	Int    *int64   `yaml:"int,omitempty"`
	Float  *float64 `yaml:"float,omitempty"`
	String *string  `yaml:"string,omitempty"`
}

func (s ForcedFieldSpec) value() (anysimple.AnySimple, error) {
	set := 0
	var v anysimple.AnySimple

	if s.Bool != nil {
		set++
		v = anysimple.FromBool(*s.Bool)
	}

	if s.Int != nil {
		set++
		v = anysimple.FromInt64(*s.Int)
	}

	if s.Float != nil {
		set++
		v = anysimple.FromFloat64(*s.Float)
	}

	if s.String != nil {
		set++
		v = anysimple.FromString8(s.String)
	}

	if set != 1 {
		return anysimple.None, fmt.Errorf("forced field %q must set exactly one of bool/int/float/string", s.Path)
	}

	return v, nil
}

// Manifest is the declarative scenario document (SPEC_FULL.md A.3).
type Manifest struct {
	Packages     []string          `yaml:"packages,omitempty"`
	Instances    []InstanceSpec    `yaml:"instances,omitempty"`
	ForcedFields []ForcedFieldSpec `yaml:"forced_fields,omitempty"`
}

// Load parses a Manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing scenario manifest: %w", err)
	}

	return &m, nil
}

// Builder assembles a Manifest fluently, the scenario-level analogue of
// the teacher's config.DeviceBuilder: every With* method returns a
// modified copy so a base Builder can be reused across variants.
type Builder struct {
	m Manifest
}

// NewBuilder returns an empty Builder.
func NewBuilder() Builder { return Builder{} }

// WithPackage appends a package name to load before instantiation.
func (b Builder) WithPackage(name string) Builder {
	b.m.Packages = append(append([]string(nil), b.m.Packages...), name)
	return b
}

// WithInstance appends an instance to create.
func (b Builder) WithInstance(factory, container, name, description string) Builder {
	b.m.Instances = append(append([]InstanceSpec(nil), b.m.Instances...),
		InstanceSpec{Factory: factory, Container: container, Name: name, Description: description})

	return b
}

// WithForcedBool appends a forced boolean field.
func (b Builder) WithForcedBool(path string, v bool) Builder {
	return b.withForced(ForcedFieldSpec{Path: path, Bool: &v})
}

// WithForcedInt appends a forced integer field.
func (b Builder) WithForcedInt(path string, v int64) Builder {
	return b.withForced(ForcedFieldSpec{Path: path, Int: &v})
}

// WithForcedFloat appends a forced float field.
func (b Builder) WithForcedFloat(path string, v float64) Builder {
	return b.withForced(ForcedFieldSpec{Path: path, Float: &v})
}

// WithForcedString appends a forced string field.
func (b Builder) WithForcedString(path string, v string) Builder {
	return b.withForced(ForcedFieldSpec{Path: path, String: &v})
}

func (b Builder) withForced(spec ForcedFieldSpec) Builder {
	b.m.ForcedFields = append(append([]ForcedFieldSpec(nil), b.m.ForcedFields...), spec)
	return b
}

// Build returns the assembled Manifest.
func (b Builder) Build() *Manifest {
	m := b.m
	return &m
}

// publishedComponent is the narrow view of a Model/Service Apply needs to
// reach its published field tree; *component.Component satisfies it.
type publishedComponent interface {
	Publication() *publication.Publication
}

// Apply runs m against sim: creates every instance, publishes them, then
// resolves and Force()s every forced field. It does not load m.Packages:
// the embedding host loads packages via sim.LoadPackage, since Go has no
// dynamic-library loader — see pkgregistry's DESIGN.md entry.
func Apply(sim *simulator.Simulator, m *Manifest) error {
	for _, spec := range m.Instances {
		if _, err := sim.CreateInstance(spec.Factory, spec.Container, spec.Name, spec.Description); err != nil {
			return fmt.Errorf("creating instance %q: %w", spec.Name, err)
		}
	}

	if len(m.Instances) > 0 {
		if err := sim.Publish(); err != nil {
			return fmt.Errorf("publishing newly created instances: %w", err)
		}
	}

	for _, spec := range m.ForcedFields {
		if err := applyForcedField(sim, spec); err != nil {
			return err
		}
	}

	return nil
}

func applyForcedField(sim *simulator.Simulator, spec ForcedFieldSpec) error {
	segs := strings.Split(spec.Path, ".")
	if len(segs) < 2 {
		return fmt.Errorf("forced field path %q must name an instance and a field", spec.Path)
	}

	named := sim.Resolver().ResolveAbsolute(segs[0])
	if named == nil {
		return fmt.Errorf("forced field path %q: no instance named %q", spec.Path, segs[0])
	}

	pc, ok := named.(publishedComponent)
	if !ok || pc.Publication() == nil {
		return fmt.Errorf("forced field path %q: %q has no published fields", spec.Path, segs[0])
	}

	f, ok := pc.Publication().Field(segs[1])
	if !ok {
		return fmt.Errorf("forced field path %q: no field named %q", spec.Path, segs[1])
	}

	for _, seg := range segs[2:] {
		f, ok = f.ChildByName(seg)
		if !ok {
			return fmt.Errorf("forced field path %q: no child named %q", spec.Path, seg)
		}
	}

	v, err := spec.value()
	if err != nil {
		return err
	}

	return f.Force(v)
}
