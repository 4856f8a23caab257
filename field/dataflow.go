package field

import (
	"github.com/sarchlab/xsmpcore/anysimple"
	"github.com/sarchlab/xsmpcore/smperrors"
)

// AreEquivalent implements spec §3's recursive structural-shape predicate:
// same primitive kind at leaves, same sizes at arrays, same field
// ordering (by count; names are not required to match) at structures.
func AreEquivalent(a, b *Field) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindSimple:
		return a.primKind == b.primKind
	case KindSimpleArray:
		return a.itemKind == b.itemKind && len(a.items) == len(b.items)
	case KindArray:
		if len(a.children) != len(b.children) {
			return false
		}

		for i := range a.children {
			if !AreEquivalent(a.children[i], b.children[i]) {
				return false
			}
		}

		return true
	case KindStructure:
		if len(a.children) != len(b.children) {
			return false
		}

		for i := range a.children {
			if !AreEquivalent(a.children[i], b.children[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Connect walks output and input in lockstep (spec §4.4): at Simple/
// SimpleArray leaves it registers input as a subscriber of output; at
// Array/Structure nodes it recurses pairwise. Any shape mismatch at any
// level aborts with InvalidTarget reported on output; a connection
// already present at a given leaf raises FieldAlreadyConnected. Per the
// spec's open question (§9), a failure partway through may leave earlier
// leaf pairs connected — callers that need all-or-nothing must Disconnect
// on error themselves.
func Connect(output, input *Field) error {
	if !output.isOutput {
		return smperrors.InvalidTarget(output, "source field is not an output field")
	}

	if !input.isInput {
		return smperrors.InvalidTarget(output, "target field is not an input field")
	}

	return connect(output, input)
}

func connect(output, input *Field) error {
	if output.kind != input.kind {
		return smperrors.InvalidTarget(output, "mismatched field kind")
	}

	switch output.kind {
	case KindSimple:
		if output.primKind != input.primKind {
			return smperrors.InvalidTarget(output, "mismatched primitive kind")
		}

		return subscribe(output, input)
	case KindSimpleArray:
		if output.itemKind != input.itemKind || len(output.items) != len(input.items) {
			return smperrors.InvalidTarget(output, "mismatched simple-array item kind or size")
		}

		return subscribe(output, input)
	case KindArray:
		if len(output.children) != len(input.children) {
			return smperrors.InvalidTarget(output, "mismatched array size")
		}

		for i := range output.children {
			if err := connect(output.children[i], input.children[i]); err != nil {
				return err
			}
		}

		return nil
	case KindStructure:
		if len(output.children) != len(input.children) {
			return smperrors.InvalidTarget(output, "mismatched field count")
		}

		for i := range output.children {
			if err := connect(output.children[i], input.children[i]); err != nil {
				return err
			}
		}

		return nil
	default:
		return smperrors.InvalidTarget(output, "unknown field kind")
	}
}

func subscribe(output, input *Field) error {
	output.mu.Lock()
	defer output.mu.Unlock()

	for _, s := range output.subscribers {
		if s == input {
			return smperrors.FieldAlreadyConnected(output)
		}
	}

	output.subscribers = append(output.subscribers, input)

	return nil
}

// Push recursively walks the output subtree; at each leaf it assigns the
// current value to every subscriber leaf (spec §4.4). Forced subscriber
// leaves ignore the write, per the Forcible contract.
func (f *Field) Push() {
	switch f.kind {
	case KindSimple:
		f.mu.Lock()
		v := f.value
		if f.forced {
			v = f.forcedV
		}
		subs := append([]*Field(nil), f.subscribers...)
		f.mu.Unlock()

		for _, s := range subs {
			s.mu.Lock()
			if !s.forced {
				s.value = v
			}
			s.mu.Unlock()
		}
	case KindSimpleArray:
		f.mu.Lock()
		v := make([]anysimple.AnySimple, len(f.items))
		copy(v, f.items)
		subs := append([]*Field(nil), f.subscribers...)
		f.mu.Unlock()

		for _, s := range subs {
			s.mu.Lock()
			copy(s.items, v)
			s.mu.Unlock()
		}
	case KindArray, KindStructure:
		for _, c := range f.children {
			c.Push()
		}
	}
}

// RemoveLinks traverses the output tree rooted at f and deletes subscriber
// entries whose owning component is target, recursing through nested
// arrays and structures (spec §4.4).
func (f *Field) RemoveLinks(target Owner) {
	switch f.kind {
	case KindSimple, KindSimpleArray:
		f.mu.Lock()
		kept := f.subscribers[:0]
		for _, s := range f.subscribers {
			if s.Owner() != target {
				kept = append(kept, s)
			}
		}
		f.subscribers = kept
		f.mu.Unlock()
	case KindArray, KindStructure:
		for _, c := range f.children {
			c.RemoveLinks(target)
		}
	}
}
