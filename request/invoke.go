package request

import (
	"github.com/sarchlab/xsmpcore/smperrors"
	"github.com/sarchlab/xsmpcore/types"
)

// Handler is a component's implementation of one published operation: it
// reads parameters from req, calls the user method, and writes back out/
// in-out parameters and the return value.
type Handler func(req *Request) error

// HandlerTable is the name -> Handler map built once per component class
// (spec §4.5's "request-on-request-handler model"). The zero value is
// usable; register with Add.
type HandlerTable struct {
	handlers map[string]Handler
}

// Add registers h under name, overwriting any previous registration.
func (t *HandlerTable) Add(name string, h Handler) {
	if t.handlers == nil {
		t.handlers = make(map[string]Handler)
	}

	t.handlers[name] = h
}

// Lookup returns the handler for name, if any.
func (t *HandlerTable) Lookup(name string) (Handler, bool) {
	h, ok := t.handlers[name]
	return h, ok
}

type errorSender interface{ String() string }

// validateLeaf applies a slot's leaf-type range validation (step 4 of
// spec §4.3), dispatching on the concrete Type variant.
func validateLeaf(s Slot, sender errorSender) error {
	switch lt := s.LeafType.(type) {
	case *types.IntegerType:
		if !lt.InRange(s.Value.AsInt64()) {
			return smperrors.InvalidParameterValue(sender, s.Name)
		}
	case *types.FloatType:
		if !lt.InRange(s.Value.AsFloat64()) {
			return smperrors.InvalidParameterValue(sender, s.Name)
		}
	case *types.EnumerationType:
		if !lt.IsMember(s.Value.Int32()) {
			return smperrors.InvalidParameterValue(sender, s.Name)
		}
	case *types.StringType:
		if s.Value.String8() != nil && len(*s.Value.String8()) > lt.MaxLength {
			return smperrors.InvalidParameterValue(sender, s.Name)
		}
	}

	return nil
}

// Invoke performs the dispatch protocol of spec §4.3 against the
// operation req was built for:
//  1. resolve an invokable operation by name (by finding its handler);
//  2. check parameter count against the count req was flattened with;
//  3. each non-output slot's kind is already enforced by SetParameterValue,
//     so step 3 reduces to trusting req's own bookkeeping;
//  4. validate each slot's value range;
//  5. call the handler, then validate the return value's range.
func Invoke(sender errorSender, table *HandlerTable, wantCount int, req *Request) error {
	handler, ok := table.Lookup(req.operation.name)
	if !ok {
		return smperrors.InvalidOperationName(sender, req.operation.name)
	}

	if req.ParameterCount() != wantCount {
		return smperrors.InvalidParameterCount(sender, req.ParameterCount(), wantCount)
	}

	for i, s := range req.slots {
		if i == req.returnIndex {
			continue
		}

		if err := validateLeaf(s, sender); err != nil {
			return err
		}
	}

	if err := handler(req); err != nil {
		return err
	}

	if req.returnIndex >= 0 {
		if err := validateLeaf(req.slots[req.returnIndex], sender); err != nil {
			return smperrors.InvalidReturnValue(sender)
		}
	}

	return nil
}
