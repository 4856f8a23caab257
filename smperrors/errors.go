// Package smperrors implements the structured error taxonomy of §7: every
// framework failure is a sender-tagged, named value rather than a bare
// string, so callers can discriminate on Name without parsing messages.
package smperrors

import "fmt"

// Error is the common shape of every framework failure. Sender is the
// object (component, service, registry...) that raised it and may be nil
// for failures raised before an object exists (e.g. Uuid parsing).
type Error struct {
	Sender      fmt.Stringer
	Name        string
	Description string
	Message     string
}

func (e *Error) Error() string {
	sender := "<nil>"
	if e.Sender != nil {
		sender = e.Sender.String()
	}

	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", sender, e.Name, e.Message)
	}

	return fmt.Sprintf("%s: %s: %s", sender, e.Name, e.Description)
}

// Is reports whether target names the same error kind, so callers can use
// errors.Is(err, smperrors.Named("DuplicateName")) without a type switch
// per name.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Name == e.Name
}

// Named builds a sentinel used purely for errors.Is comparisons.
func Named(name string) *Error {
	return &Error{Name: name}
}

type stringSender string

func (s stringSender) String() string { return string(s) }

// Sender wraps a plain name as a fmt.Stringer sender, for call sites that
// don't have an *Object handy (e.g. package-level constructors).
func Sender(name string) fmt.Stringer { return stringSender(name) }

func newf(sender fmt.Stringer, name, description, format string, args ...interface{}) *Error {
	return &Error{
		Sender:      sender,
		Name:        name,
		Description: description,
		Message:     fmt.Sprintf(format, args...),
	}
}

// Lifecycle

func InvalidComponentState(sender fmt.Stringer, current, expected string) *Error {
	return newf(sender, "InvalidComponentState",
		"Component is not in a state that allows this operation",
		"current state %s, expected %s", current, expected)
}

func InvalidSimulatorState(sender fmt.Stringer, current, expected string) *Error {
	return newf(sender, "InvalidSimulatorState",
		"Simulator is not in a state that allows this operation",
		"current state %s, expected %s", current, expected)
}

// Names / namespace

func InvalidObjectName(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidObjectName", "Object name is not a valid identifier", "%q", name)
}

func DuplicateName(sender fmt.Stringer, name string) *Error {
	return newf(sender, "DuplicateName", "Name already exists in the enclosing namespace", "%q", name)
}

func DuplicateLiteral(sender fmt.Stringer, value int64) *Error {
	return newf(sender, "DuplicateLiteral", "Enumeration literal value already used", "%d", value)
}

func DuplicateUuid(sender fmt.Stringer, id string) *Error {
	return newf(sender, "DuplicateUuid", "Uuid already registered with a different definition", "%s", id)
}

// Containment

func ContainerFull(sender fmt.Stringer, name string, upper int64) *Error {
	return newf(sender, "ContainerFull", "Container has reached its upper bound", "container %q, upper %d", name, upper)
}

func CannotDelete(sender fmt.Stringer, name string, lower int64) *Error {
	return newf(sender, "CannotDelete", "Deleting would violate the container's lower bound", "container %q, lower %d", name, lower)
}

func NotContained(sender fmt.Stringer, name string) *Error {
	return newf(sender, "NotContained", "Component is not contained in this container", "%q", name)
}

func ReferenceFull(sender fmt.Stringer, name string, upper int64) *Error {
	return newf(sender, "ReferenceFull", "Reference collection has reached its upper bound", "reference %q, upper %d", name, upper)
}

func CannotRemove(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "CannotRemove", "Removing would violate a containment or linkage invariant", "%s", reason)
}

func NotReferenced(sender fmt.Stringer, name string) *Error {
	return newf(sender, "NotReferenced", "Component is not referenced in this collection", "%q", name)
}

func InvalidObjectType(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidObjectType", "Object is not of the expected type", "%q", name)
}

func InvalidParent(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidParent", "Object does not have the expected parent", "")
}

// Fields & typing

func InvalidFieldName(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidFieldName", "No field with this name exists", "%q", name)
}

func InvalidFieldType(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidFieldType", "Field is not of the expected kind", "%q", name)
}

func InvalidFieldValue(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidFieldValue", "Value is out of range for this field", "%q", name)
}

func InvalidArrayIndex(sender fmt.Stringer, index, size int) *Error {
	return newf(sender, "InvalidArrayIndex", "Array index out of bounds", "index %d, size %d", index, size)
}

func InvalidArrayValue(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidArrayValue", "Array element value is invalid", "")
}

func InvalidArraySize(sender fmt.Stringer, got, want int) *Error {
	return newf(sender, "InvalidArraySize", "Array size mismatch", "got %d, want %d", got, want)
}

func InvalidAnyType(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidAnyType", "AnySimple kind mismatch", "")
}

func InvalidTarget(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "InvalidTarget", "Dataflow target has an incompatible structural shape", "%s", reason)
}

func FieldAlreadyConnected(sender fmt.Stringer) *Error {
	return newf(sender, "FieldAlreadyConnected", "Target is already connected to this output", "")
}

// Operations

func InvalidOperationName(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidOperationName", "No invokable operation with this name", "%q", name)
}

func InvalidParameterCount(sender fmt.Stringer, got, want int) *Error {
	return newf(sender, "InvalidParameterCount", "Parameter count mismatch", "got %d, want %d", got, want)
}

func InvalidParameterType(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidParameterType", "Parameter kind mismatch", "%q", name)
}

func InvalidParameterIndex(sender fmt.Stringer, index int) *Error {
	return newf(sender, "InvalidParameterIndex", "No parameter at this index", "%d", index)
}

func InvalidParameterValue(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidParameterValue", "Parameter value violates its type's range", "%q", name)
}

func InvalidReturnValue(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidReturnValue", "Return value violates the operation's return type range", "")
}

func VoidOperation(sender fmt.Stringer) *Error {
	return newf(sender, "VoidOperation", "Operation has no return value", "")
}

// Events

func InvalidEventName(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidEventName", "Event name is empty or invalid", "%q", name)
}

func InvalidEventId(sender fmt.Stringer, id int64) *Error {
	return newf(sender, "InvalidEventId", "No event with this identifier", "%d", id)
}

func InvalidEventSink(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidEventSink", "Event sink argument type does not match the source", "")
}

func EventSinkAlreadySubscribed(sender fmt.Stringer) *Error {
	return newf(sender, "EventSinkAlreadySubscribed", "Sink is already subscribed to this source", "")
}

func EventSinkNotSubscribed(sender fmt.Stringer) *Error {
	return newf(sender, "EventSinkNotSubscribed", "Sink is not subscribed to this source", "")
}

func InvalidEventTime(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "InvalidEventTime", "Event time is invalid", "%s", reason)
}

func InvalidCycleTime(sender fmt.Stringer) *Error {
	return newf(sender, "InvalidCycleTime", "Cycle time must be positive for a repeating event", "")
}

func EntryPointAlreadySubscribed(sender fmt.Stringer) *Error {
	return newf(sender, "EntryPointAlreadySubscribed", "Entry point is already subscribed to this event", "")
}

func EntryPointNotSubscribed(sender fmt.Stringer) *Error {
	return newf(sender, "EntryPointNotSubscribed", "Entry point is not subscribed to this event", "")
}

// Persistence

func CannotStore(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "CannotStore", "State could not be written to the stream", "%s", reason)
}

func CannotRestore(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "CannotRestore", "State could not be read from the stream", "%s", reason)
}

// Library loading

func LibraryNotFound(sender fmt.Stringer, name string) *Error {
	return newf(sender, "LibraryNotFound", "No library found with this name", "%q", name)
}

func InvalidLibrary(sender fmt.Stringer, name, reason string) *Error {
	return newf(sender, "InvalidLibrary", "Library did not satisfy the package ABI", "%q: %s", name, reason)
}

// InvalidFactory reports a factory whose built instance's reported uuid
// does not equal the factory's own uuid (spec §6's Factory contract).
func InvalidFactory(sender fmt.Stringer, name string) *Error {
	return newf(sender, "InvalidFactory", "Factory built an instance reporting a different uuid", "%q", name)
}

// Type registry

func TypeNotRegistered(sender fmt.Stringer, id string) *Error {
	return newf(sender, "TypeNotRegistered", "No type registered with this uuid", "%s", id)
}

func TypeAlreadyRegistered(sender fmt.Stringer, id string) *Error {
	return newf(sender, "TypeAlreadyRegistered", "A different type is already registered under this uuid", "%s", id)
}

func InvalidPrimitiveType(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "InvalidPrimitiveType", "Primitive kind is not valid in this context", "%s", reason)
}

// Time

func InvalidSimulationTime(sender fmt.Stringer, reason string) *Error {
	return newf(sender, "InvalidSimulationTime", "Simulation time update violates the scheduler window", "%s", reason)
}
