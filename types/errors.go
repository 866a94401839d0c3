package types

import "fmt"

// AmbiguityKind names the first validation rule an action violated.
type AmbiguityKind int

const (
	// detach and change_bus request the same element
	AmbiguityDetachChange AmbiguityKind = iota
	// detach and a non-zero set_bus request the same element
	AmbiguityDetachSet
	// a detach flag is raised without its modification marker
	AmbiguityUnsyncedFlag
)

func (k AmbiguityKind) String() string {
	switch k {
	case AmbiguityDetachChange:
		return "detach/change conflict"
	case AmbiguityDetachSet:
		return "detach/set conflict"
	case AmbiguityUnsyncedFlag:
		return "detachment flag set without proper declaration"
	}
	return "unknown"
}

// AmbiguousActionError is returned as a value by the validator, never panicked.
// The caller decides whether an ambiguous action is a no-op step or a hard failure.
type AmbiguousActionError struct {
	Kind    AmbiguityKind
	Element string
}

func (e *AmbiguousActionError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("ambiguous action: %s", e.Kind)
	}
	return fmt.Sprintf("ambiguous action: %s (%s)", e.Kind, e.Element)
}

// UnauthorizedFieldError reports a field outside the action variant's authorized set.
type UnauthorizedFieldError struct {
	Field string
}

func (e *UnauthorizedFieldError) Error() string {
	return fmt.Sprintf("field %q is not authorized for this action class", e.Field)
}

// InvalidActionFieldError reports a value of the wrong shape passed to a setter.
// Surfaced at the Set call, not deferred to validation.
type InvalidActionFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidActionFieldError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// MalformedSerializationError reports a structural decode failure.
type MalformedSerializationError struct {
	Form   string
	Reason string
}

func (e *MalformedSerializationError) Error() string {
	return fmt.Sprintf("malformed %s serialization: %s", e.Form, e.Reason)
}

// IllegalActionError reports an action rejected by an environment policy check,
// such as touching more substations than the parameters allow.
type IllegalActionError struct {
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action: %s", e.Reason)
}
