// Package faults defines the error taxonomy shared by the model construction
// surface. Every error here is raised synchronously to the immediate caller
// and carries enough context (requested type, name, corrective action) to be
// rendered as an actionable diagnostic without further lookup.
package faults

import "fmt"

// ArgumentError reports a nil or otherwise unusable argument. The caller can
// fix it at the call site.
type ArgumentError struct {
	Argument string
	Reason   string
}

// Error implements the error interface for ArgumentError.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument '%s': %s", e.Argument, e.Reason)
}

// InvalidUsageError reports a semantically wrong API choice, such as asking
// for a scalar property of a collection type. Corrective names the entry
// point the caller should have used.
type InvalidUsageError struct {
	Requested  string
	Corrective string
}

// Error implements the error interface for InvalidUsageError.
func (e *InvalidUsageError) Error() string {
	return fmt.Sprintf("cannot use %s here: use %s instead", e.Requested, e.Corrective)
}

// DuplicateNameError reports a name collision on insertion into a name-keyed
// container.
type DuplicateNameError struct {
	Container string
	Name      string
}

// Error implements the error interface for DuplicateNameError.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("cannot add element '%s' to %s: an element with that name already exists", e.Name, e.Container)
}

// InstantiationError reports that a named value type could not be
// mechanically produced.
type InstantiationError struct {
	Type  string
	Cause error
}

// Error implements the error interface for InstantiationError.
func (e *InstantiationError) Error() string {
	return fmt.Sprintf("cannot create an instance of type %s: %v", e.Type, e.Cause)
}

// Unwrap exposes the underlying construction failure.
func (e *InstantiationError) Unwrap() error { return e.Cause }

// ObjectInstantiationError wraps any failure of the generic constructor
// registry, including a missing registration and a constructor-body failure.
type ObjectInstantiationError struct {
	Type  string
	Cause error
}

// Error implements the error interface for ObjectInstantiationError.
func (e *ObjectInstantiationError) Error() string {
	return fmt.Sprintf("could not create an instance of type %s: %v", e.Type, e.Cause)
}

// Unwrap exposes the underlying construction failure.
func (e *ObjectInstantiationError) Unwrap() error { return e.Cause }
