// Package container implements the domain object containers of the model:
// collections of elements of one declared type, in several structural
// variants. Named variants key their elements by name and reject
// collisions the moment an element is materialized; the list variant
// preserves insertion order; the plain set has no name concept at all.
//
// Containers are handed to a single owning configuration context after
// construction and are not safe for concurrent mutation; the polymorphic
// variant's factory registrations are the one exception.
package container

import (
	"fmt"
	"reflect"

	"github.com/vk/buildmodel/internal/construct"
	"github.com/vk/buildmodel/internal/faults"
)

// Factory constructs the container variants over a declared element type.
// The constructor registry supplies the default creation strategy for named
// containers.
type Factory struct {
	registry *construct.Registry
}

// NewFactory creates a container factory backed by the given constructor
// registry.
func NewFactory(registry *construct.Registry) (*Factory, error) {
	if registry == nil {
		return nil, &faults.ArgumentError{Argument: "registry", Reason: "constructor registry must not be nil"}
	}
	return &Factory{registry: registry}, nil
}

// NewNamed constructs a name-keyed container that can synthesize elements
// from a name alone: through the element type's registered constructor when
// one exists, otherwise through its named-value synthesis capability.
func (f *Factory) NewNamed(elemType reflect.Type) (*NamedContainer, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	create := func(name string) (any, error) {
		if f.registry.Registered(elemType) {
			return f.registry.NewInstance(elemType, name)
		}
		return construct.Synthesize(elemType, name)
	}
	return &NamedContainer{
		store:  newNamedStore("container", elemType),
		create: create,
	}, nil
}

// NewNamedWithFactory constructs a name-keyed container that delegates
// element creation to the supplied factory function.
func (f *Factory) NewNamedWithFactory(elemType reflect.Type, create func(name string) (any, error)) (*NamedContainer, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	if create == nil {
		return nil, &faults.ArgumentError{Argument: "factory", Reason: "element factory must not be nil"}
	}
	return &NamedContainer{
		store:  newNamedStore("container", elemType),
		create: create,
	}, nil
}

// NewPolymorphic constructs a name-keyed container with no creation rule of
// its own; per-subtype rules are registered after construction.
func (f *Factory) NewPolymorphic(elemType reflect.Type) (*PolymorphicContainer, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	return &PolymorphicContainer{
		store:     newNamedStore("polymorphic container", elemType),
		factories: make(map[reflect.Type]func(string) (any, error)),
	}, nil
}

// NewNamedList constructs an ordered container of named elements. Elements
// are added externally and name collisions are permitted.
func (f *Factory) NewNamedList(elemType reflect.Type) (*NamedList, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	return &NamedList{elemType: elemType}, nil
}

// NewNamedSet constructs a name-keyed container without creation
// capability. Elements are added externally; names must be unique.
func (f *Factory) NewNamedSet(elemType reflect.Type) (*NamedSet, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	return &NamedSet{store: newNamedStore("named set", elemType)}, nil
}

// NewSet constructs a plain set of elements with no name concept.
func (f *Factory) NewSet(elemType reflect.Type) (*Set, error) {
	if elemType == nil {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	return &Set{elemType: elemType}, nil
}

// checkElementType rejects a value that does not conform to the container's
// declared element type.
func checkElementType(elemType reflect.Type, element any) error {
	if element == nil {
		return &faults.ArgumentError{Argument: "element", Reason: "element must not be nil"}
	}
	if !reflect.TypeOf(element).AssignableTo(elemType) {
		return &faults.ArgumentError{
			Argument: "element",
			Reason:   fmt.Sprintf("element of type %T is not assignable to declared element type %s", element, elemType.String()),
		}
	}
	return nil
}

// elementName extracts the name of a named element.
func elementName(element any) (string, error) {
	named, ok := element.(construct.Named)
	if !ok {
		return "", &faults.ArgumentError{
			Argument: "element",
			Reason:   fmt.Sprintf("element of type %T does not expose a name", element),
		}
	}
	return named.Name(), nil
}

// Set is an unnamed collection of elements of one declared type. Equal
// comparable elements collapse to one; iteration follows insertion order.
type Set struct {
	elemType reflect.Type
	elems    []any
}

// ElementType returns the declared element type.
func (s *Set) ElementType() reflect.Type { return s.elemType }

// Add inserts an element. There is no name concept and no name check.
func (s *Set) Add(element any) error {
	if err := checkElementType(s.elemType, element); err != nil {
		return err
	}
	if reflect.TypeOf(element).Comparable() {
		for _, existing := range s.elems {
			if existing == element {
				return nil
			}
		}
	}
	s.elems = append(s.elems, element)
	return nil
}

// Size reports the number of elements.
func (s *Set) Size() int { return len(s.elems) }

// All returns the elements in insertion order.
func (s *Set) All() []any {
	out := make([]any, len(s.elems))
	copy(out, s.elems)
	return out
}
