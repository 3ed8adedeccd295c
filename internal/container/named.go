package container

import (
	"fmt"
	"reflect"

	"github.com/vk/buildmodel/internal/faults"
)

// namedStore is the name-keyed storage shared by the named container
// variants. Iteration order is the insertion order of a given construction
// sequence.
type namedStore struct {
	displayName string
	elemType    reflect.Type
	byName      map[string]any
	order       []string
}

func newNamedStore(kind string, elemType reflect.Type) namedStore {
	return namedStore{
		displayName: fmt.Sprintf("%s of %s", kind, elemType.String()),
		elemType:    elemType,
		byName:      make(map[string]any),
	}
}

// insert stores an element under its name, rejecting collisions.
func (s *namedStore) insert(name string, element any) error {
	if _, exists := s.byName[name]; exists {
		return &faults.DuplicateNameError{Container: s.displayName, Name: name}
	}
	s.byName[name] = element
	s.order = append(s.order, name)
	return nil
}

func (s *namedStore) get(name string) (any, bool) {
	e, ok := s.byName[name]
	return e, ok
}

func (s *namedStore) names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *namedStore) all() []any {
	out := make([]any, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// NamedContainer is a name-keyed container that knows how to materialize an
// element given only a name, either through its default strategy or a
// caller-supplied factory.
type NamedContainer struct {
	store  namedStore
	create func(name string) (any, error)
}

// ElementType returns the declared element type.
func (c *NamedContainer) ElementType() reflect.Type { return c.store.elemType }

// Create materializes the element for the given name and inserts it. The
// name collision check runs at this moment, before the element escapes.
func (c *NamedContainer) Create(name string) (any, error) {
	if name == "" {
		return nil, &faults.ArgumentError{Argument: "name", Reason: "name must not be empty"}
	}
	if _, exists := c.store.get(name); exists {
		return nil, &faults.DuplicateNameError{Container: c.store.displayName, Name: name}
	}
	element, err := c.create(name)
	if err != nil {
		return nil, err
	}
	if err := checkElementType(c.store.elemType, element); err != nil {
		return nil, err
	}
	if actual, err := elementName(element); err == nil && actual != name {
		return nil, fmt.Errorf("element factory for %s produced an element named '%s' for name '%s'", c.store.displayName, actual, name)
	}
	if err := c.store.insert(name, element); err != nil {
		return nil, err
	}
	return element, nil
}

// Add inserts an externally constructed element under its own name.
func (c *NamedContainer) Add(element any) error {
	if err := checkElementType(c.store.elemType, element); err != nil {
		return err
	}
	name, err := elementName(element)
	if err != nil {
		return err
	}
	return c.store.insert(name, element)
}

// GetByName returns the element stored under the name.
func (c *NamedContainer) GetByName(name string) (any, bool) { return c.store.get(name) }

// Size reports the number of elements.
func (c *NamedContainer) Size() int { return len(c.store.order) }

// Names returns the element names in insertion order.
func (c *NamedContainer) Names() []string { return c.store.names() }

// All returns the elements in insertion order.
func (c *NamedContainer) All() []any { return c.store.all() }

// NamedList is an ordered collection of named elements without creation
// capability. Name collisions are permitted.
type NamedList struct {
	elemType reflect.Type
	elems    []any
}

// ElementType returns the declared element type.
func (l *NamedList) ElementType() reflect.Type { return l.elemType }

// Add appends an element.
func (l *NamedList) Add(element any) error {
	if err := checkElementType(l.elemType, element); err != nil {
		return err
	}
	if _, err := elementName(element); err != nil {
		return err
	}
	l.elems = append(l.elems, element)
	return nil
}

// Size reports the number of elements.
func (l *NamedList) Size() int { return len(l.elems) }

// Names returns the element names in insertion order, including duplicates.
func (l *NamedList) Names() []string {
	out := make([]string, 0, len(l.elems))
	for _, e := range l.elems {
		name, _ := elementName(e)
		out = append(out, name)
	}
	return out
}

// All returns the elements in insertion order.
func (l *NamedList) All() []any {
	out := make([]any, len(l.elems))
	copy(out, l.elems)
	return out
}

// NamedSet is a name-keyed collection without creation capability. Elements
// are added externally; names must be unique.
type NamedSet struct {
	store namedStore
}

// ElementType returns the declared element type.
func (s *NamedSet) ElementType() reflect.Type { return s.store.elemType }

// Add inserts an externally constructed element under its own name.
func (s *NamedSet) Add(element any) error {
	if err := checkElementType(s.store.elemType, element); err != nil {
		return err
	}
	name, err := elementName(element)
	if err != nil {
		return err
	}
	return s.store.insert(name, element)
}

// GetByName returns the element stored under the name.
func (s *NamedSet) GetByName(name string) (any, bool) { return s.store.get(name) }

// Size reports the number of elements.
func (s *NamedSet) Size() int { return len(s.store.order) }

// Names returns the element names in insertion order.
func (s *NamedSet) Names() []string { return s.store.names() }

// All returns the elements in insertion order.
func (s *NamedSet) All() []any { return s.store.all() }
