package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vk/buildmodel/internal/faults"
)

// PolymorphicContainer is a name-keyed container whose creation strategy is
// extensible: it starts with no rule at all, and plugins register one rule
// per concrete subtype of the declared element type.
type PolymorphicContainer struct {
	store namedStore

	mu        sync.RWMutex
	factories map[reflect.Type]func(name string) (any, error)
}

// ElementType returns the declared element type.
func (c *PolymorphicContainer) ElementType() reflect.Type { return c.store.elemType }

// RegisterFactory records the creation rule for a subtype of the declared
// element type. One rule per subtype.
func (c *PolymorphicContainer) RegisterFactory(subtype reflect.Type, create func(name string) (any, error)) error {
	if subtype == nil {
		return &faults.ArgumentError{Argument: "subtype", Reason: "subtype must not be nil"}
	}
	if create == nil {
		return &faults.ArgumentError{Argument: "factory", Reason: "element factory must not be nil"}
	}
	if !subtype.AssignableTo(c.store.elemType) {
		return &faults.ArgumentError{
			Argument: "subtype",
			Reason:   fmt.Sprintf("type %s is not assignable to declared element type %s", subtype.String(), c.store.elemType.String()),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[subtype]; exists {
		return &faults.ArgumentError{
			Argument: "subtype",
			Reason:   fmt.Sprintf("a factory for type %s is already registered", subtype.String()),
		}
	}
	c.factories[subtype] = create
	return nil
}

// Create materializes an element of the given subtype for the given name
// and inserts it. Creating an element of an unregistered subtype is a usage
// error naming the registration entry point.
func (c *PolymorphicContainer) Create(name string, subtype reflect.Type) (any, error) {
	if name == "" {
		return nil, &faults.ArgumentError{Argument: "name", Reason: "name must not be empty"}
	}
	if subtype == nil {
		return nil, &faults.ArgumentError{Argument: "subtype", Reason: "subtype must not be nil"}
	}

	c.mu.RLock()
	create, ok := c.factories[subtype]
	c.mu.RUnlock()
	if !ok {
		return nil, &faults.InvalidUsageError{
			Requested:  fmt.Sprintf("an element of unregistered type %s in %s", subtype.String(), c.store.displayName),
			Corrective: fmt.Sprintf("RegisterFactory to add a creation rule for %s first", subtype.String()),
		}
	}

	if _, exists := c.store.get(name); exists {
		return nil, &faults.DuplicateNameError{Container: c.store.displayName, Name: name}
	}
	element, err := create(name)
	if err != nil {
		return nil, err
	}
	if element == nil || !reflect.TypeOf(element).AssignableTo(subtype) {
		return nil, fmt.Errorf("element factory for type %s in %s produced %T", subtype.String(), c.store.displayName, element)
	}
	if err := c.store.insert(name, element); err != nil {
		return nil, err
	}
	return element, nil
}

// Add inserts an externally constructed element under its own name.
func (c *PolymorphicContainer) Add(element any) error {
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
func (c *PolymorphicContainer) GetByName(name string) (any, bool) { return c.store.get(name) }

// Size reports the number of elements.
func (c *PolymorphicContainer) Size() int { return len(c.store.order) }

// Names returns the element names in insertion order.
func (c *PolymorphicContainer) Names() []string { return c.store.names() }

// All returns the elements in insertion order.
func (c *PolymorphicContainer) All() []any { return c.store.all() }
