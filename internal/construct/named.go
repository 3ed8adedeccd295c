// Package construct produces the model's value objects: canonical named
// values, keyed by (type, name), and instances built through an explicit
// constructor registry.
package construct

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vk/buildmodel/internal/faults"
)

// Named is the capability shared by all named value objects.
type Named interface {
	Name() string
}

// NamedBase supplies the Named capability. A value type becomes mechanically
// synthesizable by embedding it:
//
//	type Flavor struct {
//		construct.NamedBase
//	}
type NamedBase struct {
	name string
}

// Name returns the name the object was synthesized with.
func (b *NamedBase) Name() string { return b.name }

func (b *NamedBase) setName(name string) { b.name = name }

// nameSetter is how synthesis reaches the embedded NamedBase without
// structural reflection over the outer type's fields.
type nameSetter interface {
	setName(string)
}

// Synthesize mechanically produces a fresh instance of the given named value
// type. The type must be a struct type (or pointer to one) embedding
// NamedBase; anything that needs more than a name to construct fails with an
// InstantiationError.
func Synthesize(t reflect.Type, name string) (Named, error) {
	structType := t
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return nil, &faults.InstantiationError{
			Type:  t.String(),
			Cause: fmt.Errorf("only struct types can be synthesized from a name"),
		}
	}

	instance := reflect.New(structType).Interface()
	setter, ok := instance.(nameSetter)
	if !ok {
		return nil, &faults.InstantiationError{
			Type:  t.String(),
			Cause: fmt.Errorf("type does not embed construct.NamedBase"),
		}
	}
	setter.setName(name)
	return instance.(Named), nil
}

type namedKey struct {
	typ  reflect.Type
	name string
}

// NamedInstantiator produces canonical named value objects. For a given
// (type, name) pair every call returns the same instance, so downstream code
// can compare named values by reference.
//
// The cache scope is the instantiator's lifetime; build one per session to
// get build-invocation scoping.
type NamedInstantiator struct {
	mu    sync.Mutex
	cache map[namedKey]Named
}

// NewNamedInstantiator creates an instantiator with an empty cache.
func NewNamedInstantiator() *NamedInstantiator {
	return &NamedInstantiator{cache: make(map[namedKey]Named)}
}

// Named returns the canonical instance of the given type for the given name,
// synthesizing it on first request. Concurrent first requests for one pair
// converge on exactly one instance. A synthesis failure is not cached.
func (ni *NamedInstantiator) Named(t reflect.Type, name string) (Named, error) {
	if t == nil {
		return nil, &faults.ArgumentError{Argument: "type", Reason: "type must not be nil"}
	}
	if name == "" {
		return nil, &faults.ArgumentError{Argument: "name", Reason: "name must not be empty"}
	}

	// T and *T name the same value type; key by the struct type.
	keyType := t
	if keyType.Kind() == reflect.Pointer {
		keyType = keyType.Elem()
	}
	key := namedKey{typ: keyType, name: name}

	ni.mu.Lock()
	defer ni.mu.Unlock()

	if existing, ok := ni.cache[key]; ok {
		return existing, nil
	}
	instance, err := Synthesize(t, name)
	if err != nil {
		return nil, err
	}
	ni.cache[key] = instance
	return instance, nil
}

// Size reports how many canonical instances are cached.
func (ni *NamedInstantiator) Size() int {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return len(ni.cache)
}
