package construct

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/vk/buildmodel/internal/faults"
)

// Constructor builds an instance of a registered type from its arguments.
type Constructor func(args ...any) (any, error)

// Registry maps a type to the constructor that knows how to build it. It
// replaces structural reflection: whoever knows how to build a type registers
// its constructor, and instantiation only looks up and invokes.
type Registry struct {
	mu    sync.RWMutex
	ctors map[reflect.Type]Constructor
}

// NewRegistry creates an empty constructor registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[reflect.Type]Constructor)}
}

// Register records the constructor for a type. Registering a second
// constructor for the same type is rejected.
func (r *Registry) Register(t reflect.Type, fn Constructor) error {
	if t == nil {
		return &faults.ArgumentError{Argument: "type", Reason: "type must not be nil"}
	}
	if fn == nil {
		return &faults.ArgumentError{Argument: "constructor", Reason: "constructor must not be nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[t]; exists {
		return &faults.ArgumentError{
			Argument: "type",
			Reason:   fmt.Sprintf("a constructor for type %s is already registered", t.String()),
		}
	}
	slog.Debug("Registering constructor.", "type", t.String())
	r.ctors[t] = fn
	return nil
}

// Registered reports whether a constructor exists for the type.
func (r *Registry) Registered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[t]
	return ok
}

// NewInstance builds an instance of the type by invoking its registered
// constructor. Any failure, including a missing registration, surfaces as an
// ObjectInstantiationError wrapping the cause; a failed construction never
// leaks a partial instance.
func (r *Registry) NewInstance(t reflect.Type, args ...any) (any, error) {
	if t == nil {
		return nil, &faults.ArgumentError{Argument: "type", Reason: "type must not be nil"}
	}

	r.mu.RLock()
	fn, ok := r.ctors[t]
	r.mu.RUnlock()
	if !ok {
		return nil, &faults.ObjectInstantiationError{
			Type:  t.String(),
			Cause: fmt.Errorf("no constructor registered; register one with Registry.Register"),
		}
	}

	instance, err := fn(args...)
	if err != nil {
		return nil, &faults.ObjectInstantiationError{Type: t.String(), Cause: err}
	}
	if instance == nil {
		return nil, &faults.ObjectInstantiationError{
			Type:  t.String(),
			Cause: fmt.Errorf("constructor returned no instance"),
		}
	}
	return instance, nil
}
