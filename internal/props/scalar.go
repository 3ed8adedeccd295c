// Package props implements the lazily-evaluated property objects of the
// configuration model: a scalar value, a list, a set, and a string-keyed map.
//
// A property starts with no value, and is later bound either to a fixed
// value or to a deferred supplier that is consulted on read. The declared
// element type is fixed at construction; every write is converted to it, and
// every write first consults the shared mutation-gating Host.
package props

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/typeval"
)

// Supplier produces a property value on demand.
type Supplier func() (cty.Value, error)

type valueState int

const (
	stateUnset valueState = iota
	stateFixed
	stateDeferred
)

// Scalar holds a single optional deferred value of a declared type.
type Scalar struct {
	host      Host
	typ       cty.Type
	state     valueState
	value     cty.Value
	supplier  Supplier
	finalized bool
}

// NewScalar constructs a scalar property of the given element type. The type
// is normalized first; a collection-like or filesystem-like type is rejected
// with a diagnostic naming the constructor to use instead.
func NewScalar(host Host, typ cty.Type) (*Scalar, error) {
	validated, err := typeval.ValidateScalar(typ)
	if err != nil {
		return nil, err
	}
	if !validated.Equals(typ) {
		// Re-enter with the canonical spelling of the same type.
		return NewScalar(host, validated)
	}
	return NewScalarOf(host, validated)
}

// NewScalarOf constructs a scalar property without the scalar category
// check. Collaborating factories that own their own type discipline, such as
// the file property factory, use it directly; API callers go through
// NewScalar.
func NewScalarOf(host Host, typ cty.Type) (*Scalar, error) {
	if host == nil {
		return nil, &faults.ArgumentError{Argument: "host", Reason: "property host must not be nil"}
	}
	if typ == cty.NilType {
		return nil, &faults.ArgumentError{Argument: "type", Reason: "type must not be nil"}
	}
	return &Scalar{host: host, typ: typ}, nil
}

// Type returns the declared element type.
func (p *Scalar) Type() cty.Type { return p.typ }

// IsPresent reports whether a value can currently be produced.
func (p *Scalar) IsPresent() bool {
	_, err := p.Get()
	return err == nil
}

// Get resolves the current value, evaluating a deferred supplier if one is
// bound.
func (p *Scalar) Get() (cty.Value, error) {
	switch p.state {
	case stateFixed:
		return p.value, nil
	case stateDeferred:
		raw, err := p.supplier()
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to evaluate supplier of %s: %w", p.displayName(), err)
		}
		return convertValue(raw, p.typ)
	default:
		return cty.NilVal, fmt.Errorf("no value present for %s", p.displayName())
	}
}

// GetOrElse resolves the current value, falling back to def when none is
// present.
func (p *Scalar) GetOrElse(def cty.Value) cty.Value {
	v, err := p.Get()
	if err != nil {
		return def
	}
	return v
}

// Set binds the property to a fixed value. A nil value clears it.
func (p *Scalar) Set(v cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if v == cty.NilVal {
		p.state = stateUnset
		p.value = cty.NilVal
		p.supplier = nil
		return nil
	}
	converted, err := convertValue(v, p.typ)
	if err != nil {
		return err
	}
	p.state = stateFixed
	p.value = converted
	p.supplier = nil
	return nil
}

// SetSupplier binds the property to a deferred supplier, consulted on every
// read until the property is finalized.
func (p *Scalar) SetSupplier(fn Supplier) error {
	if fn == nil {
		return &faults.ArgumentError{Argument: "supplier", Reason: "supplier must not be nil"}
	}
	if err := p.beforeMutate(); err != nil {
		return err
	}
	p.state = stateDeferred
	p.value = cty.NilVal
	p.supplier = fn
	return nil
}

// Unset clears any bound value or supplier.
func (p *Scalar) Unset() error {
	return p.Set(cty.NilVal)
}

// Finalize resolves the current value and locks the property against
// further writes.
func (p *Scalar) Finalize() error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		v, err := p.Get()
		if err != nil {
			return err
		}
		p.state = stateFixed
		p.value = v
		p.supplier = nil
	}
	p.finalized = true
	return nil
}

func (p *Scalar) beforeMutate() error {
	if p.finalized {
		return fmt.Errorf("the value of %s is final and cannot be changed", p.displayName())
	}
	return p.host.BeforeMutate(p.displayName())
}

func (p *Scalar) displayName() string {
	return fmt.Sprintf("property of type %s", p.typ.FriendlyName())
}

// convertValue coerces v to the declared type, reporting an actionable
// argument error when the value cannot represent it.
func convertValue(v cty.Value, typ cty.Type) (cty.Value, error) {
	converted, err := convert.Convert(v, typ)
	if err != nil {
		return cty.NilVal, &faults.ArgumentError{
			Argument: "value",
			Reason:   fmt.Sprintf("cannot convert %s to %s: %v", v.Type().FriendlyName(), typ.FriendlyName(), err),
		}
	}
	return converted, nil
}
