package props

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/typeval"
)

// List is a property holding an ordered sequence of elements of a declared
// type. Insertion order is preserved.
type List struct {
	host      Host
	elem      cty.Type
	state     valueState
	elems     []cty.Value
	supplier  Supplier
	finalized bool
}

// NewList constructs a list property. The element type is normalized only;
// nested collection element types are legal.
func NewList(host Host, elem cty.Type) (*List, error) {
	if host == nil {
		return nil, &faults.ArgumentError{Argument: "host", Reason: "property host must not be nil"}
	}
	if elem == cty.NilType {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	if normalized := typeval.Normalize(elem); !normalized.Equals(elem) {
		return NewList(host, normalized)
	}
	return &List{host: host, elem: elem}, nil
}

// ElementType returns the declared element type.
func (p *List) ElementType() cty.Type { return p.elem }

// IsPresent reports whether a value can currently be produced.
func (p *List) IsPresent() bool {
	_, err := p.Get()
	return err == nil
}

// Get resolves the current sequence as a single list value.
func (p *List) Get() (cty.Value, error) {
	switch p.state {
	case stateFixed:
		return sequenceVal(p.elems, p.elem), nil
	case stateDeferred:
		raw, err := p.supplier()
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to evaluate supplier of %s: %w", p.displayName(), err)
		}
		return convertValue(raw, cty.List(p.elem))
	default:
		return cty.NilVal, fmt.Errorf("no value present for %s", p.displayName())
	}
}

// GetOrElse resolves the current value, falling back to def when none is
// present.
func (p *List) GetOrElse(def cty.Value) cty.Value {
	v, err := p.Get()
	if err != nil {
		return def
	}
	return v
}

// Set replaces the sequence with the given elements. A nil slice clears the
// property.
func (p *List) Set(values []cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if values == nil {
		p.state = stateUnset
		p.elems = nil
		p.supplier = nil
		return nil
	}
	converted, err := convertAll(values, p.elem)
	if err != nil {
		return err
	}
	p.state = stateFixed
	p.elems = converted
	p.supplier = nil
	return nil
}

// Append adds elements to the end of the sequence. Appending to an unset
// property makes it present.
func (p *List) Append(values ...cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		return fmt.Errorf("cannot append to %s while it is bound to a supplier", p.displayName())
	}
	converted, err := convertAll(values, p.elem)
	if err != nil {
		return err
	}
	p.state = stateFixed
	p.elems = append(p.elems, converted...)
	return nil
}

// SetSupplier binds the property to a deferred supplier producing the whole
// sequence.
func (p *List) SetSupplier(fn Supplier) error {
	if fn == nil {
		return &faults.ArgumentError{Argument: "supplier", Reason: "supplier must not be nil"}
	}
	if err := p.beforeMutate(); err != nil {
		return err
	}
	p.state = stateDeferred
	p.elems = nil
	p.supplier = fn
	return nil
}

// Finalize resolves the current value and locks the property against
// further writes.
func (p *List) Finalize() error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		v, err := p.Get()
		if err != nil {
			return err
		}
		p.state = stateFixed
		p.elems = elementsOf(v)
		p.supplier = nil
	}
	p.finalized = true
	return nil
}

func (p *List) beforeMutate() error {
	if p.finalized {
		return fmt.Errorf("the value of %s is final and cannot be changed", p.displayName())
	}
	return p.host.BeforeMutate(p.displayName())
}

func (p *List) displayName() string {
	return fmt.Sprintf("list property with element type %s", p.elem.FriendlyName())
}

// SetProp is a property holding a set of elements of a declared type.
// Duplicate elements collapse; iteration order is the insertion order of a
// given construction sequence.
type SetProp struct {
	host      Host
	elem      cty.Type
	state     valueState
	elems     []cty.Value
	supplier  Supplier
	finalized bool
}

// NewSet constructs a set property. The element type is normalized only.
func NewSet(host Host, elem cty.Type) (*SetProp, error) {
	if host == nil {
		return nil, &faults.ArgumentError{Argument: "host", Reason: "property host must not be nil"}
	}
	if elem == cty.NilType {
		return nil, &faults.ArgumentError{Argument: "elementType", Reason: "element type must not be nil"}
	}
	if normalized := typeval.Normalize(elem); !normalized.Equals(elem) {
		return NewSet(host, normalized)
	}
	return &SetProp{host: host, elem: elem}, nil
}

// ElementType returns the declared element type.
func (p *SetProp) ElementType() cty.Type { return p.elem }

// IsPresent reports whether a value can currently be produced.
func (p *SetProp) IsPresent() bool {
	_, err := p.Get()
	return err == nil
}

// Get resolves the current elements as a single set value.
func (p *SetProp) Get() (cty.Value, error) {
	switch p.state {
	case stateFixed:
		if len(p.elems) == 0 {
			return cty.SetValEmpty(p.elem), nil
		}
		return cty.SetVal(p.elems), nil
	case stateDeferred:
		raw, err := p.supplier()
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to evaluate supplier of %s: %w", p.displayName(), err)
		}
		return convertValue(raw, cty.Set(p.elem))
	default:
		return cty.NilVal, fmt.Errorf("no value present for %s", p.displayName())
	}
}

// GetOrElse resolves the current value, falling back to def when none is
// present.
func (p *SetProp) GetOrElse(def cty.Value) cty.Value {
	v, err := p.Get()
	if err != nil {
		return def
	}
	return v
}

// Set replaces the elements. A nil slice clears the property.
func (p *SetProp) Set(values []cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if values == nil {
		p.state = stateUnset
		p.elems = nil
		p.supplier = nil
		return nil
	}
	p.state = stateFixed
	p.elems = nil
	p.supplier = nil
	return p.Add(values...)
}

// Add inserts elements, dropping ones already present. Adding to an unset
// property makes it present.
func (p *SetProp) Add(values ...cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		return fmt.Errorf("cannot add to %s while it is bound to a supplier", p.displayName())
	}
	converted, err := convertAll(values, p.elem)
	if err != nil {
		return err
	}
	p.state = stateFixed
	for _, v := range converted {
		if !containsValue(p.elems, v) {
			p.elems = append(p.elems, v)
		}
	}
	return nil
}

// SetSupplier binds the property to a deferred supplier producing the whole
// set.
func (p *SetProp) SetSupplier(fn Supplier) error {
	if fn == nil {
		return &faults.ArgumentError{Argument: "supplier", Reason: "supplier must not be nil"}
	}
	if err := p.beforeMutate(); err != nil {
		return err
	}
	p.state = stateDeferred
	p.elems = nil
	p.supplier = fn
	return nil
}

// Finalize resolves the current value and locks the property against
// further writes.
func (p *SetProp) Finalize() error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		v, err := p.Get()
		if err != nil {
			return err
		}
		p.state = stateFixed
		p.elems = elementsOf(v)
		p.supplier = nil
	}
	p.finalized = true
	return nil
}

func (p *SetProp) beforeMutate() error {
	if p.finalized {
		return fmt.Errorf("the value of %s is final and cannot be changed", p.displayName())
	}
	return p.host.BeforeMutate(p.displayName())
}

func (p *SetProp) displayName() string {
	return fmt.Sprintf("set property with element type %s", p.elem.FriendlyName())
}

func convertAll(values []cty.Value, typ cty.Type) ([]cty.Value, error) {
	converted := make([]cty.Value, 0, len(values))
	for _, v := range values {
		c, err := convertValue(v, typ)
		if err != nil {
			return nil, err
		}
		converted = append(converted, c)
	}
	return converted, nil
}

func containsValue(values []cty.Value, v cty.Value) bool {
	for _, existing := range values {
		if existing.RawEquals(v) {
			return true
		}
	}
	return false
}

func sequenceVal(elems []cty.Value, elem cty.Type) cty.Value {
	if len(elems) == 0 {
		return cty.ListValEmpty(elem)
	}
	return cty.ListVal(elems)
}

func elementsOf(v cty.Value) []cty.Value {
	var elems []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		elems = append(elems, ev)
	}
	return elems
}
