package props

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/typeval"
)

// Map is a property holding a key to value mapping with declared key and
// value types. Keys are stored by their canonical string form, so the key
// type must be convertible to a string.
type Map struct {
	host      Host
	key       cty.Type
	val       cty.Type
	state     valueState
	entries   map[string]cty.Value
	supplier  Supplier
	finalized bool
}

// NewMap constructs a map property. Both type parameters are normalized
// only; composite value types are legal.
func NewMap(host Host, keyType, valType cty.Type) (*Map, error) {
	if host == nil {
		return nil, &faults.ArgumentError{Argument: "host", Reason: "property host must not be nil"}
	}
	if keyType == cty.NilType {
		return nil, &faults.ArgumentError{Argument: "keyType", Reason: "key type must not be nil"}
	}
	if valType == cty.NilType {
		return nil, &faults.ArgumentError{Argument: "valueType", Reason: "value type must not be nil"}
	}
	if normalized := typeval.Normalize(keyType); !normalized.Equals(keyType) {
		return NewMap(host, normalized, valType)
	}
	if normalized := typeval.Normalize(valType); !normalized.Equals(valType) {
		return NewMap(host, keyType, normalized)
	}
	return &Map{host: host, key: keyType, val: valType}, nil
}

// KeyType returns the declared key type.
func (p *Map) KeyType() cty.Type { return p.key }

// ValueType returns the declared value type.
func (p *Map) ValueType() cty.Type { return p.val }

// IsPresent reports whether a value can currently be produced.
func (p *Map) IsPresent() bool {
	_, err := p.Get()
	return err == nil
}

// Get resolves the current mapping as a single map value.
func (p *Map) Get() (cty.Value, error) {
	switch p.state {
	case stateFixed:
		if len(p.entries) == 0 {
			return cty.MapValEmpty(p.val), nil
		}
		return cty.MapVal(p.entries), nil
	case stateDeferred:
		raw, err := p.supplier()
		if err != nil {
			return cty.NilVal, fmt.Errorf("failed to evaluate supplier of %s: %w", p.displayName(), err)
		}
		return convertValue(raw, cty.Map(p.val))
	default:
		return cty.NilVal, fmt.Errorf("no value present for %s", p.displayName())
	}
}

// GetOrElse resolves the current value, falling back to def when none is
// present.
func (p *Map) GetOrElse(def cty.Value) cty.Value {
	v, err := p.Get()
	if err != nil {
		return def
	}
	return v
}

// Set replaces the mapping. A nil map clears the property.
func (p *Map) Set(entries map[string]cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if entries == nil {
		p.state = stateUnset
		p.entries = nil
		p.supplier = nil
		return nil
	}
	replacement := make(map[string]cty.Value, len(entries))
	for k, v := range entries {
		converted, err := convertValue(v, p.val)
		if err != nil {
			return err
		}
		replacement[k] = converted
	}
	p.state = stateFixed
	p.entries = replacement
	p.supplier = nil
	return nil
}

// Put inserts a single entry, replacing any entry under the same key.
// Putting into an unset property makes it present.
func (p *Map) Put(key, value cty.Value) error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		return fmt.Errorf("cannot put into %s while it is bound to a supplier", p.displayName())
	}
	k, err := p.storageKey(key)
	if err != nil {
		return err
	}
	converted, err := convertValue(value, p.val)
	if err != nil {
		return err
	}
	if p.entries == nil {
		p.entries = make(map[string]cty.Value)
	}
	p.state = stateFixed
	p.entries[k] = converted
	return nil
}

// SetSupplier binds the property to a deferred supplier producing the whole
// mapping.
func (p *Map) SetSupplier(fn Supplier) error {
	if fn == nil {
		return &faults.ArgumentError{Argument: "supplier", Reason: "supplier must not be nil"}
	}
	if err := p.beforeMutate(); err != nil {
		return err
	}
	p.state = stateDeferred
	p.entries = nil
	p.supplier = fn
	return nil
}

// Finalize resolves the current value and locks the property against
// further writes.
func (p *Map) Finalize() error {
	if err := p.beforeMutate(); err != nil {
		return err
	}
	if p.state == stateDeferred {
		v, err := p.Get()
		if err != nil {
			return err
		}
		entries := make(map[string]cty.Value)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			entries[k.AsString()] = ev
		}
		p.state = stateFixed
		p.entries = entries
		p.supplier = nil
	}
	p.finalized = true
	return nil
}

// storageKey converts a key value through the declared key type to its
// canonical string form.
func (p *Map) storageKey(key cty.Value) (string, error) {
	typed, err := convertValue(key, p.key)
	if err != nil {
		return "", err
	}
	str, err := convertValue(typed, cty.String)
	if err != nil {
		return "", &faults.ArgumentError{
			Argument: "key",
			Reason:   fmt.Sprintf("key type %s has no canonical string form", p.key.FriendlyName()),
		}
	}
	return str.AsString(), nil
}

func (p *Map) beforeMutate() error {
	if p.finalized {
		return fmt.Errorf("the value of %s is final and cannot be changed", p.displayName())
	}
	return p.host.BeforeMutate(p.displayName())
}

func (p *Map) displayName() string {
	return fmt.Sprintf("map property with key type %s and value type %s", p.key.FriendlyName(), p.val.FriendlyName())
}
