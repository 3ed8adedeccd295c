// Package typeval classifies requested element types for scalar properties
// and normalizes foreign primitive and collection descriptors to their
// canonical model form.
//
// The model's runtime type descriptor is cty.Type. Host code that hands a
// native Go primitive across the boundary wraps it with NativeType; the
// validator rewrites such capsules to the canonical cty primitive before any
// category check runs, so both spellings construct equivalent properties.
package typeval

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/fsmodel"
)

// nativeTypes interns one capsule per Go type. cty.Capsule mints a distinct
// type identity on every call, so repeated NativeType calls must share one.
var nativeTypes sync.Map // reflect.Type -> cty.Type

// NativeType wraps a Go type so it can travel through the cty-typed
// construction surface. The same Go type always yields the same cty identity.
func NativeType(t reflect.Type) cty.Type {
	if cached, ok := nativeTypes.Load(t); ok {
		return cached.(cty.Type)
	}
	capsule := cty.Capsule(t.String(), t)
	actual, _ := nativeTypes.LoadOrStore(t, capsule)
	return actual.(cty.Type)
}

// Normalize rewrites a capsule over a native Go primitive or collection kind
// to the canonical cty form, so the category checks run on the effective
// type: a []string descriptor becomes cty.List(cty.String). All other types,
// including the canonical forms themselves, pass through unchanged, so
// Normalize is idempotent.
func Normalize(t cty.Type) cty.Type {
	if t == cty.NilType || !t.IsCapsuleType() {
		return t
	}
	native := t.EncapsulatedType()
	switch native.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Map:
		implied, err := gocty.ImpliedType(reflect.Zero(native).Interface())
		if err == nil {
			return implied
		}
	case reflect.Array:
		// Arrays carry the same ordered-sequence category as slices.
		sliceType := reflect.SliceOf(native.Elem())
		implied, err := gocty.ImpliedType(reflect.Zero(sliceType).Interface())
		if err == nil {
			return implied
		}
	}
	return t
}

// ValidateScalar decides whether the requested element type is legal for a
// scalar property. It normalizes first, then rejects collection-like and
// filesystem-like types, naming the constructor the caller should have used.
// It is a pure function.
func ValidateScalar(t cty.Type) (cty.Type, error) {
	if t == cty.NilType {
		return cty.NilType, &faults.ArgumentError{Argument: "type", Reason: "type must not be nil"}
	}

	t = Normalize(t)

	switch {
	case t.IsListType() || t.IsTupleType():
		return cty.NilType, scalarMisuse(t, "ListProperty")
	case t.IsSetType():
		return cty.NilType, scalarMisuse(t, "SetProperty")
	case t.IsMapType():
		return cty.NilType, scalarMisuse(t, "MapProperty")
	case t.Equals(fsmodel.DirectoryType):
		return cty.NilType, scalarMisuse(t, "DirectoryProperty")
	case t.Equals(fsmodel.FileType):
		return cty.NilType, scalarMisuse(t, "FileProperty")
	}

	return t, nil
}

func scalarMisuse(t cty.Type, corrective string) error {
	return &faults.InvalidUsageError{
		Requested:  fmt.Sprintf("a scalar property of type %s", t.FriendlyName()),
		Corrective: fmt.Sprintf("Factory.%s", corrective),
	}
}
