package props

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/typeval"
)

// lockedHost denies every mutation, standing in for a build phase in which
// the configuration is no longer mutable.
type lockedHost struct{}

func (lockedHost) BeforeMutate(target string) error {
	return fmt.Errorf("cannot change %s: the configuration phase has completed", target)
}

func TestScalar_StartsWithoutValue(t *testing.T) {
	t.Parallel()

	p, err := NewScalar(NopHost, cty.String)
	require.NoError(t, err)

	require.False(t, p.IsPresent())
	_, err = p.Get()
	require.ErrorContains(t, err, "no value present")
	require.Equal(t, cty.StringVal("fallback"), p.GetOrElse(cty.StringVal("fallback")))
}

func TestScalar_SetAndGet(t *testing.T) {
	t.Parallel()

	p, err := NewScalar(NopHost, cty.String)
	require.NoError(t, err)

	require.NoError(t, p.Set(cty.StringVal("release")))

	require.True(t, p.IsPresent())
	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("release"), v)
}

func TestScalar_SupplierIsDeferred(t *testing.T) {
	t.Parallel()

	p, err := NewScalar(NopHost, cty.Number)
	require.NoError(t, err)

	calls := 0
	require.NoError(t, p.SetSupplier(func() (cty.Value, error) {
		calls++
		return cty.NumberIntVal(int64(calls)), nil
	}))

	// The supplier runs on read, not on bind.
	require.Equal(t, 0, calls)
	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.NumberIntVal(1), v)

	// Every read consults the supplier until finalized.
	v, err = p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.NumberIntVal(2), v)

	require.NoError(t, p.Finalize())
	v, err = p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.NumberIntVal(3), v)
	require.Equal(t, 3, calls)
}

func TestScalar_RejectsCollectionType(t *testing.T) {
	t.Parallel()

	_, err := NewScalar(NopHost, cty.List(cty.String))

	var usageErr *faults.InvalidUsageError
	require.ErrorAs(t, err, &usageErr)
	require.Contains(t, err.Error(), "ListProperty")
}

func TestScalar_RejectsNativeSliceType(t *testing.T) {
	t.Parallel()

	// A native []string descriptor is an ordered sequence and must be
	// rejected exactly like cty.List(cty.String).
	_, err := NewScalar(NopHost, typeval.NativeType(reflect.TypeOf([]string{})))

	var usageErr *faults.InvalidUsageError
	require.ErrorAs(t, err, &usageErr)
	require.Contains(t, err.Error(), "ListProperty")
}

func TestScalar_NormalizesNativePrimitive(t *testing.T) {
	t.Parallel()

	// A native Go int descriptor and the canonical number type must build
	// equivalent properties.
	native, err := NewScalar(NopHost, typeval.NativeType(reflect.TypeOf(int(0))))
	require.NoError(t, err)
	canonical, err := NewScalar(NopHost, cty.Number)
	require.NoError(t, err)

	require.True(t, native.Type().Equals(canonical.Type()))

	require.NoError(t, native.Set(cty.NumberIntVal(7)))
	v, err := native.Get()
	require.NoError(t, err)
	require.Equal(t, cty.NumberIntVal(7), v)
}

func TestScalar_HostGatesWrites(t *testing.T) {
	t.Parallel()

	p, err := NewScalar(lockedHost{}, cty.String)
	require.NoError(t, err)

	err = p.Set(cty.StringVal("late"))
	require.ErrorContains(t, err, "configuration phase has completed")
	require.False(t, p.IsPresent())
}

func TestScalar_FinalizeLocksValue(t *testing.T) {
	t.Parallel()

	p, err := NewScalar(NopHost, cty.String)
	require.NoError(t, err)
	require.NoError(t, p.Set(cty.StringVal("fixed")))

	require.NoError(t, p.Finalize())

	err = p.Set(cty.StringVal("changed"))
	require.ErrorContains(t, err, "final")
	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("fixed"), v)
}

func TestScalar_NilHost(t *testing.T) {
	t.Parallel()

	_, err := NewScalar(nil, cty.String)

	var argErr *faults.ArgumentError
	require.True(t, errors.As(err, &argErr))
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	p, err := NewList(NopHost, cty.String)
	require.NoError(t, err)

	require.NoError(t, p.Append(cty.StringVal("a")))
	require.NoError(t, p.Append(cty.StringVal("b"), cty.StringVal("a")))

	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b"), cty.StringVal("a")}), v)
}

func TestList_OfListsIsLegal(t *testing.T) {
	t.Parallel()

	p, err := NewList(NopHost, cty.List(cty.String))
	require.NoError(t, err)

	require.NoError(t, p.Append(cty.ListVal([]cty.Value{cty.StringVal("x")})))
	require.True(t, p.IsPresent())
}

func TestSet_DropsDuplicates(t *testing.T) {
	t.Parallel()

	p, err := NewSet(NopHost, cty.String)
	require.NoError(t, err)

	require.NoError(t, p.Add(cty.StringVal("a"), cty.StringVal("b"), cty.StringVal("a")))

	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, 2, v.LengthInt())
}

func TestMap_PutAndGet(t *testing.T) {
	t.Parallel()

	p, err := NewMap(NopHost, cty.String, cty.Number)
	require.NoError(t, err)

	require.NoError(t, p.Put(cty.StringVal("threads"), cty.NumberIntVal(4)))
	require.NoError(t, p.Put(cty.StringVal("retries"), cty.NumberIntVal(2)))

	v, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, cty.MapVal(map[string]cty.Value{
		"threads": cty.NumberIntVal(4),
		"retries": cty.NumberIntVal(2),
	}), v)
}

func TestMap_NormalizesNativeKeyAndValueTypes(t *testing.T) {
	t.Parallel()

	p, err := NewMap(NopHost, typeval.NativeType(reflect.TypeOf("")), typeval.NativeType(reflect.TypeOf(int(0))))
	require.NoError(t, err)

	require.True(t, p.KeyType().Equals(cty.String))
	require.True(t, p.ValueType().Equals(cty.Number))
}

func TestCollectionProperties_UnsetUntilWritten(t *testing.T) {
	t.Parallel()

	list, err := NewList(NopHost, cty.String)
	require.NoError(t, err)
	set, err := NewSet(NopHost, cty.String)
	require.NoError(t, err)
	mapped, err := NewMap(NopHost, cty.String, cty.String)
	require.NoError(t, err)

	require.False(t, list.IsPresent())
	require.False(t, set.IsPresent())
	require.False(t, mapped.IsPresent())

	// An explicit empty write makes them present.
	require.NoError(t, list.Set([]cty.Value{}))
	require.True(t, list.IsPresent())
}
