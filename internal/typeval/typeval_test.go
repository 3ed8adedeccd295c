package typeval

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/fsmodel"
)

func TestValidateScalar_AcceptsPlainTypes(t *testing.T) {
	t.Parallel()

	for _, typ := range []cty.Type{cty.String, cty.Number, cty.Bool, cty.Object(map[string]cty.Type{"id": cty.String})} {
		validated, err := ValidateScalar(typ)
		require.NoError(t, err, "type %s should be a legal scalar", typ.FriendlyName())
		require.True(t, validated.Equals(typ))
	}
}

func TestValidateScalar_RejectsCollectionAndPathTypes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		typ        cty.Type
		corrective string
	}{
		{"list", cty.List(cty.String), "ListProperty"},
		{"tuple", cty.Tuple([]cty.Type{cty.String, cty.Number}), "ListProperty"},
		{"set", cty.Set(cty.Number), "SetProperty"},
		{"map", cty.Map(cty.Bool), "MapProperty"},
		{"native slice", NativeType(reflect.TypeOf([]string{})), "ListProperty"},
		{"native array", NativeType(reflect.TypeOf([2]int{})), "ListProperty"},
		{"native map", NativeType(reflect.TypeOf(map[string]int{})), "MapProperty"},
		{"directory", fsmodel.DirectoryType, "DirectoryProperty"},
		{"file", fsmodel.FileType, "FileProperty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateScalar(tc.typ)

			var usageErr *faults.InvalidUsageError
			require.ErrorAs(t, err, &usageErr)
			require.Contains(t, err.Error(), tc.corrective)
		})
	}
}

func TestValidateScalar_NilType(t *testing.T) {
	t.Parallel()

	_, err := ValidateScalar(cty.NilType)

	var argErr *faults.ArgumentError
	require.True(t, errors.As(err, &argErr))
}

func TestNormalize_RewritesNativePrimitives(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sample any
		want   cty.Type
	}{
		{int(0), cty.Number},
		{int32(0), cty.Number},
		{float64(0), cty.Number},
		{false, cty.Bool},
		{"", cty.String},
	}

	for _, tc := range cases {
		native := NativeType(reflect.TypeOf(tc.sample))

		normalized := Normalize(native)

		require.True(t, normalized.Equals(tc.want), "native %T should normalize to %s", tc.sample, tc.want.FriendlyName())
		// Normalizing the canonical form again is a no-op.
		require.True(t, Normalize(normalized).Equals(tc.want))
	}
}

func TestNormalize_RewritesNativeCollections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sample any
		want   cty.Type
	}{
		{[]string{}, cty.List(cty.String)},
		{[3]bool{}, cty.List(cty.Bool)},
		{map[string]int{}, cty.Map(cty.Number)},
	}

	for _, tc := range cases {
		native := NativeType(reflect.TypeOf(tc.sample))

		normalized := Normalize(native)

		require.True(t, normalized.Equals(tc.want), "native %T should normalize to %s", tc.sample, tc.want.FriendlyName())
	}
}

func TestNormalize_LeavesStructCapsulesAlone(t *testing.T) {
	t.Parallel()

	type widget struct{ ID string }
	native := NativeType(reflect.TypeOf(widget{}))

	require.True(t, Normalize(native).Equals(native))
}

func TestNativeType_StableIdentity(t *testing.T) {
	t.Parallel()

	type widget struct{ ID string }

	a := NativeType(reflect.TypeOf(widget{}))
	b := NativeType(reflect.TypeOf(widget{}))

	require.True(t, a.Equals(b))
}
