package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildmodel/internal/construct"
	"github.com/vk/buildmodel/internal/faults"
)

// sourceSet is a named element type as a plugin would declare it.
type sourceSet struct {
	construct.NamedBase
	SrcDir string
}

// binaryRule and libraryRule are concrete subtypes for the polymorphic
// container, both usable wherever a construct.Named is expected.
type binaryRule struct {
	construct.NamedBase
	Target string
}

type libraryRule struct {
	construct.NamedBase
}

var namedIface = reflect.TypeOf((*construct.Named)(nil)).Elem()

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	f, err := NewFactory(construct.NewRegistry())
	require.NoError(t, err)
	return f
}

func TestNamedContainer_DefaultStrategySynthesizes(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewNamed(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)

	element, err := c.Create("main")
	require.NoError(t, err)

	ss, ok := element.(*sourceSet)
	require.True(t, ok)
	require.Equal(t, "main", ss.Name())

	stored, ok := c.GetByName("main")
	require.True(t, ok)
	require.Same(t, element, stored)
}

func TestNamedContainer_DefaultStrategyPrefersRegisteredConstructor(t *testing.T) {
	t.Parallel()

	reg := construct.NewRegistry()
	elemType := reflect.TypeOf(&sourceSet{})
	require.NoError(t, reg.Register(elemType, func(args ...any) (any, error) {
		ss, err := construct.Synthesize(elemType, args[0].(string))
		if err != nil {
			return nil, err
		}
		ss.(*sourceSet).SrcDir = "src/" + args[0].(string)
		return ss, nil
	}))
	f, err := NewFactory(reg)
	require.NoError(t, err)
	c, err := f.NewNamed(elemType)
	require.NoError(t, err)

	element, err := c.Create("test")
	require.NoError(t, err)

	require.Equal(t, "src/test", element.(*sourceSet).SrcDir)
}

func TestNamedContainer_DuplicateName(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewNamed(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)
	_, err = c.Create("main")
	require.NoError(t, err)

	_, err = c.Create("main")

	var dupErr *faults.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, "main", dupErr.Name)
	require.Equal(t, 1, c.Size())
}

func TestNamedContainer_CustomFactory(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewNamedWithFactory(reflect.TypeOf(&sourceSet{}), func(name string) (any, error) {
		ss, err := construct.Synthesize(reflect.TypeOf(&sourceSet{}), name)
		if err != nil {
			return nil, err
		}
		ss.(*sourceSet).SrcDir = name + "/java"
		return ss, nil
	})
	require.NoError(t, err)

	element, err := c.Create("main")
	require.NoError(t, err)
	require.Equal(t, "main/java", element.(*sourceSet).SrcDir)

	// The factory's result is keyed like any other element.
	_, err = c.Create("main")
	var dupErr *faults.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestNamedContainer_AddExternalElement(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewNamed(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)

	external, err := construct.Synthesize(reflect.TypeOf(&sourceSet{}), "docs")
	require.NoError(t, err)
	require.NoError(t, c.Add(external))

	err = c.Add(external)
	var dupErr *faults.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestNamedContainer_RejectsForeignElementType(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewNamed(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)

	rule, err := construct.Synthesize(reflect.TypeOf(&binaryRule{}), "app")
	require.NoError(t, err)

	err = c.Add(rule)
	var argErr *faults.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestPolymorphic_UnregisteredSubtype(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewPolymorphic(namedIface)
	require.NoError(t, err)

	_, err = c.Create("app", reflect.TypeOf(&binaryRule{}))

	var usageErr *faults.InvalidUsageError
	require.ErrorAs(t, err, &usageErr)
	require.Contains(t, err.Error(), "RegisterFactory")
}

func TestPolymorphic_RegisteredSubtypeCreates(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewPolymorphic(namedIface)
	require.NoError(t, err)
	require.NoError(t, c.RegisterFactory(reflect.TypeOf(&binaryRule{}), func(name string) (any, error) {
		return construct.Synthesize(reflect.TypeOf(&binaryRule{}), name)
	}))

	element, err := c.Create("app", reflect.TypeOf(&binaryRule{}))
	require.NoError(t, err)

	rule, ok := element.(*binaryRule)
	require.True(t, ok)
	require.Equal(t, "app", rule.Name())
}

func TestPolymorphic_NameUniqueAcrossSubtypes(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewPolymorphic(namedIface)
	require.NoError(t, err)
	require.NoError(t, c.RegisterFactory(reflect.TypeOf(&binaryRule{}), func(name string) (any, error) {
		return construct.Synthesize(reflect.TypeOf(&binaryRule{}), name)
	}))
	require.NoError(t, c.RegisterFactory(reflect.TypeOf(&libraryRule{}), func(name string) (any, error) {
		return construct.Synthesize(reflect.TypeOf(&libraryRule{}), name)
	}))

	_, err = c.Create("core", reflect.TypeOf(&binaryRule{}))
	require.NoError(t, err)
	_, err = c.Create("core", reflect.TypeOf(&libraryRule{}))

	var dupErr *faults.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestPolymorphic_DuplicateFactoryRegistration(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	c, err := f.NewPolymorphic(namedIface)
	require.NoError(t, err)
	create := func(name string) (any, error) {
		return construct.Synthesize(reflect.TypeOf(&binaryRule{}), name)
	}
	require.NoError(t, c.RegisterFactory(reflect.TypeOf(&binaryRule{}), create))

	err = c.RegisterFactory(reflect.TypeOf(&binaryRule{}), create)

	var argErr *faults.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestNamedList_OrderedAndDuplicatesAllowed(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	l, err := f.NewNamedList(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)

	for _, name := range []string{"b", "a", "b"} {
		e, err := construct.Synthesize(reflect.TypeOf(&sourceSet{}), name)
		require.NoError(t, err)
		require.NoError(t, l.Add(e))
	}

	require.Equal(t, []string{"b", "a", "b"}, l.Names())
}

func TestNamedSet_EnforcesUniqueNames(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	s, err := f.NewNamedSet(reflect.TypeOf(&sourceSet{}))
	require.NoError(t, err)

	first, err := construct.Synthesize(reflect.TypeOf(&sourceSet{}), "main")
	require.NoError(t, err)
	second, err := construct.Synthesize(reflect.TypeOf(&sourceSet{}), "main")
	require.NoError(t, err)

	require.NoError(t, s.Add(first))
	err = s.Add(second)

	var dupErr *faults.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
}

func TestSet_NoNameConceptAndDeduplicates(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t)
	s, err := f.NewSet(reflect.TypeOf(""))
	require.NoError(t, err)

	// Elements without any name never trigger a name check.
	require.NoError(t, s.Add("x"))
	require.NoError(t, s.Add("y"))
	require.NoError(t, s.Add("x"))

	require.Equal(t, 2, s.Size())
	require.Equal(t, []any{"x", "y"}, s.All())
}
