// Package objects exposes the single construction surface of the
// configuration model: properties, named values, generic instances, domain
// object containers, and filesystem-valued properties. It composes the
// validator, instantiators, and factories; nothing below it depends on it.
package objects

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/construct"
	"github.com/vk/buildmodel/internal/container"
	"github.com/vk/buildmodel/internal/props"
)

// Config carries the collaborators a Factory delegates to. Zero fields are
// filled with working defaults, so a one-shot tool can start from an empty
// Config while a build embeds its own host and engines.
type Config struct {
	// Host gates property mutation for every property the factory builds.
	Host props.Host
	// Constructors is the registry behind NewInstance and default container
	// element creation.
	Constructors *construct.Registry
	// NamedObjects owns the canonical named-value cache. Its lifetime is the
	// cache scope; supply one per build invocation.
	NamedObjects *construct.NamedInstantiator
	// FileProperties and FileCollections build the filesystem-valued
	// properties; calls are forwarded to them untouched.
	FileProperties  FilePropertyFactory
	FileCollections FileCollectionFactory
}

// Factory is the composition facade over the model's construction
// components.
type Factory struct {
	host       props.Host
	ctors      *construct.Registry
	named      *construct.NamedInstantiator
	containers *container.Factory
	fileProps  FilePropertyFactory
	fileColls  FileCollectionFactory
}

// New builds a Factory from the given collaborators, defaulting any that
// are missing.
func New(cfg Config) *Factory {
	host := cfg.Host
	if host == nil {
		host = props.NopHost
	}
	ctors := cfg.Constructors
	if ctors == nil {
		ctors = construct.NewRegistry()
	}
	named := cfg.NamedObjects
	if named == nil {
		named = construct.NewNamedInstantiator()
	}
	containers, _ := container.NewFactory(ctors)
	fileProps := cfg.FileProperties
	if fileProps == nil {
		fileProps = defaultFileFactory{host: host}
	}
	fileColls := cfg.FileCollections
	if fileColls == nil {
		fileColls = defaultFileFactory{host: host}
	}
	return &Factory{
		host:       host,
		ctors:      ctors,
		named:      named,
		containers: containers,
		fileProps:  fileProps,
		fileColls:  fileColls,
	}
}

// Constructors returns the registry behind NewInstance, so the component
// that knows how to build a type can register its constructor.
func (f *Factory) Constructors() *construct.Registry { return f.ctors }

// Named returns the canonical named value of the given type for the name.
func (f *Factory) Named(t reflect.Type, name string) (construct.Named, error) {
	return f.named.Named(t, name)
}

// NewInstance builds an instance of the type through its registered
// constructor.
func (f *Factory) NewInstance(t reflect.Type, args ...any) (any, error) {
	return f.ctors.NewInstance(t, args...)
}

// Property constructs a scalar property of the given element type,
// rejecting collection-like and filesystem-like types.
func (f *Factory) Property(t cty.Type) (*props.Scalar, error) {
	return props.NewScalar(f.host, t)
}

// ListProperty constructs a list property of the given element type.
func (f *Factory) ListProperty(elem cty.Type) (*props.List, error) {
	return props.NewList(f.host, elem)
}

// SetProperty constructs a set property of the given element type.
func (f *Factory) SetProperty(elem cty.Type) (*props.SetProp, error) {
	return props.NewSet(f.host, elem)
}

// MapProperty constructs a map property with the given key and value types.
func (f *Factory) MapProperty(key, val cty.Type) (*props.Map, error) {
	return props.NewMap(f.host, key, val)
}

// DirectoryProperty forwards to the file property factory.
func (f *Factory) DirectoryProperty() (*props.Scalar, error) {
	return f.fileProps.DirectoryProperty()
}

// FileProperty forwards to the file property factory.
func (f *Factory) FileProperty() (*props.Scalar, error) {
	return f.fileProps.FileProperty()
}

// FileCollection forwards to the file collection factory.
func (f *Factory) FileCollection() (*props.List, error) {
	return f.fileColls.FileCollection()
}

// FileTree forwards to the file collection factory.
func (f *Factory) FileTree() (*props.List, error) {
	return f.fileColls.FileTree()
}

// NamedContainer constructs a name-keyed container with the default element
// creation strategy.
func (f *Factory) NamedContainer(elemType reflect.Type) (*container.NamedContainer, error) {
	return f.containers.NewNamed(elemType)
}

// NamedContainerWithFactory constructs a name-keyed container delegating
// element creation to the given factory function.
func (f *Factory) NamedContainerWithFactory(elemType reflect.Type, create func(name string) (any, error)) (*container.NamedContainer, error) {
	return f.containers.NewNamedWithFactory(elemType, create)
}

// PolymorphicContainer constructs an extensible name-keyed container.
func (f *Factory) PolymorphicContainer(elemType reflect.Type) (*container.PolymorphicContainer, error) {
	return f.containers.NewPolymorphic(elemType)
}

// NamedList constructs an ordered container of named elements.
func (f *Factory) NamedList(elemType reflect.Type) (*container.NamedList, error) {
	return f.containers.NewNamedList(elemType)
}

// NamedSet constructs a name-keyed container without creation capability.
func (f *Factory) NamedSet(elemType reflect.Type) (*container.NamedSet, error) {
	return f.containers.NewNamedSet(elemType)
}

// Set constructs a plain, unnamed set of elements.
func (f *Factory) Set(elemType reflect.Type) (*container.Set, error) {
	return f.containers.NewSet(elemType)
}
