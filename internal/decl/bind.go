package decl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/construct"
	"github.com/vk/buildmodel/internal/container"
	"github.com/vk/buildmodel/internal/ctxlog"
	"github.com/vk/buildmodel/internal/faults"
	"github.com/vk/buildmodel/internal/objects"
	"github.com/vk/buildmodel/internal/typeval"
)

// Object is a live domain object created from a type declaration: a named
// bundle of lazily-evaluated properties.
type Object struct {
	typeName   string
	name       string
	properties map[string]any
	order      []string
}

// Name returns the object's name within its container.
func (o *Object) Name() string { return o.name }

// TypeName returns the declared type this object was created from.
func (o *Object) TypeName() string { return o.typeName }

// Property returns the property object declared under the given name. The
// concrete type is *props.Scalar, *props.List, *props.SetProp or *props.Map
// depending on the declared type.
func (o *Object) Property(name string) (any, bool) {
	p, ok := o.properties[name]
	return p, ok
}

// PropertyNames returns the property names in declaration order.
func (o *Object) PropertyNames() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// BoundContainer is a declared container bound to live storage. Exactly one
// of the variant fields is set, according to Kind.
type BoundContainer struct {
	Decl  *ContainerDecl
	Kind  string
	Named *container.NamedContainer
	List  *container.NamedList
	Set   *container.NamedSet
	Plain *container.Set
}

// Model binds a merged manifest Config to a live object factory. It owns
// the declared containers and creates objects of the declared types.
type Model struct {
	factory *objects.Factory

	types      map[string]*TypeDecl
	typeOrder  []string
	containers map[string]*BoundContainer
	order      []string
}

// Bind validates the declarations against the construction rules and builds
// the declared containers. All declaration errors are reported together.
func Bind(ctx context.Context, cfg *Config, factory *objects.Factory) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	if cfg == nil {
		return nil, &faults.ArgumentError{Argument: "config", Reason: "config must not be nil"}
	}
	if factory == nil {
		return nil, &faults.ArgumentError{Argument: "factory", Reason: "object factory must not be nil"}
	}

	var errs []string
	for _, typeName := range cfg.TypeOrder {
		decl := cfg.Types[typeName]
		for _, propName := range decl.PropertyOrder {
			if err := checkPropertyType(decl.Properties[propName].Type); err != nil {
				errs = append(errs, fmt.Sprintf("type '%s', property '%s': %v", typeName, propName, err))
			}
		}
	}
	for _, contName := range cfg.ContainerOrder {
		decl := cfg.Containers[contName]
		if _, ok := cfg.Types[decl.ElementType]; !ok {
			errs = append(errs, fmt.Sprintf("container '%s': element type '%s' is not declared", contName, decl.ElementType))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("model validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	m := &Model{
		factory:    factory,
		types:      cfg.Types,
		typeOrder:  cfg.TypeOrder,
		containers: make(map[string]*BoundContainer),
		order:      cfg.ContainerOrder,
	}

	elemType := reflect.TypeOf(&Object{})
	for _, contName := range cfg.ContainerOrder {
		decl := cfg.Containers[contName]
		bound := &BoundContainer{Decl: decl, Kind: decl.Kind}
		var err error
		switch decl.Kind {
		case KindNamed:
			typeName := decl.ElementType
			bound.Named, err = factory.NamedContainerWithFactory(elemType, func(name string) (any, error) {
				return m.NewObject(typeName, name)
			})
		case KindList:
			bound.List, err = factory.NamedList(elemType)
		case KindSet:
			bound.Set, err = factory.NamedSet(elemType)
		case KindPlain:
			bound.Plain, err = factory.Set(elemType)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to build container '%s': %w", contName, err)
		}
		m.containers[contName] = bound
	}

	logger.Debug("Model bound.", "types", len(m.types), "containers", len(m.containers))
	return m, nil
}

// NewObject creates a fresh object of a declared type, with one property
// object per property declaration.
func (m *Model) NewObject(typeName, objectName string) (*Object, error) {
	decl, ok := m.types[typeName]
	if !ok {
		return nil, &faults.ArgumentError{Argument: "typeName", Reason: fmt.Sprintf("type '%s' is not declared", typeName)}
	}
	if objectName == "" {
		return nil, &faults.ArgumentError{Argument: "objectName", Reason: "name must not be empty"}
	}

	obj := &Object{
		typeName:   typeName,
		name:       objectName,
		properties: make(map[string]any, len(decl.Properties)),
	}
	for _, propName := range decl.PropertyOrder {
		prop, err := m.newProperty(decl.Properties[propName].Type)
		if err != nil {
			return nil, fmt.Errorf("type '%s', property '%s': %w", typeName, propName, err)
		}
		obj.properties[propName] = prop
		obj.order = append(obj.order, propName)
	}
	return obj, nil
}

// newProperty dispatches a declared property type to the matching property
// constructor, exactly the way an API caller would have to.
func (m *Model) newProperty(t cty.Type) (any, error) {
	switch {
	case t.IsListType():
		return m.factory.ListProperty(t.ElementType())
	case t.IsSetType():
		return m.factory.SetProperty(t.ElementType())
	case t.IsMapType():
		return m.factory.MapProperty(cty.String, t.ElementType())
	default:
		return m.factory.Property(t)
	}
}

// checkPropertyType rejects property declarations the construction surface
// would reject, so manifest authors get the same diagnostics as API
// callers.
func checkPropertyType(t cty.Type) error {
	if t.IsListType() || t.IsSetType() || t.IsMapType() {
		return nil
	}
	_, err := typeval.ValidateScalar(t)
	return err
}

// Types returns the declared type names in declaration order.
func (m *Model) Types() []string {
	out := make([]string, len(m.typeOrder))
	copy(out, m.typeOrder)
	return out
}

// Type returns a type declaration by name.
func (m *Model) Type(name string) (*TypeDecl, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Containers returns the declared container names in declaration order.
func (m *Model) Containers() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Container returns a bound container by name.
func (m *Model) Container(name string) (*BoundContainer, bool) {
	c, ok := m.containers[name]
	return c, ok
}

// Container elements must be named.
var _ construct.Named = (*Object)(nil)
