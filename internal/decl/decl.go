// Package decl loads model manifests: HCL files that declare the
// build-script-visible object model. A `type` block declares a domain object
// type and its typed properties; a `container` block declares a collection
// of one declared type. Declarations are format-agnostic values that a
// Model later binds against a live object factory.
package decl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/buildmodel/internal/ctxlog"
	"github.com/vk/buildmodel/internal/hclutil"
)

// Container kinds accepted in a `container` block.
const (
	KindNamed = "named"
	KindList  = "list"
	KindSet   = "set"
	KindPlain = "plain"
)

// PropertyDecl is the parsed declaration of a single typed property.
type PropertyDecl struct {
	Name        string
	Type        cty.Type
	Description string
}

// TypeDecl is the parsed declaration of a domain object type.
type TypeDecl struct {
	Name          string
	Description   string
	Properties    map[string]PropertyDecl
	PropertyOrder []string
}

// ContainerDecl is the parsed declaration of a model container.
type ContainerDecl struct {
	Name        string
	ElementType string
	Kind        string
}

// Config is the merged, format-agnostic content of a set of manifests.
type Config struct {
	Types          map[string]*TypeDecl
	TypeOrder      []string
	Containers     map[string]*ContainerDecl
	ContainerOrder []string
}

// NewConfig creates an empty Config.
func NewConfig() *Config {
	return &Config{
		Types:      make(map[string]*TypeDecl),
		Containers: make(map[string]*ContainerDecl),
	}
}

// rootSchema is the top-level structure of a manifest file.
type rootSchema struct {
	Types      []*hclTypeBlock      `hcl:"type,block"`
	Containers []*hclContainerBlock `hcl:"container,block"`
}

type hclTypeBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type hclContainerBlock struct {
	Name        string `hcl:"name,label"`
	ElementType string `hcl:"element_type"`
	Kind        string `hcl:"kind,optional"`
}

// typeBodySchema describes the body of a `type` block.
var typeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "property", LabelNames: []string{"name"}},
	},
}

// propertyBodySchema describes the body of a `property` block.
var propertyBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
	},
}

// ParseFile decodes one manifest file into a Config fragment.
func ParseFile(ctx context.Context, hclFile *hcl.File, filePath string) (*Config, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing model manifest.", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	root := &rootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, root)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	cfg := NewConfig()

	for _, block := range root.Types {
		decl, typeDiags := parseTypeBlock(block)
		allDiags = append(allDiags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}
		if _, exists := cfg.Types[decl.Name]; exists {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate type declaration",
				Detail:   fmt.Sprintf("A type named '%s' has already been declared in this file.", decl.Name),
			})
			continue
		}
		cfg.Types[decl.Name] = decl
		cfg.TypeOrder = append(cfg.TypeOrder, decl.Name)
	}

	for _, block := range root.Containers {
		decl, contDiags := parseContainerBlock(block)
		allDiags = append(allDiags, contDiags...)
		if contDiags.HasErrors() {
			continue
		}
		if _, exists := cfg.Containers[decl.Name]; exists {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate container declaration",
				Detail:   fmt.Sprintf("A container named '%s' has already been declared in this file.", decl.Name),
			})
			continue
		}
		cfg.Containers[decl.Name] = decl
		cfg.ContainerOrder = append(cfg.ContainerOrder, decl.Name)
	}

	logger.Debug("Parsed model manifest.", "file_path", filePath, "types", len(cfg.Types), "containers", len(cfg.Containers))
	return cfg, allDiags
}

func parseTypeBlock(block *hclTypeBlock) (*TypeDecl, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	content, contentDiags := block.Body.Content(typeBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	decl := &TypeDecl{
		Name:       block.Name,
		Properties: make(map[string]PropertyDecl),
	}

	if attr, exists := content.Attributes["description"]; exists {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &decl.Description)...)
	}

	for _, propBlock := range content.Blocks.OfType("property") {
		// The schema guarantees one label.
		propName := propBlock.Labels[0]
		if _, exists := decl.Properties[propName]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate property definition",
				Detail:   fmt.Sprintf("A property named '%s' has already been defined on type '%s'.", propName, decl.Name),
				Subject:  &propBlock.DefRange,
			})
			continue
		}

		propContent, propDiags := propBlock.Body.Content(propertyBodySchema)
		diags = append(diags, propDiags...)
		if propDiags.HasErrors() {
			continue
		}

		typeAttr, exists := propContent.Attributes["type"]
		if !exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing property type",
				Detail:   fmt.Sprintf("Property '%s' on type '%s' must declare a 'type' attribute.", propName, decl.Name),
				Subject:  &propBlock.DefRange,
			})
			continue
		}
		propType, typeDiags := hclutil.TypeConstraint(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		prop := PropertyDecl{Name: propName, Type: propType}
		if attr, ok := propContent.Attributes["description"]; ok {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &prop.Description)...)
		}

		decl.Properties[propName] = prop
		decl.PropertyOrder = append(decl.PropertyOrder, propName)
	}

	return decl, diags
}

func parseContainerBlock(block *hclContainerBlock) (*ContainerDecl, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	kind := block.Kind
	if kind == "" {
		kind = KindNamed
	}
	switch kind {
	case KindNamed, KindList, KindSet, KindPlain:
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid container kind",
			Detail:   fmt.Sprintf("Container '%s' declares kind '%s'; expected one of 'named', 'list', 'set' or 'plain'.", block.Name, kind),
		})
		return nil, diags
	}

	return &ContainerDecl{
		Name:        block.Name,
		ElementType: block.ElementType,
		Kind:        kind,
	}, diags
}
