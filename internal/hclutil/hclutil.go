// Package hclutil holds small HCL helpers shared by the manifest layer.
package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

// TypeConstraint converts an HCL expression that spells a type, such as
// `string` or `list(map(number))`, into its cty.Type. Unknown or malformed
// type expressions come back as diagnostics, not panics.
func TypeConstraint(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	typ, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, diags
	}
	return typ, nil
}
