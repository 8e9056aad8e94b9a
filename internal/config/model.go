package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of an entire stack:
// its identity, every resource descriptor, and the exported output surface.
type Model struct {
	Stack     *Stack
	Resources []*Resource
	Outputs   []*Output
}

// Stack carries the identity of a stack instantiation. Project and
// Environment scope every generated name; Token is the uniqueness suffix for
// globally scoped names and may be empty (the engine then persists one).
type Stack struct {
	Project     string
	Environment string
	Token       string
	Region      string
}

// Resource is the format-agnostic representation of a `resource` block.
// Arguments keeps both views of the block body: the per-attribute expression
// map used for dependency analysis, and the raw body used for typed decoding
// at apply time.
type Resource struct {
	Type      string
	Name      string
	Arguments map[string]hcl.Expression
	ArgsBody  hcl.Body
	DependsOn []string
}

// Address returns the canonical node address of a resource,
// e.g. "resource.aws_s3_bucket.landing".
func (r *Resource) Address() string {
	return fmt.Sprintf("resource.%s.%s", r.Type, r.Name)
}

// Output is the format-agnostic representation of an `output` block.
type Output struct {
	Name  string
	Value hcl.Expression
}
