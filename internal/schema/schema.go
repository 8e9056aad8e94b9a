package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Primary Stack Structures ---

// ResourceArgs represents the content of the 'arguments' block within a resource.
type ResourceArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Stack represents the single `stack` block of a stack definition. It carries
// the identity used to derive every generated name.
type Stack struct {
	Project     string `hcl:"project"`
	Environment string `hcl:"environment"`
	Token       string `hcl:"token,optional"`
	Region      string `hcl:"region,optional"`
}

// Resource represents a `resource` block from a user's stack file. It is a
// declarative descriptor of a single cloud object.
type Resource struct {
	Type      string        `hcl:"resource_type,label"`
	Name      string        `hcl:"instance_name,label"`
	Arguments *ResourceArgs `hcl:"arguments,block"`
	DependsOn []string      `hcl:"depends_on,optional"`
}

// Output represents an `output` block re-exporting an identifier for
// downstream SQL consumers.
type Output struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// StackConfig represents the top-level structure of a stack file, containing
// the stack identity, all resource descriptors, and exported outputs.
type StackConfig struct {
	Stack     *Stack      `hcl:"stack,block"`
	Resources []*Resource `hcl:"resource,block"`
	Outputs   []*Output   `hcl:"output,block"`
	Body      hcl.Body    `hcl:",remain"`
}
