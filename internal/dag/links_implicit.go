package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/registry"
)

// parsedResourceRef holds information extracted from an HCL traversal.
type parsedResourceRef struct {
	Type      string // e.g. "aws_s3_bucket"
	Name      string // e.g. "landing"
	Attribute string // the attribute accessed, or "" for a bare reference
}

// parseResourceTraversal analyzes an HCL traversal to extract a resource
// reference. A valid reference is of the form
// `resource.<type>.<name>.<attribute>`.
func parseResourceTraversal(traversal hcl.Traversal) (*parsedResourceRef, bool) {
	if len(traversal) < 3 || traversal.RootName() != "resource" {
		return nil, false
	}

	typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
	nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
	if !typeOk || !nameOk {
		return nil, false
	}

	ref := &parsedResourceRef{Type: typeAttr.Name, Name: nameAttr.Name}
	if len(traversal) > 3 {
		if attr, ok := traversal[3].(hcl.TraverseAttr); ok {
			ref.Attribute = attr.Name
		}
	}
	return ref, true
}

// linkImplicitDeps parses an expression for variable traversals to create
// dependency links. Every resource reference must resolve to a declared
// descriptor, and every attribute accessed must be an output the referenced
// type actually produces - a guessed attribute is a definition error.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)

	for _, traversal := range expr.Variables() {
		ref, ok := parseResourceTraversal(traversal)
		if !ok {
			// Non-resource roots (e.g. `stack.*`) carry no ordering.
			continue
		}

		depID := fmt.Sprintf("resource.%s.%s", ref.Type, ref.Name)
		depNode, found := graph.Nodes[depID]
		if !found {
			return fmt.Errorf("implicit dependency error in '%s': referenced resource '%s' does not exist", node.ID, depID)
		}
		if depNode == node {
			return fmt.Errorf("implicit dependency error in '%s': self-reference not allowed", node.ID)
		}

		if err := validateOutputReference(ref, depNode, r); err != nil {
			return fmt.Errorf("in '%s': %w", node.ID, err)
		}

		if _, exists := node.Deps[depID]; !exists {
			logger.Debug("Linking implicit dependency.", "from", node.ID, "to", depID)
			node.Deps[depID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}

// validateOutputReference checks that the attribute accessed on a referenced
// resource is an output attribute its registered type declares.
func validateOutputReference(ref *parsedResourceRef, depNode *Node, r *registry.Registry) error {
	if ref.Attribute == "" {
		return fmt.Errorf("reference to '%s' must name an output attribute, not the whole resource", depNode.ID)
	}
	def, ok := r.Types[depNode.Resource.Type]
	if !ok {
		return fmt.Errorf("referenced resource '%s' has unregistered type '%s'", depNode.ID, depNode.Resource.Type)
	}
	for _, out := range def.Outputs {
		if out == ref.Attribute {
			return nil
		}
	}
	return fmt.Errorf("'%s' does not produce output attribute '%s'", depNode.ID, ref.Attribute)
}
