package dag

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/icebridge/internal/ctxlog"
)

// linkExplicitDeps wires edges declared via depends_on. Entries may be full
// addresses ("resource.aws_s3_bucket.landing") or the shorthand without the
// "resource." prefix.
func linkExplicitDeps(ctx context.Context, node *Node, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)

	for _, ref := range node.Resource.DependsOn {
		depID := ref
		if !strings.HasPrefix(depID, "resource.") {
			depID = "resource." + depID
		}

		depNode, ok := graph.Nodes[depID]
		if !ok {
			return fmt.Errorf("explicit dependency error in '%s': '%s' does not exist", node.ID, ref)
		}
		if depNode == node {
			return fmt.Errorf("explicit dependency error in '%s': self-reference not allowed", node.ID)
		}

		if _, exists := node.Deps[depID]; !exists {
			logger.Debug("Linking explicit dependency.", "from", node.ID, "to", depID)
			node.Deps[depID] = depNode
			depNode.Dependents[node.ID] = node
		}
	}
	return nil
}
