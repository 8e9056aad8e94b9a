package dag

import (
	"github.com/vk/icebridge/internal/config"
)

// Graph is the dependency graph of a stack: one node per resource descriptor.
type Graph struct {
	// Nodes stores all nodes in the graph, keyed by resource address.
	Nodes map[string]*Node
}

// Node represents a single resource descriptor in the graph.
type Node struct {
	// ID is the resource address, e.g. "resource.aws_s3_bucket.landing".
	ID string
	// Resource is the descriptor this node was created from.
	Resource *config.Resource
	// Deps holds the set of nodes this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the set of nodes that depend on this node (successors).
	Dependents map[string]*Node
}
