// Package engine executes a stack's dependency graph: it diffs the desired
// descriptors against applied state, creates resources in topological order
// with attribute bindings resolved from recorded outputs, destroys in reverse
// order, and drives the two-phase trust handshake. There is no retry or
// backoff here; provider errors surface verbatim and the run halts on the
// first one, leaving previously created resources intact.
package engine

import (
	"sync"

	"github.com/vk/icebridge/internal/config"
	"github.com/vk/icebridge/internal/dag"
	"github.com/vk/icebridge/internal/naming"
	"github.com/vk/icebridge/internal/registry"
	"github.com/vk/icebridge/internal/state"
	"github.com/zclconf/go-cty/cty"
)

// Engine orchestrates plan, apply, destroy, and trust sync for one stack.
type Engine struct {
	graph    *dag.Graph
	model    *config.Model
	registry *registry.Registry
	store    state.Store
	names    naming.Names
	workers  int

	// mu guards outputs and state writes during concurrent apply.
	mu      sync.Mutex
	outputs map[string]cty.Value
}

// New creates an engine for the given graph and applied-state store. The
// stack's token must already be resolved (persisted or freshly generated).
func New(graph *dag.Graph, model *config.Model, reg *registry.Registry, store state.Store, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		graph:    graph,
		model:    model,
		registry: reg,
		store:    store,
		names:    naming.New(model.Stack.Project, model.Stack.Environment, model.Stack.Token),
		workers:  workers,
		outputs:  make(map[string]cty.Value),
	}
}
