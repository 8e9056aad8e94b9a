package engine

import (
	"context"

	"github.com/vk/icebridge/internal/ctxlog"
)

// Destroy tears down the entire stack in reverse topological order:
// dependents before their dependencies, then any state records whose
// descriptors are already gone from the definition.
func (e *Engine) Destroy(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	order, err := e.graph.ReverseTopoOrder()
	if err != nil {
		return err
	}

	logger.Info("🔥 Destroying stack.", "resources", len(order))
	for _, node := range order {
		if err := e.destroyRecord(ctx, node.ID); err != nil {
			return err
		}
	}

	// Orphans: recorded resources with no graph node, newest first.
	records, err := e.store.List()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, ok := e.graph.Nodes[rec.Address]; ok {
			continue
		}
		if err := e.destroyRecord(ctx, rec.Address); err != nil {
			return err
		}
	}

	logger.Info("🏁 Destroy finished.")
	return nil
}
