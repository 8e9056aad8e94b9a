package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/dag"
)

// Apply computes a plan and executes it. Independent resources are created
// concurrently by a worker pool; a resource starts only once the outputs of
// all its dependencies are recorded. The first failure cancels the run;
// everything already created stays created and stays in state.
func (e *Engine) Apply(ctx context.Context) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	plan, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if !plan.HasChanges() {
		logger.Info("No changes. Stack matches applied state.")
		return plan, nil
	}

	// Orphaned state records go first, newest creation first, so dependents
	// recorded after their dependencies are removed before them.
	for _, change := range plan.Changes {
		if change.Action != ActionDelete {
			continue
		}
		if err := e.destroyRecord(ctx, change.Address); err != nil {
			return plan, err
		}
	}

	actions := make(map[string]Action, len(plan.Changes))
	for _, change := range plan.Changes {
		actions[change.Address] = change.Action
	}

	// Seed the binding context with outputs of resources that are not
	// changing; everything else is recorded as it is created.
	records, err := e.store.List()
	if err != nil {
		return plan, err
	}
	e.mu.Lock()
	e.outputs = make(map[string]cty.Value, len(records))
	for _, rec := range records {
		if actions[rec.Address] == ActionNoop {
			e.outputs[rec.Address] = rec.Outputs
		}
	}
	e.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	depCount := make(map[string]int, len(e.graph.Nodes))
	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	var wg sync.WaitGroup
	wg.Add(len(e.graph.Nodes))

	var errMu sync.Mutex
	var firstErr error
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
		cancel()
	}

	var countMu sync.Mutex
	for id, node := range e.graph.Nodes {
		depCount[id] = len(node.Deps)
		if len(node.Deps) == 0 {
			readyChan <- node
		}
	}

	logger.Info("🚀 Starting apply.", "workers", e.workers, "resources", len(e.graph.Nodes))
	for i := 0; i < e.workers; i++ {
		go e.worker(runCtx, readyChan, depCount, &countMu, &wg, actions, fail)
	}

	wg.Wait()
	close(readyChan)

	if firstErr != nil {
		return plan, fmt.Errorf("apply halted: %w", firstErr)
	}

	if len(plan.TrustPending) > 0 || e.hasTrustPendingTypes(actions) {
		logger.Warn("Apply finished with a pending trust relationship. Run sync-trust to complete the handshake.")
	} else {
		logger.Info("🏁 Apply finished.")
	}
	return plan, nil
}

// worker is the core processing loop for a single concurrent apply worker.
func (e *Engine) worker(ctx context.Context, readyChan chan *dag.Node, depCount map[string]int, countMu *sync.Mutex, wg *sync.WaitGroup, actions map[string]Action, fail func(error)) {
	for node := range readyChan {
		var err error
		if ctx.Err() == nil {
			switch actions[node.ID] {
			case ActionNoop:
				// Outputs were seeded from state; nothing to execute.
			case ActionCreate, ActionReplace:
				err = e.applyNode(ctx, node, actions[node.ID])
			}
		}
		if err != nil {
			fail(err)
		}

		// Unlock dependents even when skipped or failed so the pool drains;
		// skipped dependents see the cancelled context and do nothing.
		countMu.Lock()
		for depID, dep := range node.Dependents {
			depCount[depID]--
			if depCount[depID] == 0 {
				readyChan <- dep
			}
		}
		countMu.Unlock()
		wg.Done()
	}
}

// hasTrustPendingTypes reports whether this apply created a resource whose
// type leaves trust pending.
func (e *Engine) hasTrustPendingTypes(actions map[string]Action) bool {
	for id, node := range e.graph.Nodes {
		if actions[id] == ActionNoop {
			continue
		}
		if def, ok := e.registry.Types[node.Resource.Type]; ok && def.TrustPending {
			return true
		}
	}
	return false
}
