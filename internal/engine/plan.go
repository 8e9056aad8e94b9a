package engine

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// Action is a single planned operation on one resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionReplace Action = "replace"
	ActionNoop    Action = "noop"
	ActionDelete  Action = "delete"
)

// Change describes the planned action for one resource address.
type Change struct {
	Address string
	Type    string
	Action  Action
	Reason  string
}

// Plan is the ordered set of operations an apply would perform. A stack whose
// definition matches applied state plans zero operations.
type Plan struct {
	// Changes lists graph resources in topological order, then deletions of
	// state records no longer present in the definition.
	Changes []Change
	// TrustPending lists addresses whose trust relationship still awaits a
	// sync pass; surfaced as a warning, not an error.
	TrustPending []string
}

// HasChanges reports whether the plan performs any operation.
func (p *Plan) HasChanges() bool {
	for _, c := range p.Changes {
		if c.Action != ActionNoop {
			return true
		}
	}
	return false
}

// Counts tallies the plan by action.
func (p *Plan) Counts() (create, replace, del int) {
	for _, c := range p.Changes {
		switch c.Action {
		case ActionCreate:
			create++
		case ActionReplace:
			replace++
		case ActionDelete:
			del++
		}
	}
	return
}

// Plan diffs the stack definition against applied state. A resource is
// replaced when its resolved arguments hash differently than recorded, or
// when any dependency is itself changing (its outputs, and therefore this
// resource's bindings, may change).
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	order, err := e.graph.TopoOrder()
	if err != nil {
		return nil, err
	}

	records, err := e.store.List()
	if err != nil {
		return nil, err
	}
	recorded := make(map[string]struct{}, len(records))
	known := make(map[string]cty.Value, len(records))
	hashes := make(map[string]string, len(records))
	for _, rec := range records {
		recorded[rec.Address] = struct{}{}
		known[rec.Address] = rec.Outputs
		hashes[rec.Address] = rec.ArgsHash
	}

	plan := &Plan{}
	changing := make(map[string]bool, len(order))

	for _, node := range order {
		change := Change{Address: node.ID, Type: node.Resource.Type}

		dirtyDep := ""
		for depID := range node.Deps {
			if changing[depID] {
				dirtyDep = depID
				break
			}
		}

		_, exists := recorded[node.ID]
		switch {
		case dirtyDep != "" && !exists:
			change.Action = ActionCreate
			change.Reason = fmt.Sprintf("depends on '%s'", dirtyDep)
		case dirtyDep != "":
			change.Action = ActionReplace
			change.Reason = fmt.Sprintf("dependency '%s' is changing", dirtyDep)
		case !exists:
			change.Action = ActionCreate
			change.Reason = "not in state"
		default:
			evalCtx := e.buildEvalContext(known)
			args, err := resolveArgs(node.Resource, evalCtx)
			if err != nil {
				return nil, err
			}
			hash, err := hashArgs(args)
			if err != nil {
				return nil, err
			}
			if hash != hashes[node.ID] {
				change.Action = ActionReplace
				change.Reason = "arguments changed"
			} else {
				change.Action = ActionNoop
			}
		}

		changing[node.ID] = change.Action != ActionNoop
		plan.Changes = append(plan.Changes, change)
	}

	// State records with no matching descriptor are torn down, newest first.
	for _, rec := range records {
		if _, ok := e.graph.Nodes[rec.Address]; !ok {
			plan.Changes = append(plan.Changes, Change{
				Address: rec.Address,
				Type:    rec.Type,
				Action:  ActionDelete,
				Reason:  "not in definition",
			})
		}
		if rec.TrustPending {
			plan.TrustPending = append(plan.TrustPending, rec.Address)
		}
	}

	create, replace, del := plan.Counts()
	logger.Debug("Plan computed.", "create", create, "replace", replace, "delete", del)
	return plan, nil
}
