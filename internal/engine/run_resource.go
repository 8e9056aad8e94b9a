package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/dag"
	"github.com/vk/icebridge/internal/state"
)

// applyNode creates (or replaces) a single resource: decode its arguments
// against recorded outputs, dispatch the create handler, verify the declared
// output contract, and record the result.
func (e *Engine) applyNode(ctx context.Context, node *dag.Node, action Action) error {
	logger := ctxlog.FromContext(ctx).With("resource", node.ID)

	def, ok := e.registry.Types[node.Resource.Type]
	if !ok {
		return fmt.Errorf("unknown resource type '%s'", node.Resource.Type)
	}

	e.mu.Lock()
	evalCtx := e.buildEvalContext(e.outputs)
	e.mu.Unlock()

	if action == ActionReplace {
		prior, err := e.store.Get(node.ID)
		if err != nil {
			return err
		}
		if prior != nil {
			logger.Info("🔥 Destroying resource for replacement")
			if err := callDestroy(ctx, def.DestroyFn, prior.Outputs); err != nil {
				return fmt.Errorf("failed to destroy '%s' for replacement: %w", node.ID, err)
			}
			if err := e.store.Delete(node.ID); err != nil {
				return err
			}
		}
	}

	logger.Debug("Decoding resource arguments.")
	input := def.NewInput()
	if node.Resource.ArgsBody != nil {
		if diags := gohcl.DecodeBody(node.Resource.ArgsBody, evalCtx, input); diags.HasErrors() {
			return fmt.Errorf("failed to decode arguments of '%s': %w", node.ID, diags)
		}
	}

	logger.Info("▶️ Creating resource")
	out, err := callCreate(ctx, def.CreateFn, input)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", node.ID, err)
	}
	if err := checkOutputContract(node.ID, out, def.Outputs); err != nil {
		return err
	}

	args, err := resolveArgs(node.Resource, evalCtx)
	if err != nil {
		return err
	}
	hash, err := hashArgs(args)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.outputs[node.ID] = out
	if err := e.store.Upsert(&state.Record{
		Address:      node.ID,
		Type:         node.Resource.Type,
		ArgsHash:     hash,
		Outputs:      out,
		TrustPending: def.TrustPending,
	}); err != nil {
		return err
	}

	logger.Info("✅ Resource created")
	return nil
}

// destroyRecord destroys a resource known only from state (its descriptor is
// gone from the definition) and removes the record.
func (e *Engine) destroyRecord(ctx context.Context, address string) error {
	logger := ctxlog.FromContext(ctx).With("resource", address)

	rec, err := e.store.Get(address)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	def, ok := e.registry.Types[rec.Type]
	if !ok {
		return fmt.Errorf("state holds resource '%s' of unregistered type '%s'", address, rec.Type)
	}

	logger.Info("🔥 Destroying resource")
	if err := callDestroy(ctx, def.DestroyFn, rec.Outputs); err != nil {
		return fmt.Errorf("failed to destroy '%s': %w", address, err)
	}
	return e.store.Delete(address)
}

// checkOutputContract verifies the created output object carries every
// attribute the type declares.
func checkOutputContract(address string, out cty.Value, declared []string) error {
	if !out.Type().IsObjectType() {
		return fmt.Errorf("create handler for '%s' returned %s, not an object", address, out.Type().FriendlyName())
	}
	for _, name := range declared {
		if !out.Type().HasAttribute(name) {
			return fmt.Errorf("create handler for '%s' omitted declared output '%s'", address, name)
		}
	}
	return nil
}

// callCreate dispatches a create handler of signature
// func(ctx context.Context, input *T) (cty.Value, error).
func callCreate(ctx context.Context, fn any, input any) (cty.Value, error) {
	results := reflect.ValueOf(fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(input),
	})
	out, _ := results[0].Interface().(cty.Value)
	if errResult := results[1].Interface(); errResult != nil {
		return cty.NilVal, errResult.(error)
	}
	return out, nil
}

// callDestroy dispatches a destroy handler of signature
// func(ctx context.Context, prior cty.Value) error.
func callDestroy(ctx context.Context, fn any, prior cty.Value) error {
	results := reflect.ValueOf(fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(prior),
	})
	if errResult := results[0].Interface(); errResult != nil {
		return errResult.(error)
	}
	return nil
}

// callSyncTrust dispatches a trust sync handler of signature
// func(ctx context.Context, prior cty.Value, principalARN, externalID string) (cty.Value, error).
func callSyncTrust(ctx context.Context, fn any, prior cty.Value, principalARN, externalID string) (cty.Value, error) {
	results := reflect.ValueOf(fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(prior),
		reflect.ValueOf(principalARN),
		reflect.ValueOf(externalID),
	})
	out, _ := results[0].Interface().(cty.Value)
	if errResult := results[1].Interface(); errResult != nil {
		return cty.NilVal, errResult.(error)
	}
	return out, nil
}
