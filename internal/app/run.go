package app

import (
	"context"
	"fmt"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/engine"
)

// Run executes the verb selected on the command line.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "verb", appConfig.Verb)

	var err error
	switch appConfig.Verb {
	case VerbPlan:
		err = a.runPlan(ctx)
	case VerbApply:
		_, err = a.engine.Apply(ctx)
	case VerbDestroy:
		err = a.engine.Destroy(ctx)
	case VerbOutputs:
		err = a.runOutputs(ctx)
	case VerbSyncTrust:
		err = a.engine.SyncTrust(ctx)
	default:
		err = fmt.Errorf("unknown command %q", appConfig.Verb)
	}
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// runPlan prints a human-readable diff of the stack against applied state.
func (a *App) runPlan(ctx context.Context) error {
	plan, err := a.engine.Plan(ctx)
	if err != nil {
		return err
	}

	if !plan.HasChanges() {
		a.logger.Info("✅ No changes. Stack matches applied state.")
	} else {
		for _, c := range plan.Changes {
			if c.Action == engine.ActionNoop {
				continue
			}
			fmt.Fprintf(a.outW, "%s %s (%s)\n", planMarker(c.Action), c.Address, c.Reason)
		}
		create, replace, del := plan.Counts()
		fmt.Fprintf(a.outW, "Plan: %d to create, %d to replace, %d to delete.\n", create, replace, del)
	}

	if len(plan.TrustPending) > 0 {
		a.logger.Warn("Trust sync pending.", "addresses", plan.TrustPending)
	}
	return nil
}

func planMarker(action engine.Action) string {
	switch action {
	case engine.ActionCreate:
		return "+"
	case engine.ActionReplace:
		return "~"
	case engine.ActionDelete:
		return "-"
	}
	return " "
}

// runOutputs prints the stack's output values and the load command template.
func (a *App) runOutputs(ctx context.Context) error {
	values, pending, err := a.engine.Outputs(ctx)
	if err != nil {
		return err
	}

	for _, v := range values {
		fmt.Fprintf(a.outW, "%s = %s\n", v.Name, v.Value)
	}
	if cmd := engine.CopyCommand(values); cmd != "" {
		fmt.Fprintf(a.outW, "\n%s\n", cmd)
	}
	if len(pending) > 0 {
		a.logger.Warn("Trust sync pending; loads will fail until 'sync-trust' runs.", "addresses", pending)
	}
	return nil
}
