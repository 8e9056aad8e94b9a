package engine

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// The storage integration discloses its generated identity only after
// creation; these are the output attributes the sync pass reads back.
const (
	integrationResourceType = "snowflake_storage_integration"
	attrIAMUserARN          = "iam_user_arn"
	attrExternalID          = "external_id"
)

// SyncTrust is phase two of the cross-cloud trust handshake: read the
// storage integration's generated IAM user and external id from applied
// state and patch every trust-pending resource with them. Until this has
// run, the warehouse cannot assume the role and nothing loads.
func (e *Engine) SyncTrust(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	records, err := e.store.List()
	if err != nil {
		return err
	}

	var pending []string
	var principalARN, externalID string
	for _, rec := range records {
		if rec.TrustPending {
			pending = append(pending, rec.Address)
		}
		if rec.Type == integrationResourceType {
			principalARN = outputString(rec.Outputs, attrIAMUserARN)
			externalID = outputString(rec.Outputs, attrExternalID)
		}
	}

	if len(pending) == 0 {
		logger.Info("No pending trust relationships. Nothing to sync.")
		return nil
	}
	if principalARN == "" || externalID == "" {
		return fmt.Errorf("trust sync needs an applied '%s' with '%s' and '%s' outputs; apply the stack first",
			integrationResourceType, attrIAMUserARN, attrExternalID)
	}

	for _, address := range pending {
		rec, err := e.store.Get(address)
		if err != nil {
			return err
		}
		def, ok := e.registry.Types[rec.Type]
		if !ok || def.SyncTrustFn == nil {
			return fmt.Errorf("resource '%s' is trust-pending but type '%s' has no sync handler", address, rec.Type)
		}

		logger.Info("🔗 Syncing trust relationship.", "resource", address)
		out, err := callSyncTrust(ctx, def.SyncTrustFn, rec.Outputs, principalARN, externalID)
		if err != nil {
			return fmt.Errorf("failed to sync trust for '%s': %w", address, err)
		}

		// Patch the outputs first, then clear the flag. If the process dies
		// in between, the record stays pending and the next sync re-patches.
		rec.Outputs = out
		if err := e.store.Upsert(rec); err != nil {
			return err
		}
		if err := e.store.SetTrustPending(address, false); err != nil {
			return err
		}
	}

	logger.Info("✅ Trust handshake complete.", "resources", len(pending))
	return nil
}

// outputString extracts a string attribute from an output object, or "".
func outputString(out cty.Value, name string) string {
	if !out.Type().IsObjectType() || !out.Type().HasAttribute(name) {
		return ""
	}
	val := out.GetAttr(name)
	if val.IsNull() || val.Type() != cty.String {
		return ""
	}
	return val.AsString()
}
