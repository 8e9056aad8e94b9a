package awsiam

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/policy"
)

// RoleInput defines the arguments for an aws_iam_role resource.
type RoleInput struct {
	Name string `hcl:"name"`
}

// trust status values carried in role outputs.
const (
	TrustStatusPending = "pending"
	TrustStatusSynced  = "synced"
)

// CreateRole creates the loader role with the placeholder trust document.
// The real principal and external id are not knowable yet; SyncRoleTrust
// closes that edge after the storage integration exists.
func CreateRole(ctx context.Context, input *RoleInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("role", input.Name)

	trustDoc, err := policy.PlaceholderTrust()
	if err != nil {
		return cty.NilVal, err
	}

	cli, err := iamClient(ctx)
	if err != nil {
		return cty.NilVal, err
	}

	logger.Info("Creating IAM role with placeholder trust.")
	out, err := cli.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 awsv2.String(input.Name),
		AssumeRolePolicyDocument: awsv2.String(trustDoc),
		Description:              awsv2.String("Assumed by the warehouse's storage integration to read the landing bucket."),
	})
	if err != nil {
		return cty.NilVal, fmt.Errorf("CreateRole '%s': %w", input.Name, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name":         cty.StringVal(input.Name),
		"arn":          cty.StringVal(awsv2.ToString(out.Role.Arn)),
		"trust_status": cty.StringVal(TrustStatusPending),
	}), nil
}

// SyncRoleTrust replaces the placeholder trust document with one pinned to
// the storage integration's generated IAM user and external id.
func SyncRoleTrust(ctx context.Context, prior cty.Value, principalARN, externalID string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	logger.Info("Patching role trust policy.", "role", name, "principal", principalARN)

	trustDoc, err := policy.SyncedTrust(principalARN, externalID)
	if err != nil {
		return cty.NilVal, err
	}

	cli, err := iamClient(ctx)
	if err != nil {
		return cty.NilVal, err
	}
	_, err = cli.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
		RoleName:       awsv2.String(name),
		PolicyDocument: awsv2.String(trustDoc),
	})
	if err != nil {
		return cty.NilVal, fmt.Errorf("UpdateAssumeRolePolicy '%s': %w", name, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name":         prior.GetAttr("name"),
		"arn":          prior.GetAttr("arn"),
		"trust_status": cty.StringVal(TrustStatusSynced),
	}), nil
}

// DestroyRole deletes the role. Inline policies are separate resources and
// are removed by their own destroy handlers first (they depend on the role).
func DestroyRole(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	logger.Info("Deleting IAM role.", "role", name)

	cli, err := iamClient(ctx)
	if err != nil {
		return err
	}
	if _, err := cli.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: awsv2.String(name)}); err != nil {
		return fmt.Errorf("DeleteRole '%s': %w", name, err)
	}
	return nil
}
