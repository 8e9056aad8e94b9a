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

// RolePolicyInput defines the arguments for an aws_iam_role_policy resource.
// Role and BucketARN must be attribute bindings, never literals.
type RolePolicyInput struct {
	Name      string `hcl:"name"`
	Role      string `hcl:"role"`
	BucketARN string `hcl:"bucket_arn"`
}

// CreateRolePolicy attaches the read-only landing-bucket grant to the role.
func CreateRolePolicy(ctx context.Context, input *RolePolicyInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("role", input.Role, "policy", input.Name)

	doc, err := policy.RoleReadAccess(input.BucketARN)
	if err != nil {
		return cty.NilVal, err
	}

	cli, err := iamClient(ctx)
	if err != nil {
		return cty.NilVal, err
	}

	logger.Info("Attaching role policy.")
	_, err = cli.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       awsv2.String(input.Role),
		PolicyName:     awsv2.String(input.Name),
		PolicyDocument: awsv2.String(doc),
	})
	if err != nil {
		return cty.NilVal, fmt.Errorf("PutRolePolicy '%s' on '%s': %w", input.Name, input.Role, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal(input.Name),
		"role": cty.StringVal(input.Role),
	}), nil
}

// DestroyRolePolicy detaches the inline policy from the role.
func DestroyRolePolicy(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	role := prior.GetAttr("role").AsString()
	logger.Info("Removing role policy.", "role", role, "policy", name)

	cli, err := iamClient(ctx)
	if err != nil {
		return err
	}
	_, err = cli.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   awsv2.String(role),
		PolicyName: awsv2.String(name),
	})
	if err != nil {
		return fmt.Errorf("DeleteRolePolicy '%s' on '%s': %w", name, role, err)
	}
	return nil
}
