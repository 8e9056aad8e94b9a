package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/registry"
	"github.com/vk/icebridge/modules/awsiam"
	"github.com/vk/icebridge/modules/awss3"
	"github.com/vk/icebridge/modules/snowflake"
)

// Identity values the fake storage integration reports, standing in for the
// ones a real DESC STORAGE INTEGRATION returns.
const (
	FakeIAMUserARN = "arn:aws:iam::123456789012:user/snowflake-loader"
	FakeExternalID = "ACME_SFCRole=2_abcdef"
)

// FakeCloud registers fake implementations of every provider resource type.
// Handlers decode the same inputs as the real modules, produce deterministic
// outputs, touch no network, and report every invocation to the Recorder.
type FakeCloud struct {
	Recorder *Recorder

	// FailTypes lists resource types whose create handler returns an error.
	FailTypes []string
}

func (f *FakeCloud) failing(resType string) bool {
	for _, t := range f.FailTypes {
		if t == resType {
			return true
		}
	}
	return false
}

func (f *FakeCloud) create(resType string, input any, out cty.Value) (cty.Value, error) {
	f.Recorder.record(Event{Op: "create", Type: resType, Input: input})
	if f.failing(resType) {
		return cty.NilVal, fmt.Errorf("simulated %s failure", resType)
	}
	return out, nil
}

func (f *FakeCloud) destroy(resType string, prior cty.Value) error {
	f.Recorder.record(Event{Op: "destroy", Type: resType, Prior: prior})
	return nil
}

// Register registers all fake resource types.
func (f *FakeCloud) Register(r *registry.Registry) {
	r.RegisterType("aws_s3_bucket", &registry.RegisteredResource{
		NewInput: func() any { return new(awss3.BucketInput) },
		Outputs:  []string{"name", "arn", "url", "region", "force_destroy"},
		CreateFn: func(ctx context.Context, input *awss3.BucketInput) (cty.Value, error) {
			return f.create("aws_s3_bucket", input, cty.ObjectVal(map[string]cty.Value{
				"name":          cty.StringVal(input.Name),
				"arn":           cty.StringVal("arn:aws:s3:::" + input.Name),
				"url":           cty.StringVal("s3://" + input.Name + "/"),
				"region":        cty.StringVal(input.Region),
				"force_destroy": cty.BoolVal(input.ForceDestroy),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("aws_s3_bucket", prior)
		},
	})

	r.RegisterType("aws_s3_bucket_policy", &registry.RegisteredResource{
		NewInput: func() any { return new(awss3.BucketPolicyInput) },
		Outputs:  []string{"bucket", "policy_json"},
		CreateFn: func(ctx context.Context, input *awss3.BucketPolicyInput) (cty.Value, error) {
			return f.create("aws_s3_bucket_policy", input, cty.ObjectVal(map[string]cty.Value{
				"bucket":      cty.StringVal(input.Bucket),
				"policy_json": cty.StringVal(`{"Version":"2012-10-17"}`),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("aws_s3_bucket_policy", prior)
		},
	})

	r.RegisterType("aws_iam_role", &registry.RegisteredResource{
		NewInput:     func() any { return new(awsiam.RoleInput) },
		Outputs:      []string{"name", "arn", "trust_status"},
		TrustPending: true,
		CreateFn: func(ctx context.Context, input *awsiam.RoleInput) (cty.Value, error) {
			return f.create("aws_iam_role", input, cty.ObjectVal(map[string]cty.Value{
				"name":         cty.StringVal(input.Name),
				"arn":          cty.StringVal("arn:aws:iam::123456789012:role/" + input.Name),
				"trust_status": cty.StringVal(awsiam.TrustStatusPending),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("aws_iam_role", prior)
		},
		SyncTrustFn: func(ctx context.Context, prior cty.Value, principalARN, externalID string) (cty.Value, error) {
			f.Recorder.record(Event{Op: "sync", Type: "aws_iam_role", Prior: prior})
			return cty.ObjectVal(map[string]cty.Value{
				"name":         prior.GetAttr("name"),
				"arn":          prior.GetAttr("arn"),
				"trust_status": cty.StringVal(awsiam.TrustStatusSynced),
			}), nil
		},
	})

	r.RegisterType("aws_iam_role_policy", &registry.RegisteredResource{
		NewInput: func() any { return new(awsiam.RolePolicyInput) },
		Outputs:  []string{"name", "role"},
		CreateFn: func(ctx context.Context, input *awsiam.RolePolicyInput) (cty.Value, error) {
			return f.create("aws_iam_role_policy", input, cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(input.Name),
				"role": cty.StringVal(input.Role),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("aws_iam_role_policy", prior)
		},
	})

	r.RegisterType("snowflake_warehouse", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.WarehouseInput) },
		Outputs:  []string{"name"},
		CreateFn: func(ctx context.Context, input *snowflake.WarehouseInput) (cty.Value, error) {
			return f.create("snowflake_warehouse", input, cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(strings.ToUpper(input.Name)),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_warehouse", prior)
		},
	})

	r.RegisterType("snowflake_database", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.DatabaseInput) },
		Outputs:  []string{"name"},
		CreateFn: func(ctx context.Context, input *snowflake.DatabaseInput) (cty.Value, error) {
			return f.create("snowflake_database", input, cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(strings.ToUpper(input.Name)),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_database", prior)
		},
	})

	r.RegisterType("snowflake_schema", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.SchemaInput) },
		Outputs:  []string{"name", "database", "qualified"},
		CreateFn: func(ctx context.Context, input *snowflake.SchemaInput) (cty.Value, error) {
			database := strings.ToUpper(input.Database)
			name := strings.ToUpper(input.Name)
			return f.create("snowflake_schema", input, cty.ObjectVal(map[string]cty.Value{
				"name":      cty.StringVal(name),
				"database":  cty.StringVal(database),
				"qualified": cty.StringVal(database + "." + name),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_schema", prior)
		},
	})

	r.RegisterType("snowflake_storage_integration", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.IntegrationInput) },
		Outputs:  []string{"name", "role_arn", "allowed_location", "iam_user_arn", "external_id"},
		CreateFn: func(ctx context.Context, input *snowflake.IntegrationInput) (cty.Value, error) {
			return f.create("snowflake_storage_integration", input, cty.ObjectVal(map[string]cty.Value{
				"name":             cty.StringVal(strings.ToUpper(input.Name)),
				"role_arn":         cty.StringVal(input.RoleARN),
				"allowed_location": cty.StringVal(input.AllowedLocation),
				"iam_user_arn":     cty.StringVal(FakeIAMUserARN),
				"external_id":      cty.StringVal(FakeExternalID),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_storage_integration", prior)
		},
	})

	r.RegisterType("snowflake_file_format", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.FileFormatInput) },
		Outputs:  []string{"name", "qualified", "kind"},
		CreateFn: func(ctx context.Context, input *snowflake.FileFormatInput) (cty.Value, error) {
			database := strings.ToUpper(input.Database)
			schemaName := strings.ToUpper(input.Schema)
			name := strings.ToUpper(input.Name)
			return f.create("snowflake_file_format", input, cty.ObjectVal(map[string]cty.Value{
				"name":      cty.StringVal(name),
				"qualified": cty.StringVal(database + "." + schemaName + "." + name),
				"kind":      cty.StringVal(strings.ToUpper(input.Kind)),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_file_format", prior)
		},
	})

	r.RegisterType("snowflake_stage", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.StageInput) },
		Outputs:  []string{"name", "qualified", "url"},
		CreateFn: func(ctx context.Context, input *snowflake.StageInput) (cty.Value, error) {
			database := strings.ToUpper(input.Database)
			schemaName := strings.ToUpper(input.Schema)
			name := strings.ToUpper(input.Name)
			return f.create("snowflake_stage", input, cty.ObjectVal(map[string]cty.Value{
				"name":      cty.StringVal(name),
				"qualified": cty.StringVal(database + "." + schemaName + "." + name),
				"url":       cty.StringVal(input.URL),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_stage", prior)
		},
	})

	r.RegisterType("snowflake_table", &registry.RegisteredResource{
		NewInput: func() any { return new(snowflake.TableInput) },
		Outputs:  []string{"name", "qualified"},
		CreateFn: func(ctx context.Context, input *snowflake.TableInput) (cty.Value, error) {
			database := strings.ToUpper(input.Database)
			schemaName := strings.ToUpper(input.Schema)
			name := strings.ToUpper(input.Name)
			return f.create("snowflake_table", input, cty.ObjectVal(map[string]cty.Value{
				"name":      cty.StringVal(name),
				"qualified": cty.StringVal(database + "." + schemaName + "." + name),
			}))
		},
		DestroyFn: func(ctx context.Context, prior cty.Value) error {
			return f.destroy("snowflake_table", prior)
		},
	})
}
