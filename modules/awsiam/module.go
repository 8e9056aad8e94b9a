// Package awsiam provides the identity resource types of the landing stack:
// the cross-account role the warehouse assumes and its read-only policy.
package awsiam

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/vk/icebridge/internal/awsconn"
	"github.com/vk/icebridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	clientOnce sync.Once
	client     *iam.Client
	clientErr  error
)

// iamClient builds the shared IAM client from the standard AWS config chain.
func iamClient(ctx context.Context) (*iam.Client, error) {
	clientOnce.Do(func() {
		cfg, err := awsconn.Load(ctx)
		if err != nil {
			clientErr = err
			return
		}
		client = iam.NewFromConfig(cfg)
	})
	return client, clientErr
}

// Register registers the resource types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("aws_iam_role", &registry.RegisteredResource{
		NewInput: func() any { return new(RoleInput) },
		Outputs:  []string{"name", "arn", "trust_status"},
		CreateFn: CreateRole,
		DestroyFn: DestroyRole,
		// Created with a placeholder trust document; the handshake's second
		// phase patches it once the integration's identity is known.
		TrustPending: true,
		SyncTrustFn:  SyncRoleTrust,
	})
	r.RegisterType("aws_iam_role_policy", &registry.RegisteredResource{
		NewInput:  func() any { return new(RolePolicyInput) },
		Outputs:   []string{"name", "role"},
		CreateFn:  CreateRolePolicy,
		DestroyFn: DestroyRolePolicy,
	})
}
