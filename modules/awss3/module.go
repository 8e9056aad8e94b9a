// Package awss3 provides the object-storage resource types of the landing
// stack: the bucket itself and its attached policy document.
package awss3

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vk/icebridge/internal/awsconn"
	"github.com/vk/icebridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	clientOnce sync.Once
	client     *s3.Client
	clientErr  error
)

// s3Client builds the shared S3 client from the standard AWS config chain.
// Region comes from the environment or shared config; the stack's region
// attribute is applied per-request where the API needs it.
func s3Client(ctx context.Context) (*s3.Client, error) {
	clientOnce.Do(func() {
		cfg, err := awsconn.Load(ctx)
		if err != nil {
			clientErr = err
			return
		}
		client = s3.NewFromConfig(cfg)
	})
	return client, clientErr
}

// Register registers the resource types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("aws_s3_bucket", &registry.RegisteredResource{
		NewInput:  func() any { return new(BucketInput) },
		Outputs:   []string{"name", "arn", "url", "region", "force_destroy"},
		CreateFn:  CreateBucket,
		DestroyFn: DestroyBucket,
	})
	r.RegisterType("aws_s3_bucket_policy", &registry.RegisteredResource{
		NewInput:  func() any { return new(BucketPolicyInput) },
		Outputs:   []string{"bucket", "policy_json"},
		CreateFn:  CreateBucketPolicy,
		DestroyFn: DestroyBucketPolicy,
	})
}
