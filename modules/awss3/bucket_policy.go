package awss3

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
	"github.com/vk/icebridge/internal/policy"
)

// BucketPolicyInput defines the arguments for an aws_s3_bucket_policy
// resource. Bucket and BucketARN must be attribute bindings to the bucket
// resource, never literals.
type BucketPolicyInput struct {
	Bucket    string `hcl:"bucket"`
	BucketARN string `hcl:"bucket_arn"`
}

// CreateBucketPolicy attaches the transport-security policy to the bucket.
func CreateBucketPolicy(ctx context.Context, input *BucketPolicyInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("bucket", input.Bucket)

	doc, err := policy.BucketSecureTransport(input.BucketARN)
	if err != nil {
		return cty.NilVal, err
	}

	cli, err := s3Client(ctx)
	if err != nil {
		return cty.NilVal, err
	}

	logger.Info("Attaching bucket policy.")
	_, err = cli.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: awsv2.String(input.Bucket),
		Policy: awsv2.String(doc),
	})
	if err != nil {
		return cty.NilVal, fmt.Errorf("PutBucketPolicy '%s': %w", input.Bucket, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"bucket":      cty.StringVal(input.Bucket),
		"policy_json": cty.StringVal(doc),
	}), nil
}

// DestroyBucketPolicy detaches the policy document.
func DestroyBucketPolicy(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	bucket := prior.GetAttr("bucket").AsString()
	logger.Info("Removing bucket policy.", "bucket", bucket)

	cli, err := s3Client(ctx)
	if err != nil {
		return err
	}
	if _, err := cli.DeleteBucketPolicy(ctx, &s3.DeleteBucketPolicyInput{Bucket: awsv2.String(bucket)}); err != nil {
		return fmt.Errorf("DeleteBucketPolicy '%s': %w", bucket, err)
	}
	return nil
}
