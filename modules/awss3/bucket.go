package awss3

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/icebridge/internal/ctxlog"
)

// BucketInput defines the arguments for the 'arguments' HCL block of an
// aws_s3_bucket resource.
type BucketInput struct {
	Name string `hcl:"name"`
	// ForceDestroy permits teardown of a non-empty bucket. A deliberate
	// trade-off of deletion safety for iteration speed; leave it off outside
	// throwaway environments.
	ForceDestroy bool   `hcl:"force_destroy,optional"`
	Region       string `hcl:"region,optional"`
}

// CreateBucket is the create handler for the aws_s3_bucket resource type.
func CreateBucket(ctx context.Context, input *BucketInput) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("bucket", input.Name)

	cli, err := s3Client(ctx)
	if err != nil {
		return cty.NilVal, err
	}

	req := &s3.CreateBucketInput{Bucket: awsv2.String(input.Name)}
	// us-east-1 rejects an explicit location constraint.
	if input.Region != "" && input.Region != "us-east-1" {
		req.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(input.Region),
		}
	}

	logger.Info("Creating S3 bucket.")
	if _, err := cli.CreateBucket(ctx, req); err != nil {
		return cty.NilVal, fmt.Errorf("CreateBucket '%s': %w", input.Name, err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"name":          cty.StringVal(input.Name),
		"arn":           cty.StringVal("arn:aws:s3:::" + input.Name),
		"url":           cty.StringVal("s3://" + input.Name + "/"),
		"region":        cty.StringVal(input.Region),
		"force_destroy": cty.BoolVal(input.ForceDestroy),
	}), nil
}

// DestroyBucket is the destroy handler for the aws_s3_bucket resource type.
// When the bucket was created with force_destroy it is emptied first, so
// teardown succeeds even with landed objects still inside.
func DestroyBucket(ctx context.Context, prior cty.Value) error {
	logger := ctxlog.FromContext(ctx)

	name := prior.GetAttr("name").AsString()
	force := prior.GetAttr("force_destroy").True()
	logger = logger.With("bucket", name, "force_destroy", force)

	cli, err := s3Client(ctx)
	if err != nil {
		return err
	}

	if force {
		if err := emptyBucket(ctx, cli, name); err != nil {
			return err
		}
	}

	logger.Info("Deleting S3 bucket.")
	if _, err := cli.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: awsv2.String(name)}); err != nil {
		return fmt.Errorf("DeleteBucket '%s': %w", name, err)
	}
	return nil
}

// emptyBucket deletes every object in the bucket, page by page.
func emptyBucket(ctx context.Context, cli *s3.Client, name string) error {
	logger := ctxlog.FromContext(ctx).With("bucket", name)

	paginator := s3.NewListObjectsV2Paginator(cli, &s3.ListObjectsV2Input{Bucket: awsv2.String(name)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("ListObjectsV2 '%s': %w", name, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}
		logger.Info("Emptying bucket page.", "objects", len(objects))
		_, err = cli.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: awsv2.String(name),
			Delete: &s3types.Delete{Objects: objects, Quiet: awsv2.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("DeleteObjects '%s': %w", name, err)
		}
	}
	return nil
}
