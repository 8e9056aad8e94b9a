// Package awsconn builds the AWS client configuration shared by the provider
// modules. The default chain (environment, shared config, instance metadata)
// applies as-is; pointing ICEBRIDGE_AWS_ENDPOINT at a local emulator swaps in
// static throwaway credentials so no real profile is needed.
package awsconn

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// endpointEnv names the environment variable that redirects all AWS API
// calls, e.g. to a LocalStack instance.
const endpointEnv = "ICEBRIDGE_AWS_ENDPOINT"

// Load resolves the AWS configuration for provider clients.
func Load(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if endpoint := os.Getenv(endpointEnv); endpoint != "" {
		opts = append(opts,
			awsconfig.WithBaseEndpoint(endpoint),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("test", "test", ""),
			),
		)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
