// --- File: internal/platform/sns/client.go ---
// Package sns resolves device tokens into SNS platform endpoints and
// publishes platform-tagged payloads to them.
package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Client defines the subset of the SNS API we use.
// *awssns.Client satisfies it; tests substitute a mock.
type Client interface {
	CreatePlatformEndpoint(ctx context.Context, in *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// Config holds the credentials and connection settings for the gateway.
type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint overrides the SNS URL, e.g. http://localhost:4566 for LocalStack.
	Endpoint string
	// MaxAttempts is handed to the SDK retryer. Zero keeps the SDK default.
	MaxAttempts int
}

// NewClient builds an SNS client owned by the caller. Credentials are static;
// nothing is read from or written to shared AWS configuration.
func NewClient(ctx context.Context, cfg Config) (*awssns.Client, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if cfg.MaxAttempts > 0 {
		loadOpts = append(loadOpts, config.WithRetryMaxAttempts(cfg.MaxAttempts))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SNS SDK config: %w", err)
	}

	var options []func(*awssns.Options)
	if cfg.Endpoint != "" {
		options = append(options, func(o *awssns.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return awssns.NewFromConfig(awsCfg, options...), nil
}
