package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/metrics"
	"github.com/imamik/unicloud/internal/state"
)

// EC2API is the subset of the EC2 API used by Client.
type EC2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, in *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	DescribeSnapshots(ctx context.Context, in *ec2.DescribeSnapshotsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error)
	DescribeImages(ctx context.Context, in *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	CreateVolume(ctx context.Context, in *ec2.CreateVolumeInput, optFns ...func(*ec2.Options)) (*ec2.CreateVolumeOutput, error)
	DeleteVolume(ctx context.Context, in *ec2.DeleteVolumeInput, optFns ...func(*ec2.Options)) (*ec2.DeleteVolumeOutput, error)
	AttachVolume(ctx context.Context, in *ec2.AttachVolumeInput, optFns ...func(*ec2.Options)) (*ec2.AttachVolumeOutput, error)
	RunInstances(ctx context.Context, in *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	ModifyInstanceAttribute(ctx context.Context, in *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error)
	CreateTags(ctx context.Context, in *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// Client implements the unicloud provider contracts on EC2.
type Client struct {
	ec2           EC2API
	timeouts      *config.Timeouts
	log           logr.Logger
	enableMetrics bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *Client) {
		c.timeouts = t
	}
}

// WithEC2Client replaces the EC2 client (useful for testing).
func WithEC2Client(api EC2API) ClientOption {
	return func(c *Client) {
		c.ec2 = api
	}
}

// WithLogger sets the client's logger.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics records API calls in the metrics registry.
func WithMetrics() ClientOption {
	return func(c *Client) {
		c.enableMetrics = true
	}
}

// loadAWSConfig resolves credentials through the default chain for the
// configured region and profile.
func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewClient creates an EC2-backed Client for the configured region.
func NewClient(ctx context.Context, cfg config.AWSConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ec2 != nil {
		return c, nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.ec2 = ec2.NewFromConfig(awsCfg, func(o *ec2.Options) {
		if cfg.EC2Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.EC2Endpoint)
		}
	})
	return c, nil
}

// Name returns the provider identity.
func (c *Client) Name() state.Provider {
	return state.ProviderAWS
}

// SlotNaming returns the device naming used when compiling plans for EC2.
func (c *Client) SlotNaming() launch.SlotNaming {
	return launch.AWSSlotNaming
}

func (c *Client) record(operation string, start time.Time, err error) {
	if c.enableMetrics {
		metrics.RecordAPICall(string(state.ProviderAWS), operation, err, time.Since(start))
	}
}
