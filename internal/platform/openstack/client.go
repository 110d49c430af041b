package openstack

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-goose/goose/v5/cinder"
	"github.com/go-goose/goose/v5/client"
	"github.com/go-goose/goose/v5/identity"
	"github.com/go-goose/goose/v5/nova"
	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/metrics"
	"github.com/imamik/unicloud/internal/state"
)

// Compute is the subset of the nova API used by Client.
type Compute interface {
	GetServer(serverID string) (*nova.ServerDetail, error)
	GetImageDetail(imageID string) (*nova.ImageDetail, error)
	RunServer(opts nova.RunServerOpts) (*nova.Entity, error)
	UpdateServerName(serverID, name string) (*nova.Entity, error)
}

// BlockStorage is the subset of the cinder API used by Client.
type BlockStorage interface {
	GetVolume(volumeID string) (*cinder.GetVolumeResults, error)
	GetSnapshot(snapshotID string) (*cinder.GetSnapshotResults, error)
	CreateVolume(args cinder.CreateVolumeVolumeParams) (*cinder.CreateVolumeResults, error)
	DeleteVolume(volumeID string) error
}

// Client implements the unicloud provider contracts on nova and cinder.
type Client struct {
	nova          Compute
	cinder        BlockStorage
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

// WithServices replaces the nova and cinder clients (useful for testing).
func WithServices(compute Compute, storage BlockStorage) ClientOption {
	return func(c *Client) {
		c.nova = compute
		c.cinder = storage
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

// NewClient authenticates against keystone and builds nova and cinder clients
// for the configured region.
func NewClient(cfg config.OpenStackConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.nova != nil && c.cinder != nil {
		return c, nil
	}

	creds, mode := credentials(cfg)
	authClient := client.NewClient(creds, mode, nil)
	if err := authClient.Authenticate(); err != nil {
		return nil, fmt.Errorf("failed to authenticate with %s: %w", cfg.AuthURL, err)
	}

	endpoint, ok := authClient.EndpointsForRegion(cfg.Region)["volume"]
	if !ok {
		return nil, fmt.Errorf("volume endpoint not found for region %q", cfg.Region)
	}
	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse volume endpoint: %w", err)
	}

	c.nova = nova.New(authClient)
	c.cinder = cinder.Basic(endpointURL, authClient.TenantId(), authClient.Token)
	return c, nil
}

// credentials maps the configuration onto keystone credentials. Without an
// explicit mode, domains select identity v3.
func credentials(cfg config.OpenStackConfig) (*identity.Credentials, identity.AuthMode) {
	creds := &identity.Credentials{
		URL:           cfg.AuthURL,
		User:          cfg.Username,
		Secrets:       cfg.Password,
		Region:        cfg.Region,
		TenantName:    cfg.TenantName,
		UserDomain:    cfg.UserDomain,
		ProjectDomain: cfg.ProjectDomain,
	}

	switch cfg.AuthMode {
	case "keypair":
		return creds, identity.AuthKeyPair
	case "userpass-v3":
		creds.Version = 3
		return creds, identity.AuthUserPassV3
	case "userpass":
		return creds, identity.AuthUserPass
	}
	if cfg.UserDomain != "" || cfg.ProjectDomain != "" {
		creds.Version = 3
		return creds, identity.AuthUserPassV3
	}
	return creds, identity.AuthUserPass
}

// Name returns the provider identity.
func (c *Client) Name() state.Provider {
	return state.ProviderOpenStack
}

// SlotNaming returns the device naming used when compiling plans for nova.
func (c *Client) SlotNaming() launch.SlotNaming {
	return launch.VirtioSlotNaming
}

func (c *Client) record(operation string, start time.Time, err error) {
	if c.enableMetrics {
		metrics.RecordAPICall(string(state.ProviderOpenStack), operation, err, time.Since(start))
	}
}

// checkContext returns ctx's error. goose calls are not cancellable, so
// cancellation is honoured between calls.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("openstack request aborted: %w", err)
	}
	return nil
}
