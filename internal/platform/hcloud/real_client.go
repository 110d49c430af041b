package hcloud

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/metrics"
	"github.com/imamik/unicloud/internal/state"
)

// RealClient implements the unicloud provider contracts using the Hetzner Cloud API.
type RealClient struct {
	client        *hcloud.Client
	timeouts      *config.Timeouts
	log           logr.Logger
	enableMetrics bool
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithLogger sets the client's logger.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *RealClient) {
		c.log = log
	}
}

// WithMetrics records API calls in the metrics registry.
func WithMetrics() ClientOption {
	return func(c *RealClient) {
		c.enableMetrics = true
	}
}

// NewRealClient creates a new RealClient with optional configuration.
// An empty endpoint uses the public API.
func NewRealClient(token, endpoint string, opts ...ClientOption) *RealClient {
	hopts := []hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithApplication("unicloud", ""),
	}
	if endpoint != "" {
		hopts = append(hopts, hcloud.WithEndpoint(endpoint))
	}
	c := &RealClient{
		client:   hcloud.NewClient(hopts...),
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client for advanced operations.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}

// Name returns the provider identity.
func (c *RealClient) Name() state.Provider {
	return state.ProviderHCloud
}

// SlotNaming returns the device naming used when compiling plans for Hetzner.
func (c *RealClient) SlotNaming() launch.SlotNaming {
	return launch.DefaultSlotNaming
}

func (c *RealClient) record(operation string, start time.Time, err error) {
	if c.enableMetrics {
		metrics.RecordAPICall(string(state.ProviderHCloud), operation, err, time.Since(start))
	}
}

// parseID converts a unicloud resource ID into a Hetzner numeric ID.
func parseID(kind state.Kind, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, id)
	}
	return n, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
