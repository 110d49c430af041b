// Package cloud selects and wires the provider adapter named by the configuration.
package cloud

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/platform/aws"
	"github.com/imamik/unicloud/internal/platform/hcloud"
	"github.com/imamik/unicloud/internal/platform/openstack"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

// Provider bundles everything the launch and refresh flows need from a cloud.
type Provider interface {
	resource.StatusSource
	launch.VolumeProvisioner
	launch.InstanceCreator
	launch.VolumeDeleter

	Name() state.Provider
	SlotNaming() launch.SlotNaming
}

var (
	_ Provider = (*aws.Client)(nil)
	_ Provider = (*hcloud.RealClient)(nil)
	_ Provider = (*openstack.Client)(nil)

	_ launch.ConfigChecker = (*aws.Client)(nil)
	_ launch.ConfigChecker = (*hcloud.RealClient)(nil)
)

type options struct {
	log      logr.Logger
	timeouts *config.Timeouts
	metrics  bool
}

// Option configures New.
type Option func(*options)

// WithLogger sets the adapter's logger.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTimeouts overrides the timeouts loaded from the environment.
func WithTimeouts(t *config.Timeouts) Option {
	return func(o *options) {
		o.timeouts = t
	}
}

// WithMetrics records provider API calls.
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// New returns the adapter for cfg's provider. cfg must already be validated.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (Provider, error) {
	o := &options{log: logr.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	if o.timeouts == nil {
		o.timeouts = config.LoadTimeouts()
	}
	log := o.log.WithValues("provider", cfg.Provider)

	switch cfg.ProviderName() {
	case state.ProviderAWS:
		awsOpts := []aws.ClientOption{aws.WithLogger(log), aws.WithTimeouts(o.timeouts)}
		if o.metrics {
			awsOpts = append(awsOpts, aws.WithMetrics())
		}
		c, err := aws.NewClient(ctx, cfg.AWS, awsOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil

	case state.ProviderHCloud:
		hOpts := []hcloud.ClientOption{hcloud.WithLogger(log), hcloud.WithTimeouts(o.timeouts)}
		if o.metrics {
			hOpts = append(hOpts, hcloud.WithMetrics())
		}
		return hcloud.NewRealClient(cfg.HCloud.Token, cfg.HCloud.Endpoint, hOpts...), nil

	case state.ProviderOpenStack:
		osOpts := []openstack.ClientOption{openstack.WithLogger(log), openstack.WithTimeouts(o.timeouts)}
		if o.metrics {
			osOpts = append(osOpts, openstack.WithMetrics())
		}
		c, err := openstack.NewClient(cfg.OpenStack, osOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// NewLauncher builds a launcher whose compiler provisions through p and
// names slots the way p expects.
func NewLauncher(p Provider, log logr.Logger, opts ...launch.LauncherOption) *launch.Launcher {
	compiler := launch.NewCompiler(p,
		launch.WithSlotNaming(p.SlotNaming()),
		launch.WithCompilerLogger(log),
	)
	opts = append([]launch.LauncherOption{launch.WithLogger(log)}, opts...)
	return launch.NewLauncher(p.Name(), compiler, p, opts...)
}
