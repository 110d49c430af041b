package launch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/metrics"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/async"
)

// InstanceRequest is the single composite argument of an instance creation call.
// Plan is nil when the caller gave no launch configuration.
type InstanceRequest struct {
	Name           string
	ImageID        string
	InstanceType   string
	Zone           string
	KeyPair        string
	SecurityGroups []string
	Plan           *Plan
}

// InstanceCreator creates instances.
type InstanceCreator interface {
	CreateInstance(ctx context.Context, req InstanceRequest) (resource.Payload, error)
	SetInstanceName(ctx context.Context, id, name string) error
}

// ConfigChecker is implemented by instance creators that cannot realize
// every launch configuration. The launcher calls CheckConfig before
// anything is provisioned; a rejection should be a *ValidationError.
type ConfigChecker interface {
	CheckConfig(cfg *Config) error
}

// VolumeDeleter deletes volumes. It is only used for orphan cleanup.
type VolumeDeleter interface {
	DeleteVolume(ctx context.Context, id string) error
}

// Request describes an instance to launch. Zone, KeyPair, SecurityGroups
// and Config are optional.
type Request struct {
	Name           string
	Image          string
	InstanceType   string
	Zone           string
	KeyPair        string
	SecurityGroups []string
	Config         *Config
}

// Launcher compiles launch configurations and creates instances.
type Launcher struct {
	provider      state.Provider
	compiler      *Compiler
	creator       InstanceCreator
	deleter       VolumeDeleter
	log           logr.Logger
	enableMetrics bool
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithLogger sets the launcher's logger.
func WithLogger(log logr.Logger) LauncherOption {
	return func(l *Launcher) {
		l.log = log
	}
}

// WithOrphanCleanup deletes blank volumes left behind by a failed launch.
// Cleanup is best effort: failures are logged and recorded on the
// returned *PartialProvisioningError.
func WithOrphanCleanup(d VolumeDeleter) LauncherOption {
	return func(l *Launcher) {
		l.deleter = d
	}
}

// WithMetrics records launches in the metrics registry.
func WithMetrics() LauncherOption {
	return func(l *Launcher) {
		l.enableMetrics = true
	}
}

// NewLauncher returns a Launcher for provider p.
func NewLauncher(p state.Provider, compiler *Compiler, creator InstanceCreator, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		provider: p,
		compiler: compiler,
		creator:  creator,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch creates one instance.
//
// When req.Config is set it is compiled first; the instance creation call
// is issued exactly once either way, then the instance is given req.Name.
// A creation failure with nothing provisioned is returned unchanged.
//
// If naming fails, or the provider reports an *InstanceCreatedError, the
// instance exists: the returned view is non-nil along with the error.
func (l *Launcher) Launch(ctx context.Context, req Request) (*resource.Tracked, error) {
	start := time.Now()

	r, err := l.launch(ctx, req)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	l.recordLaunch(result, time.Since(start))
	return r, err
}

func (l *Launcher) launch(ctx context.Context, req Request) (*resource.Tracked, error) {
	var plan *Plan
	if req.Config != nil {
		if checker, ok := l.creator.(ConfigChecker); ok {
			if err := checker.CheckConfig(req.Config); err != nil {
				return nil, err
			}
		}
		var err error
		plan, err = l.compiler.Compile(ctx, req.Config, req.Zone, ForInstance(req.Name))
		if err != nil {
			var perr *PartialProvisioningError
			if errors.As(err, &perr) {
				l.recordVolumesProvisioned(len(perr.VolumeIDs))
				l.handleOrphans(ctx, perr)
			}
			return nil, err
		}
		l.recordVolumesProvisioned(len(plan.ProvisionedVolumes()))
	}

	payload, err := l.creator.CreateInstance(ctx, InstanceRequest{
		Name:           req.Name,
		ImageID:        req.Image,
		InstanceType:   req.InstanceType,
		Zone:           req.Zone,
		KeyPair:        req.KeyPair,
		SecurityGroups: req.SecurityGroups,
		Plan:           plan,
	})
	if err != nil {
		var created *InstanceCreatedError
		if errors.As(err, &created) {
			return l.incomplete(ctx, req.Name, plan, created)
		}
		provisioned := plan.ProvisionedVolumes()
		if len(provisioned) == 0 {
			return nil, err
		}
		perr := &PartialProvisioningError{VolumeIDs: provisioned, Err: err}
		l.handleOrphans(ctx, perr)
		return nil, perr
	}
	l.log.Info("created instance", "provider", l.provider, "id", payload.ID, "status", payload.Status)

	r := resource.FromPayload(l.provider, state.KindInstance, payload)
	if err := l.creator.SetInstanceName(ctx, payload.ID, req.Name); err != nil {
		return r, fmt.Errorf("failed to name instance %s: %w", payload.ID, err)
	}
	payload.Name = req.Name
	return resource.FromPayload(l.provider, state.KindInstance, payload), nil
}

// incomplete handles an instance that exists but failed to finish
// configuring. Only provisioned volumes left unattached count as orphans.
func (l *Launcher) incomplete(ctx context.Context, name string, plan *Plan, created *InstanceCreatedError) (*resource.Tracked, error) {
	payload := created.Payload
	l.log.Error(created.Err, "instance created but not fully configured", "provider", l.provider, "id", payload.ID)

	if err := l.creator.SetInstanceName(ctx, payload.ID, name); err != nil {
		l.log.Error(err, "failed to name instance", "id", payload.ID)
	} else {
		payload.Name = name
	}
	r := resource.FromPayload(l.provider, state.KindInstance, payload)

	var orphans []string
	for _, id := range plan.ProvisionedVolumes() {
		if slices.Contains(created.Unattached, id) {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return r, created
	}
	perr := &PartialProvisioningError{VolumeIDs: orphans, Err: created}
	l.handleOrphans(ctx, perr)
	return r, perr
}

// handleOrphans deletes the error's volumes when cleanup is enabled, and
// leaves only the ones that survived on the error.
func (l *Launcher) handleOrphans(ctx context.Context, perr *PartialProvisioningError) {
	if l.deleter == nil {
		l.log.Info("launch failed after provisioning volumes; they were not deleted", "volumes", perr.VolumeIDs)
		l.recordVolumesOrphaned(len(perr.VolumeIDs))
		return
	}

	// Cleanup must run even if the launch was cancelled.
	ctx = context.WithoutCancel(ctx)
	failed := make([]bool, len(perr.VolumeIDs))
	tasks := make([]async.Task, len(perr.VolumeIDs))
	for i, id := range perr.VolumeIDs {
		tasks[i] = async.Task{Name: id, Func: func(ctx context.Context) error {
			if err := l.deleter.DeleteVolume(ctx, id); err != nil {
				failed[i] = true
				return err
			}
			return nil
		}}
	}

	perr.CleanupErr = async.RunAll(ctx, tasks)

	var remaining []string
	for i, id := range perr.VolumeIDs {
		if failed[i] {
			remaining = append(remaining, id)
		}
	}
	perr.VolumeIDs = remaining

	if perr.CleanupErr != nil {
		l.log.Error(perr.CleanupErr, "failed to delete orphaned volumes", "volumes", remaining)
	} else {
		l.log.Info("deleted orphaned volumes", "count", len(tasks))
	}
	l.recordVolumesOrphaned(len(remaining))
}

func (l *Launcher) recordLaunch(result string, d time.Duration) {
	if l.enableMetrics {
		metrics.RecordLaunch(string(l.provider), result, d)
	}
}

func (l *Launcher) recordVolumesProvisioned(n int) {
	if l.enableMetrics {
		metrics.RecordVolumesProvisioned(string(l.provider), n)
	}
}

func (l *Launcher) recordVolumesOrphaned(n int) {
	if l.enableMetrics {
		metrics.RecordVolumesOrphaned(string(l.provider), n)
	}
}
