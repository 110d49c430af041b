package hcloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/naming"
	"github.com/imamik/unicloud/internal/util/retry"
)

// CreateVolume implements launch.VolumeProvisioner.
// It returns once the create action has finished. If the action fails the
// volume's ID is returned with the error.
func (c *RealClient) CreateVolume(ctx context.Context, req launch.VolumeRequest) (id string, err error) {
	start := time.Now()
	defer func() { c.record("create_volume", start, err) }()

	if req.Name == "" {
		return "", errors.New("volume name is required")
	}
	if req.SnapshotID != "" {
		return "", fmt.Errorf("%w: volumes cannot be restored from snapshots", ErrUnsupportedDevice)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.VolumeCreate)
	defer cancel()

	result, _, err := c.client.Volume.Create(ctx, hcloud.VolumeCreateOpts{
		Name:     req.Name,
		Size:     req.SizeGiB,
		Location: &hcloud.Location{Name: req.Zone},
		Labels:   naming.ManagedLabels(""),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create volume %s: %w", req.Name, err)
	}

	id = formatID(result.Volume.ID)
	if result.Action != nil {
		if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
			return id, fmt.Errorf("failed to wait for volume %s: %w", req.Name, err)
		}
	}

	c.log.V(1).Info("created volume", "id", id, "name", req.Name, "location", req.Zone)
	return id, nil
}

// DeleteVolume implements launch.VolumeDeleter.
// Deleting a volume that no longer exists succeeds. Locked volumes are retried.
func (c *RealClient) DeleteVolume(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.record("delete_volume", start, err) }()

	n, err := parseID(state.KindVolume, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Delete)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		_, err := c.client.Volume.Delete(ctx, &hcloud.Volume{ID: n})
		if err == nil || IsNotFound(err) {
			return nil
		}
		if isResourceLocked(err) {
			return err
		}
		return retry.Fatal(fmt.Errorf("failed to delete volume %s: %w", id, err))
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}
