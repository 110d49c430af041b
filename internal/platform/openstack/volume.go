package openstack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-goose/goose/v5/cinder"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/util/naming"
	"github.com/imamik/unicloud/internal/util/retry"
)

const (
	volumeStatusAvailable = "available"
	volumeStatusError     = "error"
)

// CreateVolume implements launch.VolumeProvisioner.
// It polls cinder until the volume is available. A volume that lands in the
// error status is returned with its ID alongside the error.
func (c *Client) CreateVolume(ctx context.Context, req launch.VolumeRequest) (id string, err error) {
	start := time.Now()
	defer func() { c.record("create_volume", start, err) }()

	if err := checkContext(ctx); err != nil {
		return "", err
	}

	res, err := c.cinder.CreateVolume(cinder.CreateVolumeVolumeParams{
		Name:             req.Name,
		Size:             req.SizeGiB,
		AvailabilityZone: req.Zone,
		SnapshotId:       req.SnapshotID,
		Metadata:         naming.ManagedLabels(""),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create volume %s: %w", req.Name, err)
	}
	id = res.Volume.ID

	if err := c.waitVolumeAvailable(ctx, id); err != nil {
		return id, err
	}
	c.log.V(1).Info("created volume", "id", id, "name", req.Name, "zone", req.Zone)
	return id, nil
}

func (c *Client) waitVolumeAvailable(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.VolumeCreate)
	defer cancel()

	return retry.WithExponentialBackoff(ctx, func() error {
		res, err := c.cinder.GetVolume(id)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get volume %s: %w", id, err))
		}
		switch res.Volume.Status {
		case volumeStatusAvailable:
			return nil
		case volumeStatusError:
			return retry.Fatal(fmt.Errorf("%w: %s", ErrVolumeFailed, id))
		default:
			return fmt.Errorf("volume %s is %s", id, res.Volume.Status)
		}
	}, retry.WithMaxRetries(c.timeouts.RetryMaxAttempts), retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}

// DeleteVolume implements launch.VolumeDeleter.
// Deleting a volume that no longer exists succeeds.
func (c *Client) DeleteVolume(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.record("delete_volume", start, err) }()

	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := c.cinder.DeleteVolume(id); err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete volume %s: %w", id, err)
	}
	return nil
}
