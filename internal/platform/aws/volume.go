package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/util/naming"
	"github.com/imamik/unicloud/internal/util/ptr"
)

// CreateVolume implements launch.VolumeProvisioner.
// It returns once the volume is available. If the volume never becomes
// available its ID is returned with the error.
func (c *Client) CreateVolume(ctx context.Context, req launch.VolumeRequest) (id string, err error) {
	start := time.Now()
	defer func() { c.record("create_volume", start, err) }()

	if req.Zone == "" {
		return "", errors.New("availability zone is required")
	}

	out, err := c.ec2.CreateVolume(ctx, &ec2.CreateVolumeInput{
		AvailabilityZone: aws.String(req.Zone),
		Size:             ptr.Int32(int32(req.SizeGiB)),
		SnapshotId:       ptr.String(req.SnapshotID),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeVolume,
			Tags:         tags(req.Name, naming.ManagedLabels("")),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create volume %s: %w", req.Name, err)
	}
	id = aws.ToString(out.VolumeId)

	waiter := ec2.NewVolumeAvailableWaiter(c.ec2)
	if err := waiter.Wait(ctx, &ec2.DescribeVolumesInput{VolumeIds: []string{id}}, c.timeouts.VolumeCreate); err != nil {
		return id, fmt.Errorf("failed to wait for volume %s: %w", id, err)
	}

	c.log.V(1).Info("created volume", "id", id, "name", req.Name, "zone", req.Zone)
	return id, nil
}

// DeleteVolume implements launch.VolumeDeleter.
// Deleting a volume that no longer exists succeeds.
func (c *Client) DeleteVolume(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.record("delete_volume", start, err) }()

	_, err = c.ec2.DeleteVolume(ctx, &ec2.DeleteVolumeInput{VolumeId: aws.String(id)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete volume %s: %w", id, err)
	}
	return nil
}

// tags converts labels into EC2 tags, adding a Name tag when name is set.
// Keys are sorted so requests are deterministic.
func tags(name string, labels map[string]string) []types.Tag {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []types.Tag
	if name != "" {
		out = append(out, types.Tag{Key: aws.String("Name"), Value: aws.String(name)})
	}
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(labels[k])})
	}
	return out
}
