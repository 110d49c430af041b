package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

// Describe implements resource.StatusSource.
func (c *Client) Describe(ctx context.Context, kind state.Kind, id string) (p resource.Payload, found bool, err error) {
	start := time.Now()
	defer func() { c.record("describe_"+string(kind), start, err) }()

	switch kind {
	case state.KindInstance:
		p, found, err = c.describeInstance(ctx, id)
	case state.KindVolume:
		p, found, err = c.describeVolume(ctx, id)
	case state.KindSnapshot:
		p, found, err = c.describeSnapshot(ctx, id)
	case state.KindImage:
		p, found, err = c.describeImage(ctx, id)
	default:
		return resource.Payload{}, false, fmt.Errorf("unsupported resource kind %q", kind)
	}
	if IsNotFound(err) {
		return resource.Payload{}, false, nil
	}
	if err != nil {
		return resource.Payload{}, false, fmt.Errorf("failed to describe %s %s: %w", kind, id, err)
	}
	return p, found, nil
}

func (c *Client) describeInstance(ctx context.Context, id string) (resource.Payload, bool, error) {
	out, err := c.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}})
	if err != nil {
		return resource.Payload{}, false, err
	}
	for _, r := range out.Reservations {
		for _, inst := range r.Instances {
			if aws.ToString(inst.InstanceId) == id {
				return instancePayload(inst), true, nil
			}
		}
	}
	return resource.Payload{}, false, nil
}

func instancePayload(inst types.Instance) resource.Payload {
	p := resource.Payload{
		ID:   aws.ToString(inst.InstanceId),
		Name: nameTag(inst.Tags),
		Attributes: map[string]string{
			"instance_type": string(inst.InstanceType),
			"image_id":      aws.ToString(inst.ImageId),
		},
	}
	if inst.State != nil {
		p.Status = string(inst.State.Name)
	}
	if inst.Placement != nil {
		p.Zone = aws.ToString(inst.Placement.AvailabilityZone)
	}
	if ip := aws.ToString(inst.PrivateIpAddress); ip != "" {
		p.Attributes["private_ip"] = ip
	}
	return p
}

func (c *Client) describeVolume(ctx context.Context, id string) (resource.Payload, bool, error) {
	out, err := c.ec2.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{VolumeIds: []string{id}})
	if err != nil {
		return resource.Payload{}, false, err
	}
	for _, v := range out.Volumes {
		if aws.ToString(v.VolumeId) != id {
			continue
		}
		p := resource.Payload{
			ID:     id,
			Name:   nameTag(v.Tags),
			Status: string(v.State),
			Zone:   aws.ToString(v.AvailabilityZone),
			Attributes: map[string]string{
				"size_gib": strconv.Itoa(int(aws.ToInt32(v.Size))),
			},
		}
		if snap := aws.ToString(v.SnapshotId); snap != "" {
			p.Attributes["snapshot_id"] = snap
		}
		if len(v.Attachments) > 0 {
			p.Attributes["instance_id"] = aws.ToString(v.Attachments[0].InstanceId)
		}
		return p, true, nil
	}
	return resource.Payload{}, false, nil
}

func (c *Client) describeSnapshot(ctx context.Context, id string) (resource.Payload, bool, error) {
	out, err := c.ec2.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{SnapshotIds: []string{id}})
	if err != nil {
		return resource.Payload{}, false, err
	}
	for _, s := range out.Snapshots {
		if aws.ToString(s.SnapshotId) != id {
			continue
		}
		name := nameTag(s.Tags)
		if name == "" {
			name = aws.ToString(s.Description)
		}
		return resource.Payload{
			ID:     id,
			Name:   name,
			Status: string(s.State),
			Attributes: map[string]string{
				"volume_id": aws.ToString(s.VolumeId),
				"progress":  aws.ToString(s.Progress),
			},
		}, true, nil
	}
	return resource.Payload{}, false, nil
}

func (c *Client) describeImage(ctx context.Context, id string) (resource.Payload, bool, error) {
	out, err := c.ec2.DescribeImages(ctx, &ec2.DescribeImagesInput{ImageIds: []string{id}})
	if err != nil {
		return resource.Payload{}, false, err
	}
	for _, img := range out.Images {
		if aws.ToString(img.ImageId) != id {
			continue
		}
		return resource.Payload{
			ID:     id,
			Name:   aws.ToString(img.Name),
			Status: string(img.State),
			Attributes: map[string]string{
				"architecture": string(img.Architecture),
			},
		}, true, nil
	}
	return resource.Payload{}, false, nil
}

func nameTag(tags []types.Tag) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == "Name" {
			return aws.ToString(t.Value)
		}
	}
	return ""
}
