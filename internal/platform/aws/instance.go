package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/util/naming"
	"github.com/imamik/unicloud/internal/util/ptr"
)

// attachment is an existing volume that RunInstances cannot map.
type attachment struct {
	device            string
	volumeID          string
	deleteOnTerminate bool
}

// CreateInstance implements launch.InstanceCreator.
//
// It issues a single RunInstances call. Existing volumes in the plan are
// attached afterwards, which requires waiting for the instance to run.
func (c *Client) CreateInstance(ctx context.Context, req launch.InstanceRequest) (p resource.Payload, err error) {
	start := time.Now()
	defer func() { c.record("create_instance", start, err) }()

	if req.ImageID == "" {
		return resource.Payload{}, errors.New("image is required")
	}

	mappings, attachments, err := mapPlan(req.Plan)
	if err != nil {
		return resource.Payload{}, err
	}

	in := &ec2.RunInstancesInput{
		ImageId:             aws.String(req.ImageID),
		InstanceType:        types.InstanceType(req.InstanceType),
		MinCount:            aws.Int32(1),
		MaxCount:            aws.Int32(1),
		KeyName:             ptr.String(req.KeyPair),
		SubnetId:            ptr.String(req.Plan.NetworkID()),
		BlockDeviceMappings: mappings,
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         tags("", naming.ManagedLabels(req.Name)),
		}},
	}
	if req.Zone != "" {
		in.Placement = &types.Placement{AvailabilityZone: aws.String(req.Zone)}
	}
	for _, sg := range req.SecurityGroups {
		if strings.HasPrefix(sg, "sg-") {
			in.SecurityGroupIds = append(in.SecurityGroupIds, sg)
		} else {
			in.SecurityGroups = append(in.SecurityGroups, sg)
		}
	}

	out, err := c.ec2.RunInstances(ctx, in)
	if err != nil {
		return resource.Payload{}, fmt.Errorf("failed to run instance: %w", err)
	}
	if len(out.Instances) == 0 {
		return resource.Payload{}, errors.New("run instances returned no instance")
	}
	inst := out.Instances[0]
	id := aws.ToString(inst.InstanceId)
	c.log.V(1).Info("started instance", "id", id, "devices", len(mappings), "attachments", len(attachments))

	if len(attachments) > 0 {
		if attached, err := c.attachVolumes(ctx, id, attachments); err != nil {
			unattached := make([]string, 0, len(attachments)-attached)
			for _, a := range attachments[attached:] {
				unattached = append(unattached, a.volumeID)
			}
			return resource.Payload{}, &launch.InstanceCreatedError{
				Payload:    instancePayload(inst),
				Unattached: unattached,
				Err:        err,
			}
		}
	}

	return instancePayload(inst), nil
}

// SetInstanceName implements launch.InstanceCreator by setting the Name tag.
func (c *Client) SetInstanceName(ctx context.Context, id, name string) (err error) {
	start := time.Now()
	defer func() { c.record("set_instance_name", start, err) }()

	_, err = c.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      []types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}},
	})
	if err != nil {
		return fmt.Errorf("failed to tag instance %s: %w", id, err)
	}
	return nil
}

// attachVolumes attaches in order and reports how many attach calls succeeded.
func (c *Client) attachVolumes(ctx context.Context, instanceID string, attachments []attachment) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.InstanceCreate)
	defer cancel()

	running := ec2.NewInstanceRunningWaiter(c.ec2)
	if err := running.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}}, c.timeouts.InstanceCreate); err != nil {
		return 0, fmt.Errorf("failed to wait for instance %s: %w", instanceID, err)
	}

	var keep []types.InstanceBlockDeviceMappingSpecification
	for i, a := range attachments {
		_, err := c.ec2.AttachVolume(ctx, &ec2.AttachVolumeInput{
			Device:     aws.String(a.device),
			InstanceId: aws.String(instanceID),
			VolumeId:   aws.String(a.volumeID),
		})
		if err != nil {
			return i, fmt.Errorf("failed to attach volume %s at %s: %w", a.volumeID, a.device, err)
		}
		if a.deleteOnTerminate {
			keep = append(keep, types.InstanceBlockDeviceMappingSpecification{
				DeviceName: aws.String(a.device),
				Ebs: &types.EbsInstanceBlockDeviceSpecification{
					VolumeId:            aws.String(a.volumeID),
					DeleteOnTermination: aws.Bool(true),
				},
			})
		}
	}
	if len(keep) == 0 {
		return len(attachments), nil
	}

	ids := make([]string, len(keep))
	for i, m := range keep {
		ids[i] = aws.ToString(m.Ebs.VolumeId)
	}
	inUse := ec2.NewVolumeInUseWaiter(c.ec2)
	if err := inUse.Wait(ctx, &ec2.DescribeVolumesInput{VolumeIds: ids}, c.timeouts.VolumeCreate); err != nil {
		return len(attachments), fmt.Errorf("failed to wait for volume attachment: %w", err)
	}
	_, err := c.ec2.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId:          aws.String(instanceID),
		BlockDeviceMappings: keep,
	})
	if err != nil {
		return len(attachments), fmt.Errorf("failed to set delete on termination: %w", err)
	}
	return len(attachments), nil
}

// maxEphemeralDevices is the number of instance store devices that fit
// between /dev/sdz and the last lettered volume slot.
var maxEphemeralDevices = int('z' - launch.AWSSlotNaming.Last)

// CheckConfig implements launch.ConfigChecker. EC2 cannot boot from an
// existing or blank volume, and instance store devices share the letter range
// with volume slots.
func (c *Client) CheckConfig(cfg *launch.Config) error {
	ephemeral := 0
	for i, spec := range cfg.BlockDevices {
		if !spec.Volume {
			ephemeral++
			continue
		}
		if !spec.Root {
			continue
		}
		if id, ok := spec.Source.VolumeID(); ok {
			return &launch.ValidationError{Index: i, Err: fmt.Errorf("%w: cannot boot from existing volume %s", ErrUnsupportedDevice, id)}
		}
		if spec.Source.IsNone() {
			return &launch.ValidationError{Index: i, Err: fmt.Errorf("%w: root device needs a snapshot or image source", ErrUnsupportedDevice)}
		}
	}
	if ephemeral > maxEphemeralDevices {
		return &launch.ValidationError{Index: -1, Err: fmt.Errorf("%w: %d ephemeral devices requested, %d available", launch.ErrTooManyDevices, ephemeral, maxEphemeralDevices)}
	}
	return nil
}

// mapPlan translates plan devices into RunInstances block device mappings
// and the existing volumes to attach after launch.
func mapPlan(plan *launch.Plan) ([]types.BlockDeviceMapping, []attachment, error) {
	var (
		mappings    []types.BlockDeviceMapping
		attachments []attachment
	)
	for _, d := range plan.Devices() {
		switch {
		case d.Ephemeral:
			if d.EphemeralIndex >= maxEphemeralDevices {
				return nil, nil, fmt.Errorf("%w: ephemeral device %d has no free slot", ErrUnsupportedDevice, d.EphemeralIndex)
			}
			mappings = append(mappings, types.BlockDeviceMapping{
				DeviceName:  aws.String(ephemeralDevice(d.EphemeralIndex)),
				VirtualName: aws.String(d.Slot),
			})
		case d.VolumeID != "":
			if d.Root {
				return nil, nil, fmt.Errorf("%w: %s cannot boot from existing volume %s", ErrUnsupportedDevice, d.Slot, d.VolumeID)
			}
			attachments = append(attachments, attachment{device: d.Slot, volumeID: d.VolumeID, deleteOnTerminate: d.DeleteOnTerminate})
		case d.SnapshotID != "" || d.SizeGiB > 0:
			mappings = append(mappings, types.BlockDeviceMapping{
				DeviceName: aws.String(d.Slot),
				Ebs: &types.EbsBlockDevice{
					SnapshotId:          ptr.String(d.SnapshotID),
					VolumeSize:          ptr.Int32(int32(d.SizeGiB)),
					DeleteOnTermination: aws.Bool(d.DeleteOnTerminate),
				},
			})
		}
	}
	return mappings, attachments, nil
}

// ephemeralDevice counts instance store devices down from /dev/sdz so they
// never collide with lettered volume slots. i must be below
// maxEphemeralDevices.
func ephemeralDevice(i int) string {
	return "/dev/sd" + string(rune('z'-i))
}
