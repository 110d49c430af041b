package openstack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-goose/goose/v5/nova"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/util/naming"
)

// nova block device mapping source and destination types.
const (
	sourceImage    = "image"
	sourceSnapshot = "snapshot"
	sourceVolume   = "volume"
	sourceBlank    = "blank"
	destVolume     = "volume"
	destLocal      = "local"
)

// CreateInstance implements launch.InstanceCreator with a single RunServer call.
// The returned payload carries the BUILD status nova reports for new servers.
func (c *Client) CreateInstance(ctx context.Context, req launch.InstanceRequest) (p resource.Payload, err error) {
	start := time.Now()
	defer func() { c.record("create_instance", start, err) }()

	if err := checkContext(ctx); err != nil {
		return resource.Payload{}, err
	}

	mappings, bootsFromImage := blockDeviceMappings(req.Plan, req.ImageID)
	if bootsFromImage && req.ImageID == "" {
		return resource.Payload{}, errors.New("image is required")
	}

	opts := nova.RunServerOpts{
		Name:                req.Name,
		FlavorId:            req.InstanceType,
		KeyName:             req.KeyPair,
		AvailabilityZone:    req.Zone,
		Metadata:            naming.ManagedLabels(req.Name),
		BlockDeviceMappings: mappings,
	}
	if bootsFromImage {
		opts.ImageId = req.ImageID
	}
	for _, name := range req.SecurityGroups {
		opts.SecurityGroupNames = append(opts.SecurityGroupNames, nova.SecurityGroupName{Name: name})
	}
	if id := req.Plan.NetworkID(); id != "" {
		opts.Networks = []nova.ServerNetworks{{NetworkId: id}}
	}

	entity, err := c.nova.RunServer(opts)
	if err != nil {
		return resource.Payload{}, fmt.Errorf("failed to run server: %w", err)
	}
	if entity == nil {
		return resource.Payload{}, errors.New("run server returned no server")
	}
	c.log.V(1).Info("started server", "id", entity.Id, "devices", len(mappings))

	return resource.Payload{
		ID:     entity.Id,
		Name:   entity.Name,
		Status: nova.StatusBuild,
		Zone:   req.Zone,
	}, nil
}

// SetInstanceName implements launch.InstanceCreator.
func (c *Client) SetInstanceName(ctx context.Context, id, name string) (err error) {
	start := time.Now()
	defer func() { c.record("set_instance_name", start, err) }()

	if err := checkContext(ctx); err != nil {
		return err
	}
	if _, err := c.nova.UpdateServerName(id, name); err != nil {
		return fmt.Errorf("failed to rename server %s: %w", id, err)
	}
	return nil
}

// blockDeviceMappings translates plan devices into nova mappings. It reports
// whether the server boots from imageID, which is the case unless the root
// device comes from a snapshot or an existing volume.
func blockDeviceMappings(plan *launch.Plan, imageID string) ([]nova.BlockDeviceMapping, bool) {
	var mappings []nova.BlockDeviceMapping
	bootsFromImage := true

	for _, d := range plan.Devices() {
		bootIndex := -1
		if d.Root {
			bootIndex = 0
		}

		switch {
		case d.Ephemeral:
			mappings = append(mappings, nova.BlockDeviceMapping{
				BootIndex:           -1,
				SourceType:          sourceBlank,
				DestinationType:     destLocal,
				DeleteOnTermination: true,
			})
		case d.SnapshotID != "":
			mappings = append(mappings, nova.BlockDeviceMapping{
				BootIndex:           bootIndex,
				UUID:                d.SnapshotID,
				SourceType:          sourceSnapshot,
				DestinationType:     destVolume,
				VolumeSize:          d.SizeGiB,
				DeleteOnTermination: d.DeleteOnTerminate,
			})
			if d.Root {
				bootsFromImage = false
			}
		case d.VolumeID != "":
			mappings = append(mappings, nova.BlockDeviceMapping{
				BootIndex:           bootIndex,
				UUID:                d.VolumeID,
				SourceType:          sourceVolume,
				DestinationType:     destVolume,
				DeleteOnTermination: d.DeleteOnTerminate,
			})
			if d.Root {
				bootsFromImage = false
			}
		case d.Root && d.SizeGiB > 0:
			// Boot from a volume created from the image at the requested size.
			mappings = append(mappings, nova.BlockDeviceMapping{
				BootIndex:           0,
				UUID:                imageID,
				SourceType:          sourceImage,
				DestinationType:     destVolume,
				VolumeSize:          d.SizeGiB,
				DeleteOnTermination: d.DeleteOnTerminate,
			})
		}
	}
	return mappings, bootsFromImage
}
