package hcloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/naming"
)

// CreateInstance implements launch.InstanceCreator.
// It issues a single server create call and waits for the create action.
func (c *RealClient) CreateInstance(ctx context.Context, req launch.InstanceRequest) (p resource.Payload, err error) {
	start := time.Now()
	defer func() { c.record("create_instance", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.InstanceCreate)
	defer cancel()

	mapping, err := mapPlan(req.Plan)
	if err != nil {
		return resource.Payload{}, err
	}

	serverType, _, err := c.client.ServerType.GetByName(ctx, req.InstanceType)
	if err != nil {
		return resource.Payload{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return resource.Payload{}, fmt.Errorf("server type not found: %s", req.InstanceType)
	}

	image, err := c.resolveImage(ctx, req.ImageID, mapping.bootSnapshot, serverType.Architecture)
	if err != nil {
		return resource.Payload{}, err
	}

	opts := hcloud.ServerCreateOpts{
		Name:       req.Name,
		ServerType: serverType,
		Image:      image,
		Volumes:    mapping.volumes,
		Labels:     naming.ManagedLabels(req.Name),
	}
	if req.Zone != "" {
		opts.Location = &hcloud.Location{Name: req.Zone}
	}
	if mapping.network != nil {
		opts.Networks = []*hcloud.Network{mapping.network}
	}

	if req.KeyPair != "" {
		key, _, err := c.client.SSHKey.GetByName(ctx, req.KeyPair)
		if err != nil {
			return resource.Payload{}, fmt.Errorf("failed to get ssh key: %w", err)
		}
		if key == nil {
			return resource.Payload{}, fmt.Errorf("ssh key not found: %s", req.KeyPair)
		}
		opts.SSHKeys = []*hcloud.SSHKey{key}
	}

	for _, name := range req.SecurityGroups {
		fw, _, err := c.client.Firewall.GetByName(ctx, name)
		if err != nil {
			return resource.Payload{}, fmt.Errorf("failed to get firewall: %w", err)
		}
		if fw == nil {
			return resource.Payload{}, fmt.Errorf("firewall not found: %s", name)
		}
		opts.Firewalls = append(opts.Firewalls, &hcloud.ServerCreateFirewall{Firewall: *fw})
	}

	result, _, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return resource.Payload{}, fmt.Errorf("failed to create server: %w", err)
	}
	p = serverPayload(result.Server, serverType, image, req.Zone)
	if result.Action != nil {
		if err := c.client.Action.WaitFor(ctx, result.Action); err != nil {
			return resource.Payload{}, &launch.InstanceCreatedError{
				Payload: p,
				Err:     fmt.Errorf("failed to wait for server creation: %w", err),
			}
		}
	}

	c.log.V(1).Info("created server", "id", p.ID, "name", p.Name, "volumes", len(mapping.volumes))
	return p, nil
}

func serverPayload(srv *hcloud.Server, serverType *hcloud.ServerType, image *hcloud.Image, zone string) resource.Payload {
	p := resource.Payload{
		ID:     formatID(srv.ID),
		Name:   srv.Name,
		Status: string(srv.Status),
		Zone:   zone,
		Attributes: map[string]string{
			"server_type": serverType.Name,
			"image":       image.Name,
		},
	}
	if srv.Location != nil {
		p.Zone = srv.Location.Name
	}
	return p
}

// CheckConfig implements launch.ConfigChecker. Servers boot from an image
// or snapshot, and only existing volumes can be attached at creation.
func (c *RealClient) CheckConfig(cfg *launch.Config) error {
	for i, spec := range cfg.BlockDevices {
		if !spec.Volume {
			continue
		}
		_, fromVolume := spec.Source.VolumeID()
		_, fromSnapshot := spec.Source.SnapshotID()
		switch {
		case spec.Root && (fromVolume || spec.Source.IsNone()):
			return &launch.ValidationError{Index: i, Err: fmt.Errorf("%w: root device needs a snapshot or image source", ErrUnsupportedDevice)}
		case !spec.Root && fromSnapshot:
			return &launch.ValidationError{Index: i, Err: fmt.Errorf("%w: volumes cannot be restored from snapshots", ErrUnsupportedDevice)}
		}
	}
	return nil
}

// SetInstanceName implements launch.InstanceCreator.
func (c *RealClient) SetInstanceName(ctx context.Context, id, name string) (err error) {
	start := time.Now()
	defer func() { c.record("set_instance_name", start, err) }()

	n, err := parseID(state.KindInstance, id)
	if err != nil {
		return err
	}
	if _, _, err := c.client.Server.Update(ctx, &hcloud.Server{ID: n}, hcloud.ServerUpdateOpts{Name: name}); err != nil {
		return fmt.Errorf("failed to rename server %s: %w", id, err)
	}
	return nil
}

// serverMapping is a plan translated into server create options.
type serverMapping struct {
	bootSnapshot int64
	volumes      []*hcloud.Volume
	network      *hcloud.Network
}

func mapPlan(plan *launch.Plan) (serverMapping, error) {
	var m serverMapping
	for _, d := range plan.Devices() {
		switch {
		case d.Ephemeral:
			// Local disk comes with the server type.
		case d.Root && d.SnapshotID != "":
			id, err := parseID(state.KindSnapshot, d.SnapshotID)
			if err != nil {
				return m, err
			}
			m.bootSnapshot = id
		case d.Root && d.VolumeID != "":
			return m, fmt.Errorf("%w: %s cannot boot from volume %s", ErrUnsupportedDevice, d.Slot, d.VolumeID)
		case d.SnapshotID != "":
			return m, fmt.Errorf("%w: %s cannot be restored from snapshot %s", ErrUnsupportedDevice, d.Slot, d.SnapshotID)
		case d.VolumeID != "":
			id, err := parseID(state.KindVolume, d.VolumeID)
			if err != nil {
				return m, err
			}
			m.volumes = append(m.volumes, &hcloud.Volume{ID: id})
		}
	}

	if nid := plan.NetworkID(); nid != "" {
		id, err := parseID("network", nid)
		if err != nil {
			return m, err
		}
		m.network = &hcloud.Network{ID: id}
	}
	return m, nil
}

// resolveImage returns the boot snapshot when the plan names one and the
// requested image otherwise.
func (c *RealClient) resolveImage(ctx context.Context, imageID string, snapshot int64, arch hcloud.Architecture) (*hcloud.Image, error) {
	if snapshot != 0 {
		img, _, err := c.client.Image.GetByID(ctx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot: %w", err)
		}
		if img == nil {
			return nil, fmt.Errorf("snapshot not found: %d", snapshot)
		}
		return img, nil
	}

	if imageID == "" {
		return nil, errors.New("image is required")
	}
	img, _, err := c.client.Image.GetForArchitecture(ctx, imageID, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("image not found: %s", imageID)
	}
	return img, nil
}
