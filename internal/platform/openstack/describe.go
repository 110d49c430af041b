package openstack

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

// Describe implements resource.StatusSource.
func (c *Client) Describe(ctx context.Context, kind state.Kind, id string) (p resource.Payload, found bool, err error) {
	start := time.Now()
	defer func() { c.record("describe_"+string(kind), start, err) }()

	if err := checkContext(ctx); err != nil {
		return resource.Payload{}, false, err
	}

	switch kind {
	case state.KindInstance:
		p, err = c.describeServer(id)
	case state.KindVolume:
		p, err = c.describeVolume(id)
	case state.KindSnapshot:
		p, err = c.describeSnapshot(id)
	case state.KindImage:
		p, err = c.describeImage(id)
	default:
		return resource.Payload{}, false, fmt.Errorf("unsupported resource kind %q", kind)
	}
	if IsNotFound(err) {
		return resource.Payload{}, false, nil
	}
	if err != nil {
		return resource.Payload{}, false, fmt.Errorf("failed to describe %s %s: %w", kind, id, err)
	}
	return p, true, nil
}

func (c *Client) describeServer(id string) (resource.Payload, error) {
	srv, err := c.nova.GetServer(id)
	if err != nil {
		return resource.Payload{}, err
	}
	return resource.Payload{
		ID:     srv.Id,
		Name:   srv.Name,
		Status: srv.Status,
		Zone:   srv.AvailabilityZone,
		Attributes: map[string]string{
			"flavor": srv.Flavor.Id,
			"image":  srv.Image.Id,
		},
	}, nil
}

func (c *Client) describeVolume(id string) (resource.Payload, error) {
	res, err := c.cinder.GetVolume(id)
	if err != nil {
		return resource.Payload{}, err
	}
	v := res.Volume
	p := resource.Payload{
		ID:     v.ID,
		Name:   v.Name,
		Status: v.Status,
		Zone:   v.AvailabilityZone,
		Attributes: map[string]string{
			"size_gib": strconv.Itoa(v.Size),
		},
	}
	if v.SnapshotID != "" {
		p.Attributes["snapshot_id"] = v.SnapshotID
	}
	return p, nil
}

func (c *Client) describeSnapshot(id string) (resource.Payload, error) {
	res, err := c.cinder.GetSnapshot(id)
	if err != nil {
		return resource.Payload{}, err
	}
	s := res.Snapshot
	return resource.Payload{
		ID:     s.ID,
		Name:   s.Name,
		Status: s.Status,
		Attributes: map[string]string{
			"volume_id": s.VolumeID,
			"size_gib":  strconv.Itoa(s.Size),
		},
	}, nil
}

func (c *Client) describeImage(id string) (resource.Payload, error) {
	img, err := c.nova.GetImageDetail(id)
	if err != nil {
		return resource.Payload{}, err
	}
	return resource.Payload{
		ID:     img.Id,
		Name:   img.Name,
		Status: img.Status,
		Attributes: map[string]string{
			"progress": strconv.Itoa(img.Progress),
		},
	}, nil
}
