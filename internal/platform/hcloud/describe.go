package hcloud

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

// Describe implements resource.StatusSource.
// Snapshots are images of type snapshot; any other image type is reported as missing.
func (c *RealClient) Describe(ctx context.Context, kind state.Kind, id string) (p resource.Payload, found bool, err error) {
	start := time.Now()
	defer func() { c.record("describe_"+string(kind), start, err) }()

	n, err := parseID(kind, id)
	if err != nil {
		return resource.Payload{}, false, err
	}

	switch kind {
	case state.KindInstance:
		return c.describeServer(ctx, n)
	case state.KindVolume:
		return c.describeVolume(ctx, n)
	case state.KindSnapshot, state.KindImage:
		return c.describeImage(ctx, kind, n)
	default:
		return resource.Payload{}, false, fmt.Errorf("unsupported resource kind %q", kind)
	}
}

func (c *RealClient) describeServer(ctx context.Context, id int64) (resource.Payload, bool, error) {
	srv, _, err := c.client.Server.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return resource.Payload{}, false, nil
		}
		return resource.Payload{}, false, fmt.Errorf("failed to get server: %w", err)
	}
	if srv == nil {
		return resource.Payload{}, false, nil
	}

	p := resource.Payload{
		ID:         formatID(srv.ID),
		Name:       srv.Name,
		Status:     string(srv.Status),
		Attributes: map[string]string{},
	}
	if srv.Location != nil {
		p.Zone = srv.Location.Name
	}
	if srv.ServerType != nil {
		p.Attributes["server_type"] = srv.ServerType.Name
	}
	if srv.Image != nil {
		p.Attributes["image"] = srv.Image.Name
	}
	if ip := srv.PublicNet.IPv4.IP; ip != nil {
		p.Attributes["public_ipv4"] = ip.String()
	}
	return p, true, nil
}

func (c *RealClient) describeVolume(ctx context.Context, id int64) (resource.Payload, bool, error) {
	vol, _, err := c.client.Volume.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return resource.Payload{}, false, nil
		}
		return resource.Payload{}, false, fmt.Errorf("failed to get volume: %w", err)
	}
	if vol == nil {
		return resource.Payload{}, false, nil
	}

	p := resource.Payload{
		ID:     formatID(vol.ID),
		Name:   vol.Name,
		Status: string(vol.Status),
		Attributes: map[string]string{
			"size_gib": strconv.Itoa(vol.Size),
		},
	}
	if vol.Location != nil {
		p.Zone = vol.Location.Name
	}
	if vol.Server != nil {
		p.Attributes["server"] = formatID(vol.Server.ID)
	}
	if vol.LinuxDevice != "" {
		p.Attributes["linux_device"] = vol.LinuxDevice
	}
	return p, true, nil
}

func (c *RealClient) describeImage(ctx context.Context, kind state.Kind, id int64) (resource.Payload, bool, error) {
	img, _, err := c.client.Image.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return resource.Payload{}, false, nil
		}
		return resource.Payload{}, false, fmt.Errorf("failed to get image: %w", err)
	}
	if img == nil {
		return resource.Payload{}, false, nil
	}
	if kind == state.KindSnapshot && img.Type != hcloud.ImageTypeSnapshot {
		return resource.Payload{}, false, nil
	}

	name := img.Name
	if name == "" {
		name = img.Description
	}
	return resource.Payload{
		ID:     formatID(img.ID),
		Name:   name,
		Status: string(img.Status),
		Attributes: map[string]string{
			"type":         string(img.Type),
			"architecture": string(img.Architecture),
		},
	}, true, nil
}
