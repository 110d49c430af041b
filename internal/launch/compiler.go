package launch

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/util/naming"
)

// VolumeRequest asks a provider for a new volume.
type VolumeRequest struct {
	Name       string
	SizeGiB    int
	Zone       string
	SnapshotID string
}

// VolumeProvisioner creates volumes and returns their IDs once usable.
// A volume that was created but never became usable is returned with its
// ID alongside the error.
type VolumeProvisioner interface {
	CreateVolume(ctx context.Context, req VolumeRequest) (string, error)
}

// Compiler resolves launch configurations into device mapping plans.
type Compiler struct {
	provisioner VolumeProvisioner
	slots       SlotNaming
	log         logr.Logger
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithSlotNaming overrides DefaultSlotNaming.
func WithSlotNaming(n SlotNaming) CompilerOption {
	return func(c *Compiler) {
		c.slots = n
	}
}

// WithCompilerLogger sets the compiler's logger.
func WithCompilerLogger(log logr.Logger) CompilerOption {
	return func(c *Compiler) {
		c.log = log
	}
}

// NewCompiler returns a Compiler that provisions blank volumes through p.
func NewCompiler(p VolumeProvisioner, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		provisioner: p,
		slots:       DefaultSlotNaming,
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type compileOptions struct {
	instanceName string
}

// CompileOption tunes a single Compile call.
type CompileOption func(*compileOptions)

// ForInstance names blank volumes after the instance they are provisioned for.
func ForInstance(name string) CompileOption {
	return func(o *compileOptions) {
		o.instanceName = name
	}
}

// Compile validates cfg and resolves it into a Plan.
//
// Validation covers the whole configuration before any volume is
// provisioned. Blank volumes are then created one at a time, in input
// order, in zone. If provisioning fails after earlier volumes were created
// the error is a *PartialProvisioningError naming them.
func (c *Compiler) Compile(ctx context.Context, cfg *Config, zone string, opts ...CompileOption) (*Plan, error) {
	if cfg == nil {
		return &Plan{}, nil
	}
	if err := c.validate(cfg, zone); err != nil {
		return nil, err
	}

	o := &compileOptions{}
	for _, opt := range opts {
		opt(o)
	}

	plan := &Plan{devices: make([]Device, 0, len(cfg.BlockDevices))}
	letter, ephemeral := 0, 0

	for i, spec := range cfg.BlockDevices {
		if !spec.Volume {
			plan.devices = append(plan.devices, Device{
				Slot:           c.slots.Ephemeral(ephemeral),
				Ephemeral:      true,
				EphemeralIndex: ephemeral,
			})
			ephemeral++
			continue
		}

		dev := Device{
			Root:              spec.Root,
			SizeGiB:           spec.SizeGiB,
			DeleteOnTerminate: spec.DeleteOnTerminate,
		}
		if spec.Root {
			dev.Slot = c.slots.Root
		} else {
			dev.Slot = c.slots.Lettered(letter)
			letter++
		}

		if id, ok := spec.Source.SnapshotID(); ok {
			dev.SnapshotID = id
		} else if id, ok := spec.Source.VolumeID(); ok {
			dev.VolumeID = id
		} else if id, ok := spec.Source.ImageID(); ok {
			c.log.V(1).Info("ignoring image source for block device", "index", i, "image", id, "slot", dev.Slot)
		} else {
			id, err := c.provisioner.CreateVolume(ctx, VolumeRequest{
				Name:    naming.Volume(o.instanceName, dev.Slot),
				SizeGiB: spec.SizeGiB,
				Zone:    zone,
			})
			if err != nil {
				err = fmt.Errorf("failed to provision blank volume for %s: %w", dev.Slot, err)
				if id != "" {
					plan.provisioned = append(plan.provisioned, id)
				}
				if len(plan.provisioned) > 0 {
					return nil, &PartialProvisioningError{VolumeIDs: plan.ProvisionedVolumes(), Err: err}
				}
				return nil, err
			}
			c.log.Info("provisioned blank volume", "volume", id, "slot", dev.Slot, "sizeGiB", spec.SizeGiB, "zone", zone)
			dev.VolumeID = id
			dev.Provisioned = true
			plan.provisioned = append(plan.provisioned, id)
		}

		plan.devices = append(plan.devices, dev)
	}

	if len(cfg.NetworkIDs) > 0 {
		plan.networkID = cfg.NetworkIDs[0]
		if len(cfg.NetworkIDs) > 1 {
			c.log.V(1).Info("only the first network is attached", "network", plan.networkID, "ignored", cfg.NetworkIDs[1:])
		}
	}

	return plan, nil
}

// validate checks every rule that does not need a provider call.
func (c *Compiler) validate(cfg *Config, zone string) error {
	roots, lettered := 0, 0
	for i, spec := range cfg.BlockDevices {
		if spec.Root {
			roots++
			if roots > 1 {
				return &ValidationError{Index: i, Err: ErrMultipleRoots}
			}
		}
		if !spec.Volume {
			if !spec.Source.IsNone() {
				return &ValidationError{Index: i, Err: ErrEphemeralSource}
			}
			continue
		}
		if !spec.Root {
			lettered++
		}
		if spec.SizeGiB < 0 {
			return &ValidationError{Index: i, Err: ErrSizeRequired}
		}
		if spec.Source.IsNone() {
			if zone == "" {
				return &ValidationError{Index: i, Err: ErrZoneRequired}
			}
			if spec.SizeGiB == 0 {
				return &ValidationError{Index: i, Err: ErrSizeRequired}
			}
		}
	}
	if lettered > c.slots.Capacity() {
		return &ValidationError{Index: -1, Err: fmt.Errorf("%w: %d volumes requested, %d available", ErrTooManyDevices, lettered, c.slots.Capacity())}
	}
	return nil
}
