package launch

import "slices"

// Device is one resolved entry of a Plan.
//
// Exactly one of SnapshotID, VolumeID or Ephemeral describes the content,
// except for image-sourced volumes which carry none of them.
type Device struct {
	Slot              string
	Root              bool
	Ephemeral         bool
	EphemeralIndex    int
	SnapshotID        string
	VolumeID          string
	SizeGiB           int
	DeleteOnTerminate bool
	// Provisioned is set when VolumeID names a blank volume created by the compiler.
	Provisioned bool
}

// Plan is the compiled device mapping for one launch. It is immutable.
type Plan struct {
	devices     []Device
	networkID   string
	provisioned []string
}

// Devices returns the devices in input order.
func (p *Plan) Devices() []Device {
	if p == nil {
		return nil
	}
	return slices.Clone(p.devices)
}

// NetworkID returns the primary network, or "" when none was requested.
func (p *Plan) NetworkID() string {
	if p == nil {
		return ""
	}
	return p.networkID
}

// ProvisionedVolumes returns the IDs of blank volumes created while compiling.
func (p *Plan) ProvisionedVolumes() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.provisioned)
}

// Root returns the root device, if the plan has one.
func (p *Plan) Root() (Device, bool) {
	if p == nil {
		return Device{}, false
	}
	for _, d := range p.devices {
		if d.Root {
			return d, true
		}
	}
	return Device{}, false
}
