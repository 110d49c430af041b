package config

import (
	"fmt"

	"github.com/imamik/unicloud/internal/launch"
)

// LaunchFile is the YAML form of a launch request.
//
//	name: web-1
//	image: ami-0abcdef
//	instance_type: t3.micro
//	zone: us-east-1a
//	block_devices:
//	  - root: true
//	    snapshot: snap-0123
//	  - size_gib: 100
//	  - ephemeral: true
//	networks: [subnet-0123]
type LaunchFile struct {
	Name           string        `yaml:"name" validate:"required"`
	Image          string        `yaml:"image" validate:"required"`
	InstanceType   string        `yaml:"instance_type" validate:"required"`
	Zone           string        `yaml:"zone"`
	KeyPair        string        `yaml:"key_pair"`
	SecurityGroups []string      `yaml:"security_groups" validate:"dive,required"`
	BlockDevices   []BlockDevice `yaml:"block_devices" validate:"dive"`
	Networks       []string      `yaml:"networks" validate:"dive,required"`
}

// BlockDevice is one entry of a launch file's block_devices list.
// At most one of Volume, Snapshot and Image may be set; none requests a
// blank volume of SizeGiB.
type BlockDevice struct {
	Root              bool   `yaml:"root"`
	Ephemeral         bool   `yaml:"ephemeral"`
	Volume            string `yaml:"volume" validate:"excluded_with=Snapshot Image"`
	Snapshot          string `yaml:"snapshot" validate:"excluded_with=Volume Image"`
	Image             string `yaml:"image" validate:"excluded_with=Volume Snapshot"`
	SizeGiB           int    `yaml:"size_gib" validate:"gte=0"`
	DeleteOnTerminate *bool  `yaml:"delete_on_terminate"`
}

// Validate checks field-level rules. Layout rules (one root, zones for
// blank volumes) are enforced by the launch compiler.
func (lf *LaunchFile) Validate() error {
	return validate.Struct(lf)
}

func (bd BlockDevice) source() launch.Source {
	switch {
	case bd.Volume != "":
		return launch.VolumeSource(bd.Volume)
	case bd.Snapshot != "":
		return launch.SnapshotSource(bd.Snapshot)
	case bd.Image != "":
		return launch.ImageSource(bd.Image)
	default:
		return launch.NoSource()
	}
}

// Request converts the launch file into a launch request. The request has
// no launch configuration when neither block devices nor networks are listed.
func (lf *LaunchFile) Request() launch.Request {
	req := launch.Request{
		Name:           lf.Name,
		Image:          lf.Image,
		InstanceType:   lf.InstanceType,
		Zone:           lf.Zone,
		KeyPair:        lf.KeyPair,
		SecurityGroups: lf.SecurityGroups,
	}
	if len(lf.BlockDevices) == 0 && len(lf.Networks) == 0 {
		return req
	}

	cfg := launch.NewConfig()
	for _, bd := range lf.BlockDevices {
		if bd.Ephemeral {
			cfg.BlockDevices = append(cfg.BlockDevices, launch.BlockDeviceSpec{Root: bd.Root, Source: bd.source()})
			continue
		}
		deleteOnTerminate := true
		if bd.DeleteOnTerminate != nil {
			deleteOnTerminate = *bd.DeleteOnTerminate
		}
		cfg.AddVolumeDevice(bd.source(), bd.SizeGiB, bd.Root, deleteOnTerminate)
	}
	for _, n := range lf.Networks {
		cfg.AddNetwork(n)
	}
	req.Config = cfg
	return req
}

// String summarizes the launch file for logs.
func (lf *LaunchFile) String() string {
	return fmt.Sprintf("%s (%s, %s, %d block devices)", lf.Name, lf.Image, lf.InstanceType, len(lf.BlockDevices))
}
