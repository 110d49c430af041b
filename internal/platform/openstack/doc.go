// Package openstack adapts nova and cinder to unicloud's provider contracts.
//
// Plans map directly onto nova block device mappings: the root device boots
// at index 0, other devices are not bootable, and ephemeral devices are
// blank local disks.
package openstack
