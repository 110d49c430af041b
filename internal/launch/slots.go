package launch

import "fmt"

// SlotNaming describes how device slots are named.
// Lettered slots run from First to Last inclusive.
type SlotNaming struct {
	Root   string
	Prefix string
	First  byte
	Last   byte
}

// DefaultSlotNaming reserves /dev/sda1 for the root device and letters
// other volumes /dev/sdb, /dev/sdc, ...
var DefaultSlotNaming = SlotNaming{Root: "/dev/sda1", Prefix: "/dev/sd", First: 'b', Last: 'z'}

// AWSSlotNaming follows the EC2 recommendation of /dev/sd[f-p] for data volumes.
var AWSSlotNaming = SlotNaming{Root: "/dev/sda1", Prefix: "/dev/sd", First: 'f', Last: 'p'}

// VirtioSlotNaming names devices the way KVM guests see them.
var VirtioSlotNaming = SlotNaming{Root: "/dev/vda", Prefix: "/dev/vd", First: 'b', Last: 'z'}

// Capacity returns the number of lettered slots.
func (n SlotNaming) Capacity() int {
	if n.Last < n.First {
		return 0
	}
	return int(n.Last-n.First) + 1
}

// Lettered returns the i-th lettered slot, counting from 0.
func (n SlotNaming) Lettered(i int) string {
	return n.Prefix + string(rune(n.First)+rune(i))
}

// Ephemeral returns the slot identifier of the i-th ephemeral device.
func (n SlotNaming) Ephemeral(i int) string {
	return fmt.Sprintf("ephemeral%d", i)
}
