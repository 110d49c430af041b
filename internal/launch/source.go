package launch

import "fmt"

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceVolume
	sourceSnapshot
	sourceImage
)

// Source is where a block device's content comes from.
// The zero value is NoSource.
type Source struct {
	kind sourceKind
	id   string
}

// NoSource requests a new blank volume.
func NoSource() Source { return Source{} }

// VolumeSource attaches an existing volume.
func VolumeSource(id string) Source { return Source{kind: sourceVolume, id: id} }

// SnapshotSource creates the device from a snapshot.
func SnapshotSource(id string) Source { return Source{kind: sourceSnapshot, id: id} }

// ImageSource is accepted for completeness but image-backed block devices are
// not supported: the device is mapped with neither a volume nor a snapshot.
func ImageSource(id string) Source { return Source{kind: sourceImage, id: id} }

// IsNone reports whether no source was given.
func (s Source) IsNone() bool { return s.kind == sourceNone }

// VolumeID returns the referenced volume, if any.
func (s Source) VolumeID() (string, bool) { return s.id, s.kind == sourceVolume }

// SnapshotID returns the referenced snapshot, if any.
func (s Source) SnapshotID() (string, bool) { return s.id, s.kind == sourceSnapshot }

// ImageID returns the referenced image, if any.
func (s Source) ImageID() (string, bool) { return s.id, s.kind == sourceImage }

func (s Source) String() string {
	switch s.kind {
	case sourceVolume:
		return fmt.Sprintf("volume:%s", s.id)
	case sourceSnapshot:
		return fmt.Sprintf("snapshot:%s", s.id)
	case sourceImage:
		return fmt.Sprintf("image:%s", s.id)
	default:
		return "none"
	}
}
