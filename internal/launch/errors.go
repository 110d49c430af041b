package launch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/unicloud/internal/resource"
)

// Validation failures. Match them with errors.Is.
var (
	ErrMultipleRoots   = errors.New("more than one root device")
	ErrEphemeralSource = errors.New("ephemeral device cannot have a source")
	ErrZoneRequired    = errors.New("zone is required to provision a blank volume")
	ErrSizeRequired    = errors.New("a positive size is required to provision a blank volume")
	ErrTooManyDevices  = errors.New("not enough device slots")
)

// ValidationError reports an invalid launch configuration. It is returned
// before any provider call is made.
type ValidationError struct {
	// Index of the offending block device, or -1 for the configuration as a whole.
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid launch configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid launch configuration: block device %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PartialProvisioningError reports a failure that happened after blank
// volumes were provisioned. VolumeIDs lists the volumes that were left
// behind; when orphan cleanup ran, CleanupErr holds its failures and
// VolumeIDs only the volumes that could not be deleted.
type PartialProvisioningError struct {
	VolumeIDs  []string
	Err        error
	CleanupErr error
}

func (e *PartialProvisioningError) Error() string {
	msg := fmt.Sprintf("%v (orphaned volumes: %s)", e.Err, strings.Join(e.VolumeIDs, ", "))
	if len(e.VolumeIDs) == 0 {
		msg = fmt.Sprintf("%v (provisioned volumes were cleaned up)", e.Err)
	}
	if e.CleanupErr != nil {
		msg += fmt.Sprintf("; cleanup failed: %v", e.CleanupErr)
	}
	return msg
}

func (e *PartialProvisioningError) Unwrap() error {
	return e.Err
}

// InstanceCreatedError reports a failure after the provider created the
// instance, such as volumes that could not be attached. Payload describes
// the instance. Unattached lists plan volumes that are not attached to it.
type InstanceCreatedError struct {
	Payload    resource.Payload
	Unattached []string
	Err        error
}

func (e *InstanceCreatedError) Error() string {
	return fmt.Sprintf("instance %s was created but %v", e.Payload.ID, e.Err)
}

func (e *InstanceCreatedError) Unwrap() error {
	return e.Err
}
