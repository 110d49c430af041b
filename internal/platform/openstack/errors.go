package openstack

import (
	"errors"

	gooseerrors "github.com/go-goose/goose/v5/errors"
)

// ErrVolumeFailed is returned when cinder reports a new volume in an error state.
var ErrVolumeFailed = errors.New("volume entered an error state")

// IsNotFound checks if an error indicates an OpenStack resource does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return gooseerrors.IsNotFound(err)
}
