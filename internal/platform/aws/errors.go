package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// ErrUnsupportedDevice is returned for plan devices EC2 cannot express.
var ErrUnsupportedDevice = errors.New("device mapping not supported by ec2")

var notFoundCodes = map[string]bool{
	"InvalidInstanceID.NotFound": true,
	"InvalidVolume.NotFound":     true,
	"InvalidSnapshot.NotFound":   true,
	"InvalidAMIID.NotFound":      true,
	"InvalidAMIID.Unavailable":   true,
}

// errorCode returns the API error code carried by err, or "".
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound checks if an error indicates an EC2 resource does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return notFoundCodes[errorCode(err)]
}
