package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	InstanceCreate    time.Duration // Timeout for the instance creation call and its follow-up attachments
	VolumeCreate      time.Duration // Timeout for a blank volume to become available
	Wait              time.Duration // Timeout for status --wait and launch --wait
	Delete            time.Duration // Timeout for orphan cleanup
	RetryMaxAttempts  int           // Maximum number of polls while waiting
	RetryInitialDelay time.Duration // Initial delay between polls
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - UNICLOUD_TIMEOUT_INSTANCE_CREATE (default: 10m)
//   - UNICLOUD_TIMEOUT_VOLUME_CREATE (default: 5m)
//   - UNICLOUD_TIMEOUT_WAIT (default: 15m)
//   - UNICLOUD_TIMEOUT_DELETE (default: 5m)
//   - UNICLOUD_RETRY_MAX_ATTEMPTS (default: 60)
//   - UNICLOUD_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		InstanceCreate:    parseDuration("UNICLOUD_TIMEOUT_INSTANCE_CREATE", 10*time.Minute),
		VolumeCreate:      parseDuration("UNICLOUD_TIMEOUT_VOLUME_CREATE", 5*time.Minute),
		Wait:              parseDuration("UNICLOUD_TIMEOUT_WAIT", 15*time.Minute),
		Delete:            parseDuration("UNICLOUD_TIMEOUT_DELETE", 5*time.Minute),
		RetryMaxAttempts:  parseInt("UNICLOUD_RETRY_MAX_ATTEMPTS", 60),
		RetryInitialDelay: parseDuration("UNICLOUD_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
