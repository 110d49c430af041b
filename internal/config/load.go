package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, completes from the environment and validates a provider configuration.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadLaunchFile reads and validates a launch file.
func LoadLaunchFile(path string) (*LaunchFile, error) {
	var lf LaunchFile
	if err := decodeFile(path, &lf); err != nil {
		return nil, err
	}
	if err := lf.Validate(); err != nil {
		return nil, fmt.Errorf("launch file validation failed: %w", err)
	}
	return &lf, nil
}

// decodeFile strictly decodes a YAML document: unknown keys are rejected.
func decodeFile(path string, out any) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to unmarshal yaml %s: %w", path, err)
	}
	return nil
}
