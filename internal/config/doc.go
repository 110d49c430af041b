// Package config loads unicloud's provider configuration and launch files.
//
// A [Config] selects one provider and carries its connection settings.
// Secrets are never read from files: [Config.ApplyEnv] fills them from the
// provider's usual environment variables (HCLOUD_TOKEN, OS_USERNAME and
// OS_PASSWORD; AWS credentials come from the SDK's default chain).
//
// A [LaunchFile] is the declarative form of a launch request and converts
// into a launch.Request with [LaunchFile.Request].
//
// [Timeouts] are read from UNICLOUD_* environment variables by [LoadTimeouts].
package config
