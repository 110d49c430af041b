// Package state defines the canonical lifecycle vocabulary shared by every
// provider and the per-provider tables that translate raw status strings into it.
//
// Each resource [Kind] has a fixed set of legal states:
//
//   - instance: pending, configuring, rebooting, running, stopped, terminated, error, unknown
//   - volume:   creating, configuring, available, in-use, error, unknown
//   - snapshot: pending, configuring, available, error, unknown
//   - image:    pending, available, error, unknown
//
// [Normalize] is total: a status that is missing from a provider's table
// resolves to [Unknown] instead of failing, so new provider statuses never
// break callers.
package state
