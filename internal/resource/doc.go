// Package resource keeps a caller's cached view of a cloud resource in sync
// with its provider.
//
// A [Tracked] value pairs a resource identity with the last payload a
// [StatusSource] returned for it. [Tracked.Refresh] replaces that payload
// wholesale and recomputes the canonical state. A resource that has vanished
// on the provider side is not an error: the cached fields are kept, the
// existence flag is cleared and the state becomes [state.Unknown].
//
// Each Tracked is an independent view. Refreshing one never touches another,
// so callers holding distinct views of the same resource need no locking.
package resource
