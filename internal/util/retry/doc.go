// Package retry provides exponential backoff for operations that are expected
// to succeed eventually, such as polling a resource until it settles.
//
// [WithExponentialBackoff] re-runs an operation until it returns nil, the
// attempt budget is spent, or the context ends. Errors wrapped with [Fatal]
// stop the loop immediately.
package retry
