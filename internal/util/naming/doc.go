// Package naming provides consistent names for resources created on a
// caller's behalf.
//
// Blank volumes provisioned during a launch are named after the instance
// and the device slot they fill, e.g. "web-1-sdb", so that orphans left by
// a failed launch can be traced back to the request that created them.
package naming
