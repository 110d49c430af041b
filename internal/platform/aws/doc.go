// Package aws adapts Amazon EC2 and S3 to unicloud's provider contracts.
//
// [Client] describes instances, volumes, snapshots and images and launches
// instances from a compiled device mapping plan. RunInstances cannot reference
// existing volumes, so those are attached once the instance is running.
//
// [ObjectStore] manages S3 buckets for the same account and region.
package aws
