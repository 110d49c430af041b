// Package async runs independent tasks concurrently and collects their errors.
//
// [RunParallel] reports the first failure; [RunAll] reports every failure.
// Both wait for all tasks before returning.
package async
