// Package launch turns a declarative storage and network layout into a
// provider-neutral device mapping and launches instances from it.
//
// A [Config] lists block devices in order. [Compiler.Compile] validates the
// whole configuration first, then walks it once: ephemeral devices receive
// increasing indexes from 0, the root volume receives the reserved root slot
// and every other volume receives the next lettered slot. Volumes without a
// source are provisioned blank, synchronously, in the requested zone.
//
// [Launcher.Launch] compiles the configuration (if any) and issues exactly
// one instance creation call. Blank volumes that outlive a failed launch are
// reported through [PartialProvisioningError]; they are deleted only when
// the launcher was built with [WithOrphanCleanup].
package launch
