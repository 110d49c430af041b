// Package hcloud adapts the Hetzner Cloud API to unicloud's provider contracts.
//
// [RealClient] describes servers, volumes, images and snapshots, provisions
// blank volumes and creates servers from a compiled device mapping plan.
//
// Hetzner has no per-device block mapping, so plans are translated as follows:
//
//   - a root snapshot becomes the server's boot image
//   - existing and freshly provisioned volumes are attached at creation
//   - ephemeral devices are the server type's local disk and are skipped
//   - non-root snapshots and volume-backed roots are rejected with [ErrUnsupportedDevice]
//
// Security groups map to firewalls and the key pair to an SSH key, both by name.
package hcloud
