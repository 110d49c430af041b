// Package main is the entry point for the unicloud CLI.
//
// unicloud launches instances with declarative block device layouts and
// reports resource lifecycle states in one vocabulary across AWS, OpenStack
// and Hetzner Cloud.
//
// Commands: launch, status, normalize, bucket, version.
//
// For detailed usage information, run:
//
//	unicloud --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/unicloud/cmd/unicloud/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
