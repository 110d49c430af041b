// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// verbosity is shared by every subcommand through the root's persistent flag.
var verbosity int

// Root returns the root command for the unicloud CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "unicloud",
		Short:         "Launch and track cloud instances across providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "Log verbosity (0 = info, 1 = debug)")

	cmd.AddCommand(Launch())
	cmd.AddCommand(Status())
	cmd.AddCommand(Normalize())
	cmd.AddCommand(Bucket())
	cmd.AddCommand(Version())

	return cmd
}
