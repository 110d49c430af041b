package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/unicloud/cmd/unicloud/handlers"
)

// Normalize returns the normalize command.
func Normalize() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "normalize PROVIDER KIND [STATUS]",
		Short: "Translate a raw provider status into its canonical state",
		Long: `Normalize maps a raw status string to the canonical state vocabulary.

Without STATUS the provider's whole table for KIND is printed.

Example:
  unicloud normalize openstack instance SHUTOFF
  unicloud normalize aws volume`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 3 {
				raw = args[2]
			}
			return handlers.Normalize(cmd.OutOrStdout(), args[0], args[1], raw, len(args) == 3, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}
