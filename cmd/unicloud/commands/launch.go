package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/unicloud/cmd/unicloud/handlers"
)

// Launch returns the launch command.
func Launch() *cobra.Command {
	opts := handlers.LaunchOptions{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch an instance from a launch file",
		Long: `Launch creates one instance described by a launch file.

Block devices in the launch file are compiled into the provider's device
mapping. Blank volumes are provisioned first, in the requested zone, and
attached to the new instance.

If the launch fails after blank volumes were created, their IDs are
reported. Pass --cleanup-orphans to delete them instead.

Example:
  unicloud launch -c unicloud.yaml -f web.yaml --wait`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbosity = verbosity
			opts.Out = cmd.OutOrStdout()
			return handlers.Launch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to provider configuration file (required)")
	cmd.Flags().StringVarP(&opts.LaunchPath, "file", "f", "", "Path to launch file (required)")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for the instance to be running")
	cmd.Flags().BoolVar(&opts.CleanupOrphans, "cleanup-orphans", false, "Delete provisioned volumes if the launch fails")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
