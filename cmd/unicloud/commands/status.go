package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/unicloud/cmd/unicloud/handlers"
)

// Status returns the status command.
func Status() *cobra.Command {
	opts := handlers.StatusOptions{}

	cmd := &cobra.Command{
		Use:   "status ID...",
		Short: "Show the canonical state of resources",
		Long: `Status describes resources and prints their canonical lifecycle state.

Resources that no longer exist are reported as unknown. With --wait the
command polls until every resource reaches the given state.

Example:
  unicloud status -c unicloud.yaml --kind volume vol-0123 vol-4567
  unicloud status -c unicloud.yaml --kind instance --wait running i-0abc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.IDs = args
			opts.Verbosity = verbosity
			opts.Out = cmd.OutOrStdout()
			return handlers.Status(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to provider configuration file (required)")
	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "instance", "Resource kind: instance, volume, snapshot or image")
	cmd.Flags().StringVar(&opts.Wait, "wait", "", "Poll until every resource reaches this state")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
