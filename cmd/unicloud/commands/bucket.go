package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/unicloud/cmd/unicloud/handlers"
)

// Bucket returns the bucket command group for S3 buckets.
func Bucket() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Manage S3 buckets (aws provider)",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to provider configuration file (required)")
	_ = cmd.MarkPersistentFlagRequired("config")

	run := func(action handlers.BucketAction) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			opts := handlers.BucketOptions{
				ConfigPath: configPath,
				Action:     action,
				Out:        cmd.OutOrStdout(),
			}
			if len(args) > 0 {
				opts.Name = args[0]
			}
			if len(args) > 1 {
				opts.Prefix = args[1]
			}
			return handlers.Bucket(cmd.Context(), opts)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a bucket (no error if you already own it)",
		Args:  cobra.ExactArgs(1),
		RunE:  run(handlers.BucketCreate),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "exists NAME",
		Short: "Report whether a bucket exists",
		Args:  cobra.ExactArgs(1),
		RunE:  run(handlers.BucketExists),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your buckets",
		Args:  cobra.NoArgs,
		RunE:  run(handlers.BucketList),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ls NAME [PREFIX]",
		Short: "List objects in a bucket",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  run(handlers.BucketListObjects),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an empty bucket",
		Args:  cobra.ExactArgs(1),
		RunE:  run(handlers.BucketDelete),
	})

	return cmd
}
