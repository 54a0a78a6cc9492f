package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "engine",
		Short:        "Workforce utilization computation engine",
		SilenceUsage: true,
	}
	cmd.AddCommand(newComputeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCacheCmd())
	return cmd
}

func execute() error {
	return newRootCmd().Execute()
}
