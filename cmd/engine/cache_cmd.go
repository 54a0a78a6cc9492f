package main

import (
	"github.com/spf13/cobra"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/pkg/configuration"
)

// The cache subcommands run against an in-process pipeline: with the
// default in-memory backend they are smoke tools; with the redis
// backend they inspect and flush the shared store.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or flush the result cache",
	}
	cmd.AddCommand(newCacheStatusCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a snapshot of all caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configuration.Use())
			if err != nil {
				return err
			}
			return writeJSON(svc.CacheStatus(cmd.Context()))
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var (
		scope string
		token string
		view  string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Flush cached results, optionally scoped",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configuration.Use())
			if err != nil {
				return err
			}
			var v period.View
			if view != "" {
				v = period.ParseView(view)
			}
			removed := svc.InvalidateCache(cmd.Context(), scope, token, v)
			return writeJSON(map[string]any{"removed": removed})
		},
	}

	cmd.Flags().StringVar(&scope, "department", "", "limit the flush to one department scope")
	cmd.Flags().StringVar(&token, "period", "", "limit the flush to one period token")
	cmd.Flags().StringVar(&view, "view", "", "limit the flush to one view type")
	return cmd
}
