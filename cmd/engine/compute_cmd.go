package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/pkg/configuration"
)

type computeOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newComputeCmd() *cobra.Command {
	var (
		scope string
		token string
		view  string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute utilization for one department scope and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			svc, err := buildService(conf)
			if err != nil {
				return err
			}

			started := time.Now()
			res, err := svc.ComputeUtilization(cmd.Context(), scope, token, period.ParseView(view))
			if err != nil {
				return err
			}
			return writeJSON(computeOutput{
				Command:    "compute",
				DurationMS: time.Since(started).Milliseconds(),
				Result:     res,
			})
		},
	}

	cmd.Flags().StringVar(&scope, "department", "all", "department scope name, or 'all'")
	cmd.Flags().StringVar(&token, "period", "", "period token (YYYY-MM, YYYY-NN or YYYY-DDD); empty for the view default")
	cmd.Flags().StringVar(&view, "view", "monthly", "view type: monthly, weekly or daily")
	return cmd
}
