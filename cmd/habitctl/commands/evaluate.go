package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

func newKPICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "kpi",
		Short: "Print the KPI summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluator(time.Now())
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), ev.Summary())
		},
	}
}

func newStreaksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "Print every streak, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluator(time.Now())
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), ev.Streaks())
		},
	}
}

func newDaysCmd(opts *options) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "days",
		Short: "Print the status of each day in a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluator(time.Now())
			if err != nil {
				return err
			}

			end := ev.Today()
			if to != "" {
				if end, err = streaks.ParseDate(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			start := end.AddDate(0, 0, -(services.DefaultDaysWindow - 1))
			if from != "" {
				if start, err = streaks.ParseDate(from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}

			return opts.write(cmd.OutOrStdout(), ev.Days(start, end))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default: 29 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default: today)")

	return cmd
}
