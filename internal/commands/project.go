package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-dev/finsight/internal/projection"
)

func newProjectCommand(opts *globalOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the cash balance day by day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if days > 0 {
				cfg.Dashboard.ProjectionDays = days
			}
			svc, _, err := opts.buildService(cfg, log)
			if err != nil {
				return err
			}

			payload, err := svc.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing dashboard: %w", err)
			}

			printProjection(payload.Projection)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "projection horizon in days (default from config)")
	return cmd
}

func printProjection(p projection.Projection) {
	fmt.Printf("%-12s %15s\n", "DATE", "BALANCE")
	for _, pt := range p.Daily {
		marker := ""
		if pt.Balance.IsNegative() {
			marker = "  <0"
		}
		fmt.Printf("%-12s %15s%s\n",
			pt.Date.Format("2006-01-02"),
			pt.Balance.StringFixed(2),
			marker)
	}

	fmt.Printf("\nMinimum balance %s on %s\n",
		p.MinBalance.StringFixed(2), p.MinBalanceDate.Format("2006-01-02"))
	if p.Breaches {
		fmt.Printf("Balance first goes negative in %d day(s)\n", p.BreachDay)
	} else {
		fmt.Println("Balance stays non-negative over the horizon")
	}
}
