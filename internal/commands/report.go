package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-dev/finsight/internal/dashboard"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the full dashboard summary",
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
			svc, _, err := opts.buildService(cfg, log)
			if err != nil {
				return err
			}

			payload, err := svc.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing dashboard: %w", err)
			}

			printReport(payload)
			return nil
		},
	}
}

func printReport(p *dashboard.Payload) {
	fmt.Printf("Dashboard as of %s\n\n", p.GeneratedAt.Format("2006-01-02"))

	fmt.Printf("Cash position: %s\n", p.Cash.Total.StringFixed(2))
	for _, acc := range p.Cash.Accounts {
		fmt.Printf("  %-30s %15s\n", acc.Name, acc.Balance.StringFixed(2))
	}

	fmt.Printf("\nBurn rate: %s/month over %d month(s)\n",
		p.BurnRate.MonthlyAverage.StringFixed(2), p.BurnRate.MonthsUsed)
	if p.Runway.Infinite {
		fmt.Println("Runway: infinite (no modeled burn)")
	} else {
		fmt.Printf("Runway: %s months\n", p.Runway.Months.StringFixed(1))
	}

	fmt.Printf("Delinquency: %s%% (%d of %d open receivables overdue)",
		p.Delinquency.Rate.StringFixed(1), p.Delinquency.OverdueCount, p.Delinquency.TotalCount)
	if p.DelinquencyWarning {
		fmt.Print("  [WARNING]")
	}
	fmt.Println()

	fmt.Printf("Net position: %s (receivables %s - payables %s)\n",
		p.NetPosition.Net.StringFixed(2),
		p.NetPosition.ReceivableTotal.StringFixed(2),
		p.NetPosition.PayableTotal.StringFixed(2))
	fmt.Printf("Working capital: %s\n", p.Liquidity.WorkingCapital.StringFixed(2))

	fmt.Println("\nReceivable aging:")
	printAging(p, true)
	fmt.Println("Payable aging:")
	printAging(p, false)

	fmt.Printf("\nProjection (%d days): minimum %s on %s\n",
		len(p.Projection.Daily)-1,
		p.Projection.MinBalance.StringFixed(2),
		p.Projection.MinBalanceDate.Format("2006-01-02"))
	if p.Projection.Breaches {
		fmt.Printf("  balance goes negative in %d day(s)\n", p.Projection.BreachDay)
	}

	rec := p.Reconciliation
	fmt.Printf("\nReconciliation: %d matched, %d bank-only, %d erp-only (match rate %s%%)\n",
		rec.Matched, rec.BankOnly, rec.ERPOnly, rec.MatchRate().StringFixed(1))

	if len(p.Expenses) > 0 {
		fmt.Println("\nCurrent-month expenses by category:")
		for _, e := range p.Expenses {
			fmt.Printf("  %-30s %15s  %5s%%\n", e.Name, e.Amount.StringFixed(2), e.Percent.StringFixed(1))
		}
	}

	fmt.Println("\nMonthly results:")
	for _, m := range p.Monthly {
		fmt.Printf("  %s  revenue %15s  expense %15s  net %15s\n",
			m.Month, m.Revenue.StringFixed(2), m.Expense.StringFixed(2), m.Net.StringFixed(2))
	}
}

func printAging(p *dashboard.Payload, receivables bool) {
	summary := p.PayableAging
	if receivables {
		summary = p.ReceivableAging
	}
	for _, line := range summary.Lines {
		fmt.Printf("  %-8s %15s  (%d)\n", line.Bucket, line.Amount.StringFixed(2), line.Count)
	}
}
