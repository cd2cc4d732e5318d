package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/finsight-dev/finsight/internal/reconcile"
)

func newReconcileCommand(opts *globalOptions) *cobra.Command {
	var (
		toleranceDays  int
		valueTolerance string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match bank statement transactions against paid obligations",
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
			if cmd.Flags().Changed("tolerance-days") {
				cfg.Reconcile.DateToleranceDays = toleranceDays
			}
			if cmd.Flags().Changed("value-tolerance") {
				if _, err := decimal.NewFromString(valueTolerance); err != nil {
					return fmt.Errorf("invalid value tolerance %q: %w", valueTolerance, err)
				}
				cfg.Reconcile.ValueTolerance = valueTolerance
			}
			svc, _, err := opts.buildService(cfg, log)
			if err != nil {
				return err
			}

			payload, err := svc.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing dashboard: %w", err)
			}

			printReconciliation(payload.Reconciliation)
			return nil
		},
	}

	cmd.Flags().IntVar(&toleranceDays, "tolerance-days", 0, "date tolerance in days (default from config)")
	cmd.Flags().StringVar(&valueTolerance, "value-tolerance", "", "value tolerance (default from config)")
	return cmd
}

func printReconciliation(r reconcile.Result) {
	for _, item := range r.Items {
		switch item.Status {
		case reconcile.StatusMatched:
			fmt.Printf("%-10s %s  %10s  %s  ~  %s\n",
				item.Status,
				item.Bank.Date.Format("2006-01-02"),
				item.Bank.Amount.StringFixed(2),
				item.Bank.Description,
				item.ERPKey)
		case reconcile.StatusBankOnly:
			fmt.Printf("%-10s %s  %10s  %s\n",
				item.Status,
				item.Bank.Date.Format("2006-01-02"),
				item.Bank.Amount.StringFixed(2),
				item.Bank.Description)
		case reconcile.StatusERPOnly:
			fmt.Printf("%-10s %s  %10s  %s\n",
				item.Status,
				settledOn(item),
				item.ERP.PaidAmount.StringFixed(2),
				item.ERP.Description)
		}
	}

	fmt.Printf("\n%d bank transaction(s), %d paid obligation(s)\n", r.BankTransactions, r.ERPCandidates)
	fmt.Printf("Matched %d (%s), bank-only %d (%s), erp-only %d (%s)\n",
		r.Matched, r.MatchedAmount.StringFixed(2),
		r.BankOnly, r.BankOnlyAmount.StringFixed(2),
		r.ERPOnly, r.ERPOnlyAmount.StringFixed(2))
	fmt.Printf("Match rate: %s%%\n", r.MatchRate().StringFixed(1))
}

func settledOn(item reconcile.Item) string {
	settled := item.ERP.SettlementDate()
	if settled.IsZero() {
		return "          "
	}
	return settled.Format("2006-01-02")
}
