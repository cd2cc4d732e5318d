package fixture

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/model"
)

// ObligationHeader is the header for receivables.csv and payables.csv.
const ObligationHeader = "id,description,counterparty,category,status,total,paid,open,due_date,accrual_date,payment_date"

const (
	obligationFields = 11
	dateFormat       = "2006-01-02"

	colID      = 0
	colDesc    = 1
	colCparty  = 2
	colCat     = 3
	colStatus  = 4
	colTotal   = 5
	colPaid    = 6
	colOpen    = 7
	colDue     = 8
	colAccrual = 9
	colPayment = 10
)

// ReadObligations reads an obligation fixture file. The open column may
// be blank, in which case it derives from total minus paid.
func ReadObligations(r io.Reader) ([]model.Obligation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = obligationFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading obligations CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var items []model.Obligation
	for i, rec := range records[1:] {
		item, err := unmarshalObligation(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func unmarshalObligation(rec []string) (model.Obligation, error) {
	total, err := money(rec[colTotal])
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing total %q: %w", rec[colTotal], err)
	}
	paid, err := money(rec[colPaid])
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing paid %q: %w", rec[colPaid], err)
	}

	open := total.Sub(paid)
	if rec[colOpen] != "" {
		open, err = money(rec[colOpen])
		if err != nil {
			return model.Obligation{}, fmt.Errorf("parsing open %q: %w", rec[colOpen], err)
		}
	}

	due, err := day(rec[colDue])
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing due_date %q: %w", rec[colDue], err)
	}
	accrual, err := day(rec[colAccrual])
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing accrual_date %q: %w", rec[colAccrual], err)
	}
	payment, err := day(rec[colPayment])
	if err != nil {
		return model.Obligation{}, fmt.Errorf("parsing payment_date %q: %w", rec[colPayment], err)
	}

	return model.Obligation{
		ID:           rec[colID],
		Description:  rec[colDesc],
		Counterparty: rec[colCparty],
		Category:     rec[colCat],
		Status:       model.ObligationStatus(strings.ToUpper(rec[colStatus])),
		TotalAmount:  total,
		PaidAmount:   paid,
		OpenAmount:   open,
		DueDate:      due,
		AccrualDate:  accrual,
		PaymentDate:  payment,
	}, nil
}

// TransactionHeader is the header for transactions.csv.
const TransactionHeader = "date,direction,description,amount,reference"

const (
	transactionFields = 5

	colTxDate   = 0
	colTxDir    = 1
	colTxDesc   = 2
	colTxAmount = 3
	colTxRef    = 4
)

// ReadTransactions reads a bank transaction fixture file.
func ReadTransactions(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = transactionFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txs []model.BankTransaction
	for i, rec := range records[1:] {
		date, err := time.Parse(dateFormat, rec[colTxDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[colTxDate], err)
		}
		amount, err := decimal.NewFromString(rec[colTxAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[colTxAmount], err)
		}
		txs = append(txs, model.BankTransaction{
			Date:        date,
			Direction:   model.Direction(strings.ToUpper(rec[colTxDir])),
			Description: rec[colTxDesc],
			Amount:      amount.Abs(),
			Reference:   rec[colTxRef],
		})
	}
	return txs, nil
}

// AccountHeader is the header for accounts.csv.
const AccountHeader = "id,name,type,bank,balance"

const (
	accountFields = 5

	colAccID      = 0
	colAccName    = 1
	colAccType    = 2
	colAccBank    = 3
	colAccBalance = 4
)

// ReadAccounts reads a cash account fixture file.
func ReadAccounts(r io.Reader) ([]model.CashAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = accountFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var accounts []model.CashAccount
	for i, rec := range records[1:] {
		balance, err := money(rec[colAccBalance])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing balance %q: %w", i+2, rec[colAccBalance], err)
		}
		accounts = append(accounts, model.CashAccount{
			ID:      rec[colAccID],
			Name:    rec[colAccName],
			Type:    rec[colAccType],
			Bank:    rec[colAccBank],
			Balance: balance,
		})
	}
	return accounts, nil
}

func money(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func day(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateFormat, s)
}
