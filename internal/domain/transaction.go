package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
)

// Transaction is an immutable ledger entry. RelatedAccount is set on
// transfer legs only. Ledgers store and return Transaction by value.
type Transaction struct {
	ID             string          `json:"transaction_id"`
	AccountNumber  string          `json:"account_number"`
	Type           TransactionType `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	RelatedAccount string          `json:"related_account,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewTransaction(id, accountNumber string, kind TransactionType, amount, balanceAfter decimal.Decimal, at time.Time) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, errors.ErrInvalidAmount
	}
	switch kind {
	case TransactionTypeDeposit, TransactionTypeWithdrawal:
	default:
		return Transaction{}, errors.NewAppErrorf(errors.UnknownTransactionType, "use NewTransferLeg for %q", kind)
	}

	return Transaction{
		ID:            id,
		AccountNumber: accountNumber,
		Type:          kind,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		CreatedAt:     at,
	}, nil
}

func NewTransferLeg(id, accountNumber string, kind TransactionType, amount, balanceAfter decimal.Decimal, at time.Time, relatedAccount string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, errors.ErrInvalidAmount
	}
	switch kind {
	case TransactionTypeTransferOut, TransactionTypeTransferIn:
	default:
		return Transaction{}, errors.NewAppErrorf(errors.UnknownTransactionType, "%q is not a transfer leg", kind)
	}
	if relatedAccount == "" {
		return Transaction{}, errors.ErrInvalidTarget
	}

	return Transaction{
		ID:             id,
		AccountNumber:  accountNumber,
		Type:           kind,
		Amount:         amount,
		BalanceAfter:   balanceAfter,
		RelatedAccount: relatedAccount,
		CreatedAt:      at,
	}, nil
}

// IsTransferLeg reports whether t is one side of a transfer.
func (t Transaction) IsTransferLeg() bool {
	return t.Type == TransactionTypeTransferOut || t.Type == TransactionTypeTransferIn
}

// AccountSummary aggregates an account's ledger entries. It is derived on
// every read and never stored.
type AccountSummary struct {
	AccountNumber    string          `json:"account_number"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalTransferIn  decimal.Decimal `json:"total_transfer_in"`
	TotalTransferOut decimal.Decimal `json:"total_transfer_out"`
	NetChange        decimal.Decimal `json:"net_change"`
	Transactions     int             `json:"transactions"`
}
