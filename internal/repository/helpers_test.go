package repository

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deposit(t *testing.T, id, account, amount string, at time.Time) domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(id, account, domain.TransactionTypeDeposit, dec(amount), dec(amount), at)
	require.NoError(t, err)
	return tx
}

func withdrawal(t *testing.T, id, account, amount string, at time.Time) domain.Transaction {
	t.Helper()
	tx, err := domain.NewTransaction(id, account, domain.TransactionTypeWithdrawal, dec(amount), decimal.Zero, at)
	require.NoError(t, err)
	return tx
}
