package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithInitScripts(filepath.Join("..", "..", "migrations", "001_create_ledger_transactions.sql")),
		postgres.WithDatabase("bank_ledger"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestLedgerMirror(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	db := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mirror := NewLedgerMirror(db, uuid.New(), discardLogger())
	now := time.Now().UTC()

	out, err := domain.NewTransferLeg("TXN001", "ACC001", domain.TransactionTypeTransferOut, dec("300.00"), dec("700.00"), now, "ACC002")
	require.NoError(t, err)
	in, err := domain.NewTransferLeg("TXN002", "ACC002", domain.TransactionTypeTransferIn, dec("300.00"), dec("800.00"), now, "ACC001")
	require.NoError(t, err)

	require.NoError(t, mirror.Record(ctx, out, in))
	// Re-recording the same entries is a no-op.
	require.NoError(t, mirror.Record(ctx, out))
	require.NoError(t, mirror.Record(ctx))

	n, err := mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var related sql.NullString
	var balance string
	err = db.QueryRowContext(ctx,
		`SELECT related_account, balance_after FROM ledger_transactions WHERE run_id = $1 AND id = $2`,
		mirror.RunID(), "TXN002").Scan(&related, &balance)
	require.NoError(t, err)
	assert.Equal(t, "ACC001", related.String)
	assert.True(t, dec("800").Equal(dec(balance)))

	// Another run reuses the same transaction ids without clashing.
	other := NewLedgerMirror(db, uuid.New(), discardLogger())
	require.NoError(t, other.Record(ctx, out))
	n, err = other.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A failing row rolls back the whole batch.
	batch := NewLedgerMirror(db, uuid.New(), discardLogger())
	bad := domain.Transaction{
		ID:            "TXN003",
		AccountNumber: "ACC001",
		Type:          domain.TransactionTypeDeposit,
		Amount:        dec("0"),
		BalanceAfter:  dec("700.00"),
		CreatedAt:     now,
	}
	err = batch.Record(ctx, out, bad)
	require.Error(t, err)
	assert.Equal(t, errors.InternalError, errors.CodeOf(err))

	n, err = batch.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
