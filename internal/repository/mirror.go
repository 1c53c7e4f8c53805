package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// LedgerMirror copies committed ledger entries into Postgres for downstream
// reporting. It is write-only: nothing is ever loaded back into the
// in-memory model. Rows are keyed by (run_id, id) because transaction ids
// restart with every process.
type LedgerMirror struct {
	db     DB
	runID  uuid.UUID
	logger *slog.Logger
}

func NewLedgerMirror(db DB, runID uuid.UUID, logger *slog.Logger) *LedgerMirror {
	return &LedgerMirror{
		db:     db,
		runID:  runID,
		logger: logger,
	}
}

func (m *LedgerMirror) RunID() uuid.UUID {
	return m.runID
}

// Record inserts txs in a single database transaction. Entries already
// mirrored for this run are skipped.
func (m *LedgerMirror) Record(ctx context.Context, txs ...domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	return m.withTransaction(ctx, func(exec Execer) error {
		query := `
			INSERT INTO ledger_transactions
			(run_id, id, account_number, type, amount, balance_after, related_account, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (run_id, id) DO NOTHING
		`

		for _, tx := range txs {
			related := sql.NullString{String: tx.RelatedAccount, Valid: tx.RelatedAccount != ""}
			_, err := exec.ExecContext(ctx, query,
				m.runID,
				tx.ID,
				tx.AccountNumber,
				string(tx.Type),
				tx.Amount.String(),
				tx.BalanceAfter.String(),
				related,
				tx.CreatedAt,
			)
			if err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P01" { // undefined_table
					return errors.NewAppError(errors.InternalError, "ledger mirror table is missing, run migrations").WithDetails(pqErr.Message)
				}
				m.logger.Error("Failed to mirror transaction", "transaction_id", tx.ID, "error", err)
				return errors.NewAppError(errors.InternalError, "failed to mirror transaction").WithDetails(err.Error())
			}
		}
		return nil
	})
}

// Count returns how many entries this run has mirrored.
func (m *LedgerMirror) Count(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_transactions WHERE run_id = $1`, m.runID).Scan(&n)
	if err != nil {
		return 0, errors.NewAppError(errors.InternalError, "failed to count mirrored transactions").WithDetails(err.Error())
	}
	return n, nil
}

func (m *LedgerMirror) withTransaction(ctx context.Context, fn func(Execer) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
