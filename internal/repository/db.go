package repository

import (
	"context"
	"database/sql"
)

// Execer is the write side shared by sql.DB and sql.Tx. Transaction
// callbacks only get this.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SQLExecutor represents both sql.DB and sql.Tx
type SQLExecutor interface {
	Execer
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DB represents a database that can begin transactions
type DB interface {
	SQLExecutor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
}

var (
	_ DB     = (*sql.DB)(nil)
	_ Execer = (*sql.Tx)(nil)
)
