package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/repository"
)

const mirrorTimeout = 5 * time.Second

type TransactionService struct {
	store  *repository.Store
	sink   domain.TransactionSink
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	transfers map[uuid.UUID]*pendingTransfer
}

type Option func(*TransactionService)

// WithSink mirrors every committed transaction to sink.
func WithSink(sink domain.TransactionSink) Option {
	return func(s *TransactionService) {
		s.sink = sink
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) {
		s.now = now
	}
}

func NewTransactionService(store *repository.Store, logger *slog.Logger, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:     store,
		now:       time.Now,
		logger:    logger,
		transfers: make(map[uuid.UUID]*pendingTransfer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type TransferRequest struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	IdempotencyKey           *uuid.UUID
}

// TransferReceipt holds both legs of a completed transfer.
type TransferReceipt struct {
	TransferOut    domain.Transaction
	TransferIn     domain.Transaction
	IdempotencyKey *uuid.UUID
}

type pendingTransfer struct {
	request TransferRequest
	done    chan struct{}
	receipt *TransferReceipt
	err     error
}

// sameTransfer reports whether r asks for the same movement as other.
func (r *TransferRequest) sameTransfer(other *TransferRequest) bool {
	return r.SourceAccountNumber == other.SourceAccountNumber &&
		r.DestinationAccountNumber == other.DestinationAccountNumber &&
		r.Amount.Equal(other.Amount)
}

func (s *TransactionService) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Transaction, error) {
	return s.apply(ctx, accountNumber, amount, domain.TransactionTypeDeposit, func(a *domain.Account) (decimal.Decimal, error) {
		return a.Deposit(amount)
	})
}

func (s *TransactionService) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Transaction, error) {
	return s.apply(ctx, accountNumber, amount, domain.TransactionTypeWithdrawal, func(a *domain.Account) (decimal.Decimal, error) {
		return a.Withdraw(amount)
	})
}

// ProcessTransaction applies a DEPOSIT or WITHDRAWAL given as free text,
// matched case-insensitively.
func (s *TransactionService) ProcessTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, kind string) (domain.Transaction, error) {
	txType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(kind)))
	return s.apply(ctx, accountNumber, amount, txType, func(a *domain.Account) (decimal.Decimal, error) {
		return a.ProcessTransaction(amount, strings.TrimSpace(kind))
	})
}

// apply runs a single-account mutation. Ledger space is reserved before the
// balance changes so the record can always be written afterwards.
func (s *TransactionService) apply(
	ctx context.Context,
	accountNumber string,
	amount decimal.Decimal,
	txType domain.TransactionType,
	mutate func(*domain.Account) (decimal.Decimal, error),
) (domain.Transaction, error) {
	s.logger.Info("Processing transaction",
		"account_number", accountNumber,
		"type", txType,
		"amount", amount)

	account, err := s.store.Account().GetAccount(accountNumber)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, err
	}

	res, ok := s.store.Transaction().Reserve(1)
	if !ok {
		return domain.Transaction{}, errors.ErrLedgerFull
	}
	defer res.Release()

	balanceAfter, err := mutate(account)
	if err != nil {
		s.logger.Warn("Transaction rejected",
			"account_number", accountNumber,
			"type", txType,
			"amount", amount,
			"error", err)
		return domain.Transaction{}, err
	}

	tx, err := domain.NewTransaction(s.store.IDs().Transactions.Next(), accountNumber, txType, amount, balanceAfter, s.now())
	if err != nil {
		s.logger.Error("Failed to build transaction record", "account_number", accountNumber, "error", err)
		return domain.Transaction{}, err
	}
	if err := res.Commit(tx); err != nil {
		s.logger.Error("Failed to commit transaction record", "transaction_id", tx.ID, "error", err)
		return domain.Transaction{}, err
	}

	s.mirror(ctx, tx)

	s.logger.Info("Transaction completed successfully",
		"transaction_id", tx.ID,
		"account_number", accountNumber,
		"balance_after", balanceAfter)
	return tx, nil
}

// Transfer moves funds between two accounts. A repeated idempotency key
// returns the first receipt; concurrent callers with the same key wait for
// the first attempt to finish. Reusing a key for a different transfer is a
// conflict.
func (s *TransactionService) Transfer(ctx context.Context, req *TransferRequest) (*TransferReceipt, error) {
	s.logger.Info("Processing transfer",
		"source_account_number", req.SourceAccountNumber,
		"destination_account_number", req.DestinationAccountNumber,
		"amount", req.Amount,
		"idempotency_key", req.IdempotencyKey)

	if req.IdempotencyKey == nil {
		return s.transfer(ctx, req)
	}

	key := *req.IdempotencyKey
	s.mu.Lock()
	if pending, ok := s.transfers[key]; ok {
		s.mu.Unlock()
		if !pending.request.sameTransfer(req) {
			s.logger.Warn("Idempotency key reused for a different transfer",
				"idempotency_key", key,
				"source_account_number", req.SourceAccountNumber,
				"destination_account_number", req.DestinationAccountNumber,
				"amount", req.Amount)
			return nil, errors.NewAppErrorf(errors.IdempotencyKeyConflict,
				"idempotency key %s was already used for a transfer of %s from %s to %s",
				key, pending.request.Amount.StringFixed(2), pending.request.SourceAccountNumber, pending.request.DestinationAccountNumber)
		}
		select {
		case <-pending.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if pending.err != nil {
			return nil, pending.err
		}
		s.logger.Info("Returning existing transfer for idempotency key",
			"idempotency_key", key,
			"transaction_id", pending.receipt.TransferOut.ID)
		return pending.receipt, nil
	}
	pending := &pendingTransfer{request: *req, done: make(chan struct{})}
	s.transfers[key] = pending
	s.mu.Unlock()

	pending.receipt, pending.err = s.transfer(ctx, req)
	if pending.err != nil {
		// Failed attempts may be retried with the same key.
		s.mu.Lock()
		delete(s.transfers, key)
		s.mu.Unlock()
	}
	close(pending.done)

	return pending.receipt, pending.err
}

func (s *TransactionService) transfer(ctx context.Context, req *TransferRequest) (*TransferReceipt, error) {
	source, err := s.store.Account().GetAccount(req.SourceAccountNumber)
	if err != nil {
		return nil, err
	}
	destination, err := s.store.Account().GetAccount(req.DestinationAccountNumber)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, ok := s.store.Transaction().Reserve(2)
	if !ok {
		return nil, errors.ErrLedgerFull
	}
	defer res.Release()

	// No cancellation point from here on: both legs or none.
	sourceAfter, destinationAfter, err := source.Transfer(destination, req.Amount)
	if err != nil {
		s.logger.Warn("Transfer rejected",
			"source_account_number", req.SourceAccountNumber,
			"destination_account_number", req.DestinationAccountNumber,
			"amount", req.Amount,
			"error", err)
		return nil, err
	}

	now := s.now()
	out, err := domain.NewTransferLeg(s.store.IDs().Transactions.Next(), source.Number(),
		domain.TransactionTypeTransferOut, req.Amount, sourceAfter, now, destination.Number())
	if err != nil {
		return nil, err
	}
	in, err := domain.NewTransferLeg(s.store.IDs().Transactions.Next(), destination.Number(),
		domain.TransactionTypeTransferIn, req.Amount, destinationAfter, now, source.Number())
	if err != nil {
		return nil, err
	}
	if err := res.Commit(out, in); err != nil {
		s.logger.Error("Failed to commit transfer records", "error", err)
		return nil, err
	}

	s.mirror(ctx, out, in)

	s.logger.Info("Transfer completed successfully",
		"transfer_out_id", out.ID,
		"transfer_in_id", in.ID)
	return &TransferReceipt{
		TransferOut:    out,
		TransferIn:     in,
		IdempotencyKey: req.IdempotencyKey,
	}, nil
}

// History returns the account's transactions, newest first.
func (s *TransactionService) History(accountNumber string) ([]domain.Transaction, error) {
	if _, err := s.store.Account().GetAccount(accountNumber); err != nil {
		return nil, err
	}
	return s.store.Transaction().ListByAccount(accountNumber), nil
}

func (s *TransactionService) Summary(accountNumber string) (domain.AccountSummary, error) {
	if _, err := s.store.Account().GetAccount(accountNumber); err != nil {
		return domain.AccountSummary{}, err
	}
	return s.store.Transaction().Summary(accountNumber), nil
}

// mirror forwards committed records to the sink. Failures are logged only;
// the in-memory ledger stays authoritative.
func (s *TransactionService) mirror(ctx context.Context, txs ...domain.Transaction) {
	if s.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()

	if err := s.sink.Record(ctx, txs...); err != nil {
		s.logger.Error("Failed to mirror transactions", "count", len(txs), "error", err)
	}
}
