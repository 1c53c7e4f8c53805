package repository

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

const DefaultLedgerCapacity = 200

// transactionRepository is the bounded, append-only ledger. Reserved slots
// count against capacity until they are committed or released.
type transactionRepository struct {
	mu       sync.RWMutex
	entries  []domain.Transaction
	reserved int
	capacity int
	logger   *slog.Logger
}

func NewTransactionRepository(capacity int, logger *slog.Logger) domain.TransactionRepository {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	return &transactionRepository{
		entries:  make([]domain.Transaction, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

func (r *transactionRepository) Append(tx domain.Transaction) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries)+r.reserved >= r.capacity {
		r.logger.Warn("Ledger is full, transaction dropped", "transaction_id", tx.ID, "capacity", r.capacity)
		return false
	}
	r.entries = append(r.entries, tx)
	return true
}

func (r *transactionRepository) Reserve(n int) (domain.LedgerReservation, bool) {
	if n <= 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries)+r.reserved+n > r.capacity {
		r.logger.Warn("Ledger reservation refused",
			"requested", n,
			"used", len(r.entries),
			"reserved", r.reserved,
			"capacity", r.capacity)
		return nil, false
	}
	r.reserved += n
	return &reservation{ledger: r, slots: n}, true
}

// ListByAccount returns the account's entries newest first. Entries with the
// same timestamp keep their insertion order.
func (r *transactionRepository) ListByAccount(accountNumber string) []domain.Transaction {
	r.mu.RLock()
	var out []domain.Transaction
	for _, tx := range r.entries {
		if tx.AccountNumber == accountNumber {
			out = append(out, tx)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *transactionRepository) SumByType(accountNumber string, kind domain.TransactionType) decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, tx := range r.entries {
		if tx.AccountNumber == accountNumber && tx.Type == kind {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Summary derives the aggregates in one pass. NetChange covers deposits and
// withdrawals only; transfer legs are reported separately.
func (r *transactionRepository) Summary(accountNumber string) domain.AccountSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := domain.AccountSummary{
		AccountNumber:    accountNumber,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TotalTransferIn:  decimal.Zero,
		TotalTransferOut: decimal.Zero,
	}
	for _, tx := range r.entries {
		if tx.AccountNumber != accountNumber {
			continue
		}
		s.Transactions++
		switch tx.Type {
		case domain.TransactionTypeDeposit:
			s.TotalDeposits = s.TotalDeposits.Add(tx.Amount)
		case domain.TransactionTypeWithdrawal:
			s.TotalWithdrawals = s.TotalWithdrawals.Add(tx.Amount)
		case domain.TransactionTypeTransferIn:
			s.TotalTransferIn = s.TotalTransferIn.Add(tx.Amount)
		case domain.TransactionTypeTransferOut:
			s.TotalTransferOut = s.TotalTransferOut.Add(tx.Amount)
		}
	}
	s.NetChange = s.TotalDeposits.Sub(s.TotalWithdrawals)
	return s
}

// All returns every entry in insertion order.
func (r *transactionRepository) All() []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *transactionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *transactionRepository) Capacity() int {
	return r.capacity
}

type reservation struct {
	mu     sync.Mutex
	ledger *transactionRepository
	slots  int
	done   bool
}

func (res *reservation) Commit(txs ...domain.Transaction) error {
	res.mu.Lock()
	defer res.mu.Unlock()

	if res.done {
		return errors.NewAppError(errors.InternalError, "ledger reservation already settled")
	}
	if len(txs) > res.slots {
		return errors.NewAppErrorf(errors.InternalError, "reservation holds %d slots, got %d transactions", res.slots, len(txs))
	}

	l := res.ledger
	l.mu.Lock()
	l.entries = append(l.entries, txs...)
	l.reserved -= res.slots
	l.mu.Unlock()

	res.done = true
	return nil
}

func (res *reservation) Release() {
	res.mu.Lock()
	defer res.mu.Unlock()

	if res.done {
		return
	}
	l := res.ledger
	l.mu.Lock()
	l.reserved -= res.slots
	l.mu.Unlock()

	res.done = true
}
