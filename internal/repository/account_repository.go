package repository

import (
	"log/slog"
	"sync"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

const DefaultAccountCapacity = 50

type accountRepository struct {
	mu       sync.RWMutex
	accounts []*domain.Account
	index    map[string]*domain.Account
	capacity int
	logger   *slog.Logger
}

func NewAccountRepository(capacity int, logger *slog.Logger) domain.AccountRepository {
	if capacity <= 0 {
		capacity = DefaultAccountCapacity
	}
	return &accountRepository{
		index:    make(map[string]*domain.Account),
		capacity: capacity,
		logger:   logger,
	}
}

func (r *accountRepository) AddAccount(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[account.Number()]; exists {
		r.logger.Warn("Duplicate account creation attempt", "account_number", account.Number())
		return errors.ErrDuplicateAccount
	}
	if len(r.accounts) >= r.capacity {
		r.logger.Warn("Account registry is full", "capacity", r.capacity)
		return errors.NewAppErrorf(errors.RegistryFull, "account registry is full (capacity %d)", r.capacity)
	}

	r.accounts = append(r.accounts, account)
	r.index[account.Number()] = account

	r.logger.Info("Account added", "account_number", account.Number(), "type", account.Type())
	return nil
}

func (r *accountRepository) GetAccount(number string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.index[number]
	if !ok {
		r.logger.Warn("Account not found", "account_number", number)
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

// ListAccounts returns accounts in the order they were added.
func (r *accountRepository) ListAccounts() []*domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

func (r *accountRepository) ListAccountsByCustomer(customerID string) []*domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Account
	for _, account := range r.accounts {
		if account.Customer().ID() == customerID {
			out = append(out, account)
		}
	}
	return out
}

// SearchAccounts returns the accounts matching filter in insertion order.
func (r *accountRepository) SearchAccounts(filter domain.AccountFilter) []*domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Account{}
	for _, account := range r.accounts {
		if filter.Matches(account) {
			out = append(out, account)
		}
	}
	return out
}

func (r *accountRepository) CountAccounts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
