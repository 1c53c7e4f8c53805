package repository

import (
	"log/slog"

	"bank-ledger/internal/domain"
)

// Capacities bounds the in-memory registries and the ledger. Zero values
// fall back to the package defaults.
type Capacities struct {
	Customers int
	Accounts  int
	Ledger    int
}

// Store groups the in-memory repositories with the id allocator that feeds
// them. Each Store starts its counters at 1.
type Store struct {
	customers    domain.CustomerRepository
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	ids          *domain.IDAllocator
	logger       *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(capacities Capacities, logger *slog.Logger) *Store {
	return &Store{
		customers:    NewCustomerRepository(capacities.Customers, logger),
		accounts:     NewAccountRepository(capacities.Accounts, logger),
		transactions: NewTransactionRepository(capacities.Ledger, logger),
		ids:          domain.NewIDAllocator(),
		logger:       logger,
	}
}

func (s *Store) Customer() domain.CustomerRepository {
	return s.customers
}

func (s *Store) Account() domain.AccountRepository {
	return s.accounts
}

func (s *Store) Transaction() domain.TransactionRepository {
	return s.transactions
}

func (s *Store) IDs() *domain.IDAllocator {
	return s.ids
}
