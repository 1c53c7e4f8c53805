package domain

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

type CustomerRepository interface {
	AddCustomer(customer *Customer) error
	GetCustomer(id string) (*Customer, error)
	ListCustomers() []*Customer
	SearchCustomers(filter CustomerFilter) []*Customer
	CountCustomers() int
}

type AccountRepository interface {
	AddAccount(account *Account) error
	GetAccount(number string) (*Account, error)
	ListAccounts() []*Account
	ListAccountsByCustomer(customerID string) []*Account
	SearchAccounts(filter AccountFilter) []*Account
	CountAccounts() int
}

// CustomerFilter selects customers. Name matches a case-insensitive
// substring; empty fields match everything.
type CustomerFilter struct {
	Name string
	Type CustomerType
}

func (f CustomerFilter) Matches(c *Customer) bool {
	if f.Type != "" && c.Type() != f.Type {
		return false
	}
	return containsFold(c.Name(), f.Name)
}

// AccountFilter selects accounts. CustomerName matches a case-insensitive
// substring of the owner's name; empty fields match everything.
type AccountFilter struct {
	CustomerName string
	Type         AccountType
	Status       AccountStatus
}

func (f AccountFilter) Matches(a *Account) bool {
	if f.Type != "" && a.Type() != f.Type {
		return false
	}
	if f.Status != "" && a.Status() != f.Status {
		return false
	}
	return containsFold(a.Customer().Name(), f.CustomerName)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

// LedgerReservation holds ledger slots claimed before a mutation so that
// its records are guaranteed to fit afterwards.
type LedgerReservation interface {
	// Commit appends txs in order. It accepts at most the reserved count.
	Commit(txs ...Transaction) error
	// Release returns unused slots. It is a no-op after Commit.
	Release()
}

type TransactionRepository interface {
	Append(tx Transaction) bool
	Reserve(n int) (LedgerReservation, bool)
	ListByAccount(accountNumber string) []Transaction
	SumByType(accountNumber string, kind TransactionType) decimal.Decimal
	Summary(accountNumber string) AccountSummary
	All() []Transaction
	Count() int
	Capacity() int
}

// TransactionSink receives committed transactions for downstream reporting.
type TransactionSink interface {
	Record(ctx context.Context, txs ...Transaction) error
}
