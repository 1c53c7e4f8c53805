package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/repository"
)

type AccountService struct {
	store                 *repository.Store
	defaultOverdraftLimit decimal.Decimal
	logger                *slog.Logger
}

func NewAccountService(store *repository.Store, defaultOverdraftLimit decimal.Decimal, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:                 store,
		defaultOverdraftLimit: defaultOverdraftLimit,
		logger:                logger,
	}
}

type OpenAccountRequest struct {
	CustomerID     string
	Type           domain.AccountType
	OpeningBalance decimal.Decimal
	// OverdraftLimit applies to checking accounts. Nil uses the configured default.
	OverdraftLimit *decimal.Decimal
}

// BankSummary totals every account in the registry.
type BankSummary struct {
	Customers      int             `json:"customers"`
	Accounts       int             `json:"accounts"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	Transactions   int             `json:"transactions"`
	LedgerCapacity int             `json:"ledger_capacity"`
}

func (s *AccountService) OpenAccount(req *OpenAccountRequest) (*domain.Account, error) {
	s.logger.Info("Opening account",
		"customer_id", req.CustomerID,
		"type", req.Type,
		"opening_balance", req.OpeningBalance)

	customer, err := s.store.Customer().GetCustomer(req.CustomerID)
	if err != nil {
		return nil, err
	}

	var policy domain.Policy
	switch req.Type {
	case domain.AccountTypeSavings:
		policy = domain.SavingsPolicy()
	case domain.AccountTypeChecking:
		limit := s.defaultOverdraftLimit
		if req.OverdraftLimit != nil {
			limit = *req.OverdraftLimit
		}
		policy = domain.CheckingPolicy(limit)
	default:
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown account type %q", req.Type)
	}

	account, err := domain.NewAccount(s.store.IDs().Accounts.Next(), customer, req.OpeningBalance, policy)
	if err != nil {
		return nil, err
	}

	if err := s.store.Account().AddAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account opened successfully", "account_number", account.Number(), "customer_id", customer.ID())
	return account, nil
}

func (s *AccountService) GetAccount(number string) (*domain.Account, error) {
	return s.store.Account().GetAccount(number)
}

func (s *AccountService) SearchAccounts(filter domain.AccountFilter) []*domain.Account {
	return s.store.Account().SearchAccounts(filter)
}

func (s *AccountService) ListCustomerAccounts(customerID string) ([]*domain.Account, error) {
	if _, err := s.store.Customer().GetCustomer(customerID); err != nil {
		return nil, err
	}
	return s.store.Account().ListAccountsByCustomer(customerID), nil
}

// UpdateStatus changes the account status. Closing requires a zero balance.
func (s *AccountService) UpdateStatus(number string, status domain.AccountStatus) (*domain.Account, error) {
	s.logger.Info("Updating account status", "account_number", number, "status", status)

	account, err := s.store.Account().GetAccount(number)
	if err != nil {
		return nil, err
	}

	if status == domain.AccountStatusClosed {
		err = account.CloseIfEmpty()
	} else {
		err = account.SetStatus(status)
	}
	if err != nil {
		s.logger.Warn("Account status update denied", "account_number", number, "status", status, "error", err)
		return nil, err
	}

	s.logger.Info("Account status updated", "account_number", number, "status", status)
	return account, nil
}

func (s *AccountService) CalculateInterest(number string) (decimal.Decimal, error) {
	account, err := s.store.Account().GetAccount(number)
	if err != nil {
		return decimal.Zero, err
	}
	return account.CalculateInterest(), nil
}

func (s *AccountService) Summary() BankSummary {
	accounts := s.store.Account().ListAccounts()

	total := decimal.Zero
	for _, account := range accounts {
		total = total.Add(account.Balance())
	}

	return BankSummary{
		Customers:      s.store.Customer().CountCustomers(),
		Accounts:       len(accounts),
		TotalBalance:   total,
		Transactions:   s.store.Transaction().Count(),
		LedgerCapacity: s.store.Transaction().Capacity(),
	}
}
