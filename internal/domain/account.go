package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "Active"
	AccountStatusInactive AccountStatus = "Inactive"
	AccountStatusClosed   AccountStatus = "Closed"
)

func ParseAccountStatus(s string) (AccountStatus, bool) {
	for _, status := range []AccountStatus{AccountStatusActive, AccountStatusInactive, AccountStatusClosed} {
		if strings.EqualFold(s, string(status)) {
			return status, true
		}
	}
	return "", false
}

// Account holds a balance under a variant policy. All mutations hold mu.
type Account struct {
	mu        sync.Mutex
	number    string
	customer  *Customer
	policy    Policy
	balance   decimal.Decimal
	status    AccountStatus
	createdAt time.Time
}

func NewAccount(number string, customer *Customer, openingBalance decimal.Decimal, policy Policy) (*Account, error) {
	if number == "" {
		return nil, errors.ErrInvalidAccountNumber
	}
	if customer == nil {
		return nil, errors.ErrInvalidCustomer
	}
	if openingBalance.IsNegative() {
		return nil, errors.ErrNegativeOpeningBalance
	}
	if err := policy.validateOpening(openingBalance); err != nil {
		return nil, err
	}

	return &Account{
		number:    number,
		customer:  customer,
		policy:    policy,
		balance:   openingBalance,
		status:    AccountStatusActive,
		createdAt: time.Now(),
	}, nil
}

func NewSavingsAccount(number string, customer *Customer, openingBalance decimal.Decimal) (*Account, error) {
	return NewAccount(number, customer, openingBalance, SavingsPolicy())
}

func NewCheckingAccount(number string, customer *Customer, openingBalance, overdraftLimit decimal.Decimal) (*Account, error) {
	return NewAccount(number, customer, openingBalance, CheckingPolicy(overdraftLimit))
}

func (a *Account) Number() string       { return a.number }
func (a *Account) Customer() *Customer  { return a.customer }
func (a *Account) Type() AccountType    { return a.policy.Type }
func (a *Account) Policy() Policy       { return a.policy }
func (a *Account) CreatedAt() time.Time { return a.createdAt }

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) Status() AccountStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Account) SetStatus(status AccountStatus) error {
	if _, ok := ParseAccountStatus(string(status)); !ok {
		return errors.ErrInvalidStatus
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
	return nil
}

// CloseIfEmpty marks the account Closed only when its balance is zero,
// checking and updating under the same lock.
func (a *Account) CloseIfEmpty() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.balance.IsZero() {
		return errors.NewAppErrorf(errors.NonZeroBalance,
			"cannot close account with balance $%s, withdraw or transfer funds first", a.balance.StringFixed(2))
	}
	a.status = AccountStatusClosed
	return nil
}

// Deposit adds amount and returns the new balance. Only Active accounts
// accept mutations.
func (a *Account) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkActive(); err != nil {
		return a.balance, err
	}
	return a.deposit(amount), nil
}

// Withdraw removes amount if the account policy allows it and returns the
// new balance. A denial leaves the balance untouched.
func (a *Account) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkActive(); err != nil {
		return a.balance, err
	}
	if err := a.withdraw(amount); err != nil {
		return a.balance, err
	}
	return a.balance, nil
}

// Transfer moves amount to target and returns both resulting balances.
// Both accounts must be Active.
//
// Sufficiency is checked twice: first against the raw balance, then by the
// source policy during the withdrawal. The deposit runs only after the
// withdrawal succeeded, and both happen while holding both account locks,
// so either both balances change or neither does.
func (a *Account) Transfer(target *Account, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if target == nil {
		return decimal.Zero, decimal.Zero, errors.ErrInvalidTarget
	}
	if target.number == a.number {
		return decimal.Zero, decimal.Zero, errors.ErrSameAccountTransfer
	}
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, errors.ErrInvalidAmount
	}

	unlock := lockPair(a, target)
	defer unlock()

	if err := a.checkActive(); err != nil {
		return a.balance, target.balance, err
	}
	if err := target.checkActive(); err != nil {
		return a.balance, target.balance, err
	}
	if amount.GreaterThan(a.balance) {
		return a.balance, target.balance, errors.NewAppError(errors.InsufficientFunds, "insufficient funds for transfer").
			WithDetails("available balance $" + a.balance.StringFixed(2))
	}
	if err := a.withdraw(amount); err != nil {
		return a.balance, target.balance, err
	}
	target.deposit(amount)

	return a.balance, target.balance, nil
}

// ProcessTransaction dispatches on a case-insensitive DEPOSIT or WITHDRAWAL tag.
func (a *Account) ProcessTransaction(amount decimal.Decimal, kind string) (decimal.Decimal, error) {
	switch {
	case strings.EqualFold(kind, string(TransactionTypeDeposit)):
		return a.Deposit(amount)
	case strings.EqualFold(kind, string(TransactionTypeWithdrawal)):
		return a.Withdraw(amount)
	}
	return a.Balance(), errors.NewAppErrorf(errors.UnknownTransactionType, "unknown transaction type %q", kind)
}

// CalculateInterest quotes the interest on the current balance. Nothing is posted.
func (a *Account) CalculateInterest() decimal.Decimal {
	return a.policy.interest(a.Balance())
}

func (a *Account) Describe() string {
	a.mu.Lock()
	balance, status := a.balance, a.status
	a.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Account %s\n", a.policy.Type, a.number)
	fmt.Fprintf(&b, "Customer: %s\n", a.customer.Name())
	fmt.Fprintf(&b, "Balance: $%s\n", balance.StringFixed(2))
	switch a.policy.Type {
	case AccountTypeSavings:
		fmt.Fprintf(&b, "Interest Rate: %s%%\n", a.policy.InterestRate.String())
		fmt.Fprintf(&b, "Minimum Balance: $%s\n", a.policy.MinimumBalance.StringFixed(2))
		fmt.Fprintf(&b, "Interest Earned: $%s\n", a.policy.interest(balance).StringFixed(2))
	case AccountTypeChecking:
		fmt.Fprintf(&b, "Overdraft Limit: $%s\n", a.policy.OverdraftLimit.StringFixed(2))
	}
	fmt.Fprintf(&b, "Status: %s", status)
	return b.String()
}

// checkActive must be called with a.mu held, in the same critical section
// as the mutation it guards.
func (a *Account) checkActive() error {
	if a.status != AccountStatusActive {
		return errors.NewAppErrorf(errors.AccountNotActive, "account %s is %s", a.number, a.status)
	}
	return nil
}

func (a *Account) deposit(amount decimal.Decimal) decimal.Decimal {
	a.balance = a.balance.Add(amount)
	return a.balance
}

func (a *Account) withdraw(amount decimal.Decimal) error {
	if err := a.policy.checkWithdrawal(a.balance, amount); err != nil {
		return err
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// lockPair locks both accounts, lower account number first.
func lockPair(x, y *Account) func() {
	first, second := x, y
	if compareAccountNumbers(y.number, x.number) < 0 {
		first, second = y, x
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// compareAccountNumbers orders ACC009 before ACC010 and ACC999 before ACC1000.
func compareAccountNumbers(x, y string) int {
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	return strings.Compare(x, y)
}
