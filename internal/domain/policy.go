package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeChecking AccountType = "Checking"
)

func ParseAccountType(s string) (AccountType, bool) {
	switch {
	case strings.EqualFold(s, string(AccountTypeSavings)):
		return AccountTypeSavings, true
	case strings.EqualFold(s, string(AccountTypeChecking)):
		return AccountTypeChecking, true
	}
	return "", false
}

var (
	SavingsInterestRate   = decimal.RequireFromString("3.5")
	SavingsMinimumBalance = decimal.RequireFromString("500.00")
	DefaultOverdraftLimit = decimal.RequireFromString("1000.00")

	hundred = decimal.NewFromInt(100)
)

// Policy is the variant-specific part of an account. Type selects which
// fields are meaningful: Savings uses InterestRate and MinimumBalance,
// Checking uses OverdraftLimit. A zero Policy applies the base rule.
type Policy struct {
	Type           AccountType
	InterestRate   decimal.Decimal
	MinimumBalance decimal.Decimal
	OverdraftLimit decimal.Decimal
}

func SavingsPolicy() Policy {
	return Policy{
		Type:           AccountTypeSavings,
		InterestRate:   SavingsInterestRate,
		MinimumBalance: SavingsMinimumBalance,
	}
}

func CheckingPolicy(overdraftLimit decimal.Decimal) Policy {
	return Policy{
		Type:           AccountTypeChecking,
		OverdraftLimit: overdraftLimit,
	}
}

func (p Policy) validateOpening(openingBalance decimal.Decimal) error {
	switch p.Type {
	case AccountTypeSavings:
		if openingBalance.LessThan(p.MinimumBalance) {
			return errors.NewAppErrorf(errors.InvalidOpeningBalance,
				"initial deposit for Savings Account must be at least $%s", p.MinimumBalance.StringFixed(2))
		}
	case AccountTypeChecking:
		if p.OverdraftLimit.IsNegative() {
			return errors.ErrInvalidOverdraftLimit
		}
	}
	return nil
}

// checkWithdrawal decides whether balance may drop by amount. Each variant
// replaces the base insufficient-funds rule with its own floor.
func (p Policy) checkWithdrawal(balance, amount decimal.Decimal) error {
	after := balance.Sub(amount)

	switch p.Type {
	case AccountTypeSavings:
		if after.LessThan(p.MinimumBalance) {
			return errors.NewAppErrorf(errors.BelowMinimumBalance,
				"withdrawal denied, minimum balance of $%s must be maintained", p.MinimumBalance.StringFixed(2)).
				WithDetails("current balance $" + balance.StringFixed(2) + ", after withdrawal $" + after.StringFixed(2))
		}
	case AccountTypeChecking:
		if after.LessThan(p.OverdraftLimit.Neg()) {
			return errors.NewAppErrorf(errors.OverdraftLimitExceeded,
				"withdrawal exceeds overdraft limit of $%s", p.OverdraftLimit.StringFixed(2)).
				WithDetails("current balance $" + balance.StringFixed(2) + ", after withdrawal $" + after.StringFixed(2))
		}
	default:
		if amount.GreaterThan(balance) {
			return errors.ErrInsufficientFunds
		}
	}
	return nil
}

func (p Policy) interest(balance decimal.Decimal) decimal.Decimal {
	if p.Type != AccountTypeSavings {
		return decimal.Zero
	}
	return balance.Mul(p.InterestRate).Div(hundred)
}
