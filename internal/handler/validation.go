package handler

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

var (
	accountNumberPattern = regexp.MustCompile(`^ACC\d{3}$`)
	customerIDPattern    = regexp.MustCompile(`^CUS\d{3}$`)
	namePattern          = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	contactPattern       = regexp.MustCompile(`^[+]?[\d\s\-()]+$`)
)

const (
	minAge            = 18
	maxAge            = 120
	minNameLength     = 2
	minContactLength  = 7
	minAddressLength  = 5
	maxAmountDecimals = 2
)

func validateAccountNumber(number string) error {
	if !accountNumberPattern.MatchString(number) {
		return errors.NewAppErrorf(errors.InvalidAccountNumber, "invalid account number %q, expected format ACC001", number)
	}
	return nil
}

func validateCustomerID(id string) error {
	if !customerIDPattern.MatchString(id) {
		return errors.NewAppErrorf(errors.InvalidInput, "invalid customer id %q, expected format CUS001", id)
	}
	return nil
}

// parseAmount accepts a positive amount with at most two decimal places.
func parseAmount(field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, errors.NewAppErrorf(errors.InvalidAmount, "invalid %s format", field).WithDetails(err.Error())
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.NewAppErrorf(errors.InvalidAmount, "%s must be greater than zero", field)
	}
	if !amount.Equal(amount.Truncate(maxAmountDecimals)) {
		return decimal.Zero, errors.NewAppErrorf(errors.InvalidAmount, "%s must have at most %d decimal places", field, maxAmountDecimals)
	}
	return amount, nil
}

// parseNonNegative is parseAmount that also allows zero. An empty value is
// zero. Negative values fail with code.
func parseNonNegative(field, value string, code errors.ErrorCode) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, errors.NewAppErrorf(errors.InvalidAmount, "invalid %s format", field).WithDetails(err.Error())
	}
	if amount.IsZero() {
		return amount, nil
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.NewAppErrorf(code, "%s cannot be negative", field)
	}
	return parseAmount(field, value)
}

func validateCustomer(req *RegisterCustomerRequest) (domain.CustomerType, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < minNameLength || !namePattern.MatchString(name) {
		return "", errors.NewAppError(errors.InvalidInput, "name must be at least 2 characters and contain only letters and spaces")
	}
	if req.Age < minAge || req.Age > maxAge {
		return "", errors.NewAppErrorf(errors.InvalidInput, "age must be between %d and %d", minAge, maxAge)
	}
	contact := strings.TrimSpace(req.Contact)
	if len(contact) < minContactLength || !contactPattern.MatchString(contact) {
		return "", errors.NewAppError(errors.InvalidInput, "contact must be a phone number of at least 7 characters")
	}
	if len(strings.TrimSpace(req.Address)) < minAddressLength {
		return "", errors.NewAppErrorf(errors.InvalidInput, "address must be at least %d characters", minAddressLength)
	}

	if req.Type == "" {
		return domain.CustomerTypeRegular, nil
	}
	kind, ok := domain.ParseCustomerType(req.Type)
	if !ok {
		return "", errors.NewAppErrorf(errors.InvalidInput, "customer type must be Regular or Premium, got %q", req.Type)
	}
	return kind, nil
}
