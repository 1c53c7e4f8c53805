package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	// Precondition violations. The operation never starts.
	InvalidInput          ErrorCode = "invalid_input"
	InvalidAmount         ErrorCode = "invalid_amount"
	InvalidCustomer       ErrorCode = "invalid_customer"
	InvalidOpeningBalance ErrorCode = "invalid_opening_balance"
	InvalidOverdraftLimit ErrorCode = "invalid_overdraft_limit"
	InvalidAccountNumber  ErrorCode = "invalid_account_number"
	InvalidStatus         ErrorCode = "invalid_status"

	// Policy denials. Nothing is mutated and the caller decides what to do next.
	InsufficientFunds      ErrorCode = "insufficient_funds"
	BelowMinimumBalance    ErrorCode = "below_minimum_balance"
	OverdraftLimitExceeded ErrorCode = "overdraft_limit_exceeded"
	SameAccountTransfer    ErrorCode = "same_account_transfer"
	InvalidTarget          ErrorCode = "invalid_target"
	LedgerFull             ErrorCode = "ledger_full"
	RegistryFull           ErrorCode = "registry_full"
	UnknownTransactionType ErrorCode = "unknown_transaction_type"
	AccountNotActive       ErrorCode = "account_not_active"
	NonZeroBalance         ErrorCode = "non_zero_balance"

	AccountNotFound   ErrorCode = "account_not_found"
	CustomerNotFound  ErrorCode = "customer_not_found"
	DuplicateAccount  ErrorCode = "duplicate_account"
	DuplicateCustomer ErrorCode = "duplicate_customer"
	InternalError     ErrorCode = "internal_error"

	// An idempotency key was reused for a different request.
	IdempotencyKeyConflict ErrorCode = "idempotency_key_conflict"
)

var deniedCodes = map[ErrorCode]struct{}{
	InsufficientFunds:      {},
	BelowMinimumBalance:    {},
	OverdraftLimitExceeded: {},
	SameAccountTransfer:    {},
	InvalidTarget:          {},
	LedgerFull:             {},
	RegistryFull:           {},
	UnknownTransactionType: {},
	AccountNotActive:       {},
	NonZeroBalance:         {},
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the error code so a detailed denial still compares equal
// to the predefined error of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Denied reports whether the error is a policy outcome rather than a
// precondition violation.
func (e *AppError) Denied() bool {
	_, ok := deniedCodes[e.Code]
	return ok
}

func (e *AppError) HTTPStatus() int {
	if e.Denied() {
		return http.StatusUnprocessableEntity
	}

	switch e.Code {
	case AccountNotFound, CustomerNotFound:
		return http.StatusNotFound
	case DuplicateAccount, DuplicateCustomer, IdempotencyKeyConflict:
		return http.StatusConflict
	case InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails sets details on e. Call it on fresh errors only, never on the
// predefined ones below.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// IsDenied reports whether err carries a policy denial.
func IsDenied(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Denied()
	}
	return false
}

// CodeOf returns the code carried by err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalError
}

// AsAppError converts any error into an *AppError for the response envelope.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(InternalError, "an unexpected error occurred").WithDetails(err.Error())
}

// Predefined errors for common cases
var (
	ErrInvalidInput           = NewAppError(InvalidInput, "invalid input")
	ErrInvalidAmount          = NewAppError(InvalidAmount, "amount must be positive")
	ErrInvalidCustomer        = NewAppError(InvalidCustomer, "customer cannot be nil")
	ErrNegativeOpeningBalance = NewAppError(InvalidOpeningBalance, "opening balance cannot be negative")
	ErrInvalidOverdraftLimit  = NewAppError(InvalidOverdraftLimit, "overdraft limit cannot be negative")
	ErrInvalidAccountNumber   = NewAppError(InvalidAccountNumber, "invalid account number")
	ErrInvalidStatus          = NewAppError(InvalidStatus, "invalid account status")

	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
	ErrBelowMinimumBalance    = NewAppError(BelowMinimumBalance, "withdrawal denied, minimum balance must be maintained")
	ErrOverdraftLimitExceeded = NewAppError(OverdraftLimitExceeded, "withdrawal exceeds overdraft limit")
	ErrSameAccountTransfer    = NewAppError(SameAccountTransfer, "cannot transfer to the same account")
	ErrInvalidTarget          = NewAppError(InvalidTarget, "target account cannot be nil")
	ErrLedgerFull             = NewAppError(LedgerFull, "transaction ledger is full")
	ErrRegistryFull           = NewAppError(RegistryFull, "registry is full")
	ErrUnknownTransactionType = NewAppError(UnknownTransactionType, "unknown transaction type")
	ErrAccountNotActive       = NewAppError(AccountNotActive, "account is not active")
	ErrNonZeroBalance         = NewAppError(NonZeroBalance, "account balance must be zero before closing")

	ErrAccountNotFound   = NewAppError(AccountNotFound, "account not found")
	ErrCustomerNotFound  = NewAppError(CustomerNotFound, "customer not found")
	ErrDuplicateAccount  = NewAppError(DuplicateAccount, "account already exists")
	ErrDuplicateCustomer = NewAppError(DuplicateCustomer, "customer already exists")

	ErrIdempotencyKeyConflict = NewAppError(IdempotencyKeyConflict, "idempotency key was already used for a different transfer")
)
