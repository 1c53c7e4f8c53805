package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

// writeError renders err in the error envelope. Errors that are not an
// *errors.AppError become internal errors.
func writeError(w http.ResponseWriter, err error) {
	appErr := errors.AsAppError(err)

	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error())
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type TransactionResponse struct {
	TransactionID  string    `json:"transaction_id"`
	AccountNumber  string    `json:"account_number"`
	Type           string    `json:"type"`
	Amount         string    `json:"amount"`
	BalanceAfter   string    `json:"balance_after"`
	RelatedAccount string    `json:"related_account,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newTransactionResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  tx.ID,
		AccountNumber:  tx.AccountNumber,
		Type:           string(tx.Type),
		Amount:         money(tx.Amount),
		BalanceAfter:   money(tx.BalanceAfter),
		RelatedAccount: tx.RelatedAccount,
		CreatedAt:      tx.CreatedAt,
	}
}
