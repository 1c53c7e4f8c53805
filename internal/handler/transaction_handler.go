package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type ProcessTransactionRequest struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

type TransferRequest struct {
	SourceAccountNumber      string `json:"source_account_number"`
	DestinationAccountNumber string `json:"destination_account_number"`
	Amount                   string `json:"amount"`
	IdempotencyKey           string `json:"idempotency_key,omitempty"`
}

type TransferResponse struct {
	Status         string              `json:"status"`
	TransferOut    TransactionResponse `json:"transfer_out"`
	TransferIn     TransactionResponse `json:"transfer_in"`
	IdempotencyKey *string             `json:"idempotency_key,omitempty"`
}

type SummaryResponse struct {
	AccountNumber    string `json:"account_number"`
	TotalDeposits    string `json:"total_deposits"`
	TotalWithdrawals string `json:"total_withdrawals"`
	TotalTransferIn  string `json:"total_transfer_in"`
	TotalTransferOut string `json:"total_transfer_out"`
	NetChange        string `json:"net_change"`
	Transactions     int    `json:"transactions"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, func(number string, req *AmountRequest) (domain.Transaction, error) {
		amount, err := parseAmount("amount", req.Amount)
		if err != nil {
			return domain.Transaction{}, err
		}
		return h.transactionService.Deposit(r.Context(), number, amount)
	})
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.single(w, r, func(number string, req *AmountRequest) (domain.Transaction, error) {
		amount, err := parseAmount("amount", req.Amount)
		if err != nil {
			return domain.Transaction{}, err
		}
		return h.transactionService.Withdraw(r.Context(), number, amount)
	})
}

// single decodes an amount request for the account in the path and writes
// the resulting ledger entry.
func (h *TransactionHandler) single(w http.ResponseWriter, r *http.Request, fn func(string, *AmountRequest) (domain.Transaction, error)) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tx, err := fn(accountNumber, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

func (h *TransactionHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	var req ProcessTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.transactionService.ProcessTransaction(r.Context(), accountNumber, amount, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := validateAccountNumber(req.SourceAccountNumber); err != nil {
		writeError(w, err)
		return
	}
	if err := validateAccountNumber(req.DestinationAccountNumber); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	// Parse optional idempotency key
	var idempotencyKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid idempotency_key format").WithDetails(err.Error()))
			return
		}
		idempotencyKey = &key
	}

	receipt, err := h.transactionService.Transfer(r.Context(), &service.TransferRequest{
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   amount,
		IdempotencyKey:           idempotencyKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response := TransferResponse{
		Status:      "completed",
		TransferOut: newTransactionResponse(receipt.TransferOut),
		TransferIn:  newTransactionResponse(receipt.TransferIn),
	}

	if receipt.IdempotencyKey != nil {
		keyStr := receipt.IdempotencyKey.String()
		response.IdempotencyKey = &keyStr
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	history, err := h.transactionService.History(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]TransactionResponse, 0, len(history))
	for _, tx := range history {
		response = append(response, newTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.transactionService.Summary(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		AccountNumber:    summary.AccountNumber,
		TotalDeposits:    money(summary.TotalDeposits),
		TotalWithdrawals: money(summary.TotalWithdrawals),
		TotalTransferIn:  money(summary.TotalTransferIn),
		TotalTransferOut: money(summary.TotalTransferOut),
		NetChange:        money(summary.NetChange),
		Transactions:     summary.Transactions,
	})
}
