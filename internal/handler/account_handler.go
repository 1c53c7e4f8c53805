package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type OpenAccountRequest struct {
	CustomerID     string `json:"customer_id"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AccountResponse struct {
	AccountNumber  string    `json:"account_number"`
	CustomerID     string    `json:"customer_id"`
	Type           string    `json:"type"`
	Balance        string    `json:"balance"`
	Status         string    `json:"status"`
	InterestRate   string    `json:"interest_rate,omitempty"`
	MinimumBalance string    `json:"minimum_balance,omitempty"`
	OverdraftLimit string    `json:"overdraft_limit,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type InterestResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Interest      string `json:"interest"`
}

type BankSummaryResponse struct {
	Customers      int    `json:"customers"`
	Accounts       int    `json:"accounts"`
	TotalBalance   string `json:"total_balance"`
	Transactions   int    `json:"transactions"`
	LedgerCapacity int    `json:"ledger_capacity"`
}

func newAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountNumber: a.Number(),
		CustomerID:    a.Customer().ID(),
		Type:          string(a.Type()),
		Balance:       money(a.Balance()),
		Status:        string(a.Status()),
		CreatedAt:     a.CreatedAt(),
	}

	policy := a.Policy()
	switch policy.Type {
	case domain.AccountTypeSavings:
		resp.InterestRate = policy.InterestRate.String()
		resp.MinimumBalance = money(policy.MinimumBalance)
	case domain.AccountTypeChecking:
		resp.OverdraftLimit = money(policy.OverdraftLimit)
	}
	return resp
}

func newAccountResponses(accounts []*domain.Account) []AccountResponse {
	response := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		response = append(response, newAccountResponse(a))
	}
	return response
}

func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := validateCustomerID(req.CustomerID); err != nil {
		writeError(w, err)
		return
	}

	kind, ok := domain.ParseAccountType(req.Type)
	if !ok {
		writeError(w, errors.NewAppErrorf(errors.InvalidInput, "account type must be Savings or Checking, got %q", req.Type))
		return
	}

	openingBalance, err := parseNonNegative("opening_balance", req.OpeningBalance, errors.InvalidOpeningBalance)
	if err != nil {
		writeError(w, err)
		return
	}

	serviceReq := &service.OpenAccountRequest{
		CustomerID:     req.CustomerID,
		Type:           kind,
		OpeningBalance: openingBalance,
	}

	if req.OverdraftLimit != "" {
		if kind != domain.AccountTypeChecking {
			writeError(w, errors.NewAppError(errors.InvalidInput, "overdraft_limit only applies to Checking accounts"))
			return
		}
		limit, err := parseNonNegative("overdraft_limit", req.OverdraftLimit, errors.InvalidOverdraftLimit)
		if err != nil {
			writeError(w, err)
			return
		}
		serviceReq.OverdraftLimit = &limit
	}

	account, err := h.accountService.OpenAccount(serviceReq)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// ListAccounts lists every account, narrowed by the optional customer_name,
// type and status query parameters.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.AccountFilter{CustomerName: query.Get("customer_name")}

	if v := query.Get("type"); v != "" {
		kind, ok := domain.ParseAccountType(v)
		if !ok {
			writeError(w, errors.NewAppErrorf(errors.InvalidInput, "account type must be Savings or Checking, got %q", v))
			return
		}
		filter.Type = kind
	}
	if v := query.Get("status"); v != "" {
		status, ok := domain.ParseAccountStatus(v)
		if !ok {
			writeError(w, errors.NewAppErrorf(errors.InvalidStatus, "status must be Active, Inactive or Closed, got %q", v))
			return
		}
		filter.Status = status
	}

	writeJSON(w, http.StatusOK, newAccountResponses(h.accountService.SearchAccounts(filter)))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.GetAccount(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *AccountHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	status, ok := domain.ParseAccountStatus(req.Status)
	if !ok {
		writeError(w, errors.NewAppErrorf(errors.InvalidStatus, "status must be Active, Inactive or Closed, got %q", req.Status))
		return
	}

	account, err := h.accountService.UpdateStatus(accountNumber, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *AccountHandler) CalculateInterest(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["account_number"]
	if err := validateAccountNumber(accountNumber); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accountService.GetAccount(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	interest, err := h.accountService.CalculateInterest(accountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, InterestResponse{
		AccountNumber: accountNumber,
		Balance:       money(account.Balance()),
		Interest:      money(interest),
	})
}

func (h *AccountHandler) BankSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.accountService.Summary()

	writeJSON(w, http.StatusOK, BankSummaryResponse{
		Customers:      summary.Customers,
		Accounts:       summary.Accounts,
		TotalBalance:   money(summary.TotalBalance),
		Transactions:   summary.Transactions,
		LedgerCapacity: summary.LedgerCapacity,
	})
}
