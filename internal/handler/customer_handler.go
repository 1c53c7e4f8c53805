package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	accountService  *service.AccountService
}

func NewCustomerHandler(customerService *service.CustomerService, accountService *service.AccountService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		accountService:  accountService,
	}
}

type RegisterCustomerRequest struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	Type    string `json:"type,omitempty"`
}

type CustomerResponse struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Contact    string `json:"contact"`
	Address    string `json:"address"`
	Type       string `json:"type"`
	// Informational only, never enforced.
	MinimumBalance string    `json:"minimum_balance,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newCustomerResponse(c *domain.Customer) CustomerResponse {
	resp := CustomerResponse{
		CustomerID: c.ID(),
		Name:       c.Name(),
		Age:        c.Age(),
		Contact:    c.Contact(),
		Address:    c.Address(),
		Type:       string(c.Type()),
		CreatedAt:  c.CreatedAt(),
	}
	if c.Type() == domain.CustomerTypePremium {
		resp.MinimumBalance = money(domain.PremiumMinimumBalance)
	}
	return resp
}

func (h *CustomerHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind, err := validateCustomer(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.customerService.RegisterCustomer(&service.RegisterCustomerRequest{
		Name:    req.Name,
		Age:     req.Age,
		Contact: req.Contact,
		Address: req.Address,
		Type:    kind,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCustomerResponse(customer))
}

// ListCustomers lists every customer, narrowed by the optional name and type
// query parameters.
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.CustomerFilter{Name: query.Get("name")}

	if v := query.Get("type"); v != "" {
		kind, ok := domain.ParseCustomerType(v)
		if !ok {
			writeError(w, errors.NewAppErrorf(errors.InvalidInput, "customer type must be Regular or Premium, got %q", v))
			return
		}
		filter.Type = kind
	}

	customers := h.customerService.SearchCustomers(filter)

	response := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		response = append(response, newCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customer_id"]
	if err := validateCustomerID(customerID); err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.customerService.GetCustomer(customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCustomerResponse(customer))
}

func (h *CustomerHandler) ListCustomerAccounts(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customer_id"]
	if err := validateCustomerID(customerID); err != nil {
		writeError(w, err)
		return
	}

	accounts, err := h.accountService.ListCustomerAccounts(customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponses(accounts))
}
