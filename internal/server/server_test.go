package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"bank-ledger/internal/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	server *Server
}

func (suite *RouterTestSuite) SetupTest() {
	cfg := &config.Config{
		ServerPort:     "0",
		LedgerCapacity: 10,
		OverdraftLimit: decimal.NewFromInt(1000),
	}
	server, err := NewServer(cfg, NewLogger(cfg))
	suite.Require().NoError(err)
	suite.server = server
}

func (suite *RouterTestSuite) do(method, path string, body interface{}) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.server.GetRouter().ServeHTTP(rec, req)

	var env envelope
	if path != "/health" {
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (suite *RouterTestSuite) decode(env envelope, v interface{}) {
	suite.Require().NotNil(env.Data)
	suite.Require().NoError(json.Unmarshal(env.Data, v))
}

func (suite *RouterTestSuite) registerCustomer() string {
	code, env := suite.do("POST", "/customers", map[string]interface{}{
		"name": "John Doe", "age": 30, "contact": "+233 55 123 4567", "address": "12 Ring Road, Accra",
	})
	suite.Require().Equal(http.StatusCreated, code)

	var customer map[string]interface{}
	suite.decode(env, &customer)
	return customer["customer_id"].(string)
}

func (suite *RouterTestSuite) openAccount(customerID, kind, balance string) string {
	code, env := suite.do("POST", "/accounts", map[string]string{
		"customer_id": customerID, "type": kind, "opening_balance": balance,
	})
	suite.Require().Equal(http.StatusCreated, code)

	var account map[string]interface{}
	suite.decode(env, &account)
	return account["account_number"].(string)
}

func (suite *RouterTestSuite) balance(number string) string {
	code, env := suite.do("GET", "/accounts/"+number, nil)
	suite.Require().Equal(http.StatusOK, code)

	var account map[string]interface{}
	suite.decode(env, &account)
	return account["balance"].(string)
}

func (suite *RouterTestSuite) TestHealth() {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	suite.server.GetRouter().ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "healthy")
}

func (suite *RouterTestSuite) TestCustomerRegistration() {
	id := suite.registerCustomer()
	suite.Equal("CUS001", id)

	code, env := suite.do("GET", "/customers/"+id, nil)
	suite.Equal(http.StatusOK, code)
	var customer map[string]interface{}
	suite.decode(env, &customer)
	suite.Equal("Regular", customer["type"])
	suite.NotContains(customer, "minimum_balance")

	code, env = suite.do("POST", "/customers", map[string]interface{}{
		"name": "Ama Mensah", "age": 40, "contact": "0241234567", "address": "Kumasi Central", "type": "premium",
	})
	suite.Equal(http.StatusCreated, code)
	suite.decode(env, &customer)
	suite.Equal("Premium", customer["type"])
	suite.Equal("10000.00", customer["minimum_balance"])

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"digits in name", map[string]interface{}{"name": "J0hn", "age": 30, "contact": "0551234567", "address": "Accra Main"}},
		{"too young", map[string]interface{}{"name": "John", "age": 17, "contact": "0551234567", "address": "Accra Main"}},
		{"short contact", map[string]interface{}{"name": "John", "age": 30, "contact": "12345", "address": "Accra Main"}},
		{"short address", map[string]interface{}{"name": "John", "age": 30, "contact": "0551234567", "address": "Acc"}},
		{"unknown type", map[string]interface{}{"name": "John", "age": 30, "contact": "0551234567", "address": "Accra Main", "type": "Gold"}},
	}
	for _, tt := range tests {
		code, env := suite.do("POST", "/customers", tt.body)
		suite.Equal(http.StatusBadRequest, code, tt.name)
		suite.Equal("invalid_input", env.Error.Code, tt.name)
	}

	code, env = suite.do("GET", "/customers/CUS404", nil)
	suite.Equal(http.StatusNotFound, code)
	suite.Equal("customer_not_found", env.Error.Code)

	code, _ = suite.do("GET", "/customers/bogus", nil)
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *RouterTestSuite) TestOpenAccount() {
	customerID := suite.registerCustomer()

	checking := suite.openAccount(customerID, "checking", "1000.00")
	savings := suite.openAccount(customerID, "Savings", "1500.00")
	suite.Equal("ACC001", checking)
	suite.Equal("ACC002", savings)

	code, env := suite.do("GET", "/accounts/"+savings, nil)
	suite.Equal(http.StatusOK, code)
	var account map[string]interface{}
	suite.decode(env, &account)
	suite.Equal("1500.00", account["balance"])
	suite.Equal("3.5", account["interest_rate"])
	suite.Equal("500.00", account["minimum_balance"])
	suite.Equal("Active", account["status"])

	code, env = suite.do("POST", "/accounts", map[string]string{
		"customer_id": customerID, "type": "Savings", "opening_balance": "100.00",
	})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_opening_balance", env.Error.Code)

	code, env = suite.do("POST", "/accounts", map[string]string{
		"customer_id": customerID, "type": "Checking", "opening_balance": "-1",
	})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_opening_balance", env.Error.Code)

	code, env = suite.do("POST", "/accounts", map[string]string{
		"customer_id": "CUS999", "type": "Checking", "opening_balance": "0",
	})
	suite.Equal(http.StatusNotFound, code)
	suite.Equal("customer_not_found", env.Error.Code)

	code, env = suite.do("POST", "/accounts", map[string]string{
		"customer_id": customerID, "type": "Checking", "opening_balance": "0", "overdraft_limit": "250",
	})
	suite.Equal(http.StatusCreated, code)
	suite.decode(env, &account)
	suite.Equal("250.00", account["overdraft_limit"])

	code, env = suite.do("GET", "/customers/"+customerID+"/accounts", nil)
	suite.Equal(http.StatusOK, code)
	var accounts []map[string]interface{}
	suite.decode(env, &accounts)
	suite.Len(accounts, 3)
}

func (suite *RouterTestSuite) TestDepositWithdrawAndHistory() {
	number := suite.openAccount(suite.registerCustomer(), "Checking", "1000.00")

	code, env := suite.do("POST", "/accounts/"+number+"/deposits", map[string]string{"amount": "250.50"})
	suite.Equal(http.StatusCreated, code)
	var tx map[string]interface{}
	suite.decode(env, &tx)
	suite.Equal("TXN001", tx["transaction_id"])
	suite.Equal("DEPOSIT", tx["type"])
	suite.Equal("1250.50", tx["balance_after"])

	code, env = suite.do("POST", "/accounts/"+number+"/withdrawals", map[string]string{"amount": "1500"})
	suite.Equal(http.StatusCreated, code)
	suite.decode(env, &tx)
	suite.Equal("-249.50", tx["balance_after"])

	code, env = suite.do("POST", "/accounts/"+number+"/withdrawals", map[string]string{"amount": "1000"})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("overdraft_limit_exceeded", env.Error.Code)

	code, env = suite.do("POST", "/accounts/"+number+"/transactions", map[string]string{"type": "deposit", "amount": "49.50"})
	suite.Equal(http.StatusCreated, code)

	code, env = suite.do("POST", "/accounts/"+number+"/transactions", map[string]string{"type": "refund", "amount": "1"})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("unknown_transaction_type", env.Error.Code)

	for _, amount := range []string{"0", "-5", "10.001", "abc"} {
		code, env = suite.do("POST", "/accounts/"+number+"/deposits", map[string]string{"amount": amount})
		suite.Equal(http.StatusBadRequest, code, amount)
		suite.Equal("invalid_amount", env.Error.Code, amount)
	}

	code, env = suite.do("GET", "/accounts/"+number+"/transactions", nil)
	suite.Equal(http.StatusOK, code)
	var history []map[string]interface{}
	suite.decode(env, &history)
	ids := make([]interface{}, 0, len(history))
	for _, tx := range history {
		ids = append(ids, tx["transaction_id"])
	}
	suite.ElementsMatch([]interface{}{"TXN001", "TXN002", "TXN003"}, ids)

	code, env = suite.do("GET", "/accounts/"+number+"/summary", nil)
	suite.Equal(http.StatusOK, code)
	var summary map[string]interface{}
	suite.decode(env, &summary)
	suite.Equal("300.00", summary["total_deposits"])
	suite.Equal("1500.00", summary["total_withdrawals"])
	suite.Equal("-1200.00", summary["net_change"])

	suite.Equal("-200.00", suite.balance(number))
}

func (suite *RouterTestSuite) TestTransfer() {
	customerID := suite.registerCustomer()
	source := suite.openAccount(customerID, "Checking", "1000.00")
	target := suite.openAccount(customerID, "Savings", "500.00")
	key := uuid.New().String()

	body := map[string]string{
		"source_account_number":      source,
		"destination_account_number": target,
		"amount":                     "300.00",
		"idempotency_key":            key,
	}

	code, env := suite.do("POST", "/transfers", body)
	suite.Equal(http.StatusCreated, code)
	var receipt map[string]interface{}
	suite.decode(env, &receipt)
	suite.Equal("completed", receipt["status"])
	suite.Equal(key, receipt["idempotency_key"])
	out := receipt["transfer_out"].(map[string]interface{})
	suite.Equal("TRANSFER_OUT", out["type"])
	suite.Equal(target, out["related_account"])

	// Replaying the key does not move funds again.
	code, env = suite.do("POST", "/transfers", body)
	suite.Equal(http.StatusCreated, code)
	var replay map[string]interface{}
	suite.decode(env, &replay)
	suite.Equal(out["transaction_id"], replay["transfer_out"].(map[string]interface{})["transaction_id"])

	suite.Equal("700.00", suite.balance(source))
	suite.Equal("800.00", suite.balance(target))

	code, env = suite.do("POST", "/transfers", map[string]string{
		"source_account_number": target, "destination_account_number": source, "amount": "400.00",
	})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("below_minimum_balance", env.Error.Code)

	code, env = suite.do("POST", "/transfers", map[string]string{
		"source_account_number": source, "destination_account_number": source, "amount": "1",
	})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("same_account_transfer", env.Error.Code)

	code, env = suite.do("POST", "/transfers", map[string]string{
		"source_account_number": source, "destination_account_number": target, "amount": "1", "idempotency_key": "nope",
	})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_input", env.Error.Code)
}

func (suite *RouterTestSuite) TestStatusAndInterest() {
	customerID := suite.registerCustomer()
	savings := suite.openAccount(customerID, "Savings", "2000.00")

	code, env := suite.do("GET", "/accounts/"+savings+"/interest", nil)
	suite.Equal(http.StatusOK, code)
	var interest map[string]interface{}
	suite.decode(env, &interest)
	suite.Equal("70.00", interest["interest"])

	code, env = suite.do("PATCH", "/accounts/"+savings+"/status", map[string]string{"status": "closed"})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("non_zero_balance", env.Error.Code)

	code, env = suite.do("PATCH", "/accounts/"+savings+"/status", map[string]string{"status": "frozen"})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_status", env.Error.Code)

	code, _ = suite.do("PATCH", "/accounts/"+savings+"/status", map[string]string{"status": "inactive"})
	suite.Equal(http.StatusOK, code)

	code, env = suite.do("POST", "/accounts/"+savings+"/deposits", map[string]string{"amount": "1"})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("account_not_active", env.Error.Code)

	code, env = suite.do("GET", "/bank/summary", nil)
	suite.Equal(http.StatusOK, code)
	var summary map[string]interface{}
	suite.decode(env, &summary)
	suite.Equal("2000.00", summary["total_balance"])
	suite.EqualValues(10, summary["ledger_capacity"])
}

func (suite *RouterTestSuite) TestLedgerFull() {
	number := suite.openAccount(suite.registerCustomer(), "Checking", "0")

	for i := 0; i < 10; i++ {
		code, _ := suite.do("POST", "/accounts/"+number+"/deposits", map[string]string{"amount": "1"})
		suite.Require().Equal(http.StatusCreated, code)
	}

	code, env := suite.do("POST", "/accounts/"+number+"/deposits", map[string]string{"amount": "1"})
	suite.Equal(http.StatusUnprocessableEntity, code)
	suite.Equal("ledger_full", env.Error.Code)
	suite.Equal("10.00", suite.balance(number))
}

func (suite *RouterTestSuite) TestUnknownFieldsAndAccounts() {
	code, env := suite.do("POST", "/customers", map[string]interface{}{"nickname": "JD"})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_input", env.Error.Code)

	code, env = suite.do("GET", "/accounts/ACC404", nil)
	suite.Equal(http.StatusNotFound, code)
	suite.Equal("account_not_found", env.Error.Code)

	code, env = suite.do("GET", "/accounts/12", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_account_number", env.Error.Code)
}

func (suite *RouterTestSuite) TestSearch() {
	john := suite.registerCustomer()
	code, env := suite.do("POST", "/customers", map[string]interface{}{
		"name": "Ama Mensah", "age": 40, "contact": "0241234567", "address": "Kumasi Central", "type": "Premium",
	})
	suite.Require().Equal(http.StatusCreated, code)
	var ama map[string]interface{}
	suite.decode(env, &ama)

	suite.openAccount(john, "Checking", "100")
	suite.openAccount(ama["customer_id"].(string), "Savings", "600")
	suite.openAccount(ama["customer_id"].(string), "Checking", "0")

	accountNumbers := func(path string) []string {
		code, env := suite.do("GET", path, nil)
		suite.Require().Equal(http.StatusOK, code, path)
		var accounts []map[string]interface{}
		suite.decode(env, &accounts)
		out := make([]string, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, a["account_number"].(string))
		}
		return out
	}

	suite.Equal([]string{"ACC001", "ACC002", "ACC003"}, accountNumbers("/accounts"))
	suite.Equal([]string{"ACC002", "ACC003"}, accountNumbers("/accounts?customer_name=mensah"))
	suite.Equal([]string{"ACC001", "ACC003"}, accountNumbers("/accounts?type=checking"))
	suite.Equal([]string{"ACC003"}, accountNumbers("/accounts?customer_name=Ama&type=Checking"))
	suite.Equal([]string{}, accountNumbers("/accounts?customer_name=nobody"))

	code, _ = suite.do("PATCH", "/accounts/ACC003/status", map[string]string{"status": "Inactive"})
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal([]string{"ACC003"}, accountNumbers("/accounts?status=inactive"))

	code, env = suite.do("GET", "/accounts?type=Business", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_input", env.Error.Code)

	customerIDs := func(path string) []string {
		code, env := suite.do("GET", path, nil)
		suite.Require().Equal(http.StatusOK, code, path)
		var customers []map[string]interface{}
		suite.decode(env, &customers)
		out := make([]string, 0, len(customers))
		for _, c := range customers {
			out = append(out, c["customer_id"].(string))
		}
		return out
	}

	suite.Equal([]string{"CUS001", "CUS002"}, customerIDs("/customers"))
	suite.Equal([]string{"CUS001"}, customerIDs("/customers?name=JOHN"))
	suite.Equal([]string{"CUS002"}, customerIDs("/customers?type=premium"))
	suite.Equal([]string{}, customerIDs("/customers?name=john&type=Premium"))

	code, env = suite.do("GET", "/customers?type=Gold", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("invalid_input", env.Error.Code)
}

func (suite *RouterTestSuite) TestIdempotencyKeyConflict() {
	customerID := suite.registerCustomer()
	source := suite.openAccount(customerID, "Checking", "1000.00")
	target := suite.openAccount(customerID, "Checking", "0")
	key := uuid.New().String()

	code, _ := suite.do("POST", "/transfers", map[string]string{
		"source_account_number": source, "destination_account_number": target, "amount": "100.00", "idempotency_key": key,
	})
	suite.Require().Equal(http.StatusCreated, code)

	code, env := suite.do("POST", "/transfers", map[string]string{
		"source_account_number": source, "destination_account_number": target, "amount": "250.00", "idempotency_key": key,
	})
	suite.Equal(http.StatusConflict, code)
	suite.Equal("idempotency_key_conflict", env.Error.Code)

	suite.Equal("900.00", suite.balance(source))
	suite.Equal("100.00", suite.balance(target))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
