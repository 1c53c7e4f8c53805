package service

import (
	"log/slog"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/repository"
)

type CustomerService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewCustomerService(store *repository.Store, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		store:  store,
		logger: logger,
	}
}

type RegisterCustomerRequest struct {
	Name    string
	Age     int
	Contact string
	Address string
	Type    domain.CustomerType
}

func (s *CustomerService) RegisterCustomer(req *RegisterCustomerRequest) (*domain.Customer, error) {
	s.logger.Info("Registering customer", "name", req.Name, "type", req.Type)

	customer, err := domain.NewCustomer(
		s.store.IDs().Customers.Next(),
		req.Name,
		req.Age,
		req.Contact,
		req.Address,
		req.Type,
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Customer().AddCustomer(customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer registered successfully", "customer_id", customer.ID())
	return customer, nil
}

func (s *CustomerService) GetCustomer(id string) (*domain.Customer, error) {
	return s.store.Customer().GetCustomer(id)
}

func (s *CustomerService) ListCustomers() []*domain.Customer {
	return s.store.Customer().ListCustomers()
}

func (s *CustomerService) SearchCustomers(filter domain.CustomerFilter) []*domain.Customer {
	return s.store.Customer().SearchCustomers(filter)
}
