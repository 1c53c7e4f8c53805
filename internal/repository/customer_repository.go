package repository

import (
	"log/slog"
	"sync"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

const DefaultCustomerCapacity = 50

type customerRepository struct {
	mu        sync.RWMutex
	customers []*domain.Customer
	index     map[string]*domain.Customer
	capacity  int
	logger    *slog.Logger
}

func NewCustomerRepository(capacity int, logger *slog.Logger) domain.CustomerRepository {
	if capacity <= 0 {
		capacity = DefaultCustomerCapacity
	}
	return &customerRepository{
		index:    make(map[string]*domain.Customer),
		capacity: capacity,
		logger:   logger,
	}
}

func (r *customerRepository) AddCustomer(customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[customer.ID()]; exists {
		r.logger.Warn("Duplicate customer creation attempt", "customer_id", customer.ID())
		return errors.ErrDuplicateCustomer
	}
	if len(r.customers) >= r.capacity {
		r.logger.Warn("Customer registry is full", "capacity", r.capacity)
		return errors.NewAppErrorf(errors.RegistryFull, "customer registry is full (capacity %d)", r.capacity)
	}

	r.customers = append(r.customers, customer)
	r.index[customer.ID()] = customer

	r.logger.Info("Customer added", "customer_id", customer.ID(), "type", customer.Type())
	return nil
}

func (r *customerRepository) GetCustomer(id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.index[id]
	if !ok {
		r.logger.Warn("Customer not found", "customer_id", id)
		return nil, errors.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepository) ListCustomers() []*domain.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Customer, len(r.customers))
	copy(out, r.customers)
	return out
}

func (r *customerRepository) SearchCustomers(filter domain.CustomerFilter) []*domain.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Customer{}
	for _, customer := range r.customers {
		if filter.Matches(customer) {
			out = append(out, customer)
		}
	}
	return out
}

func (r *customerRepository) CountCustomers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}
