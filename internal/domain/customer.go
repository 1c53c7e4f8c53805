package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type CustomerType string

const (
	CustomerTypeRegular CustomerType = "Regular"
	CustomerTypePremium CustomerType = "Premium"
)

// PremiumMinimumBalance is advertised to premium customers. It is never enforced.
var PremiumMinimumBalance = decimal.RequireFromString("10000.00")

func ParseCustomerType(s string) (CustomerType, bool) {
	switch {
	case strings.EqualFold(s, string(CustomerTypeRegular)):
		return CustomerTypeRegular, true
	case strings.EqualFold(s, string(CustomerTypePremium)):
		return CustomerTypePremium, true
	}
	return "", false
}

// Customer is the profile that owns one or more accounts. Type is fixed at
// construction; contact and address may be updated.
type Customer struct {
	mu        sync.RWMutex
	id        string
	name      string
	age       int
	contact   string
	address   string
	kind      CustomerType
	createdAt time.Time
}

func NewCustomer(id, name string, age int, contact, address string, kind CustomerType) (*Customer, error) {
	if id == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "customer id is required")
	}
	if _, ok := ParseCustomerType(string(kind)); !ok {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown customer type %q", kind)
	}

	return &Customer{
		id:        id,
		name:      name,
		age:       age,
		contact:   contact,
		address:   address,
		kind:      kind,
		createdAt: time.Now(),
	}, nil
}

func (c *Customer) ID() string           { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Age() int             { return c.age }
func (c *Customer) Type() CustomerType   { return c.kind }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }

func (c *Customer) Contact() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contact
}

func (c *Customer) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// UpdateContact replaces the contact details. Empty values keep the current one.
func (c *Customer) UpdateContact(contact, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if contact != "" {
		c.contact = contact
	}
	if address != "" {
		c.address = address
	}
}

func (c *Customer) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Customer %s\n", c.kind, c.id)
	fmt.Fprintf(&b, "Name: %s\n", c.name)
	fmt.Fprintf(&b, "Age: %d\n", c.age)
	fmt.Fprintf(&b, "Contact: %s\n", c.Contact())
	fmt.Fprintf(&b, "Address: %s\n", c.Address())
	if c.kind == CustomerTypePremium {
		fmt.Fprintf(&b, "Minimum Balance Required: $%s\n", PremiumMinimumBalance.StringFixed(2))
		b.WriteString("Benefits: No monthly fees, Priority service")
	} else {
		b.WriteString("Benefits: Standard banking services")
	}
	return b.String()
}
