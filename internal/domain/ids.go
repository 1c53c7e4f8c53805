package domain

import (
	"fmt"
	"sync/atomic"
)

// Sequence hands out zero-padded sequential identifiers such as ACC001.
type Sequence struct {
	prefix string
	last   atomic.Int64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier. The first call returns <prefix>001.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s%03d", s.prefix, s.last.Add(1))
}

// Issued returns how many identifiers have been handed out.
func (s *Sequence) Issued() int64 {
	return s.last.Load()
}

// IDAllocator owns the independent counters for customers, accounts and
// transactions. One allocator lives as long as the Store that owns it.
type IDAllocator struct {
	Customers    *Sequence
	Accounts     *Sequence
	Transactions *Sequence
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{
		Customers:    NewSequence("CUS"),
		Accounts:     NewSequence("ACC"),
		Transactions: NewSequence("TXN"),
	}
}
