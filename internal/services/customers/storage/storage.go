// Package storage defines persistence contracts for customer records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested customer record is missing.
var ErrNotFound = errors.New("record not found")

// Customer stores one customer record.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerStore persists customer records.
type CustomerStore interface {
	PutCustomer(ctx context.Context, customer Customer) error
	GetCustomer(ctx context.Context, id string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}
