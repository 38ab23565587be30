package domain

import "context"

// CustomerRegistry is the only collaborator the ledger core consumes.
type CustomerRegistry interface {
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
}

type CustomerRepository interface {
	CustomerRegistry
	Create(ctx context.Context, customer Customer) (Customer, error)
	GetByID(ctx context.Context, id int64) (Customer, error)
}
