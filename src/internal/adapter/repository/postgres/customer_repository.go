package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	const query = `
INSERT INTO customers (name, email)
VALUES ($1, $2)
RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, customer.Name, customer.Email).Scan(&customer.ID, &customer.CreatedAt); err != nil {
		logger.Error("customer repository create failed", err, logger.Fields{
			"email": customer.Email,
		})
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	const query = `
SELECT id, name, email, created_at
FROM customers
WHERE id = $1`

	var customer domain.Customer
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrRecordNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return exists, nil
}
