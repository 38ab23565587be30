package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	customer.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, created_at) VALUES (?, ?, ?)`,
		customer.Name, customer.Email, customer.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	if customer.ID, err = res.LastInsertId(); err != nil {
		return domain.Customer{}, fmt.Errorf("create customer id: %w", err)
	}
	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	var (
		customer domain.Customer
		created  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM customers WHERE id = ?`, id,
	).Scan(&customer.ID, &customer.Name, &customer.Email, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	if customer.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return domain.Customer{}, fmt.Errorf("customer %d created_at: %w", id, err)
	}
	return customer, nil
}

func (r *CustomerRepository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM customers WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return n > 0, nil
}
