package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]domain.Customer
	lastID    int64
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[int64]domain.Customer)}
}

func (r *CustomerRepository) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	customer.ID = r.lastID
	customer.CreatedAt = time.Now().UTC()
	r.customers[customer.ID] = customer
	return customer, nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id int64) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrRecordNotFound
	}
	return customer, nil
}

func (r *CustomerRepository) CustomerExists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.customers[id]
	return ok, nil
}
