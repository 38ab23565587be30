package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
)

type CustomerService struct {
	customerRepo domain.CustomerRepository
}

func NewCustomerService(customerRepo domain.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CustomerResponse], error) {
	logger.Info("customer service create customer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("customer service create customer validation failed", err, nil)
		return commons.ErrorResponse[models.CustomerResponse](msgValidationFailed, err.Error()), err
	}

	created, err := s.customerRepo.Create(ctx, domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		logger.Error("customer service create customer repository failed", err, nil)
		return commons.ErrorResponse[models.CustomerResponse]("failed to create customer", "Unable to create customer right now"), err
	}

	logger.Info("customer service create customer success", logger.Fields{
		"customerId": created.ID,
	})
	return commons.SuccessResponse("customer created successfully", toCustomerResponse(created)), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (commons.Response[models.CustomerResponse], error) {
	logger.Info("customer service get customer request", logger.Fields{
		"customerId": id,
	})

	if id <= 0 {
		err := errors.New("customer id must be a positive integer")
		return commons.ErrorResponse[models.CustomerResponse](msgValidationFailed, err.Error()), err
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.CustomerResponse]("customer not found"), err
		}
		logger.Error("customer service get customer repository failed", err, logger.Fields{
			"customerId": id,
		})
		return commons.ErrorResponse[models.CustomerResponse]("failed to get customer", "Unable to fetch customer right now"), err
	}

	return commons.SuccessResponse("customer fetched successfully", toCustomerResponse(customer)), nil
}

func toCustomerResponse(c domain.Customer) models.CustomerResponse {
	return models.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
