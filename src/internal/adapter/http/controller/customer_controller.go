package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type CustomerController struct {
	service service_interfaces.CustomerService
}

func NewCustomerController(service service_interfaces.CustomerService) *CustomerController {
	return &CustomerController{service: service}
}

func (c *CustomerController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	routes := protected(r, authMiddleware)
	routes.Post("/customers", c.createCustomer)
	routes.Get("/customers/{customerID}", c.getCustomer)
}

func (c *CustomerController) createCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.CustomerResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response.WithRequestID(requestID(r)))
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateCustomer(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(response.Message, err)
		writeJSON(w, status, response.WithRequestID(requestID(r)))
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response.WithRequestID(requestID(r)))
	logResponse(r, http.StatusCreated, response, start)
}

func (c *CustomerController) getCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathID(r, "customerID")
	if err != nil {
		response := commons.ErrorResponse[models.CustomerResponse](msgValidationFailed, err.Error())
		writeJSON(w, http.StatusBadRequest, response.WithRequestID(requestID(r)))
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.GetCustomer(r.Context(), id)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(response.Message, err)
		writeJSON(w, status, response.WithRequestID(requestID(r)))
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response.WithRequestID(requestID(r)))
	logResponse(r, http.StatusOK, response, start)
}
