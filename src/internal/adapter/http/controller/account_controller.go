package controller

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

const (
	headerIdempotencyKey      = "Idempotency-Key"
	headerIdempotencyReplayed = "X-Idempotency-Replayed"
)

type AccountController struct {
	service service_interfaces.LedgerService
}

func NewAccountController(service service_interfaces.LedgerService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	routes := protected(r, authMiddleware)
	routes.Post("/accounts", c.createAccount)
	routes.Get("/accounts", c.listAccounts)
	routes.Get("/accounts/{accountID}/balance", c.getBalance)
	routes.Post("/accounts/transfer", c.transfer)
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response.WithRequestID(requestID(r)))
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateAccount(r.Context(), req)
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

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.ListAccounts(r.Context())
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

func (c *AccountController) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathID(r, "accountID")
	if err != nil {
		response := commons.ErrorResponse[models.BalanceResponse](msgValidationFailed, err.Error())
		writeJSON(w, http.StatusBadRequest, response.WithRequestID(requestID(r)))
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.GetBalance(r.Context(), id)
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

func (c *AccountController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response.WithRequestID(requestID(r)))
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	// the header wins over the body
	if key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey)); key != "" {
		req.IdempotencyKey = key
	}
	logRequest(r, req)

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(response.Message, err)
		writeJSON(w, status, response.WithRequestID(requestID(r)))
		logResponse(r, status, response, start)
		return
	}

	status := http.StatusCreated
	if response.Data != nil && response.Data.Replayed {
		w.Header().Set(headerIdempotencyReplayed, "true")
		status = http.StatusOK
	}
	writeJSON(w, status, response.WithRequestID(requestID(r)))
	logResponse(r, status, response, start)
}
