package controller

import (
	"net/http"
	"net/url"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/go-chi/chi/v5"
)

type TransferController struct {
	service service_interfaces.LedgerService
}

func NewTransferController(service service_interfaces.LedgerService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	protected(r, authMiddleware).Get("/transfers/{idempotencyKey}", c.getTransfer)
}

func (c *TransferController) getTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	key, err := url.PathUnescape(chi.URLParam(r, "idempotencyKey"))
	if err != nil {
		key = chi.URLParam(r, "idempotencyKey")
	}

	response, err := c.service.GetTransfer(r.Context(), key)
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
