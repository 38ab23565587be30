package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTransferCountsByOutcome(t *testing.T) {
	m := New()
	m.ObserveTransfer(OutcomeApplied, time.Now())
	m.ObserveTransfer(OutcomeApplied, time.Now())
	m.ObserveTransfer(OutcomeInsufficientFunds, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransfersTotal.WithLabelValues(OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransfersTotal.WithLabelValues(OutcomeInsufficientFunds)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransfer(OutcomeApplied, time.Now())
		m.AccountCreated()
		m.JournalFailed("transfer")
	})
}

func TestHandlerExposesLedgerSeries(t *testing.T) {
	m := New()
	m.AccountCreated()
	m.JournalFailed("account")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledger_accounts_created_total 1")
	assert.Contains(t, string(body), `ledger_journal_failures_total{op="account"} 1`)
}
