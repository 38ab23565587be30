package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serveWith(mw func(http.Handler) http.Handler, credentials string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if credentials != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))
	}

	rr := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rr, req)
	return rr.Code
}

func TestBasicAuth_AllowsValidCredentials(t *testing.T) {
	assert.Equal(t, http.StatusOK, serveWith(BasicAuth("LedgerApp", "LedgerKey001"), "LedgerApp:LedgerKey001"))
}

func TestBasicAuth_RejectsInvalidCredentials(t *testing.T) {
	mw := BasicAuth("LedgerApp", "LedgerKey001")

	assert.Equal(t, http.StatusUnauthorized, serveWith(mw, "LedgerApp:WrongKey"))
	assert.Equal(t, http.StatusUnauthorized, serveWith(mw, "OtherApp:LedgerKey001"))
	assert.Equal(t, http.StatusUnauthorized, serveWith(mw, ""))
}

func TestBasicAuth_MissingConfiguration(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, serveWith(BasicAuth("LedgerApp", ""), "LedgerApp:x"))
}

func TestBasicAuthHashed(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("LedgerKey001"), bcrypt.MinCost)
	require.NoError(t, err)
	mw := BasicAuthHashed("LedgerApp", string(hash))

	assert.Equal(t, http.StatusOK, serveWith(mw, "LedgerApp:LedgerKey001"))
	assert.Equal(t, http.StatusUnauthorized, serveWith(mw, "LedgerApp:LedgerKey002"))
}
