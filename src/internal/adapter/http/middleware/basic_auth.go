package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/api-sage/ledger-engine/src/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuth accepts the channel credentials compared in constant time.
func BasicAuth(channelID, channelKey string) func(http.Handler) http.Handler {
	return basicAuth(channelID, channelKey, func(key string) bool {
		return secureEqual(key, channelKey)
	})
}

// BasicAuthHashed is BasicAuth against a bcrypt hash of the channel key.
func BasicAuthHashed(channelID, channelKeyHash string) func(http.Handler) http.Handler {
	return basicAuth(channelID, channelKeyHash, func(key string) bool {
		return bcrypt.CompareHashAndPassword([]byte(channelKeyHash), []byte(key)) == nil
	})
}

func basicAuth(channelID, secret string, verify func(key string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if channelID == "" || secret == "" {
				logger.Error("basic auth middleware missing server configuration", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			id, key, ok := r.BasicAuth()
			if !ok || !secureEqual(id, channelID) || !verify(key) {
				logger.Info("basic auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "invalid_or_missing",
				})
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			logger.Debug("basic auth middleware authorized request", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			next.ServeHTTP(w, r)
		})
	}
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
