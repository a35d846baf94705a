package rest

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// RequireSecret guards next with a shared bearer secret.
// An empty secret rejects every request with 500, a wrong one with 401.
func RequireSecret(logger *slog.Logger, secret string) func(http.Handler) http.Handler {
	log := logger.With("method", "RequireSecret")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				log.Error("cron secret is not configured")
				http.Error(w, "CRON_SECRET not configured", http.StatusInternalServerError)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				log.Warn("unauthorized cron request", "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
