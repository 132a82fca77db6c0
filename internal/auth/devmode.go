package auth

import (
	"log/slog"
	"net/http"
)

// DevModeMiddleware injects a synthetic admin Principal.
// Use only when AUTH_ENABLED=false (development).
func DevModeMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	logger.Warn("DEV MODE: authentication disabled, all requests get admin principal")
	p := &Principal{
		Sub:      "dev-user",
		Scopes:   map[string]bool{"openid": true, ScopeRead: true},
		Roles:    map[string]bool{RoleAdmin: true, RoleReader: true},
		ClientID: "dev",
		Issuer:   "dev",
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
