package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the signer address
// it was issued to.
type TokenValidator interface {
	ValidateToken(tokenString string) (domain.Address, error)
}

// RequireSigner authenticates the caller from a Bearer token and injects
// the signer address into the request context. Requests without a valid
// token are rejected before reaching the handler; domain-level
// authorization (administrator, holder, operator) happens in the
// services.
func RequireSigner(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
