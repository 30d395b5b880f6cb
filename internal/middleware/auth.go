package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/httpx"
	"github.com/ayush/personal-library/internal/requestctx"
)

const (
	msgNoToken      = "Not authorized, no token"
	msgInvalidToken = "Not authorized, invalid token"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth is middleware that validates the bearer token and injects
// the user id into the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.WriteMessage(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, apperr.ErrConfiguration) {
					httpx.WriteError(w, r, logger, err)
					return
				}
				logger.WarnContext(r.Context(), "invalid bearer token",
					slog.String("path", r.URL.Path), slog.Any("error", err))
				httpx.WriteMessage(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			ctx := requestctx.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
