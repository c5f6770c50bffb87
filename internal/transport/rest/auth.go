package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/auth"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/pkg/web"
)

const realm = `Basic realm="inventory", charset="UTF-8"`

// Authenticator resolves the role of a username and password pair.
type Authenticator interface {
	CheckCredentials(username, password string) (auth.Role, error)
}

type roleKey struct{}

// WithRole adds the caller's role to the context.
func WithRole(ctx context.Context, role auth.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFrom returns the caller's role stored by BasicAuth.
func RoleFrom(ctx context.Context) (auth.Role, bool) {
	role, ok := ctx.Value(roleKey{}).(auth.Role)
	return role, ok
}

// BasicAuth authenticates every request with HTTP basic credentials checked
// against the credential files and stores the resulting role in the context.
func BasicAuth(authenticator Authenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, logger, "Missing credentials")
				return
			}
			role, err := authenticator.CheckCredentials(username, password)
			if err != nil {
				if errors.Is(err, perrors.ErrInvalidCredentials) {
					logger.WarnContext(r.Context(), "Invalid credentials", "username", username)
					unauthorized(w, logger, "Invalid username or password")
					return
				}
				logger.ErrorContext(r.Context(), "Failed to check credentials", "error", err)
				web.RespondError(w, logger, http.StatusInternalServerError, "Failed to check credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, message string) {
	w.Header().Set("WWW-Authenticate", realm)
	web.RespondError(w, logger, http.StatusUnauthorized, message)
}
