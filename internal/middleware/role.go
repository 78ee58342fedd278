package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/junketops/junket-engine/internal/metrics"
	"github.com/junketops/junket-engine/internal/permission"
)

type contextKey string

const roleContextKey contextKey = "role"

// WithRole resolves the caller's role from the named header and stores it
// in the request context. Missing or unrecognized values resolve to
// permission.RoleUnknown, which holds no capabilities.
func WithRole(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := permission.ParseRole(r.Header.Get(header))
			ctx := context.WithValue(r.Context(), roleContextKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleFromContext returns the role stored by WithRole, or RoleUnknown.
func RoleFromContext(ctx context.Context) permission.Role {
	role, ok := ctx.Value(roleContextKey).(permission.Role)
	if !ok {
		return permission.RoleUnknown
	}
	return role
}

// Require rejects a request with 403 unless its role holds all of caps.
// The body carries the role's permission message. A nil logger falls back
// to slog.Default.
func Require(logger *slog.Logger, caps ...permission.Capability) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			for _, c := range caps {
				if !role.Can(c) {
					metrics.PermissionDenials.WithLabelValues(c.String()).Inc()
					logger.Warn("permission denied",
						"role", role.String(),
						"capability", c.String(),
						"method", r.Method,
						"path", r.URL.Path,
					)
					writeError(w, role.Message(), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
