// Package apikey authenticates POS terminal requests against a configured
// set of API keys (spec §6.1: "X-API-Key header"). Unlike a public freemium
// API, an invalid or missing key is always rejected — there is no tier to
// fall back to. Each key resolves directly to the tenant it authenticates,
// which internal/tenant then attaches to the request context.
package apikey

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/cartflow/server/internal/errors"
)

type contextKey string

const contextKeyTenantID contextKey = "api_key_tenant_id"

// Config holds API key configuration.
type Config struct {
	// Keys maps an API key to the tenant it authenticates.
	Keys map[string]string

	// Enabled controls whether API key authentication is enforced.
	Enabled bool
}

// Middleware rejects requests carrying a missing or unrecognized X-API-Key
// header and attaches the resolved tenant ID to the request context. When
// disabled, every request passes through unauthenticated (local/dev profile
// only — see internal/config).
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get("X-API-Key"))
			tenantID := ""
			if key != "" {
				tenantID = cfg.Keys[key]
			}
			if key == "" || tenantID == "" {
				apierrors.WriteError(w, "authenticate", apierrors.ErrUnauthenticated, "missing or invalid API key")
				return
			}
			ctx := context.WithValue(r.Context(), contextKeyTenantID, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantFromContext returns the tenant ID resolved from the request's API
// key, if the middleware authenticated one.
func TenantFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyTenantID).(string)
	return id, ok
}

// WithTenant attaches a resolved tenant ID to ctx, as Middleware does after
// a successful key lookup. Exported for tests of downstream consumers.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextKeyTenantID, tenantID)
}
