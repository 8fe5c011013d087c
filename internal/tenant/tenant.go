// Package tenant resolves and carries the tenant ID that scopes every
// cart/counter/store operation (spec §2: "Tenant", §6.1: terminal_id is
// `{tenant}-{store}-{terminal}`).
package tenant

import (
	"context"
	"net/http"
	"strings"

	"github.com/cartflow/server/internal/apikey"
)

// DefaultTenantID is used when API key authentication is disabled (local/dev).
const DefaultTenantID = "default"

type contextKey string

const tenantContextKey contextKey = "tenant-id"

// FromContext retrieves the tenant ID from the request context. Returns
// DefaultTenantID if none was set.
func FromContext(ctx context.Context) string {
	if tenantID, ok := ctx.Value(tenantContextKey).(string); ok && tenantID != "" {
		return tenantID
	}
	return DefaultTenantID
}

// WithTenant adds the tenant ID to the context.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	return context.WithValue(ctx, tenantContextKey, tenantID)
}

// Extraction resolves the tenant ID for the request, in priority order:
//  1. The tenant the apikey middleware resolved from X-API-Key (authoritative)
//  2. The leading segment of the terminal_id query param ({tenant}-{store}-{terminal})
//  3. DefaultTenantID, for local/dev deployments with API keys disabled
//
// Must run after apikey.Middleware.
func Extraction(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := extractTenantID(r)
		w.Header().Set("X-Tenant-ID", tenantID)
		next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
	})
}

func extractTenantID(r *http.Request) string {
	if tenantID, ok := apikey.TenantFromContext(r.Context()); ok && tenantID != "" {
		return sanitizeTenantID(tenantID)
	}
	if terminalID := r.URL.Query().Get("terminal_id"); terminalID != "" {
		if parts := strings.SplitN(terminalID, "-", 2); len(parts) == 2 && parts[0] != "" {
			return sanitizeTenantID(parts[0])
		}
	}
	return DefaultTenantID
}

// sanitizeTenantID keeps only characters safe for a per-tenant database name
// (spec §6.2: "db_cart_{tenant_id}").
func sanitizeTenantID(tenantID string) string {
	tenantID = strings.ToLower(strings.TrimSpace(tenantID))

	var sanitized strings.Builder
	for _, r := range tenantID {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()
	if result == "" {
		return DefaultTenantID
	}
	if len(result) > 64 {
		result = result[:64]
	}
	return result
}

// Validator checks tenant existence/activation; the noop variant is used
// when no external tenant directory is configured.
type Validator interface {
	IsValidTenant(ctx context.Context, tenantID string) (bool, error)
}

// NoopValidator always reports the tenant as valid (single-tenant or
// API-key-only deployments).
type NoopValidator struct{}

func (NoopValidator) IsValidTenant(ctx context.Context, tenantID string) (bool, error) {
	return true, nil
}
