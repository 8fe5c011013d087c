package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration. Names
// follow spec §6.4's configuration keys directly, unprefixed, since they
// are already namespaced by their subject (CART_, TERMINAL_, COUNTER_, ...).
func (c *Config) applyEnvOverrides() {
	// Server
	setIfEnv(&c.Server.Address, "SERVER_ADDRESS")
	setIfEnv(&c.Server.RoutePrefix, "ROUTE_PREFIX")
	setIfEnv(&c.Server.AdminAPIKey, "ADMIN_API_KEY")
	setDurationIfEnv(&c.Server.HTTPTimeout, "HTTP_TIMEOUT")

	if c.Server.RoutePrefix != "" {
		c.Server.RoutePrefix = normalizeRoutePrefix(c.Server.RoutePrefix)
	}

	// Cart store (C2)
	setDurationIfEnv(&c.CartStore.PrimaryTTL, "CART_TTL_SECONDS")
	setDurationIfEnv(&c.CartStore.CompletedRetention, "CART_COMPLETED_RETENTION")
	setIfEnv(&c.CartStore.FallbackBackend, "CART_STORE_FALLBACK_BACKEND")
	setIfEnv(&c.CartStore.PostgresURL, "CART_STORE_POSTGRES_URL")
	setIfEnv(&c.CartStore.MongoDBURL, "CART_STORE_MONGODB_URL")
	setIfEnv(&c.CartStore.MongoDBDatabase, "CART_STORE_MONGODB_DATABASE")

	// Counters (C1)
	setIfEnv(&c.Counters.Backend, "COUNTER_BACKEND")
	setIfEnv(&c.Counters.PostgresURL, "COUNTER_POSTGRES_URL")
	setIfEnv(&c.Counters.MongoDBURL, "COUNTER_MONGODB_URL")
	setIfEnv(&c.Counters.MongoDBDatabase, "COUNTER_MONGODB_DATABASE")

	// Tax (C4)
	setIfEnv(&c.Tax.DefaultRoundingMode, "TAX_DEFAULT_ROUNDING_MODE")

	// Payment (C5)
	setIfEnv(&c.Payment.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setIfEnv(&c.Payment.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setIfEnv(&c.Payment.Stripe.Mode, "STRIPE_MODE")

	// Masters
	setIfEnv(&c.Masters.Source, "MASTERS_SOURCE")
	setDurationIfEnv(&c.Masters.CacheTTL, "MASTERS_CACHE_TTL")
	setDurationIfEnv(&c.Masters.TerminalCacheTTL, "TERMINAL_CACHE_TTL_SECONDS")
	setIfEnv(&c.Masters.PostgresURL, "MASTERS_POSTGRES_URL")
	setIfEnv(&c.Masters.MongoDBURL, "MASTERS_MONGODB_URL")
	setIfEnv(&c.Masters.MongoDBDatabase, "MASTERS_MONGODB_DATABASE")

	// Event bus / republisher (C8/C9)
	setDurationIfEnvUnit(&c.EventBus.Republisher.CheckInterval, "UNDELIVERED_CHECK_INTERVAL_IN_MINUTES", time.Minute)
	setDurationIfEnvUnit(&c.EventBus.Republisher.CheckPeriod, "UNDELIVERED_CHECK_PERIOD_IN_HOURS", time.Hour)
	setDurationIfEnvUnit(&c.EventBus.Republisher.FailedGrace, "UNDELIVERED_CHECK_FAILED_PERIOD_IN_MINUTES", time.Minute)

	// Rate limiting
	setBoolIfEnv(&c.RateLimit.GlobalEnabled, "RATE_LIMIT_GLOBAL_ENABLED")
	setBoolIfEnv(&c.RateLimit.PerTerminalEnabled, "RATE_LIMIT_PER_TERMINAL_ENABLED")
	setBoolIfEnv(&c.RateLimit.PerIPEnabled, "RATE_LIMIT_PER_IP_ENABLED")

	// API key config (X-API-Key -> tenant_id)
	setBoolIfEnv(&c.APIKey.Enabled, "API_KEY_ENABLED")
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "API_KEY_TENANT_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		// API_KEY_TENANT_ACME=sk_live_abc123 -> key "sk_live_abc123" maps to tenant "acme"
		tenant := strings.ToLower(strings.TrimPrefix(parts[0], "API_KEY_TENANT_"))
		if tenant == "" {
			continue
		}
		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			continue
		}
		if c.APIKey.Keys == nil {
			c.APIKey.Keys = make(map[string]string)
		}
		c.APIKey.Keys[apiKey] = tenant
	}

	// Circuit breaker (spec §6.4 CIRCUIT_BREAKER_THRESHOLD/CIRCUIT_BREAKER_TIMEOUT
	// apply uniformly across the three dependencies)
	setBoolIfEnv(&c.CircuitBreaker.Enabled, "CIRCUIT_BREAKER_ENABLED")
	if v := os.Getenv("CIRCUIT_BREAKER_THRESHOLD"); v != "" {
		var threshold uint32
		if _, err := fmt.Sscanf(v, "%d", &threshold); err == nil {
			c.CircuitBreaker.PrimaryStore.ConsecutiveFailures = threshold
			c.CircuitBreaker.FallbackStore.ConsecutiveFailures = threshold
			c.CircuitBreaker.EventBus.ConsecutiveFailures = threshold
		}
	}
	if dur, ok := parseEnvDuration("CIRCUIT_BREAKER_TIMEOUT"); ok {
		c.CircuitBreaker.PrimaryStore.Timeout = dur
		c.CircuitBreaker.FallbackStore.Timeout = dur
		c.CircuitBreaker.EventBus.Timeout = dur
	}
}

// setIfEnv sets a string pointer to the environment variable value if it exists.
func setIfEnv(target *string, key string) {
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

// setBoolIfEnv sets a boolean pointer from an environment variable.
// Accepts "1", "true", "TRUE", "True" as true values.
func setBoolIfEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v == "1" || strings.EqualFold(v, "true")
	}
}

// setDurationIfEnv sets a Duration pointer from an environment variable.
// Uses time.ParseDuration for Go-style strings, falling back to bare
// numbers interpreted as seconds (spec §6.4 keys are plain integers).
func setDurationIfEnv(target *Duration, key string) {
	if dur, ok := parseEnvDuration(key); ok {
		*target = dur
	}
}

// setDurationIfEnvUnit is setDurationIfEnv for keys whose name carries their
// unit (..._IN_MINUTES, ..._IN_HOURS): a bare integer is read in that unit.
func setDurationIfEnvUnit(target *Duration, key string, unit time.Duration) {
	if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64); err == nil {
		*target = Duration{Duration: time.Duration(n) * unit}
		return
	}
	setDurationIfEnv(target, key)
}

// parseEnvDuration parses a Go-style duration string ("5m") or a bare
// number interpreted as seconds, matching Duration.UnmarshalYAML's rules
// so env overrides accept the same shapes as the YAML file.
func parseEnvDuration(key string) (Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return Duration{}, false
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		return Duration{Duration: parsed}, true
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return Duration{Duration: secs}, true
	}
	return Duration{}, false
}

// normalizeRoutePrefix ensures the prefix starts with / and doesn't end with /.
// Examples: "api" -> "/api", "/api/" -> "/api", "pos-api" -> "/pos-api"
func normalizeRoutePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix
}
