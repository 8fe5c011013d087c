package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support string- or bare-number-based YAML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration values expressed as Go-style strings or numbers interpreted as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err == nil {
			d.Duration = parsed
			return nil
		}
		secs, convErr := time.ParseDuration(fmt.Sprintf("%ss", raw))
		if convErr == nil {
			d.Duration = secs
			return nil
		}
		return fmt.Errorf("invalid duration value %q: %w", raw, err)
	default:
		return fmt.Errorf("unsupported duration node kind: %v", value.Kind)
	}
}

// MarshalYAML renders the duration as a string to keep config edits human-friendly.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds application level configuration aggregated from file and environment variables.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	CartStore      CartStoreConfig      `yaml:"cart_store"`
	Counters       CountersConfig       `yaml:"counters"`
	Tax            TaxConfig            `yaml:"tax"`
	Payment        PaymentConfig        `yaml:"payment"`
	Masters        MastersConfig        `yaml:"masters"`
	EventBus       EventBusConfig       `yaml:"event_bus"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	APIKey         APIKeyConfig         `yaml:"api_key"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RoutePrefix        string   `yaml:"route_prefix"`
	AdminAPIKey        string   `yaml:"admin_api_key"` // bearer token for /metrics; the subscriber-ack route does not check it
	// HTTPTimeout bounds every outbound call to a collaborator (spec
	// §6.4 HTTP_TIMEOUT, default 30s).
	HTTPTimeout Duration `yaml:"http_timeout"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Environment string `yaml:"environment"`
}

// PostgresPoolConfig holds PostgreSQL connection pool settings (spec §5:
// "each dependency has its own pool with configured caps, e.g. 100 max, 20 idle").
type PostgresPoolConfig struct {
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// CartStoreConfig configures C2's dual-backed persistence.
type CartStoreConfig struct {
	// PrimaryTTL is the primary-store expiry for active cart documents
	// (spec §6.4 CART_TTL_SECONDS, default 10h).
	PrimaryTTL Duration `yaml:"primary_ttl"`
	// CompletedRetention is how long a completed snapshot is retained in
	// the fallback store after the active record is dropped from primary.
	CompletedRetention Duration `yaml:"completed_retention"`

	// FallbackBackend selects the durable document store: "memory",
	// "postgres", or "mongodb".
	FallbackBackend string             `yaml:"fallback_backend"`
	PostgresURL     string             `yaml:"postgres_url"`
	PostgresPool    PostgresPoolConfig `yaml:"postgres_pool"`
	MongoDBURL      string             `yaml:"mongodb_url"`
	MongoDBDatabase string             `yaml:"mongodb_database"`
	TableNames      CartTableNames     `yaml:"table_names"`
}

// CartTableNames lets operators remap table/collection names (spec §6.2).
type CartTableNames struct {
	CacheCart   string `yaml:"cache_cart"`
	LogTran     string `yaml:"log_tran"`
	StatusTran  string `yaml:"status_tran"`
}

// CountersConfig configures C1's terminal-counter store.
type CountersConfig struct {
	Backend         string             `yaml:"backend"` // "memory", "postgres", "mongodb"
	PostgresURL     string             `yaml:"postgres_url"`
	PostgresPool    PostgresPoolConfig `yaml:"postgres_pool"`
	MongoDBURL      string             `yaml:"mongodb_url"`
	MongoDBDatabase string             `yaml:"mongodb_database"`
	TableName       string             `yaml:"table_name"` // default: info_terminal_counter
}

// TaxConfig configures C4's default rounding policy. Individual tax masters
// may override per tax_code; this is the fallback (spec §4.4: "default is floor").
type TaxConfig struct {
	DefaultRoundingMode string `yaml:"default_rounding_mode"` // floor | round-half-up | ceil
}

// PaymentConfig configures C5's payment strategies.
type PaymentConfig struct {
	Stripe StripeConfig `yaml:"stripe"` // backs the cashless strategy
}

// StripeConfig holds the Stripe credentials used by the cashless tender strategy.
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	Mode          string `yaml:"mode"` // live | test
}

// MastersConfig configures the read-only item/tax/settings snapshot cache
// embedded into each cart (spec §3 "masters" field); the authoring side of
// these masters is an external collaborator and out of scope.
type MastersConfig struct {
	Source            string             `yaml:"source"` // "yaml", "postgres", "mongodb"
	CacheTTL          Duration           `yaml:"cache_ttl"`
	PostgresURL       string             `yaml:"postgres_url"`
	PostgresPool      PostgresPoolConfig `yaml:"postgres_pool"`
	MongoDBURL        string             `yaml:"mongodb_url"`
	MongoDBDatabase   string             `yaml:"mongodb_database"`
	YAMLItems         map[string]ItemMaster `yaml:"items"`
	YAMLTaxes         map[string]TaxMaster  `yaml:"taxes"`
	// TerminalCacheTTL is how long resolved terminal-info is cached (spec
	// §6.4 TERMINAL_CACHE_TTL_SECONDS, default 300s).
	TerminalCacheTTL Duration `yaml:"terminal_cache_ttl"`
}

// ItemMaster is a YAML-sourced item snapshot (id -> unit price, restrictions).
type ItemMaster struct {
	ItemCode             string `yaml:"item_code"`
	Description          string `yaml:"description"`
	UnitPriceCents       int64  `yaml:"unit_price_cents"`
	TaxCode              string `yaml:"tax_code"`
	IsDiscountRestricted bool   `yaml:"is_discount_restricted"`
}

// TaxMaster is a YAML-sourced tax snapshot (code -> rate, type, rounding).
type TaxMaster struct {
	TaxCode      string `yaml:"tax_code"`
	TaxName      string `yaml:"tax_name"`
	TaxType      string `yaml:"tax_type"` // exclusive | inclusive | exempt
	RateBasis    int64  `yaml:"rate_basis_points"`
	RoundingMode string `yaml:"rounding_mode"`
}

// EventBusConfig configures C8/C9.
type EventBusConfig struct {
	// Subscribers is the configured fan-out list (spec §6.3: at minimum
	// Report, Journal, Stock).
	Subscribers []string          `yaml:"subscribers"`
	Republisher RepublisherConfig `yaml:"republisher"`
}

// RepublisherConfig configures C9's scheduled sweep (spec §6.4).
type RepublisherConfig struct {
	// CheckInterval is the run interval (UNDELIVERED_CHECK_INTERVAL_IN_MINUTES, default 5m).
	CheckInterval Duration `yaml:"check_interval"`
	// CheckPeriod is the lookback window (UNDELIVERED_CHECK_PERIOD_IN_HOURS, default 24h).
	CheckPeriod Duration `yaml:"check_period"`
	// FailedGrace is the grace before a pending entry is re-published
	// (UNDELIVERED_CHECK_FAILED_PERIOD_IN_MINUTES, default 15m).
	FailedGrace Duration `yaml:"failed_grace"`
}

// RateLimitConfig holds per-terminal and per-IP rate limiting configuration.
// An abusive terminal integration cannot starve other terminals of the same
// tenant's request budget.
type RateLimitConfig struct {
	GlobalEnabled bool     `yaml:"global_enabled"`
	GlobalLimit   int      `yaml:"global_limit"`
	GlobalWindow  Duration `yaml:"global_window"`

	PerTerminalEnabled bool     `yaml:"per_terminal_enabled"`
	PerTerminalLimit   int      `yaml:"per_terminal_limit"`
	PerTerminalWindow  Duration `yaml:"per_terminal_window"`

	PerIPEnabled bool     `yaml:"per_ip_enabled"`
	PerIPLimit   int      `yaml:"per_ip_limit"`
	PerIPWindow  Duration `yaml:"per_ip_window"`
}

// APIKeyConfig holds X-API-Key -> tenant mapping (spec §6.1 authentication).
type APIKeyConfig struct {
	Enabled bool              `yaml:"enabled"`
	Keys    map[string]string `yaml:"keys"` // api key -> tenant_id
}

// CircuitBreakerConfig holds circuit breaker configuration for the three
// outbound dependencies (spec §4.2, §5: per-dependency, never global).
type CircuitBreakerConfig struct {
	Enabled       bool                 `yaml:"enabled"`
	PrimaryStore  BreakerServiceConfig `yaml:"primary_store"`
	FallbackStore BreakerServiceConfig `yaml:"fallback_store"`
	EventBus      BreakerServiceConfig `yaml:"event_bus"`
}

// BreakerServiceConfig configures a circuit breaker for one dependency.
type BreakerServiceConfig struct {
	MaxRequests         uint32   `yaml:"max_requests"`
	Interval            Duration `yaml:"interval"`
	Timeout             Duration `yaml:"timeout"` // CIRCUIT_BREAKER_TIMEOUT
	ConsecutiveFailures uint32   `yaml:"consecutive_failures"` // CIRCUIT_BREAKER_THRESHOLD
	FailureRatio        float64  `yaml:"failure_ratio"`
	MinRequests         uint32   `yaml:"min_requests"`
}
