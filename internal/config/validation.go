package config

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// finalize applies cross-field defaults and validates the configuration.
func (c *Config) finalize() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = "production"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Payment.Stripe.Mode == "" {
		c.Payment.Stripe.Mode = "test"
	}

	// Derive the masters source from the cart-store fallback backend when it
	// is left empty - both ultimately read the same durable store, so
	// operators shouldn't have to say it twice.
	if c.Masters.Source == "" {
		switch c.CartStore.FallbackBackend {
		case "postgres", "mongodb":
			c.Masters.Source = c.CartStore.FallbackBackend
		default:
			c.Masters.Source = "yaml"
		}
	}
	if c.Masters.Source == "postgres" && c.Masters.PostgresURL == "" {
		c.Masters.PostgresURL = c.CartStore.PostgresURL
	}
	if c.Masters.Source == "mongodb" {
		if c.Masters.MongoDBURL == "" {
			c.Masters.MongoDBURL = c.CartStore.MongoDBURL
		}
		if c.Masters.MongoDBDatabase == "" {
			c.Masters.MongoDBDatabase = c.CartStore.MongoDBDatabase
		}
	}

	if c.Counters.Backend == "" {
		c.Counters.Backend = "memory"
	}
	if c.Counters.Backend == "postgres" && c.Counters.PostgresURL == "" {
		c.Counters.PostgresURL = c.CartStore.PostgresURL
	}
	if c.Counters.Backend == "mongodb" {
		if c.Counters.MongoDBURL == "" {
			c.Counters.MongoDBURL = c.CartStore.MongoDBURL
		}
		if c.Counters.MongoDBDatabase == "" {
			c.Counters.MongoDBDatabase = c.CartStore.MongoDBDatabase
		}
	}
	if c.Counters.TableName == "" {
		c.Counters.TableName = "info_terminal_counter"
	}

	if c.CartStore.PrimaryTTL.Duration == 0 {
		c.CartStore.PrimaryTTL = Duration{Duration: 10 * time.Hour}
	}
	if c.CartStore.TableNames.CacheCart == "" {
		c.CartStore.TableNames.CacheCart = "cache_cart"
	}
	if c.CartStore.TableNames.LogTran == "" {
		c.CartStore.TableNames.LogTran = "log_tran"
	}
	if c.CartStore.TableNames.StatusTran == "" {
		c.CartStore.TableNames.StatusTran = "status_tran"
	}

	if c.Tax.DefaultRoundingMode == "" {
		c.Tax.DefaultRoundingMode = "floor"
	}

	if len(c.EventBus.Subscribers) == 0 {
		c.EventBus.Subscribers = []string{"report", "journal", "stock"}
	}
	if c.EventBus.Republisher.CheckInterval.Duration <= 0 {
		c.EventBus.Republisher.CheckInterval = Duration{Duration: 5 * time.Minute}
	}
	if c.EventBus.Republisher.CheckPeriod.Duration <= 0 {
		c.EventBus.Republisher.CheckPeriod = Duration{Duration: 24 * time.Hour}
	}
	if c.EventBus.Republisher.FailedGrace.Duration <= 0 {
		c.EventBus.Republisher.FailedGrace = Duration{Duration: 15 * time.Minute}
	}

	if c.APIKey.Keys == nil {
		c.APIKey.Keys = make(map[string]string)
	}

	return c.validate()
}

// validate checks that required configuration fields are set correctly.
func (c *Config) validate() error {
	var errs []string

	switch c.CartStore.FallbackBackend {
	case "memory", "postgres", "mongodb", "":
	default:
		errs = append(errs, fmt.Sprintf("cart_store.fallback_backend %q is not one of memory|postgres|mongodb", c.CartStore.FallbackBackend))
	}
	if c.CartStore.FallbackBackend == "postgres" && c.CartStore.PostgresURL == "" {
		errs = append(errs, "cart_store.postgres_url is required when fallback_backend is postgres")
	}
	if c.CartStore.FallbackBackend == "mongodb" && c.CartStore.MongoDBURL == "" {
		errs = append(errs, "cart_store.mongodb_url is required when fallback_backend is mongodb")
	}

	switch c.Counters.Backend {
	case "memory", "postgres", "mongodb", "":
	default:
		errs = append(errs, fmt.Sprintf("counters.backend %q is not one of memory|postgres|mongodb", c.Counters.Backend))
	}
	if c.Counters.Backend == "postgres" && c.Counters.PostgresURL == "" {
		errs = append(errs, "counters.postgres_url is required when backend is postgres")
	}
	if c.Counters.Backend == "mongodb" && c.Counters.MongoDBURL == "" {
		errs = append(errs, "counters.mongodb_url is required when backend is mongodb")
	}

	switch c.Masters.Source {
	case "yaml", "postgres", "mongodb", "":
	default:
		errs = append(errs, fmt.Sprintf("masters.source %q is not one of yaml|postgres|mongodb", c.Masters.Source))
	}
	if c.Masters.Source == "yaml" && len(c.Masters.YAMLItems) == 0 {
		errs = append(errs, "masters.items must define at least one item when source is 'yaml'")
	}

	switch strings.ToLower(c.Tax.DefaultRoundingMode) {
	case "floor", "round-half-up", "ceil", "ceiling", "standard", "":
	default:
		errs = append(errs, fmt.Sprintf("tax.default_rounding_mode %q is not recognized", c.Tax.DefaultRoundingMode))
	}

	if c.Payment.Stripe.SecretKey == "" && c.Payment.Stripe.Mode == "live" {
		errs = append(errs, "payment.stripe.secret_key is required when payment.stripe.mode is 'live'")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ApplyPostgresPoolSettings applies connection pool settings to a database
// connection. If pool config is not specified, applies sensible defaults.
func ApplyPostgresPoolSettings(db *sql.DB, pool PostgresPoolConfig) {
	maxOpen := pool.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}

	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}

	maxLifetime := pool.ConnMaxLifetime.Duration
	if maxLifetime <= 0 {
		maxLifetime = 5 * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
}
