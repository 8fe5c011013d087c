package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with the spec §6.4 defaults.
func defaultConfig() *Config {
	breaker := BreakerServiceConfig{
		MaxRequests:         1,
		Interval:            Duration{Duration: 60 * time.Second},
		Timeout:             Duration{Duration: 60 * time.Second}, // CIRCUIT_BREAKER_TIMEOUT
		ConsecutiveFailures: 3,                                    // CIRCUIT_BREAKER_THRESHOLD
		FailureRatio:        0.5,
		MinRequests:         10,
	}

	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  Duration{Duration: 15 * time.Second},
			WriteTimeout: Duration{Duration: 15 * time.Second},
			IdleTimeout:  Duration{Duration: 60 * time.Second},
			HTTPTimeout:  Duration{Duration: 30 * time.Second}, // HTTP_TIMEOUT
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Environment: "production",
		},
		CartStore: CartStoreConfig{
			PrimaryTTL:         Duration{Duration: 10 * time.Hour}, // CART_TTL_SECONDS
			CompletedRetention: Duration{Duration: 24 * time.Hour},
			FallbackBackend:    "memory",
			TableNames: CartTableNames{
				CacheCart:  "cache_cart",
				LogTran:    "log_tran",
				StatusTran: "status_tran",
			},
		},
		Counters: CountersConfig{
			Backend:   "memory",
			TableName: "info_terminal_counter",
		},
		Tax: TaxConfig{
			DefaultRoundingMode: "floor",
		},
		Payment: PaymentConfig{
			Stripe: StripeConfig{
				Mode: "test",
			},
		},
		Masters: MastersConfig{
			Source:           "", // derived from cart_store.fallback_backend in finalize
			CacheTTL:         Duration{Duration: 5 * time.Minute},
			TerminalCacheTTL: Duration{Duration: 300 * time.Second}, // TERMINAL_CACHE_TTL_SECONDS
			YAMLItems:        map[string]ItemMaster{},
			YAMLTaxes:        map[string]TaxMaster{},
		},
		EventBus: EventBusConfig{
			Subscribers: []string{"report", "journal", "stock"},
			Republisher: RepublisherConfig{
				CheckInterval: Duration{Duration: 5 * time.Minute},  // UNDELIVERED_CHECK_INTERVAL_IN_MINUTES
				CheckPeriod:   Duration{Duration: 24 * time.Hour},   // UNDELIVERED_CHECK_PERIOD_IN_HOURS
				FailedGrace:   Duration{Duration: 15 * time.Minute}, // UNDELIVERED_CHECK_FAILED_PERIOD_IN_MINUTES
			},
		},
		RateLimit: RateLimitConfig{
			// Generous limits - designed to prevent spam, not restrict legitimate use.
			GlobalEnabled:      true,
			GlobalLimit:        1000,
			GlobalWindow:       Duration{Duration: 1 * time.Minute},
			PerTerminalEnabled: true,
			PerTerminalLimit:   120,
			PerTerminalWindow:  Duration{Duration: 1 * time.Minute},
			PerIPEnabled:       true,
			PerIPLimit:         240,
			PerIPWindow:        Duration{Duration: 1 * time.Minute},
		},
		APIKey: APIKeyConfig{
			Enabled: false,
			Keys:    make(map[string]string),
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:       true,
			PrimaryStore:  breaker,
			FallbackStore: breaker,
			EventBus:      breaker,
		},
	}
}

// parseFile reads and unmarshals a YAML configuration file.
func (c *Config) parseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}
