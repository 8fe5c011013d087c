package config

import (
	"os"
	"testing"
	"time"
)

func TestEnvOverrides_ServerConfig(t *testing.T) {
	defer os.Clearenv()

	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
	}{
		{
			name:    "SERVER_ADDRESS overrides default",
			envVars: map[string]string{"SERVER_ADDRESS": ":3000"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.Server.Address != ":3000" {
					t.Errorf("expected :3000, got %s", cfg.Server.Address)
				}
			},
		},
		{
			name:    "ROUTE_PREFIX override is normalized",
			envVars: map[string]string{"ROUTE_PREFIX": "pos"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.Server.RoutePrefix != "/pos" {
					t.Errorf("expected /pos, got %s", cfg.Server.RoutePrefix)
				}
			},
		},
		{
			name:    "HTTP_TIMEOUT duration override",
			envVars: map[string]string{"HTTP_TIMEOUT": "45s"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.Server.HTTPTimeout.Duration != 45*time.Second {
					t.Errorf("expected 45s, got %v", cfg.Server.HTTPTimeout.Duration)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			cfg := defaultConfig()
			cfg.applyEnvOverrides()
			tt.checkFunc(t, cfg)
		})
	}
}

func TestEnvOverrides_CartStoreConfig(t *testing.T) {
	defer os.Clearenv()

	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
	}{
		{
			name:    "CART_TTL_SECONDS bare-number seconds",
			envVars: map[string]string{"CART_TTL_SECONDS": "1800"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.CartStore.PrimaryTTL.Duration != 1800*time.Second {
					t.Errorf("expected 1800s, got %v", cfg.CartStore.PrimaryTTL.Duration)
				}
			},
		},
		{
			name:    "CART_STORE_FALLBACK_BACKEND override",
			envVars: map[string]string{"CART_STORE_FALLBACK_BACKEND": "mongodb"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.CartStore.FallbackBackend != "mongodb" {
					t.Errorf("expected mongodb, got %s", cfg.CartStore.FallbackBackend)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			cfg := defaultConfig()
			cfg.applyEnvOverrides()
			tt.checkFunc(t, cfg)
		})
	}
}

func TestEnvOverrides_CircuitBreakerConfig(t *testing.T) {
	defer os.Clearenv()
	os.Clearenv()
	os.Setenv("CIRCUIT_BREAKER_THRESHOLD", "7")
	os.Setenv("CIRCUIT_BREAKER_TIMEOUT", "90s")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	for _, got := range []uint32{
		cfg.CircuitBreaker.PrimaryStore.ConsecutiveFailures,
		cfg.CircuitBreaker.FallbackStore.ConsecutiveFailures,
		cfg.CircuitBreaker.EventBus.ConsecutiveFailures,
	} {
		if got != 7 {
			t.Errorf("expected consecutive failures 7, got %d", got)
		}
	}
	for _, got := range []time.Duration{
		cfg.CircuitBreaker.PrimaryStore.Timeout.Duration,
		cfg.CircuitBreaker.FallbackStore.Timeout.Duration,
		cfg.CircuitBreaker.EventBus.Timeout.Duration,
	} {
		if got != 90*time.Second {
			t.Errorf("expected timeout 90s, got %v", got)
		}
	}
}

func TestEnvOverrides_RepublisherConfig(t *testing.T) {
	defer os.Clearenv()
	os.Clearenv()
	os.Setenv("UNDELIVERED_CHECK_INTERVAL_IN_MINUTES", "10m")
	os.Setenv("UNDELIVERED_CHECK_PERIOD_IN_HOURS", "48h")
	os.Setenv("UNDELIVERED_CHECK_FAILED_PERIOD_IN_MINUTES", "30m")

	cfg := defaultConfig()
	cfg.applyEnvOverrides()

	if cfg.EventBus.Republisher.CheckInterval.Duration != 10*time.Minute {
		t.Errorf("expected 10m check interval, got %v", cfg.EventBus.Republisher.CheckInterval.Duration)
	}
	if cfg.EventBus.Republisher.CheckPeriod.Duration != 48*time.Hour {
		t.Errorf("expected 48h check period, got %v", cfg.EventBus.Republisher.CheckPeriod.Duration)
	}
	if cfg.EventBus.Republisher.FailedGrace.Duration != 30*time.Minute {
		t.Errorf("expected 30m failed grace, got %v", cfg.EventBus.Republisher.FailedGrace.Duration)
	}
}

func TestEnvOverrides_APIKeyConfig(t *testing.T) {
	defer os.Clearenv()

	tests := []struct {
		name      string
		envVars   map[string]string
		checkFunc func(*testing.T, *Config)
	}{
		{
			name:    "API_KEY_ENABLED boolean (true)",
			envVars: map[string]string{"API_KEY_ENABLED": "true"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if !cfg.APIKey.Enabled {
					t.Error("expected APIKey.Enabled to be true")
				}
			},
		},
		{
			name:    "API_KEY_ENABLED boolean (false)",
			envVars: map[string]string{"API_KEY_ENABLED": "false"},
			checkFunc: func(t *testing.T, cfg *Config) {
				if cfg.APIKey.Enabled {
					t.Error("expected APIKey.Enabled to be false")
				}
			},
		},
		{
			name: "API_KEY_TENANT_* env vars create key-tenant mappings",
			envVars: map[string]string{
				"API_KEY_ENABLED":          "true",
				"API_KEY_TENANT_ACME":      "sk_live_acme_1",
				"API_KEY_TENANT_NORTHWIND": "sk_live_nw_1",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				if !cfg.APIKey.Enabled {
					t.Error("expected APIKey.Enabled to be true")
				}
				if len(cfg.APIKey.Keys) != 2 {
					t.Errorf("expected 2 API keys, got %d", len(cfg.APIKey.Keys))
				}
				if cfg.APIKey.Keys["sk_live_acme_1"] != "acme" {
					t.Errorf("expected sk_live_acme_1 -> acme, got %s", cfg.APIKey.Keys["sk_live_acme_1"])
				}
				if cfg.APIKey.Keys["sk_live_nw_1"] != "northwind" {
					t.Errorf("expected sk_live_nw_1 -> northwind, got %s", cfg.APIKey.Keys["sk_live_nw_1"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			cfg := defaultConfig()
			cfg.applyEnvOverrides()
			tt.checkFunc(t, cfg)
		})
	}
}

func TestParseEnvDuration(t *testing.T) {
	defer os.Clearenv()

	os.Clearenv()
	os.Setenv("TEST_DURATION_STRING", "2m30s")
	os.Setenv("TEST_DURATION_SECONDS", "90")

	d, ok := parseEnvDuration("TEST_DURATION_STRING")
	if !ok || d.Duration != 2*time.Minute+30*time.Second {
		t.Errorf("expected 2m30s, got %v (ok=%v)", d.Duration, ok)
	}

	d, ok = parseEnvDuration("TEST_DURATION_SECONDS")
	if !ok || d.Duration != 90*time.Second {
		t.Errorf("expected 90s, got %v (ok=%v)", d.Duration, ok)
	}

	if _, ok := parseEnvDuration("TEST_DURATION_MISSING"); ok {
		t.Error("expected missing env var to report not-ok")
	}
}
