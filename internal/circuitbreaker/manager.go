package circuitbreaker

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/cartflow/server/internal/config"
)

// ServiceType identifies an outbound dependency for circuit-breaker
// isolation. Breakers are per-dependency, never global (spec §4.2, §5, §9).
type ServiceType string

const (
	// ServicePrimaryStore is the fast key-value cart store.
	ServicePrimaryStore ServiceType = "primary_store"
	// ServiceFallbackStore is the durable document store.
	ServiceFallbackStore ServiceType = "fallback_store"
	// ServiceEventBus is the fan-out publish channel.
	ServiceEventBus ServiceType = "event_bus"
)

// Manager manages circuit breakers for the outbound dependencies. Each
// dependency gets its own breaker so a failing store cannot trip the bus's
// breaker and vice versa (bulkhead isolation).
type Manager struct {
	breakers map[ServiceType]*gobreaker.CircuitBreaker
	config   Config
}

// Config holds circuit breaker configuration for all dependencies.
type Config struct {
	Enabled        bool
	PrimaryStore   BreakerConfig
	FallbackStore  BreakerConfig
	EventBus       BreakerConfig
}

// BreakerConfig configures a single circuit breaker.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open. Spec: exactly one probe.
	MaxRequests uint32
	// Interval clears counts while closed. 0 = never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing (spec
	// default: 60s, CIRCUIT_BREAKER_TIMEOUT).
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker (spec default: 3,
	// CIRCUIT_BREAKER_THRESHOLD).
	ConsecutiveFailures uint32
	FailureRatio        float64
	MinRequests         uint32
}

// NewManagerFromConfig creates a circuit breaker manager from application config.
func NewManagerFromConfig(cfg config.CircuitBreakerConfig) *Manager {
	return NewManager(Config{
		Enabled:       cfg.Enabled,
		PrimaryStore:  toBreakerConfig(cfg.PrimaryStore),
		FallbackStore: toBreakerConfig(cfg.FallbackStore),
		EventBus:      toBreakerConfig(cfg.EventBus),
	})
}

func toBreakerConfig(cfg config.BreakerServiceConfig) BreakerConfig {
	return BreakerConfig{
		MaxRequests:         cfg.MaxRequests,
		Interval:            cfg.Interval.Duration,
		Timeout:             cfg.Timeout.Duration,
		ConsecutiveFailures: cfg.ConsecutiveFailures,
		FailureRatio:        cfg.FailureRatio,
		MinRequests:         cfg.MinRequests,
	}
}

// NewManager creates a circuit breaker manager with the given configuration.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		breakers: make(map[ServiceType]*gobreaker.CircuitBreaker),
		config:   cfg,
	}

	if !cfg.Enabled {
		return m
	}

	m.breakers[ServicePrimaryStore] = gobreaker.NewCircuitBreaker(toGobreakerSettings(string(ServicePrimaryStore), cfg.PrimaryStore))
	m.breakers[ServiceFallbackStore] = gobreaker.NewCircuitBreaker(toGobreakerSettings(string(ServiceFallbackStore), cfg.FallbackStore))
	m.breakers[ServiceEventBus] = gobreaker.NewCircuitBreaker(toGobreakerSettings(string(ServiceEventBus), cfg.EventBus))

	return m
}

// Execute wraps a function call with circuit breaker protection. If circuit
// breakers are disabled or not configured for the dependency, it executes
// directly.
func (m *Manager) Execute(service ServiceType, fn func() (interface{}, error)) (interface{}, error) {
	if !m.config.Enabled {
		return fn()
	}

	breaker, ok := m.breakers[service]
	if !ok {
		return fn()
	}

	return breaker.Execute(fn)
}

// State returns the current state of a circuit breaker ("disabled" /
// "not_configured" / closed/open/half-open).
func (m *Manager) State(service ServiceType) string {
	if !m.config.Enabled {
		return "disabled"
	}

	breaker, ok := m.breakers[service]
	if !ok {
		return "not_configured"
	}

	return breaker.State().String()
}

// Counts returns the current counts for a circuit breaker.
func (m *Manager) Counts(service ServiceType) Counts {
	if !m.config.Enabled {
		return Counts{}
	}

	breaker, ok := m.breakers[service]
	if !ok {
		return Counts{}
	}

	c := breaker.Counts()
	return Counts{
		Requests:             c.Requests,
		TotalSuccesses:       c.TotalSuccesses,
		TotalFailures:        c.TotalFailures,
		ConsecutiveSuccesses: c.ConsecutiveSuccesses,
		ConsecutiveFailures:  c.ConsecutiveFailures,
	}
}

// Counts represents circuit breaker statistics.
type Counts struct {
	Requests             uint32
	TotalSuccesses        uint32
	TotalFailures         uint32
	ConsecutiveSuccesses  uint32
	ConsecutiveFailures   uint32
}

func toGobreakerSettings(name string, cfg BreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.FailureRatio > 0 && cfg.MinRequests > 0 && counts.Requests >= cfg.MinRequests {
				if float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("dependency", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuitbreaker.state_change")
		},
	}
}

// DefaultConfig returns the §6.4 defaults: 3 consecutive failures trip the
// breaker, 60s cool-down before a half-open probe.
func DefaultConfig() Config {
	base := BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             60 * time.Second,
		ConsecutiveFailures: 3,
		FailureRatio:        0.5,
		MinRequests:         10,
	}
	return Config{
		Enabled:       true,
		PrimaryStore:  base,
		FallbackStore: base,
		EventBus:      base,
	}
}
