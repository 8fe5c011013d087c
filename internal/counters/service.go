package counters

import (
	"context"
	"fmt"

	"github.com/cartflow/server/internal/circuitbreaker"
	"github.com/cartflow/server/internal/config"
	"github.com/cartflow/server/internal/errors"
	"github.com/cartflow/server/internal/rpcutil"
)

// Service is the C1 Counter Service facade: allocate returns a positive
// integer strictly greater than any value previously returned for the same
// (terminal_id, counter_name), backed by Backend and protected by the
// primary-store circuit breaker and bounded retry (spec §4.1, §7).
type Service struct {
	backend Backend
	breaker *circuitbreaker.Manager
}

// NewService wires a Backend behind retry + circuit-breaker protection.
func NewService(backend Backend, breaker *circuitbreaker.Manager) *Service {
	return &Service{backend: backend, breaker: breaker}
}

// NewServiceFromConfig selects a backend profile from CountersConfig.
func NewServiceFromConfig(cfg config.CountersConfig, breaker *circuitbreaker.Manager) (*Service, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(backend, breaker), nil
}

func newBackend(cfg config.CountersConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "postgres":
		return NewPostgresBackend(cfg.PostgresURL, cfg.PostgresPool, cfg.TableName)
	case "mongodb":
		return NewMongoDBBackend(cfg.MongoDBURL, cfg.MongoDBDatabase, cfg.TableName)
	default:
		return nil, fmt.Errorf("counters: unknown backend %q", cfg.Backend)
	}
}

// Allocate returns the next sequence value for (terminalID, counterName).
// Exhausting retries surfaces as ErrCounterAllocationFailed (spec §7).
func (s *Service) Allocate(ctx context.Context, terminalID, counterName string) (int64, error) {
	result, err := rpcutil.WithRetry(ctx, func() (int64, error) {
		v, err := s.breaker.Execute(circuitbreaker.ServicePrimaryStore, func() (interface{}, error) {
			return s.backend.Allocate(ctx, terminalID, counterName)
		})
		if err != nil {
			return 0, err
		}
		return v.(int64), nil
	})
	if err != nil {
		return 0, errors.Newf(errors.ErrCounterAllocationFailed, "allocate %s for terminal %s: %v", counterName, terminalID, err)
	}
	return result, nil
}

// Close releases the backend's resources.
func (s *Service) Close() error {
	return s.backend.Close()
}
