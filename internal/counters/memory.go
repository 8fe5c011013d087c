package counters

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend for tests and the `memory` config
// profile. It is not durable and not shared across instances.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryBackend creates an empty in-memory counter backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]int64)}
}

func (b *MemoryBackend) Allocate(ctx context.Context, terminalID, counterName string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := terminalID + "\x00" + counterName
	b.values[key]++
	return b.values[key], nil
}

func (b *MemoryBackend) Close() error { return nil }
