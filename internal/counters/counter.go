// Package counters implements C1: gap-free, monotonic per-terminal sequence
// counters (transaction numbers, receipt numbers, ...) allocated under
// concurrent operations.
package counters

import "context"

// Backend allocates monotonically increasing integers scoped to
// (terminalID, counterName). Allocate must return a value strictly greater
// than any value previously returned for the same pair, even under
// concurrent callers, and must upsert a starting row (value 1) the first
// time a terminal/counter pair is seen.
type Backend interface {
	Allocate(ctx context.Context, terminalID, counterName string) (int64, error)
	Close() error
}

// Well-known counter names used by C6/C7/C10.
const (
	CounterTransactionNo = "transaction_no"
	CounterReceiptNo     = "receipt_no"
)
