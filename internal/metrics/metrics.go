// Package metrics exposes Prometheus instrumentation for the cart
// transactional backend, grouped by the component areas that actually
// exist in this domain (C1 counters, C2 cart store, C5 payments, C8/C9
// event delivery, circuit breakers, HTTP/rate-limit).
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the server registers.
type Metrics struct {
	// C1 Counter Service
	CounterAllocationsTotal  *prometheus.CounterVec
	CounterAllocationRetries *prometheus.CounterVec
	CounterAllocationLatency *prometheus.HistogramVec

	// C2 Cart Store
	CartStoreOpsTotal   *prometheus.CounterVec
	CartStoreLatency    *prometheus.HistogramVec
	CartConflictsTotal  *prometheus.CounterVec
	CartFallbackReads   *prometheus.CounterVec

	// C5 Payment Orchestrator
	PaymentsTotal    *prometheus.CounterVec
	PaymentAmount    *prometheus.CounterVec
	PaymentLatency   *prometheus.HistogramVec

	// C6/C7 carts and transactions
	CartsCompletedTotal   *prometheus.CounterVec
	TransactionAmount     *prometheus.CounterVec
	BillLatency           prometheus.Histogram

	// C8/C9 Event Publisher + Republisher
	EventsPublishedTotal  *prometheus.CounterVec
	EventDeliveryTotal    *prometheus.CounterVec
	UndeliveredSweepTotal prometheus.Counter
	UndeliveredFoundTotal prometheus.Counter

	// C10 Void/Return
	VoidsTotal   *prometheus.CounterVec
	ReturnsTotal *prometheus.CounterVec

	// Circuit breakers (spec §5: one per dependency, never global)
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec

	// HTTP / rate limiting
	RateLimitHitsTotal *prometheus.CounterVec
	DBQueryDuration    *prometheus.HistogramVec
}

// New creates and registers every metric against registry (nil uses the
// default Prometheus registerer).
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	f := promauto.With(registry)

	return &Metrics{
		CounterAllocationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_counter_allocations_total",
			Help: "Total terminal counter allocations by outcome",
		}, []string{"counter_name", "outcome"}),
		CounterAllocationRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_counter_allocation_retries_total",
			Help: "Total retries while allocating a terminal counter",
		}, []string{"counter_name"}),
		CounterAllocationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_counter_allocation_duration_seconds",
			Help:    "Terminal counter allocation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"counter_name"}),

		CartStoreOpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_store_operations_total",
			Help: "Total cart store operations by op and backend",
		}, []string{"operation", "backend", "outcome"}),
		CartStoreLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_store_operation_duration_seconds",
			Help:    "Cart store operation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation", "backend"}),
		CartConflictsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_store_optimistic_conflicts_total",
			Help: "Total etag mismatches on cart save, by whether the retry eventually succeeded",
		}, []string{"outcome"}),
		CartFallbackReads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_store_fallback_reads_total",
			Help: "Total reads served from the fallback document store after a primary miss",
		}, []string{"outcome"}),

		PaymentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_payments_total",
			Help: "Total tender applications by payment code and outcome",
		}, []string{"payment_code", "outcome"}),
		PaymentAmount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_payment_amount_atomic_total",
			Help: "Total tendered amount in atomic currency units",
		}, []string{"payment_code"}),
		PaymentLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_payment_duration_seconds",
			Help:    "Payment strategy dispatch latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"payment_code"}),

		CartsCompletedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_completed_total",
			Help: "Total carts reaching a terminal status",
		}, []string{"status"}),
		TransactionAmount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_transaction_amount_atomic_total",
			Help: "Total transacted amount in atomic currency units by transaction type",
		}, []string{"transaction_type"}),
		BillLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_bill_duration_seconds",
			Help:    "Time to complete the BILL finalize sequence (spec §4.7 steps 1-6)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		EventsPublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_events_published_total",
			Help: "Total events published to the tranlog_report channel",
		}, []string{"event_type"}),
		EventDeliveryTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_event_deliveries_total",
			Help: "Total per-subscriber delivery attempts by outcome",
		}, []string{"service_name", "outcome"}),
		UndeliveredSweepTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cart_republisher_sweeps_total",
			Help: "Total undelivered-event republisher sweeps run",
		}),
		UndeliveredFoundTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cart_republisher_events_found_total",
			Help: "Total undelivered events found across all republisher sweeps",
		}),

		VoidsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_voids_total",
			Help: "Total void operations by outcome",
		}, []string{"outcome"}),
		ReturnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_returns_total",
			Help: "Total return operations by outcome",
		}, []string{"outcome"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cart_circuit_breaker_state",
			Help: "Circuit breaker state per dependency (0=closed, 1=half-open, 2=open)",
		}, []string{"dependency"}),
		CircuitBreakerTrips: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_circuit_breaker_trips_total",
			Help: "Total times a dependency's circuit breaker tripped open",
		}, []string{"dependency"}),

		RateLimitHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_rate_limit_hits_total",
			Help: "Total rate limit rejections by scope",
		}, []string{"limit_type", "identifier"}),
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_db_query_duration_seconds",
			Help:    "Database query duration by operation and backend",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1, 2},
		}, []string{"operation", "backend"}),
	}
}

// ObserveCounterAllocation records a C1 counter allocation attempt.
func (m *Metrics) ObserveCounterAllocation(counterName string, success bool, retries int, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	m.CounterAllocationsTotal.WithLabelValues(counterName, outcome).Inc()
	if retries > 0 {
		m.CounterAllocationRetries.WithLabelValues(counterName).Add(float64(retries))
	}
	m.CounterAllocationLatency.WithLabelValues(counterName).Observe(duration.Seconds())
}

// ObserveCartStoreOp records a C2 cart store operation.
func (m *Metrics) ObserveCartStoreOp(operation, backend string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.CartStoreOpsTotal.WithLabelValues(operation, backend, outcome).Inc()
	m.CartStoreLatency.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// ObserveCartConflict records an optimistic-concurrency conflict on save.
func (m *Metrics) ObserveCartConflict(resolved bool) {
	outcome := "resolved"
	if !resolved {
		outcome = "exhausted"
	}
	m.CartConflictsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFallbackRead records a primary-miss read served from fallback.
func (m *Metrics) ObserveFallbackRead(found bool) {
	outcome := "hit"
	if !found {
		outcome = "miss"
	}
	m.CartFallbackReads.WithLabelValues(outcome).Inc()
}

// ObservePayment records a C5 tender application.
func (m *Metrics) ObservePayment(paymentCode string, success bool, amountAtomic int64, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	m.PaymentsTotal.WithLabelValues(paymentCode, outcome).Inc()
	if success {
		m.PaymentAmount.WithLabelValues(paymentCode).Add(float64(amountAtomic))
	}
	m.PaymentLatency.WithLabelValues(paymentCode).Observe(duration.Seconds())
}

// ObserveCartCompleted records a cart reaching a terminal status.
func (m *Metrics) ObserveCartCompleted(status string) {
	m.CartsCompletedTotal.WithLabelValues(status).Inc()
}

// ObserveTransaction records a materialized transaction's amount (C7 BILL).
func (m *Metrics) ObserveTransaction(transactionType string, amountAtomic int64, billDuration time.Duration) {
	m.TransactionAmount.WithLabelValues(transactionType).Add(float64(amountAtomic))
	m.BillLatency.Observe(billDuration.Seconds())
}

// ObserveEventPublished records a C8 publish.
func (m *Metrics) ObserveEventPublished(eventType string) {
	m.EventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// ObserveEventDelivery records one subscriber's delivery outcome.
func (m *Metrics) ObserveEventDelivery(serviceName string, delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.EventDeliveryTotal.WithLabelValues(serviceName, outcome).Inc()
}

// ObserveRepublisherSweep records a C9 sweep and how many events it found.
func (m *Metrics) ObserveRepublisherSweep(found int) {
	m.UndeliveredSweepTotal.Inc()
	m.UndeliveredFoundTotal.Add(float64(found))
}

// ObserveVoid records a C10 void outcome.
func (m *Metrics) ObserveVoid(success bool) {
	outcome := "success"
	if !success {
		outcome = "rejected"
	}
	m.VoidsTotal.WithLabelValues(outcome).Inc()
}

// ObserveReturn records a C10 return outcome.
func (m *Metrics) ObserveReturn(success bool) {
	outcome := "success"
	if !success {
		outcome = "rejected"
	}
	m.ReturnsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCircuitBreakerState records a dependency breaker's current state.
func (m *Metrics) ObserveCircuitBreakerState(dependency string, state int) {
	m.CircuitBreakerState.WithLabelValues(dependency).Set(float64(state))
}

// ObserveCircuitBreakerTrip records a dependency breaker opening.
func (m *Metrics) ObserveCircuitBreakerTrip(dependency string) {
	m.CircuitBreakerTrips.WithLabelValues(dependency).Inc()
}

// ObserveRateLimit records a rate limit rejection.
func (m *Metrics) ObserveRateLimit(limitType, identifier string) {
	m.RateLimitHitsTotal.WithLabelValues(limitType, identifier).Inc()
}

// ObserveDBQuery records a raw database query's duration.
func (m *Metrics) ObserveDBQuery(operation, backend string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// classifyError buckets a dependency error for low-cardinality labeling.
func classifyError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	case strings.Contains(msg, "not found"):
		return "not_found"
	default:
		return "other"
	}
}
