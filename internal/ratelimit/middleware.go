// Package ratelimit throttles the POS terminal API at three scopes (spec
// §6.4 RateLimitConfig): globally, per terminal, and per IP. The
// per-terminal limiter keys by IP for requests that carry no terminal identity.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cartflow/server/internal/metrics"
	"github.com/go-chi/httprate"
)

// Config holds rate limiting configuration.
type Config struct {
	GlobalEnabled bool
	GlobalLimit   int
	GlobalWindow  time.Duration

	PerTerminalEnabled bool
	PerTerminalLimit   int
	PerTerminalWindow  time.Duration

	PerIPEnabled bool
	PerIPLimit   int
	PerIPWindow  time.Duration

	// Metrics collector (optional)
	Metrics *metrics.Metrics
}

type rateLimitResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// DefaultConfig returns sensible default rate limits for a terminal fleet.
func DefaultConfig() Config {
	return Config{
		GlobalEnabled: true,
		GlobalLimit:   2000,
		GlobalWindow:  time.Minute,

		PerTerminalEnabled: true,
		PerTerminalLimit:   120,
		PerTerminalWindow:  time.Minute,

		PerIPEnabled: true,
		PerIPLimit:   240,
		PerIPWindow:  time.Minute,
	}
}

func createRateLimitHandler(limitType string, windowSeconds int, extractIdentifier func(*http.Request) string, metricsCollector *metrics.Metrics) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := "all"
		if extractIdentifier != nil {
			if id := extractIdentifier(r); id != "" {
				identifier = id
			}
		}

		if metricsCollector != nil {
			metricsCollector.ObserveRateLimit(limitType, identifier)
		}

		var message string
		switch limitType {
		case "global":
			message = "global rate limit exceeded, try again later"
		case "per_terminal":
			message = fmt.Sprintf("rate limit exceeded for terminal %s, try again later", identifier)
		case "per_ip":
			message = "rate limit exceeded, try again later"
		default:
			message = "rate limit exceeded, try again later"
		}

		response := rateLimitResponse{
			Error:             "rate_limit_exceeded",
			Message:           message,
			RetryAfterSeconds: windowSeconds,
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", fmt.Sprintf("%d", windowSeconds))
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(response)
	}
}

// GlobalLimiter throttles the whole API regardless of caller identity.
func GlobalLimiter(cfg Config) func(http.Handler) http.Handler {
	if !cfg.GlobalEnabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.GlobalLimit,
		cfg.GlobalWindow,
		httprate.WithLimitHandler(createRateLimitHandler("global", int(cfg.GlobalWindow.Seconds()), nil, cfg.Metrics)),
	)
}

// TerminalLimiter throttles per terminal_id, falling back to per-IP keying
// when the query carries no terminal_id (spec §6.1 auth: terminal_id is a
// required query parameter on most endpoints, but not on /health).
func TerminalLimiter(cfg Config) func(http.Handler) http.Handler {
	if !cfg.PerTerminalEnabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.PerTerminalLimit,
		cfg.PerTerminalWindow,
		httprate.WithKeyFuncs(terminalKeyExtractor),
		httprate.WithLimitHandler(createRateLimitHandler("per_terminal", int(cfg.PerTerminalWindow.Seconds()), extractTerminalID, cfg.Metrics)),
	)
}

// IPLimiter throttles by remote address, independent of terminal identity.
func IPLimiter(cfg Config) func(http.Handler) http.Handler {
	if !cfg.PerIPEnabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.PerIPLimit,
		cfg.PerIPWindow,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(createRateLimitHandler("per_ip", int(cfg.PerIPWindow.Seconds()), func(r *http.Request) string { return r.RemoteAddr }, cfg.Metrics)),
	)
}

func terminalKeyExtractor(r *http.Request) (string, error) {
	terminalID := extractTerminalID(r)
	if terminalID == "" {
		return httprate.KeyByIP(r)
	}
	return "terminal:" + terminalID, nil
}

// extractTerminalID reads the terminal_id query parameter (spec §6.1:
// "{tenant}-{store}-{terminal}").
func extractTerminalID(r *http.Request) string {
	return r.URL.Query().Get("terminal_id")
}
