package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.GlobalEnabled {
		t.Error("expected global rate limiting enabled by default")
	}
	if !cfg.PerTerminalEnabled {
		t.Error("expected per-terminal rate limiting enabled by default")
	}
	if !cfg.PerIPEnabled {
		t.Error("expected per-IP rate limiting enabled by default")
	}
}

func TestGlobalLimiter_Disabled(t *testing.T) {
	limiter := GlobalLimiter(Config{GlobalEnabled: false})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestGlobalLimiter_EnforcesLimit(t *testing.T) {
	cfg := Config{GlobalEnabled: true, GlobalLimit: 5, GlobalWindow: time.Second}
	limiter := GlobalLimiter(cfg)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after limit exceeded, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header to be set")
	}
}

func TestTerminalLimiter_PerTerminalLimit(t *testing.T) {
	cfg := Config{PerTerminalEnabled: true, PerTerminalLimit: 3, PerTerminalWindow: time.Second}
	limiter := TerminalLimiter(cfg)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test?terminal_id=acme-s1-t1", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("terminal request %d: expected 200, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test?terminal_id=acme-s1-t1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after terminal limit, got %d", w.Code)
	}

	// A distinct terminal has its own budget.
	req = httptest.NewRequest("GET", "/test?terminal_id=acme-s1-t2", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("different terminal: expected 200, got %d", w.Code)
	}
}

func TestExtractTerminalID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test?terminal_id=acme-s1-t1", nil)
	if got := extractTerminalID(req); got != "acme-s1-t1" {
		t.Errorf("expected acme-s1-t1, got %q", got)
	}

	req = httptest.NewRequest("GET", "/test", nil)
	if got := extractTerminalID(req); got != "" {
		t.Errorf("expected empty terminal id, got %q", got)
	}
}

func TestIPLimiter_EnforcesLimit(t *testing.T) {
	cfg := Config{PerIPEnabled: true, PerIPLimit: 3, PerIPWindow: time.Second}
	limiter := IPLimiter(cfg)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ip := "192.168.1.100:54321"
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = ip
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = ip
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after IP limit, got %d", w.Code)
	}
}
