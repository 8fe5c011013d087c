package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cartflow/server/internal/apikey"
	"github.com/cartflow/server/internal/cart"
	"github.com/cartflow/server/internal/config"
	apierrors "github.com/cartflow/server/internal/errors"
	"github.com/cartflow/server/internal/logger"
	"github.com/cartflow/server/internal/metrics"
	"github.com/cartflow/server/internal/ratelimit"
	"github.com/cartflow/server/internal/tenant"
	"github.com/cartflow/server/internal/versioning"
)

var serverStartTime = time.Now()

// CartOperations is the subset of C6's façade the HTTP layer dispatches to,
// one method per spec §6.1 frozen endpoint. The composition root supplies
// the concrete implementation; until then, Server still serves health and
// discovery traffic with CartOperations left nil.
type CartOperations interface {
	CreateCart(ctx context.Context, terminalID string, req CreateCartRequest) (*cart.Cart, error)
	GetCart(ctx context.Context, terminalID, cartID string) (*cart.Cart, error)
	CancelCart(ctx context.Context, terminalID, cartID string) (*cart.Cart, error)

	AddLineItem(ctx context.Context, terminalID, cartID string, req AddLineItemRequest) (*cart.Cart, error)
	CancelLine(ctx context.Context, terminalID, cartID string, lineNo int) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, terminalID, cartID string, lineNo int, req UpdateQuantityRequest) (*cart.Cart, error)
	UpdatePrice(ctx context.Context, terminalID, cartID string, lineNo int, req UpdatePriceRequest) (*cart.Cart, error)
	AddLineDiscount(ctx context.Context, terminalID, cartID string, lineNo int, req AddDiscountRequest) (*cart.Cart, error)

	Subtotal(ctx context.Context, terminalID, cartID string) (*cart.Cart, error)
	AddCartDiscount(ctx context.Context, terminalID, cartID string, req AddDiscountRequest) (*cart.Cart, error)
	AddPayment(ctx context.Context, terminalID, cartID string, req AddPaymentRequest) (*cart.Cart, error)
	Bill(ctx context.Context, terminalID, cartID string) (*cart.Transaction, error)
	ResumeItemEntry(ctx context.Context, terminalID, cartID string) (*cart.Cart, error)

	QueryTransactions(ctx context.Context, tenantID, storeCode, terminalNo string) ([]*cart.Transaction, error)
	GetTransaction(ctx context.Context, tenantID, storeCode, terminalNo string, transactionNo int64) (*cart.Transaction, error)
	VoidTransaction(ctx context.Context, tenantID, storeCode, terminalNo string, transactionNo int64, req VoidRequest) (*cart.Transaction, error)
	ReturnTransaction(ctx context.Context, tenantID, storeCode, terminalNo string, transactionNo int64, req ReturnRequest) (*cart.Transaction, error)
	AckDelivery(ctx context.Context, tenantID, storeCode, terminalNo string, transactionNo int64, req AckDeliveryRequest) error
}

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg     *config.Config
	cart    CartOperations
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New builds the HTTP server with its configured router. cartOps is nil
// until the composition root wires C6; in that window only health and
// discovery endpoints are reachable.
func New(cfg *config.Config, cartOps CartOperations, metricsCollector *metrics.Metrics, appLogger zerolog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		handlers: handlers{
			cfg:     cfg,
			cart:    cartOps,
			metrics: metricsCollector,
			logger:  appLogger,
		},
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			ReadTimeout:  cfg.Server.ReadTimeout.Duration,
			WriteTimeout: cfg.Server.WriteTimeout.Duration,
			IdleTimeout:  cfg.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	ConfigureRouter(router, cfg, cartOps, metricsCollector, appLogger)

	return s
}

// ConfigureRouter attaches the cart API's routes and middleware stack to an
// existing router. Paths match spec §6.1's frozen table exactly.
func ConfigureRouter(router chi.Router, cfg *config.Config, cartOps CartOperations, metricsCollector *metrics.Metrics, appLogger zerolog.Logger) {
	if router == nil {
		return
	}

	handler := handlers{
		cfg:     cfg,
		cart:    cartOps,
		metrics: metricsCollector,
		logger:  appLogger,
	}

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}).Handler)
	}

	// Security headers first, for every response including errors.
	router.Use(securityHeadersMiddleware)

	router.Use(logger.Middleware(appLogger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Use(versioning.Negotiation)

	// X-API-Key resolves the tenant; tenant.Extraction must run after it so
	// it can prefer the authenticated tenant over the terminal_id fallback.
	apiKeyCfg := apikey.Config{
		Enabled: cfg.APIKey.Enabled,
		Keys:    cfg.APIKey.Keys,
	}
	router.Use(apikey.Middleware(apiKeyCfg))
	router.Use(tenant.Extraction)

	rateLimitCfg := ratelimit.Config{
		GlobalEnabled: cfg.RateLimit.GlobalEnabled,
		GlobalLimit:   cfg.RateLimit.GlobalLimit,
		GlobalWindow:  cfg.RateLimit.GlobalWindow.Duration,

		PerTerminalEnabled: cfg.RateLimit.PerTerminalEnabled,
		PerTerminalLimit:   cfg.RateLimit.PerTerminalLimit,
		PerTerminalWindow:  cfg.RateLimit.PerTerminalWindow.Duration,

		PerIPEnabled: cfg.RateLimit.PerIPEnabled,
		PerIPLimit:   cfg.RateLimit.PerIPLimit,
		PerIPWindow:  cfg.RateLimit.PerIPWindow.Duration,

		Metrics: metricsCollector,
	}
	router.Use(ratelimit.GlobalLimiter(rateLimitCfg))
	router.Use(ratelimit.TerminalLimiter(rateLimitCfg))
	router.Use(ratelimit.IPLimiter(rateLimitCfg))

	prefix := cfg.Server.RoutePrefix

	// Health check and metrics: short timeout — load balancers probe /health.
	// The router-wide API-key middleware applies here as well; /metrics also
	// requires the admin key when one is configured.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Get("/health", handler.health)
		r.With(adminMetricsAuth(cfg.Server.AdminAPIKey)).Handle(prefix+"/metrics", promhttp.Handler())
	})

	// Cart operations: a terminal transaction may wait on a retrying
	// dependency (store, counter, event bus), so this group gets a longer
	// timeout than the discovery group above.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Post(prefix+"/api/v1/carts", handler.createCart)
		r.Get(prefix+"/api/v1/carts/{cart_id}", handler.getCart)
		r.Post(prefix+"/api/v1/carts/{cart_id}/cancel", handler.cancelCart)

		r.Post(prefix+"/api/v1/carts/{cart_id}/lineItems", handler.addLineItem)
		r.Post(prefix+"/api/v1/carts/{cart_id}/lineItems/{lineNo}/cancel", handler.cancelLine)
		r.Patch(prefix+"/api/v1/carts/{cart_id}/lineItems/{lineNo}/quantity", handler.updateQuantity)
		r.Patch(prefix+"/api/v1/carts/{cart_id}/lineItems/{lineNo}/unitPrice", handler.updatePrice)
		r.Post(prefix+"/api/v1/carts/{cart_id}/lineItems/{lineNo}/discounts", handler.addLineDiscount)

		r.Post(prefix+"/api/v1/carts/{cart_id}/subtotal", handler.subtotal)
		r.Post(prefix+"/api/v1/carts/{cart_id}/discounts", handler.addCartDiscount)
		r.Post(prefix+"/api/v1/carts/{cart_id}/payments", handler.addPayment)
		r.Post(prefix+"/api/v1/carts/{cart_id}/bill", handler.bill)
		r.Post(prefix+"/api/v1/carts/{cart_id}/resume-item-entry", handler.resumeItemEntry)

		r.Get(prefix+"/api/v1/tenants/{tenant_id}/stores/{store_code}/terminals/{terminal_no}/transactions", handler.queryTransactions)
		r.Get(prefix+"/api/v1/tenants/{tenant_id}/stores/{store_code}/terminals/{terminal_no}/transactions/{transaction_no}", handler.getTransaction)
		r.Post(prefix+"/api/v1/tenants/{tenant_id}/stores/{store_code}/terminals/{terminal_no}/transactions/{transaction_no}/void", handler.voidTransaction)
		r.Post(prefix+"/api/v1/tenants/{tenant_id}/stores/{store_code}/terminals/{terminal_no}/transactions/{transaction_no}/return", handler.returnTransaction)
		r.Post(prefix+"/api/v1/tenants/{tenant_id}/stores/{store_code}/terminals/{terminal_no}/transactions/{transaction_no}/delivery-status", handler.ackDelivery)
	})
}

// health reports liveness and uptime for load balancer probes.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteSuccess(w, "health", map[string]any{
		"status":        "ok",
		"uptimeSeconds": int(time.Since(serverStartTime).Seconds()),
	})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
