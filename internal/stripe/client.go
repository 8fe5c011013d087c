// Package stripe implements the cashless tender gateway backing C5's
// "cashless" built-in payment strategy (spec §4.5): a card/cashless
// payment_code captures and confirms a Stripe PaymentIntent for exactly
// `amount`, and a refund reverses a prior capture for a voided/returned
// payment (spec §4.10).
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"github.com/stripe/stripe-go/v72/refund"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/cartflow/server/internal/config"
	"github.com/cartflow/server/internal/metrics"
	"github.com/cartflow/server/internal/money"
)

// Client wraps the stripe-go calls the cashless strategy needs.
type Client struct {
	cfg     config.StripeConfig
	adapter *money.StripeAdapter
	metrics *metrics.Metrics
}

// NewClient configures stripe-go with the tenant's Stripe credentials.
func NewClient(cfg config.StripeConfig, metricsCollector *metrics.Metrics) *Client {
	stripeapi.Key = cfg.SecretKey
	return &Client{
		cfg:     cfg,
		adapter: money.NewStripeAdapter(),
		metrics: metricsCollector,
	}
}

// CaptureRequest describes one cashless ADD_PAYMENT to capture.
type CaptureRequest struct {
	CartID      string
	PaymentCode string
	Amount      money.Money
	Detail      string // payment method token / terminal reader ID
}

// CaptureResult is the confirmed PaymentIntent's identity, persisted on the
// cart's Payment.Detail for later refund lookup.
type CaptureResult struct {
	PaymentIntentID string
	Status          string
}

// Capture creates and confirms a PaymentIntent for exactly req.Amount. The
// cashless strategy (spec §4.5) requires deposit_amount == amount, so no
// change computation happens here — a mismatch is rejected upstream in C5
// before Capture is ever called.
func (c *Client) Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error) {
	start := time.Now()
	currency, amount, err := c.adapter.ToStripeAmount(req.Amount)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("stripe: %w", err)
	}

	params := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(amount),
		Currency:           stripeapi.String(currency),
		PaymentMethod:      stripeapi.String(req.Detail),
		ConfirmationMethod: stripeapi.String("manual"),
		Confirm:            stripeapi.Bool(true),
	}
	params.Params.Context = ctx
	params.AddMetadata("cart_id", req.CartID)
	params.AddMetadata("payment_code", req.PaymentCode)

	intent, err := paymentintent.New(params)
	if c.metrics != nil {
		c.metrics.ObservePayment(req.PaymentCode, err == nil, amount, time.Since(start))
	}
	if err != nil {
		return CaptureResult{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return CaptureResult{
		PaymentIntentID: intent.ID,
		Status:          string(intent.Status),
	}, nil
}

// Refund reverses a prior capture for a void or return (spec §4.10).
func (c *Client) Refund(ctx context.Context, paymentIntentID string, amount money.Money) error {
	currency, stripeAmount, err := c.adapter.ToStripeAmount(amount)
	if err != nil {
		return fmt.Errorf("stripe: %w", err)
	}
	_ = currency // refund amount is denominated in the original intent's currency

	params := &stripeapi.RefundParams{
		PaymentIntent: stripeapi.String(paymentIntentID),
		Amount:        stripeapi.Int64(stripeAmount),
	}
	params.Params.Context = ctx

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe: refund: %w", err)
	}
	return nil
}

// WebhookEvent is the subset of a Stripe event the reconciler cares about.
type WebhookEvent struct {
	Type            string
	PaymentIntentID string
	CartID          string
	PaymentCode     string
	AmountReceived  int64
	Currency        string
	Status          string
}

// ParseWebhook validates the event signature and normalizes the payload.
// Used by a reconciliation sweep to confirm a capture that raced a terminal
// disconnect (the HTTP response never reached C6, but Stripe completed it).
func (c *Client) ParseWebhook(ctx context.Context, payload []byte, signature string) (WebhookEvent, error) {
	if c.cfg.WebhookSecret == "" {
		return WebhookEvent{}, errors.New("stripe: webhook secret not configured")
	}
	event, err := webhook.ConstructEvent(payload, signature, c.cfg.WebhookSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("stripe: construct event: %w", err)
	}

	var intent stripeapi.PaymentIntent
	if len(event.Data.Raw) == 0 {
		return WebhookEvent{}, errors.New("stripe: webhook payload empty")
	}
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return WebhookEvent{}, fmt.Errorf("stripe: decode webhook payload: %w", err)
	}

	return WebhookEvent{
		Type:            event.Type,
		PaymentIntentID: intent.ID,
		CartID:          intent.Metadata["cart_id"],
		PaymentCode:     intent.Metadata["payment_code"],
		AmountReceived:  intent.AmountReceived,
		Currency:        string(intent.Currency),
		Status:          string(intent.Status),
	}, nil
}
