// Package payment wraps Stripe Checkout and webhook verification.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"ourcodingkiddos/backend/config"
)

var (
	ErrNotConfigured    = errors.New("payments are not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Webhook event types the backend reacts to
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventChargeRefunded    = "charge.refunded"
)

// CheckoutRequest one line item checkout
type CheckoutRequest struct {
	PaymentID     string // our payment row, echoed back as client_reference_id
	ProductName   string
	Description   string
	AmountCents   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession created session
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent the fields of a verified Stripe event the backend needs
type WebhookEvent struct {
	ID                string
	Type              string
	SessionID         string
	PaymentIntent     string
	ClientReferenceID string
	Metadata          map[string]string
}

// Gateway payment provider
type Gateway interface {
	CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type stripeGateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

// NewStripe Stripe-backed gateway. Checkout fails with ErrNotConfigured when no secret key is set.
func NewStripe(cfg *config.StripeConfig) Gateway {
	g := &stripeGateway{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      cfg.Currency,
	}
	if cfg.SecretKey != "" {
		g.api = client.New(cfg.SecretKey, nil)
	}
	return g
}

func (g *stripeGateway) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(req.PaymentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(req.AmountCents),
				ProductData: product,
			},
		}},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("payment_id", req.PaymentID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = s.ID
		out.ClientReferenceID = s.ClientReferenceID
		out.Metadata = s.Metadata
		if s.PaymentIntent != nil {
			out.PaymentIntent = s.PaymentIntent.ID
		}
	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(evt.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		out.Metadata = ch.Metadata
		if ch.PaymentIntent != nil {
			out.PaymentIntent = ch.PaymentIntent.ID
		}
	}
	return out, nil
}
