package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"eduvibe/internal/config"
	"eduvibe/pkg/apperrors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

var (
	ErrPaymentsDisabled = apperrors.WithMessage(apperrors.ErrCollaboratorUnavailable, "payments are not configured")
	ErrInvalidSignature = apperrors.WithMessage(apperrors.ErrValidation, "invalid webhook signature")
)

type IntentRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
)

// GatewayEvent is a verified provider notification about one intent.
type GatewayEvent struct {
	Kind          EventKind
	IntentID      string
	FailureReason string
}

type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// ParseEvent returns nil for verified events that carry nothing to act on.
	ParseEvent(payload []byte, signature string) (*GatewayEvent, error)
}

type StripeGateway struct {
	client        *client.API
	webhookSecret string
}

// NewStripeGateway returns a gateway that refuses every call when no secret key is set.
func NewStripeGateway(cfg *config.Config) Gateway {
	g := &StripeGateway{webhookSecret: cfg.Stripe.WebhookSecret}
	if cfg.Stripe.SecretKey != "" {
		g.client = &client.API{}
		g.client.Init(cfg.Stripe.SecretKey, nil)
	}
	return g
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if g.client == nil {
		return nil, ErrPaymentsDisabled
	}
	if req.AmountCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*GatewayEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrPaymentsDisabled
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, ErrInvalidSignature, "")
	}

	var kind EventKind
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		kind = EventSucceeded
	case stripe.EventTypePaymentIntentPaymentFailed:
		kind = EventFailed
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation, "malformed payment intent")
	}

	out := &GatewayEvent{Kind: kind, IntentID: pi.ID}
	if pi.LastPaymentError != nil {
		out.FailureReason = pi.LastPaymentError.Msg
	}
	return out, nil
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return apperrors.Wrap(err, apperrors.ErrCollaboratorUnavailable, "payment provider unavailable")
		}
		if stripeErr.Code == stripe.ErrorCodeIdempotencyKeyInUse {
			return apperrors.Wrap(err, apperrors.ErrConflict, "a payment for this session is already in progress")
		}
		return apperrors.Wrap(err, apperrors.ErrValidation, stripeErr.Msg)
	}
	return fmt.Errorf("stripe: %w", err)
}
