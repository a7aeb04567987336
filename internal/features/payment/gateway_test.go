package payment

import (
	"context"
	"testing"
	"time"

	"eduvibe/internal/config"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testWebhookSecret = "whsec_test"

func signed(t *testing.T, payload string) string {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return sp.Header
}

func TestStripeGatewayWithoutKeysIsUnavailable(t *testing.T) {
	g := NewStripeGateway(&config.Config{})

	_, err := g.CreateIntent(context.Background(), IntentRequest{AmountCents: 100, Currency: "usd"})
	assert.ErrorIs(t, err, apperrors.ErrCollaboratorUnavailable)

	_, err = g.ParseEvent([]byte("{}"), "")
	assert.ErrorIs(t, err, apperrors.ErrCollaboratorUnavailable)
}

func TestParseEventVerifiesSignature(t *testing.T) {
	g := NewStripeGateway(&config.Config{Stripe: config.StripeConfig{WebhookSecret: testWebhookSecret}})
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.payment_failed",` +
		`"data":{"object":{"id":"pi_123","object":"payment_intent","last_payment_error":{"message":"Your card was declined."}}}}`

	ev, err := g.ParseEvent([]byte(payload), signed(t, payload))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, EventFailed, ev.Kind)
	assert.Equal(t, "pi_123", ev.IntentID)
	assert.Equal(t, "Your card was declined.", ev.FailureReason)

	_, err = g.ParseEvent([]byte(payload), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParseEventIgnoresOtherTypes(t *testing.T) {
	g := NewStripeGateway(&config.Config{Stripe: config.StripeConfig{WebhookSecret: testWebhookSecret}})
	payload := `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`

	ev, err := g.ParseEvent([]byte(payload), signed(t, payload))
	require.NoError(t, err)
	assert.Nil(t, ev)
}
