package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test"

const completedPayload = `{
  "id": "evt_123",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_abc",
      "object": "checkout.session",
      "client_reference_id": "5f0c5a35-6a47-4c37-a0c6-4d5fa3a3a0b1",
      "customer_email": "buyer@example.com",
      "amount_total": 2499,
      "currency": "usd",
      "metadata": {"street": "1 Main St", "city": "Springfield", "phone": "555"}
    }
  }
}`

func sign(payload string, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  secret,
	})
	return signed.Header
}

func newTestStripe() *Stripe {
	s := NewStripe("sk_test_unused", testSecret)
	s.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestParseWebhook_Completed(t *testing.T) {
	s := newTestStripe()

	ev, err := s.ParseWebhook([]byte(completedPayload), sign(completedPayload, testSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_123", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_test_abc", ev.SessionID)
	assert.Equal(t, "5f0c5a35-6a47-4c37-a0c6-4d5fa3a3a0b1", ev.CartID)
	assert.Equal(t, "buyer@example.com", ev.CustomerEmail)
	assert.True(t, decimal.RequireFromString("24.99").Equal(ev.AmountTotal), ev.AmountTotal.String())
	assert.Equal(t, "Springfield", ev.Metadata["city"])
	assert.Equal(t, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), ev.ReceivedAt)
	assert.Equal(t, completedPayload, string(ev.Raw))
}

func TestParseWebhook_OtherType(t *testing.T) {
	payload := `{"id":"evt_9","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`

	ev, err := newTestStripe().ParseWebhook([]byte(payload), sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", ev.Type)
	assert.Empty(t, ev.CartID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := newTestStripe()

	cases := map[string]string{
		"wrong secret": sign(completedPayload, "whsec_other"),
		"garbage":      "t=1,v1=deadbeef",
		"missing":      "",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.ParseWebhook([]byte(completedPayload), header)
			assert.True(t, errors.Is(err, ErrSignature), "got %v", err)
		})
	}

	// a valid signature does not cover a tampered body
	header := sign(completedPayload, testSecret)
	_, err := s.ParseWebhook([]byte(completedPayload+" "), header)
	assert.ErrorIs(t, err, ErrSignature)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinor(decimal.RequireFromString("19.99"), 2))
	assert.Equal(t, int64(1000), ToMinor(decimal.RequireFromString("10.004"), 2))
	assert.Equal(t, int64(1001), ToMinor(decimal.RequireFromString("10.005"), 2))
	assert.True(t, decimal.RequireFromString("0.05").Equal(FromMinor(5, 2)))

	assert.Equal(t, int64(1000), ToMinor(decimal.RequireFromString("1000"), 0))
	assert.True(t, decimal.RequireFromString("1000").Equal(FromMinor(1000, 0)))
}

func TestExponent(t *testing.T) {
	cases := map[string]int32{"usd": 2, "EUR": 2, " gbp ": 2, "jpy": 0, "KRW": 0}
	for cur, want := range cases {
		got, err := Exponent(cur)
		require.NoError(t, err, cur)
		assert.Equal(t, want, got, cur)
	}

	for _, cur := range []string{"", "dollars", "kwd", "BHD"} {
		_, err := Exponent(cur)
		assert.ErrorIs(t, err, ErrCurrency, cur)
	}
}

func TestParseWebhook_ZeroDecimalCurrency(t *testing.T) {
	s := newTestStripe()
	payload := strings.Replace(strings.Replace(completedPayload, `"usd"`, `"jpy"`, 1), "2499", "1000", 1)

	ev, err := s.ParseWebhook([]byte(payload), sign(payload, testSecret))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000").Equal(ev.AmountTotal), ev.AmountTotal.String())

	payload = strings.Replace(completedPayload, `"usd"`, `"kwd"`, 1)
	_, err = s.ParseWebhook([]byte(payload), sign(payload, testSecret))
	assert.ErrorIs(t, err, ErrCurrency)
}

func TestCreateCheckoutSession_UnsupportedCurrency(t *testing.T) {
	_, err := newTestStripe().CreateCheckoutSession(context.Background(), SessionRequest{
		CartID:   "c1",
		Amount:   decimal.RequireFromString("10"),
		Currency: "tnd",
	})
	assert.ErrorIs(t, err, ErrCurrency)
}
