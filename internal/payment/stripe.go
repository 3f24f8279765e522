package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const SignatureHeader = "Stripe-Signature"

type Stripe struct {
	api           *client.API
	webhookSecret string
	now           func() time.Time
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	exp, err := Exponent(req.Currency)
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(ToMinor(req.Amount, exp)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order for " + req.CustomerName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.CartID),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &Session{
		ID:          cs.ID,
		URL:         cs.URL,
		AmountTotal: FromMinor(cs.AmountTotal, exp),
		Currency:    string(cs.Currency),
		ExpiresAt:   cs.ExpiresAt,
	}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := &Event{
		ID:         ev.ID,
		Type:       string(ev.Type),
		ReceivedAt: s.now().UTC(),
		Raw:        payload,
	}
	if out.Type != EventCheckoutCompleted || ev.Data == nil {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	out.SessionID = cs.ID
	out.CartID = cs.ClientReferenceID
	out.CustomerEmail = cs.CustomerEmail
	if out.CustomerEmail == "" && cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
	}
	exp, err := Exponent(string(cs.Currency))
	if err != nil {
		return nil, fmt.Errorf("stripe: checkout session %s: %w", cs.ID, err)
	}
	out.AmountTotal = FromMinor(cs.AmountTotal, exp)
	out.Metadata = cs.Metadata
	return out, nil
}
