package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrSignature = errors.New("invalid webhook signature")
	ErrCurrency  = errors.New("unsupported currency")
)

// Currencies the gateway charges in whole units.
var zeroDecimal = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// Three-decimal currencies must be sent rounded to tens of minor units; not supported.
var threeDecimal = map[string]struct{}{
	"bhd": {}, "jod": {}, "kwd": {}, "omr": {}, "tnd": {},
}

type SessionRequest struct {
	CartID        string
	CustomerName  string
	CustomerEmail string
	Amount        decimal.Decimal
	Currency      string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type Session struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	Currency    string          `json:"currency"`
	ExpiresAt   int64           `json:"expires_at,omitempty"`
}

// Event is a verified gateway notification.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	CartID        string
	CustomerEmail string
	AmountTotal   decimal.Decimal
	Metadata      map[string]string
	ReceivedAt    time.Time
	Raw           []byte
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ParseWebhook verifies signature over payload and decodes it; ErrSignature on mismatch.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// Exponent is the number of minor-unit digits the gateway uses for currency.
func Exponent(currency string) (int32, error) {
	c := strings.ToLower(strings.TrimSpace(currency))
	if len(c) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrCurrency, currency)
	}
	if _, ok := zeroDecimal[c]; ok {
		return 0, nil
	}
	if _, ok := threeDecimal[c]; ok {
		return 0, fmt.Errorf("%w: %q", ErrCurrency, currency)
	}
	return 2, nil
}

// ToMinor converts an amount to the gateway's smallest currency unit.
func ToMinor(amount decimal.Decimal, exp int32) int64 {
	return amount.Shift(exp).Round(0).IntPart()
}

func FromMinor(minor int64, exp int32) decimal.Decimal {
	return decimal.New(minor, -exp)
}
