// Package payments abstracts the card payment provider: creating payment
// intents, refunding them and verifying webhook events.
package payments

import (
	"context"
	"rightfit/pkg/serrors"
)

// EventKind classifies a verified webhook event.
type EventKind string

const (
	// EventIgnored is any event type the service does not act on.
	EventIgnored   EventKind = "ignored"
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventRefunded  EventKind = "refunded"
)

// IntentParams describes a payment intent to create.
type IntentParams struct {
	AmountCents int64
	Currency    string
	Email       string
	Description string
	Metadata    map[string]string
	// IdempotencyKey makes retried creations return the same intent.
	IdempotencyKey string
}

// Intent is a provider payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Email        string
	Metadata     map[string]string
}

// Refund is a provider refund.
type Refund struct {
	ID     string
	Status string
}

// Event is a verified webhook event reduced to what the service needs.
type Event struct {
	ID             string
	Type           string
	Kind           EventKind
	IntentID       string
	AmountCents    int64
	Currency       string
	Email          string
	FailureMessage string
	RefundID       string
	Metadata       map[string]string
}

// Provider is implemented by payment backends.
//
//go:generate mockgen -package mockpayments -source=payments.go -destination=mock/mockpayments.go Provider
type Provider interface {
	CreateIntent(ctx context.Context, params IntentParams) (Intent, error)
	// Intent fetches an intent by ID. Unknown IDs yield serrors.ErrNotFound.
	Intent(ctx context.Context, id string) (Intent, error)
	// Refund refunds the full amount captured by the intent.
	Refund(ctx context.Context, intentID, reason string) (Refund, error)
	// ParseEvent verifies the webhook signature and decodes the payload.
	// An invalid signature yields serrors.ErrUnauthorized.
	ParseEvent(payload []byte, signature string) (Event, error)
}

// Disabled is used when no payment provider is configured. Every call fails
// with serrors.ErrUnavailable.
type Disabled struct{}

var _ Provider = Disabled{}

func unavailable() error { return serrors.With(serrors.ErrUnavailable, "payments are not configured") }

func (Disabled) CreateIntent(context.Context, IntentParams) (Intent, error) {
	return Intent{}, unavailable()
}

func (Disabled) Intent(context.Context, string) (Intent, error) { return Intent{}, unavailable() }

func (Disabled) Refund(context.Context, string, string) (Refund, error) {
	return Refund{}, unavailable()
}

func (Disabled) ParseEvent([]byte, string) (Event, error) { return Event{}, unavailable() }
