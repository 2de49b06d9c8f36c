// Package stripepay implements payments.Provider with the Stripe API.
package stripepay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"rightfit/pkg/payments"
	"rightfit/pkg/serrors"
	"sort"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a Provider.
type Options struct {
	SecretKey     string
	WebhookSecret string
	// Backends overrides the Stripe API endpoints, used in tests.
	Backends *stripe.Backends
}

// Provider talks to Stripe.
type Provider struct {
	api           *client.API
	webhookSecret string
}

var _ payments.Provider = (*Provider)(nil)

// New constructs a Provider.
func New(opts Options) *Provider {
	return &Provider{
		api:           client.New(opts.SecretKey, opts.Backends),
		webhookSecret: opts.WebhookSecret,
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("rightfit/payments/stripe").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stripe call failed")
	}
	span.End()
}

func (p *Provider) CreateIntent(ctx context.Context, in payments.IntentParams) (_ payments.Intent, err error) {
	ctx, span := startSpan(ctx, "stripe.payment_intents.create", attribute.Int64("amount", in.AmountCents))
	defer func() { endSpan(span, err) }()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountCents),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if in.Email != "" {
		params.ReceiptEmail = stripe.String(in.Email)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.AddMetadata(k, in.Metadata[k])
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return payments.Intent{}, mapErr(err, "could not create payment intent")
	}

	return toIntent(pi), nil
}

func (p *Provider) Intent(ctx context.Context, id string) (_ payments.Intent, err error) {
	ctx, span := startSpan(ctx, "stripe.payment_intents.get", attribute.String("intent", id))
	defer func() { endSpan(span, err) }()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return payments.Intent{}, mapErr(err, "could not get payment intent")
	}

	return toIntent(pi), nil
}

func (p *Provider) Refund(ctx context.Context, intentID, reason string) (_ payments.Refund, err error) {
	ctx, span := startSpan(ctx, "stripe.refunds.create", attribute.String("intent", intentID))
	defer func() { endSpan(span, err) }()

	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	if reason != "" {
		params.AddMetadata("reason", reason)
	}
	params.SetIdempotencyKey("refund-" + intentID)

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return payments.Refund{}, mapErr(err, "could not refund payment intent")
	}

	return payments.Refund{ID: r.ID, Status: string(r.Status)}, nil
}

func (p *Provider) ParseEvent(payload []byte, signature string) (payments.Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return payments.Event{}, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid webhook signature")
	}

	out := payments.Event{ID: ev.ID, Type: string(ev.Type), Kind: payments.EventIgnored}
	switch ev.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return payments.Event{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode payment intent")
		}
		intent := toIntent(&pi)
		out.Kind = payments.EventSucceeded
		if ev.Type == "payment_intent.payment_failed" {
			out.Kind = payments.EventFailed
			if pi.LastPaymentError != nil {
				out.FailureMessage = pi.LastPaymentError.Msg
			}
		}
		out.IntentID = intent.ID
		out.AmountCents = intent.AmountCents
		out.Currency = intent.Currency
		out.Email = intent.Email
		out.Metadata = intent.Metadata
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return payments.Event{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode charge")
		}
		out.Kind = payments.EventRefunded
		if ch.PaymentIntent != nil {
			out.IntentID = ch.PaymentIntent.ID
		}
		out.AmountCents = ch.AmountRefunded
		out.Currency = string(ch.Currency)
		out.Email = ch.ReceiptEmail
		out.Metadata = ch.Metadata
		if ch.Refunds != nil && len(ch.Refunds.Data) > 0 {
			out.RefundID = ch.Refunds.Data[0].ID
		}
	}

	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) payments.Intent {
	return payments.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Email:        pi.ReceiptEmail,
		Metadata:     pi.Metadata,
	}
}

func mapErr(err error, msg string) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return serrors.Wrap(serrors.ErrUnavailable, err, "%s", msg)
	}

	switch {
	case se.HTTPStatusCode == http.StatusNotFound:
		return serrors.Wrap(serrors.ErrNotFound, err, "%s", msg)
	case se.HTTPStatusCode == http.StatusTooManyRequests:
		return serrors.Wrap(serrors.ErrRateLimited, err, "%s", msg)
	case se.Type == stripe.ErrorTypeCard || se.Type == stripe.ErrorTypeInvalidRequest:
		return serrors.Wrap(serrors.ErrBadRequest, err, "%s", msg)
	default:
		return serrors.Wrap(serrors.ErrUnavailable, err, "%s (stripe %d)", msg, se.HTTPStatusCode)
	}
}
