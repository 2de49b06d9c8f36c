package storage

import (
	"context"
	"rightfit/pkg/domain"
)

// PaymentUpdates describes optional payment fields to change.
type PaymentUpdates struct {
	Status         *domain.PaymentStatus
	SubmissionID   *domain.SubmissionID
	RefundID       *string
	FailureMessage *string
}

// Revenue aggregates payment totals in cents.
type Revenue struct {
	PaidCents     int64
	PaidCount     int64
	RefundedCents int64
	RefundedCount int64
}

// PaymentStorage persists payment intents and their state.
type PaymentStorage interface {
	// StorePayment inserts a payment. Returns ErrDuplicate when the provider ID
	// is already known.
	StorePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	// PaymentByProviderID fetches a payment by the provider's intent ID.
	PaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error)
	// UpdatePaymentByProviderID applies updates and returns the updated row.
	UpdatePaymentByProviderID(ctx context.Context, providerID string, updates PaymentUpdates) (*domain.Payment, error)
	// SubmissionPayments lists the payments linked to a submission, oldest first.
	SubmissionPayments(ctx context.Context, id domain.SubmissionID) ([]domain.Payment, error)
	// Revenue sums paid and refunded payments.
	Revenue(ctx context.Context) (Revenue, error)
}
