package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentID uniquely identifies a payment record.
type PaymentID uuid.UUID

// MarshalText implements encoding.TextMarshaler.
func (id PaymentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *PaymentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	// PaymentStatusUnpaid means no payment was attempted for the order.
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	// PaymentStatusPending means a payment intent exists but has not settled.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid means the provider confirmed the charge.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed means the provider reported a failed charge.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded means the charge was returned to the customer.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment records one payment intent created with the payment provider.
type Payment struct {
	ID PaymentID `json:"id"`
	// SubmissionID is zero until the intake form referencing the intent is submitted.
	SubmissionID SubmissionID `json:"submissionId"`
	// ProviderID is the provider's payment intent identifier.
	ProviderID     string        `json:"providerId"`
	AmountCents    int64         `json:"amountCents"`
	Currency       string        `json:"currency"`
	Status         PaymentStatus `json:"status"`
	Email          string        `json:"email"`
	RefundID       string        `json:"refundId,omitempty"`
	FailureMessage string        `json:"failureMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
