package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionID uniquely identifies a CV-rewrite order.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SubmissionID uuid.UUID

// String returns the canonical UUID representation of the ID.
func (id SubmissionID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the ID is unset.
func (id SubmissionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewSubmissionID returns a random submission ID.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// ParseSubmissionID parses the textual form of a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SubmissionID{}, err //nolint: wrapcheck
	}

	return SubmissionID(id), nil
}

// MarshalText implements encoding.TextMarshaler.
func (id SubmissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *SubmissionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// SubmissionStatus represents the fulfilment state of an order.
type SubmissionStatus string

const (
	// SubmissionStatusPending indicates the order was received but nobody started on it.
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusInProgress indicates a writer is rewriting the CV.
	SubmissionStatusInProgress SubmissionStatus = "in_progress"
	// SubmissionStatusReview indicates the rewrite waits for an internal review.
	SubmissionStatusReview SubmissionStatus = "review"
	// SubmissionStatusCompleted indicates the rewrite is final but not sent yet.
	SubmissionStatusCompleted SubmissionStatus = "completed"
	// SubmissionStatusDelivered indicates the customer received the rewritten CV.
	SubmissionStatusDelivered SubmissionStatus = "delivered"
	// SubmissionStatusRefunded indicates the order was refunded and closed.
	SubmissionStatusRefunded SubmissionStatus = "refunded"
)

// SubmissionStatuses lists every status in workflow order.
var SubmissionStatuses = []SubmissionStatus{ //nolint: gochecknoglobals
	SubmissionStatusPending,
	SubmissionStatusInProgress,
	SubmissionStatusReview,
	SubmissionStatusCompleted,
	SubmissionStatusDelivered,
	SubmissionStatusRefunded,
}

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	for _, v := range SubmissionStatuses {
		if v == s {
			return true
		}
	}

	return false
}

// transitions maps a status to the statuses an admin may move it to: the
// next step of the chain, and one step back from review and completed.
// Refunds are handled separately since they are reachable from everywhere.
var transitions = map[SubmissionStatus][]SubmissionStatus{ //nolint: gochecknoglobals
	SubmissionStatusPending:    {SubmissionStatusInProgress},
	SubmissionStatusInProgress: {SubmissionStatusReview},
	SubmissionStatusReview:     {SubmissionStatusCompleted, SubmissionStatusInProgress},
	SubmissionStatusCompleted:  {SubmissionStatusDelivered, SubmissionStatusReview},
}

// CanTransitionTo reports whether a submission in status s may move to next.
// Moving to the same status is always allowed and treated as a no-op.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	if s == next {
		return true
	}
	if next == SubmissionStatusRefunded {
		return s != SubmissionStatusRefunded
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Submission is a customer's CV-rewrite order together with its intake answers.
type Submission struct {
	// ID is the unique identifier of the order.
	ID SubmissionID `json:"id"`

	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	TargetRole      string `json:"targetRole"`
	Industry        string `json:"industry,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	CareerGoals     string `json:"careerGoals,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
	LinkedInURL     string `json:"linkedinUrl,omitempty"`

	// Package is the purchased service tier.
	Package Package `json:"package"`
	// AddOns are the extra services bought on top of the package.
	AddOns []AddOn `json:"addOns"`
	// Status is the fulfilment state.
	Status SubmissionStatus `json:"status"`
	// PaymentStatus mirrors the state of the linked payment.
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	// PaymentIntentID is the payment provider's intent identifier, if any.
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	// AmountCents is the quoted price in the smallest currency unit.
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`

	// CVFileKey is the blob storage key of the uploaded CV.
	CVFileKey     string `json:"cvFileKey,omitempty"`
	CVFileName    string `json:"cvFileName,omitempty"`
	CVContentType string `json:"cvContentType,omitempty"`
	CVText        string `json:"cvText,omitempty"`
	DeliveredKey  string `json:"deliveredFileKey,omitempty"`
	DeliveredName string `json:"deliveredFileName,omitempty"`
	AssignedTo    string `json:"assignedTo,omitempty"`

	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	DeliveredAt time.Time `json:"deliveredAt"`
	// DeletedAt marks when the order was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"deletedAt"`
}
