package storage

import (
	"context"
	"rightfit/pkg/domain"
	"time"
)

// SubmissionUpdates describes a set of optional fields that can be applied to
// an existing submission. Only non-nil fields are updated.
type SubmissionUpdates struct {
	Status          *domain.SubmissionStatus
	PaymentStatus   *domain.PaymentStatus
	PaymentIntentID *string
	AssignedTo      *string
	// DeliveredKey and DeliveredName are set together when a rewritten CV is
	// uploaded. DeliveredAt is stamped automatically in that case.
	DeliveredKey  *string
	DeliveredName *string
}

// SubmissionFilter narrows ListSubmissions.
type SubmissionFilter struct {
	// Status, when non-empty, restricts results to that status.
	Status domain.SubmissionStatus
	// Query is matched case-insensitively against name and email.
	Query string
	// Cursor returns rows created strictly before it. Zero means first page.
	Cursor time.Time
	Limit  uint
}

// SubmissionPage groups a page of submissions together with an optional
// NextCursor used for pagination.
type SubmissionPage struct {
	Submissions []domain.Submission
	// NextCursor is nil when there is no next page.
	NextCursor *time.Time
}

// SubmissionStorage defines CRUD and query operations related to submissions.
// Soft-deleted rows are invisible to every method.
type SubmissionStorage interface {
	// StoreSubmission inserts a submission and returns the stored row. A zero
	// ID is replaced by a generated one. Returns ErrDuplicate when the payment
	// intent is already linked to another submission.
	StoreSubmission(ctx context.Context, submission domain.Submission) (*domain.Submission, error)
	// SubmissionByID fetches a submission by its ID.
	SubmissionByID(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error)
	// SubmissionByPaymentIntent fetches the submission linked to a payment intent.
	SubmissionByPaymentIntent(ctx context.Context, intentID string) (*domain.Submission, error)
	// UpdateSubmission applies updates, sets updated_at and returns the updated row.
	UpdateSubmission(ctx context.Context, id domain.SubmissionID, updates SubmissionUpdates) (*domain.Submission, error)
	// DeleteSubmission soft-deletes a submission and returns it.
	DeleteSubmission(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error)
	// ListSubmissions returns a page ordered by created_at DESC, id DESC.
	ListSubmissions(ctx context.Context, filter SubmissionFilter) (SubmissionPage, error)
	// SubmissionCounts returns the number of submissions per status.
	SubmissionCounts(ctx context.Context) (map[domain.SubmissionStatus]int64, error)
}
