package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityID uniquely identifies an activity log entry.
type ActivityID uuid.UUID

// MarshalText implements encoding.TextMarshaler.
func (id ActivityID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ActivityID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ActivityAction names what happened to a submission.
type ActivityAction string

const (
	ActivitySubmitted     ActivityAction = "submitted"
	ActivityPaymentPaid   ActivityAction = "payment_paid"
	ActivityPaymentFailed ActivityAction = "payment_failed"
	ActivityStatusChanged ActivityAction = "status_changed"
	ActivityAssigned      ActivityAction = "assigned"
	ActivityNoteAdded     ActivityAction = "note_added"
	ActivityGraded        ActivityAction = "graded"
	ActivityDelivered     ActivityAction = "delivered"
	ActivityRefunded      ActivityAction = "refunded"
	ActivityDeleted       ActivityAction = "deleted"
)

// ActorSystem is the actor recorded for automated actions.
const ActorSystem = "system"

// ActivityLog is one entry of a submission's audit trail.
type ActivityLog struct {
	ID           ActivityID     `json:"id"`
	SubmissionID SubmissionID   `json:"submissionId"`
	Actor        string         `json:"actor"`
	Action       ActivityAction `json:"action"`
	Details      string         `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// NoteID uniquely identifies a review note.
type NoteID uuid.UUID

// MarshalText implements encoding.TextMarshaler.
func (id NoteID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NoteID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ReviewNote is an internal comment left by staff on a submission.
type ReviewNote struct {
	ID           NoteID       `json:"id"`
	SubmissionID SubmissionID `json:"submissionId"`
	Author       string       `json:"author"`
	Body         string       `json:"body"`
	CreatedAt    time.Time    `json:"createdAt"`
}
