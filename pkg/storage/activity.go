package storage

import (
	"context"
	"rightfit/pkg/domain"
)

// ActivityStorage persists the submission audit trail.
type ActivityStorage interface {
	// StoreActivity appends one or more activity entries.
	StoreActivity(ctx context.Context, logs ...domain.ActivityLog) error
	// SubmissionActivity returns the activity of a submission, oldest first.
	SubmissionActivity(ctx context.Context, id domain.SubmissionID) ([]domain.ActivityLog, error)
	// RecentActivity returns the latest entries across all submissions, newest first.
	RecentActivity(ctx context.Context, limit uint) ([]domain.ActivityLog, error)
}

// NoteStorage persists internal reviewer notes.
type NoteStorage interface {
	StoreNote(ctx context.Context, note domain.ReviewNote) (*domain.ReviewNote, error)
	// SubmissionNotes returns the notes of a submission, oldest first.
	SubmissionNotes(ctx context.Context, id domain.SubmissionID) ([]domain.ReviewNote, error)
}

// GradeStorage persists AI grades.
type GradeStorage interface {
	StoreGrade(ctx context.Context, grade domain.AIGrade) (*domain.AIGrade, error)
	// SubmissionGrades returns the grades of a submission, newest first.
	SubmissionGrades(ctx context.Context, id domain.SubmissionID) ([]domain.AIGrade, error)
}
