// Package admin implements the back office: order management, notes,
// delivery, refunds, leads and dashboard statistics.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"rightfit/internal/config"
	"rightfit/internal/grading"
	"rightfit/internal/notify"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/ordertoken"
	"rightfit/pkg/payments"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"
)

// FileKind selects which file of a submission to download.
type FileKind string

const (
	FileCV        FileKind = "cv"
	FileDelivered FileKind = "delivered"
)

// Options configure the admin service.
type Options struct {
	// PublicURL is the website base URL used in order-status links.
	PublicURL string
	// MaxUploadBytes caps delivered files.
	MaxUploadBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		PublicURL:      strings.TrimRight(cfg.PublicURL, "/"),
		MaxUploadBytes: cfg.Blob.MaxUploadBytes,
	}
}

// SubmissionDetail is a submission with everything recorded about it.
type SubmissionDetail struct {
	Submission *domain.Submission   `json:"submission"`
	Notes      []domain.ReviewNote  `json:"notes"`
	Activity   []domain.ActivityLog `json:"activity"`
	Grades     []domain.AIGrade     `json:"grades"`
	Payments   []domain.Payment     `json:"payments"`
	StatusURL  string               `json:"statusUrl"`
}

// SubmissionPatch changes the fulfilment state of a submission. Nil fields
// are left untouched.
type SubmissionPatch struct {
	Status     *domain.SubmissionStatus `json:"status"`
	AssignedTo *string                  `json:"assignedTo"`
}

// Upload is a file sent by an admin.
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

// Stats backs the dashboard. PaidCents excludes refunded payments, GrossCents
// includes them.
type Stats struct {
	Submissions   map[domain.SubmissionStatus]int64 `json:"submissions"`
	Total         int64                             `json:"total"`
	PaidCents     int64                             `json:"paidCents"`
	PaidCount     int64                             `json:"paidCount"`
	RefundedCents int64                             `json:"refundedCents"`
	RefundedCount int64                             `json:"refundedCount"`
	GrossCents    int64                             `json:"grossCents"`
	Leads         int64                             `json:"leads"`
}

//go:generate mockgen -package mockadmin -source=admin.go -destination=mock/mockadmin.go Service
type Service interface {
	// ListSubmissions returns a page of non-deleted submissions, newest first.
	ListSubmissions(ctx context.Context, filter storage.SubmissionFilter) (storage.SubmissionPage, error)
	// Submission returns a submission with its notes, activity, grades and payments.
	Submission(ctx context.Context, id domain.SubmissionID) (*SubmissionDetail, error)
	// UpdateSubmission applies a patch. Status changes must follow the
	// allowed transitions and notify the customer.
	UpdateSubmission(ctx context.Context, id domain.SubmissionID, actor string, patch SubmissionPatch) (*domain.Submission, error)
	// DeleteSubmission soft-deletes a submission.
	DeleteSubmission(ctx context.Context, id domain.SubmissionID, actor string) error
	// AddNote stores an internal review note.
	AddNote(ctx context.Context, id domain.SubmissionID, author, body string) (*domain.ReviewNote, error)
	// Deliver stores the rewritten CV, marks the order delivered and emails the customer.
	Deliver(ctx context.Context, id domain.SubmissionID, actor string, file Upload) (*domain.Submission, error)
	// Refund refunds the order's payment with the provider and marks it refunded.
	Refund(ctx context.Context, id domain.SubmissionID, actor, reason string) (*domain.Submission, error)
	// Regrade queues a new AI grade of the submission's CV.
	Regrade(ctx context.Context, id domain.SubmissionID, actor string) error
	// ListLeads returns a page of leads, newest first.
	ListLeads(ctx context.Context, filter storage.LeadFilter) (storage.LeadPage, error)
	// RecentActivity returns the latest activity across all submissions.
	RecentActivity(ctx context.Context, limit uint) ([]domain.ActivityLog, error)
	// Stats aggregates counts and revenue.
	Stats(ctx context.Context) (*Stats, error)
	// File opens the uploaded or delivered CV of a submission and returns it
	// with its file name. Callers must close the object.
	File(ctx context.Context, id domain.SubmissionID, kind FileKind) (*blob.Object, string, error)
}

type service struct {
	options  Options
	storage  storage.Storage
	payments payments.Provider
	blobs    blob.Store
	tokens   *ordertoken.Signer
}

// New creates an admin Service.
func New(options Options,
	storage storage.Storage,
	provider payments.Provider,
	blobs blob.Store,
	tokens *ordertoken.Signer) Service {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = blob.DefaultMaxSize
	}

	return &service{
		options:  options,
		storage:  storage,
		payments: provider,
		blobs:    blobs,
		tokens:   tokens,
	}
}

func (s *service) statusURL(sub *domain.Submission) string {
	return s.tokens.StatusURL(s.options.PublicURL, sub.ID, sub.Email)
}

// submission loads a submission through st or fails with ErrNotFound.
func submission(ctx context.Context, st storage.SubmissionStorage, id domain.SubmissionID) (*domain.Submission, error) {
	sub, err := st.SubmissionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get submission: %w", err)
	}
	if sub == nil {
		return nil, serrors.With(serrors.ErrNotFound, "submission not found")
	}

	return sub, nil
}

func (s *service) ListSubmissions(ctx context.Context, filter storage.SubmissionFilter) (storage.SubmissionPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return storage.SubmissionPage{}, serrors.With(serrors.ErrBadRequest, "unknown status %q", filter.Status)
	}

	page, err := s.storage.ListSubmissions(ctx, filter)
	if err != nil {
		return storage.SubmissionPage{}, fmt.Errorf("could not list submissions: %w", err)
	}

	return page, nil
}

func (s *service) Submission(ctx context.Context, id domain.SubmissionID) (*SubmissionDetail, error) {
	sub, err := submission(ctx, s.storage, id)
	if err != nil {
		return nil, err
	}

	out := &SubmissionDetail{Submission: sub, StatusURL: s.statusURL(sub)}
	if out.Notes, err = s.storage.SubmissionNotes(ctx, id); err != nil {
		return nil, fmt.Errorf("could not get notes: %w", err)
	}
	if out.Activity, err = s.storage.SubmissionActivity(ctx, id); err != nil {
		return nil, fmt.Errorf("could not get activity: %w", err)
	}
	if out.Grades, err = s.storage.SubmissionGrades(ctx, id); err != nil {
		return nil, fmt.Errorf("could not get grades: %w", err)
	}
	if out.Payments, err = s.storage.SubmissionPayments(ctx, id); err != nil {
		return nil, fmt.Errorf("could not get payments: %w", err)
	}

	return out, nil
}

func (s *service) UpdateSubmission(ctx context.Context,
	id domain.SubmissionID,
	actor string,
	patch SubmissionPatch) (*domain.Submission, error) {
	if patch.Status == nil && patch.AssignedTo == nil {
		return nil, serrors.With(serrors.ErrBadRequest, "nothing to update")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown status %q", *patch.Status)
	}
	if patch.Status != nil && *patch.Status == domain.SubmissionStatusRefunded {
		return nil, serrors.With(serrors.ErrBadRequest, "use the refund action to refund an order")
	}

	var updated *domain.Submission
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		sub, err := submission(ctx, tx, id)
		if err != nil {
			return err
		}

		var updates storage.SubmissionUpdates
		var logs []domain.ActivityLog
		statusChanged := false
		if patch.Status != nil && *patch.Status != sub.Status {
			if !sub.Status.CanTransitionTo(*patch.Status) {
				return serrors.With(serrors.ErrConflict, "cannot move from %s to %s", sub.Status, *patch.Status)
			}
			updates.Status = patch.Status
			statusChanged = true
			logs = append(logs, domain.ActivityLog{
				SubmissionID: id,
				Actor:        actor,
				Action:       domain.ActivityStatusChanged,
				Details:      fmt.Sprintf("%s → %s", sub.Status, *patch.Status),
			})
		}
		if patch.AssignedTo != nil {
			assignee := strings.TrimSpace(*patch.AssignedTo)
			if assignee != sub.AssignedTo {
				updates.AssignedTo = &assignee
				details := "unassigned"
				if assignee != "" {
					details = "assigned to " + assignee
				}
				logs = append(logs, domain.ActivityLog{
					SubmissionID: id,
					Actor:        actor,
					Action:       domain.ActivityAssigned,
					Details:      details,
				})
			}
		}
		if len(logs) == 0 {
			updated = sub

			return nil
		}

		if updated, err = tx.UpdateSubmission(ctx, id, updates); err != nil {
			return fmt.Errorf("could not update submission: %w", err)
		}
		if err := tx.StoreActivity(ctx, logs...); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}
		if !statusChanged {
			return nil
		}

		return notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplateStatusUpdate,
			To:       updated.Email,
			Data:     notify.OrderData(updated, s.statusURL(updated)),
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *service) DeleteSubmission(ctx context.Context, id domain.SubmissionID, actor string) error {
	return s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		sub, err := tx.DeleteSubmission(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete submission: %w", err)
		}
		if sub == nil {
			return serrors.With(serrors.ErrNotFound, "submission not found")
		}

		if err := tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: id,
			Actor:        actor,
			Action:       domain.ActivityDeleted,
		}); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}

		return nil
	})
}

func (s *service) AddNote(ctx context.Context, id domain.SubmissionID, author, body string) (*domain.ReviewNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "note is empty")
	}

	var note *domain.ReviewNote
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		if _, err := submission(ctx, tx, id); err != nil {
			return err
		}

		var err error
		note, err = tx.StoreNote(ctx, domain.ReviewNote{SubmissionID: id, Author: author, Body: body})
		if err != nil {
			return fmt.Errorf("could not store note: %w", err)
		}

		if err := tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: id,
			Actor:        author,
			Action:       domain.ActivityNoteAdded,
		}); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (s *service) Regrade(ctx context.Context, id domain.SubmissionID, actor string) error {
	return s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		sub, err := submission(ctx, tx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(sub.CVText) == "" {
			return serrors.With(serrors.ErrConflict, "submission has no CV text to grade")
		}

		ok, err := tx.AddJob(ctx, grading.JobArgs{SubmissionID: id}, nil)
		if errors.Is(err, storage.ErrNoJobRunner) {
			return serrors.With(serrors.ErrUnavailable, "background jobs are not running")
		}
		if err != nil {
			return fmt.Errorf("could not enqueue grade job: %w", err)
		}
		if !ok {
			return serrors.With(serrors.ErrConflict, "a grade is already queued for this submission")
		}

		return nil
	})
}

func (s *service) ListLeads(ctx context.Context, filter storage.LeadFilter) (storage.LeadPage, error) {
	if filter.Source != "" && !filter.Source.Valid() {
		return storage.LeadPage{}, serrors.With(serrors.ErrBadRequest, "unknown lead source %q", filter.Source)
	}

	page, err := s.storage.ListLeads(ctx, filter)
	if err != nil {
		return storage.LeadPage{}, fmt.Errorf("could not list leads: %w", err)
	}

	return page, nil
}

func (s *service) RecentActivity(ctx context.Context, limit uint) ([]domain.ActivityLog, error) {
	if limit == 0 || limit > 200 {
		limit = 50
	}

	logs, err := s.storage.RecentActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not get activity: %w", err)
	}

	return logs, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.storage.SubmissionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not count submissions: %w", err)
	}
	revenue, err := s.storage.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not sum revenue: %w", err)
	}
	leads, err := s.storage.LeadCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not count leads: %w", err)
	}

	out := &Stats{
		Submissions:   make(map[domain.SubmissionStatus]int64, len(domain.SubmissionStatuses)),
		PaidCents:     revenue.PaidCents,
		PaidCount:     revenue.PaidCount,
		RefundedCents: revenue.RefundedCents,
		RefundedCount: revenue.RefundedCount,
		GrossCents:    revenue.PaidCents + revenue.RefundedCents,
		Leads:         leads,
	}
	for _, status := range domain.SubmissionStatuses {
		out.Submissions[status] = counts[status]
		out.Total += counts[status]
	}

	return out, nil
}

func (s *service) File(ctx context.Context, id domain.SubmissionID, kind FileKind) (*blob.Object, string, error) {
	sub, err := submission(ctx, s.storage, id)
	if err != nil {
		return nil, "", err
	}

	var key, name string
	switch kind {
	case FileCV:
		key, name = sub.CVFileKey, sub.CVFileName
	case FileDelivered:
		key, name = sub.DeliveredKey, sub.DeliveredName
	default:
		return nil, "", serrors.With(serrors.ErrBadRequest, "unknown file kind %q", kind)
	}
	if key == "" {
		return nil, "", serrors.With(serrors.ErrNotFound, "no %s file for this submission", kind)
	}

	obj, err := s.blobs.Open(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, "", serrors.With(serrors.ErrNotFound, "%s file not found", kind)
	}
	if err != nil {
		return nil, "", fmt.Errorf("could not open %s file: %w", kind, err)
	}

	return obj, name, nil
}
