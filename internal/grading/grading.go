// Package grading grades CVs: free audits requested from the website and
// background grades of paid submissions.
package grading

import (
	"context"
	"errors"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/grader"
	"rightfit/pkg/logger"
	"rightfit/pkg/metrics"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// MinCVChars is the shortest CV text accepted for a free audit.
	MinCVChars = 200
	// MaxCVChars is the longest CV text accepted for a free audit.
	MaxCVChars = 50000
)

// Grade origins recorded in metrics.
const (
	OriginFreeAudit  = "free_audit"
	OriginSubmission = "submission"
)

// FreeAuditRequest is the input of GradeCV.
type FreeAuditRequest struct {
	CVText          string `json:"cvText"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	TargetRole      string `json:"targetRole"`
	Industry        string `json:"industry"`
	ExperienceLevel string `json:"experienceLevel"`
}

//go:generate mockgen -package mockgrading -source=grading.go -destination=mock/mockgrading.go Service
type Service interface {
	// GradeCV grades CV text synchronously for the free audit and stores the
	// grade. When an email is given a free_audit lead is captured.
	GradeCV(ctx context.Context, req FreeAuditRequest) (*domain.AIGrade, error)
	// GradeSubmission grades the CV of a stored submission and returns the
	// grade together with the provider's rate-limit status.
	GradeSubmission(ctx context.Context, id domain.SubmissionID) (*domain.AIGrade, grader.RateLimitStatus, error)
}

type service struct {
	storage storage.Storage
	client  grader.Client
	metrics *metrics.Business
}

// New creates a grading Service.
func New(storage storage.Storage, client grader.Client, m *metrics.Business) Service {
	if m == nil {
		m = metrics.Noop()
	}

	return &service{storage: storage, client: client, metrics: m}
}

func (s *service) GradeCV(ctx context.Context, req FreeAuditRequest) (*domain.AIGrade, error) {
	text := strings.TrimSpace(req.CVText)
	switch n := utf8.RuneCountInString(text); {
	case n < MinCVChars:
		return nil, serrors.With(serrors.ErrBadRequest, "CV text must be at least %d characters", MinCVChars)
	case n > MaxCVChars:
		return nil, serrors.With(serrors.ErrTooLarge, "CV text must be at most %d characters", MaxCVChars)
	}

	email := domain.NormalizeEmail(req.Email)
	if email != "" && !domain.ValidEmail(email) {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid email")
	}

	res, _, err := s.client.Grade(ctx, grader.Request{
		CVText:          text,
		TargetRole:      req.TargetRole,
		Industry:        req.Industry,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		return nil, gradeErr(err)
	}

	grade := res.Grade()
	grade.Email = email
	grade.TargetRole = strings.TrimSpace(req.TargetRole)

	var stored *domain.AIGrade
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err = tx.StoreGrade(ctx, *grade)
		if err != nil {
			return fmt.Errorf("could not store grade: %w", err)
		}
		if email == "" {
			return nil
		}
		if _, err := tx.UpsertLead(ctx, domain.Lead{
			Email:  email,
			Name:   strings.TrimSpace(req.Name),
			Source: domain.LeadSourceFreeAudit,
		}); err != nil {
			return fmt.Errorf("could not capture lead: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not save free audit: %w", err)
	}

	s.metrics.GradeProduced(ctx, OriginFreeAudit, stored.Demo)
	if email != "" {
		s.metrics.LeadCaptured(ctx, string(domain.LeadSourceFreeAudit))
	}

	return stored, nil
}

func (s *service) GradeSubmission(ctx context.Context,
	id domain.SubmissionID) (*domain.AIGrade, grader.RateLimitStatus, error) {
	sub, err := s.storage.SubmissionByID(ctx, id)
	if err != nil {
		return nil, grader.RateLimitStatus{}, fmt.Errorf("could not get submission: %w", err)
	}
	if sub == nil {
		return nil, grader.RateLimitStatus{}, serrors.With(serrors.ErrNotFound, "submission not found")
	}
	if strings.TrimSpace(sub.CVText) == "" {
		return nil, grader.RateLimitStatus{}, serrors.With(serrors.ErrConflict, "submission has no CV text to grade")
	}

	res, rl, err := s.client.Grade(ctx, grader.Request{
		CVText:          sub.CVText,
		TargetRole:      sub.TargetRole,
		Industry:        sub.Industry,
		ExperienceLevel: sub.ExperienceLevel,
	})
	if err != nil {
		return nil, rl, fmt.Errorf("could not grade submission: %w", err)
	}

	grade := res.Grade()
	grade.SubmissionID = sub.ID
	grade.Email = sub.Email
	grade.TargetRole = sub.TargetRole

	var stored *domain.AIGrade
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err = tx.StoreGrade(ctx, *grade)
		if err != nil {
			return fmt.Errorf("could not store grade: %w", err)
		}
		details := fmt.Sprintf("overall %d/100", stored.Overall)
		if stored.Demo {
			details += " (demo)"
		}

		return tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: sub.ID,
			Actor:        domain.ActorSystem,
			Action:       domain.ActivityGraded,
			Details:      details,
		})
	}); err != nil {
		return nil, rl, fmt.Errorf("could not save grade: %w", err)
	}

	s.metrics.GradeProduced(ctx, OriginSubmission, stored.Demo)
	logger.Info(ctx, "submission graded",
		zap.Stringer("submission", sub.ID),
		zap.Int("overall", stored.Overall),
		zap.Bool("demo", stored.Demo))

	return stored, rl, nil
}

// gradeErr hides provider failures from free-audit callers, keeping only
// the rate-limit signal.
func gradeErr(err error) error {
	if errors.Is(err, serrors.ErrRateLimited) {
		return serrors.Wrap(serrors.ErrRateLimited, err, "grading is busy, try again shortly")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return serrors.Wrap(serrors.ErrTimeout, err, "grading timed out")
	}

	return serrors.Wrap(serrors.ErrUnavailable, err, "grading is temporarily unavailable")
}
