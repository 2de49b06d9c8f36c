package intake

import (
	"context"
	"errors"
	"fmt"
	"rightfit/internal/notify"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"

	"go.uber.org/zap"
)

// customerActions are the activity entries shown on the order-status page.
var customerActions = map[domain.ActivityAction]bool{ //nolint: gochecknoglobals
	domain.ActivitySubmitted:     true,
	domain.ActivityPaymentPaid:   true,
	domain.ActivityPaymentFailed: true,
	domain.ActivityStatusChanged: true,
	domain.ActivityGraded:        true,
	domain.ActivityDelivered:     true,
	domain.ActivityRefunded:      true,
}

// authorizedSubmission resolves a tokenized link. Every failure looks the
// same to the caller.
func (s *service) authorizedSubmission(ctx context.Context,
	id domain.SubmissionID,
	email, token string) (*domain.Submission, error) {
	if id.IsZero() || email == "" || token == "" || !s.tokens.Verify(id, email, token) {
		return nil, serrors.With(serrors.ErrUnauthorized, "invalid order link")
	}

	sub, err := s.storage.SubmissionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get submission: %w", err)
	}
	if sub == nil || sub.Email != domain.NormalizeEmail(email) {
		return nil, serrors.With(serrors.ErrNotFound, "order not found")
	}

	return sub, nil
}

func (s *service) OrderStatus(ctx context.Context, id domain.SubmissionID, email, token string) (*OrderStatus, error) {
	sub, err := s.authorizedSubmission(ctx, id, email, token)
	if err != nil {
		return nil, err
	}

	activity, err := s.storage.SubmissionActivity(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get activity: %w", err)
	}
	grades, err := s.storage.SubmissionGrades(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get grades: %w", err)
	}

	out := &OrderStatus{
		ID:                sub.ID,
		FullName:          sub.FullName,
		Status:            sub.Status,
		PaymentStatus:     sub.PaymentStatus,
		Package:           sub.Package,
		AddOns:            sub.AddOns,
		TargetRole:        sub.TargetRole,
		AmountCents:       sub.AmountCents,
		Currency:          sub.Currency,
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
		Timeline:          []TimelineEntry{},
		DeliveredFile:     sub.DeliveredKey != "",
		DeliveredFileName: sub.DeliveredName,
	}
	if !sub.DeliveredAt.IsZero() {
		at := sub.DeliveredAt
		out.DeliveredAt = &at
	}
	for _, a := range activity {
		if !customerActions[a.Action] {
			continue
		}
		entry := TimelineEntry{Action: a.Action, At: a.CreatedAt}
		if a.Action == domain.ActivityStatusChanged {
			entry.Details = a.Details
		}
		out.Timeline = append(out.Timeline, entry)
	}
	if len(grades) > 0 {
		g := grades[0]
		out.Grade = &GradeSummary{
			Overall:      g.Overall,
			Breakdown:    g.Breakdown,
			Summary:      g.Summary,
			Strengths:    g.Strengths,
			Improvements: g.Improvements,
			Demo:         g.Demo,
		}
	}

	return out, nil
}

func (s *service) DeliveredFile(ctx context.Context,
	id domain.SubmissionID,
	email, token string) (*blob.Object, string, error) {
	sub, err := s.authorizedSubmission(ctx, id, email, token)
	if err != nil {
		return nil, "", err
	}
	if sub.DeliveredKey == "" {
		return nil, "", serrors.With(serrors.ErrNotFound, "your rewritten CV is not ready yet")
	}

	obj, err := s.blobs.Open(ctx, sub.DeliveredKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, "", serrors.With(serrors.ErrNotFound, "delivered file not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("could not open delivered file: %w", err)
	}

	return obj, sub.DeliveredName, nil
}

func (s *service) ResendOrderLink(ctx context.Context, orderID, email string) error {
	email = domain.NormalizeEmail(email)
	if !domain.ValidEmail(email) {
		return serrors.With(serrors.ErrBadRequest, "a valid email is required")
	}

	id, err := domain.ParseSubmissionID(orderID)
	if err != nil {
		logger.Debug(ctx, "order link requested for malformed id")

		return nil
	}
	sub, err := s.storage.SubmissionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("could not get submission: %w", err)
	}
	if sub == nil || sub.Email != email {
		logger.Info(ctx, "order link requested for unknown order", zap.Stringer("submission", id))

		return nil
	}

	if err := notify.Enqueue(ctx, s.storage, notify.JobArgs{
		Template: notify.TemplateOrderLink,
		To:       sub.Email,
		Data:     s.emailData(sub),
	}); err != nil {
		return err
	}

	return nil
}
