package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"rightfit/internal/grading"
	"rightfit/internal/notify"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const paymentSucceeded = "succeeded"

func (s *service) SubmitIntake(ctx context.Context, req IntakeRequest) (*IntakeResult, error) {
	sub, err := s.validateIntake(req)
	if err != nil {
		return nil, err
	}

	var (
		payment *domain.Payment
		settled bool
	)
	if sub.PaymentIntentID != "" {
		payment, settled, err = s.checkPayment(ctx, sub)
		if err != nil {
			return nil, err
		}
		sub.PaymentStatus = payment.Status
	}

	if req.CVFile != nil {
		if err := s.storeCV(ctx, &sub, req.CVFile); err != nil {
			return nil, err
		}
	}

	var stored *domain.Submission
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err = tx.StoreSubmission(ctx, sub)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return serrors.With(serrors.ErrConflict, "this payment was already used for another order")
			}

			return fmt.Errorf("could not store submission: %w", err)
		}

		logs := []domain.ActivityLog{{
			SubmissionID: stored.ID,
			Actor:        stored.Email,
			Action:       domain.ActivitySubmitted,
			Details:      fmt.Sprintf("%s package", stored.Package),
		}}
		if payment != nil {
			if _, err := tx.UpdatePaymentByProviderID(ctx, payment.ProviderID, storage.PaymentUpdates{
				SubmissionID: &stored.ID,
			}); err != nil {
				return fmt.Errorf("could not link payment: %w", err)
			}
			if stored.PaymentStatus == domain.PaymentStatusPaid {
				logs = append(logs, domain.ActivityLog{
					SubmissionID: stored.ID,
					Actor:        domain.ActorSystem,
					Action:       domain.ActivityPaymentPaid,
					Details:      notify.Data{AmountCents: stored.AmountCents, Currency: stored.Currency}.Amount(),
				})
			}
		}
		if err := tx.StoreActivity(ctx, logs...); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}
		if err := tx.MarkLeadsConverted(ctx, stored.Email); err != nil {
			return fmt.Errorf("could not convert leads: %w", err)
		}

		return s.enqueueIntakeJobs(ctx, tx, stored, settled)
	}); err != nil {
		s.discardCV(ctx, sub.CVFileKey)

		return nil, fmt.Errorf("could not submit intake: %w", err)
	}

	s.metrics.SubmissionStored(ctx, string(stored.Package))
	logger.Info(ctx, "intake submitted",
		zap.Stringer("submission", stored.ID),
		zap.String("package", string(stored.Package)),
		zap.String("paymentStatus", string(stored.PaymentStatus)))

	return &IntakeResult{
		Submission: stored,
		StatusURL:  s.tokens.StatusURL(s.options.PublicURL, stored.ID, stored.Email),
		Token:      s.tokens.Token(stored.ID, stored.Email),
	}, nil
}

// enqueueIntakeJobs queues the emails and grade job of a new order. settled
// is true when the intake itself saw the payment succeed, in which case no
// webhook will send the receipt.
func (s *service) enqueueIntakeJobs(ctx context.Context, tx storage.AllStorage, sub *domain.Submission, settled bool) error {
	data := s.emailData(sub)
	if err := notify.Enqueue(ctx, tx, notify.JobArgs{
		Template: notify.TemplateOrderConfirmation,
		To:       sub.Email,
		Data:     data,
		Key:      "confirmation:" + sub.ID.String(),
	}); err != nil {
		return err
	}
	if s.options.AdminEmail != "" {
		if err := notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplateAdminNewOrder,
			To:       s.options.AdminEmail,
			Data:     data,
			Key:      "admin-new-order:" + sub.ID.String(),
		}); err != nil {
			return err
		}
	}
	if settled {
		if err := notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplatePaymentReceipt,
			To:       sub.Email,
			Data:     data,
			Key:      "receipt:" + sub.PaymentIntentID,
		}); err != nil {
			return err
		}
	}
	if sub.PaymentStatus == domain.PaymentStatusPaid {
		if _, err := tx.AddJob(ctx, grading.JobArgs{SubmissionID: sub.ID}, nil); err != nil {
			return fmt.Errorf("could not enqueue grade job: %w", err)
		}
	}

	return nil
}

// validateIntake checks the form and builds the submission to store.
func (s *service) validateIntake(req IntakeRequest) (domain.Submission, error) {
	var missing []string
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		missing = append(missing, "fullName")
	}
	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		missing = append(missing, "email")
	}
	role := strings.TrimSpace(req.TargetRole)
	if role == "" {
		missing = append(missing, "targetRole")
	}
	if req.Package == "" {
		missing = append(missing, "package")
	}
	cvText := strings.TrimSpace(req.CVText)
	if req.CVFile == nil && cvText == "" {
		missing = append(missing, "cvFile or cvText")
	}
	if len(missing) > 0 {
		return domain.Submission{}, serrors.With(serrors.ErrBadRequest, "missing required fields: %s",
			strings.Join(missing, ", "))
	}
	if !domain.ValidEmail(email) {
		return domain.Submission{}, serrors.With(serrors.ErrBadRequest, "invalid email")
	}

	q, err := s.Quote(req.Package, req.AddOns)
	if err != nil {
		return domain.Submission{}, err
	}

	return domain.Submission{
		ID:              domain.NewSubmissionID(),
		FullName:        name,
		Email:           email,
		Phone:           strings.TrimSpace(req.Phone),
		TargetRole:      role,
		Industry:        strings.TrimSpace(req.Industry),
		ExperienceLevel: strings.TrimSpace(req.ExperienceLevel),
		CareerGoals:     strings.TrimSpace(req.CareerGoals),
		AdditionalNotes: strings.TrimSpace(req.AdditionalNotes),
		LinkedInURL:     strings.TrimSpace(req.LinkedInURL),
		Package:         q.Package,
		AddOns:          q.AddOns,
		Status:          domain.SubmissionStatusPending,
		PaymentStatus:   domain.PaymentStatusUnpaid,
		PaymentIntentID: strings.TrimSpace(req.PaymentIntentID),
		AmountCents:     q.TotalCents,
		Currency:        q.Currency,
		CVText:          cvText,
	}, nil
}

// checkPayment makes sure the referenced intent was created for this email
// and amount and is not linked to another order. The provider is asked for
// the current intent state in case the webhook has not arrived yet; settled
// reports whether that refresh moved the payment to paid.
func (s *service) checkPayment(ctx context.Context, sub domain.Submission) (payment *domain.Payment, settled bool, err error) {
	payment, err = s.storage.PaymentByProviderID(ctx, sub.PaymentIntentID)
	if err != nil {
		return nil, false, fmt.Errorf("could not get payment: %w", err)
	}
	if payment == nil {
		return nil, false, serrors.With(serrors.ErrBadRequest, "unknown payment intent")
	}
	if domain.NormalizeEmail(payment.Email) != sub.Email || payment.AmountCents != sub.AmountCents {
		return nil, false, serrors.With(serrors.ErrBadRequest, "payment does not match this order")
	}
	if !payment.SubmissionID.IsZero() {
		return nil, false, serrors.With(serrors.ErrConflict, "this payment was already used for another order")
	}

	switch payment.Status {
	case domain.PaymentStatusPending, domain.PaymentStatusFailed:
		intent, err := s.payments.Intent(ctx, payment.ProviderID)
		if err != nil {
			logger.Warn(ctx, "could not refresh payment intent", zap.String("intent", payment.ProviderID), zap.Error(err))

			break
		}
		if intent.Status == paymentSucceeded {
			paid := domain.PaymentStatusPaid
			updated, err := s.storage.UpdatePaymentByProviderID(ctx, payment.ProviderID, storage.PaymentUpdates{Status: &paid})
			if err != nil {
				return nil, false, fmt.Errorf("could not update payment: %w", err)
			}
			payment = updated
			settled = true
		}
	case domain.PaymentStatusRefunded:
		return nil, false, serrors.With(serrors.ErrConflict, "this payment was refunded")
	}

	return payment, settled, nil
}

// storeCV validates and uploads the CV file. Plain-text uploads also fill
// CVText when the form did not include it.
func (s *service) storeCV(ctx context.Context, sub *domain.Submission, up *Upload) error {
	data, err := io.ReadAll(io.LimitReader(up.Body, s.options.MaxUploadBytes+1))
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "could not read uploaded file")
	}
	contentType, err := blob.ValidateUpload(up.Name, int64(len(data)), s.options.MaxUploadBytes)
	if err != nil {
		return err
	}

	name := blob.SanitizeName(up.Name)
	key := blob.Key(blob.PrefixCV, sub.ID, name)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return fmt.Errorf("could not store CV file: %w", err)
	}

	sub.CVFileKey = key
	sub.CVFileName = name
	sub.CVContentType = contentType
	if sub.CVText == "" && contentType == "text/plain" && utf8.Valid(data) {
		sub.CVText = strings.TrimSpace(string(data))
	}

	return nil
}

func (s *service) discardCV(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logger.Warn(ctx, "could not remove orphaned CV file", zap.String("key", key), zap.Error(err))
	}
}
