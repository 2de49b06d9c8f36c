package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"rightfit/internal/notify"
	"rightfit/pkg/blob"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"strings"

	"go.uber.org/zap"
)

func (s *service) Deliver(ctx context.Context,
	id domain.SubmissionID,
	actor string,
	file Upload) (*domain.Submission, error) {
	sub, err := submission(ctx, s.storage, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubmissionStatusRefunded {
		return nil, serrors.With(serrors.ErrConflict, "refunded orders cannot be delivered")
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, s.options.MaxUploadBytes+1))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read uploaded file")
	}
	contentType, err := blob.ValidateUpload(file.Name, int64(len(data)), s.options.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	name := blob.SanitizeName(file.Name)
	key := blob.Key(blob.PrefixDelivered, id, name)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("could not store delivered file: %w", err)
	}

	var updated *domain.Submission
	err = s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		current, err := submission(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.SubmissionStatusRefunded {
			return serrors.With(serrors.ErrConflict, "refunded orders cannot be delivered")
		}

		delivered := domain.SubmissionStatusDelivered
		updated, err = tx.UpdateSubmission(ctx, id, storage.SubmissionUpdates{
			Status:        &delivered,
			DeliveredKey:  &key,
			DeliveredName: &name,
		})
		if err != nil {
			return fmt.Errorf("could not update submission: %w", err)
		}
		if err := tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: id,
			Actor:        actor,
			Action:       domain.ActivityDelivered,
			Details:      name,
		}); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}

		return notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplateDelivery,
			To:       updated.Email,
			Data:     notify.OrderData(updated, s.statusURL(updated)),
		})
	})
	if err != nil {
		// an earlier delivery under the same name is still referenced
		if sub.DeliveredKey != key {
			if derr := s.blobs.Delete(ctx, key); derr != nil && !errors.Is(derr, blob.ErrNotFound) {
				logger.Warn(ctx, "could not remove orphaned delivered file", zap.String("key", key), zap.Error(derr))
			}
		}

		return nil, err
	}

	logger.Info(ctx, "order delivered", zap.Stringer("submission", id), zap.String("file", name))

	return updated, nil
}

func (s *service) Refund(ctx context.Context, id domain.SubmissionID, actor, reason string) (*domain.Submission, error) {
	sub, err := submission(ctx, s.storage, id)
	if err != nil {
		return nil, err
	}
	if sub.PaymentIntentID == "" {
		return nil, serrors.With(serrors.ErrConflict, "order has no payment to refund")
	}
	payment, err := s.storage.PaymentByProviderID(ctx, sub.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("could not get payment: %w", err)
	}
	if payment == nil {
		return nil, serrors.With(serrors.ErrConflict, "order has no payment to refund")
	}
	switch payment.Status {
	case domain.PaymentStatusPaid:
	case domain.PaymentStatusRefunded:
		return nil, serrors.With(serrors.ErrConflict, "order was already refunded")
	default:
		return nil, serrors.With(serrors.ErrConflict, "only paid orders can be refunded, payment is %s", payment.Status)
	}

	reason = strings.TrimSpace(reason)
	refund, err := s.payments.Refund(ctx, payment.ProviderID, reason)
	if err != nil {
		return nil, fmt.Errorf("could not refund payment: %w", err)
	}

	var updated *domain.Submission
	err = s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		paymentRefunded := domain.PaymentStatusRefunded
		if _, err := tx.UpdatePaymentByProviderID(ctx, payment.ProviderID, storage.PaymentUpdates{
			Status:   &paymentRefunded,
			RefundID: &refund.ID,
		}); err != nil {
			return fmt.Errorf("could not update payment: %w", err)
		}

		refunded := domain.SubmissionStatusRefunded
		updated, err = tx.UpdateSubmission(ctx, id, storage.SubmissionUpdates{
			Status:        &refunded,
			PaymentStatus: &paymentRefunded,
		})
		if err != nil {
			return fmt.Errorf("could not update submission: %w", err)
		}
		if updated == nil {
			return serrors.With(serrors.ErrNotFound, "submission not found")
		}

		details := notify.Data{AmountCents: payment.AmountCents, Currency: payment.Currency}.Amount()
		if reason != "" {
			details += ": " + reason
		}
		if err := tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: id,
			Actor:        actor,
			Action:       domain.ActivityRefunded,
			Details:      details,
		}); err != nil {
			return fmt.Errorf("could not store activity: %w", err)
		}

		data := notify.OrderData(updated, s.statusURL(updated))
		data.AmountCents = payment.AmountCents
		data.Reason = reason

		return notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplateRefund,
			To:       updated.Email,
			Data:     data,
			Key:      "refund:" + payment.ProviderID,
		})
	})
	if err != nil {
		// the provider already moved the money; the webhook will reconcile
		logger.Error(ctx, "refund issued but not recorded",
			zap.Stringer("submission", id), zap.String("refund", refund.ID), zap.Error(err))

		return nil, err
	}

	logger.Info(ctx, "order refunded", zap.Stringer("submission", id), zap.String("refund", refund.ID))

	return updated, nil
}
