package intake

import (
	"context"
	"fmt"
	"rightfit/internal/grading"
	"rightfit/internal/notify"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/payments"
	"rightfit/pkg/storage"

	"go.uber.org/zap"
)

var eventStatus = map[payments.EventKind]domain.PaymentStatus{ //nolint: gochecknoglobals
	payments.EventSucceeded: domain.PaymentStatusPaid,
	payments.EventFailed:    domain.PaymentStatusFailed,
	payments.EventRefunded:  domain.PaymentStatusRefunded,
}

var eventAction = map[payments.EventKind]domain.ActivityAction{ //nolint: gochecknoglobals
	payments.EventSucceeded: domain.ActivityPaymentPaid,
	payments.EventFailed:    domain.ActivityPaymentFailed,
	payments.EventRefunded:  domain.ActivityRefunded,
}

// canMovePayment reports whether a payment in status from may take status to.
// Refunds are final and a settled payment can only be refunded, so replayed
// or out-of-order events never move a payment backwards.
func canMovePayment(from, to domain.PaymentStatus) bool {
	switch from {
	case to, domain.PaymentStatusRefunded:
		return false
	case domain.PaymentStatusPaid:
		return to == domain.PaymentStatusRefunded
	default:
		return true
	}
}

func (s *service) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.payments.ParseEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("could not parse payment event: %w", err)
	}

	ctx = logger.WithFields(ctx, zap.String("event", ev.ID), zap.String("type", ev.Type), zap.String("intent", ev.IntentID))
	status, ok := eventStatus[ev.Kind]
	if !ok || ev.IntentID == "" {
		logger.Debug(ctx, "ignoring payment event")

		return nil
	}
	s.metrics.PaymentEvent(ctx, string(status))

	var applied bool
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		payment, err := tx.PaymentByProviderID(ctx, ev.IntentID)
		if err != nil {
			return fmt.Errorf("could not get payment: %w", err)
		}
		if payment == nil {
			payment, err = tx.StorePayment(ctx, domain.Payment{
				ProviderID:  ev.IntentID,
				AmountCents: ev.AmountCents,
				Currency:    ev.Currency,
				Status:      domain.PaymentStatusPending,
				Email:       domain.NormalizeEmail(ev.Email),
			})
			if err != nil {
				return fmt.Errorf("could not store payment: %w", err)
			}
		}
		if !canMovePayment(payment.Status, status) {
			return nil
		}

		updates := storage.PaymentUpdates{Status: &status}
		if ev.FailureMessage != "" {
			updates.FailureMessage = &ev.FailureMessage
		}
		if ev.RefundID != "" {
			updates.RefundID = &ev.RefundID
		}
		if payment, err = tx.UpdatePaymentByProviderID(ctx, ev.IntentID, updates); err != nil {
			return fmt.Errorf("could not update payment: %w", err)
		}
		applied = true

		sub, err := tx.SubmissionByPaymentIntent(ctx, ev.IntentID)
		if err != nil {
			return fmt.Errorf("could not get submission: %w", err)
		}
		if sub == nil {
			if status == domain.PaymentStatusPaid && payment.Email != "" {
				return notify.Enqueue(ctx, tx, notify.JobArgs{
					Template: notify.TemplatePaymentReceipt,
					To:       payment.Email,
					Data:     notify.Data{AmountCents: payment.AmountCents, Currency: payment.Currency},
					Key:      "receipt:" + ev.IntentID,
				})
			}

			return nil
		}

		return s.mirrorPayment(ctx, tx, sub, ev, status)
	}); err != nil {
		return fmt.Errorf("could not apply payment event: %w", err)
	}

	logger.Info(ctx, "payment event handled", zap.Bool("applied", applied))

	return nil
}

// mirrorPayment copies the payment status onto the linked submission and
// queues the follow-up work.
func (s *service) mirrorPayment(ctx context.Context,
	tx storage.AllStorage,
	sub *domain.Submission,
	ev payments.Event,
	status domain.PaymentStatus) error {
	updates := storage.SubmissionUpdates{PaymentStatus: &status}
	if status == domain.PaymentStatusRefunded && sub.Status.CanTransitionTo(domain.SubmissionStatusRefunded) {
		refunded := domain.SubmissionStatusRefunded
		updates.Status = &refunded
	}
	sub, err := tx.UpdateSubmission(ctx, sub.ID, updates)
	if err != nil {
		return fmt.Errorf("could not update submission: %w", err)
	}

	details := ev.FailureMessage
	if details == "" {
		details = notify.Data{AmountCents: ev.AmountCents, Currency: ev.Currency}.Amount()
	}
	if err := tx.StoreActivity(ctx, domain.ActivityLog{
		SubmissionID: sub.ID,
		Actor:        domain.ActorSystem,
		Action:       eventAction[ev.Kind],
		Details:      details,
	}); err != nil {
		return fmt.Errorf("could not store activity: %w", err)
	}

	data := s.emailData(sub)
	switch status {
	case domain.PaymentStatusPaid:
		if err := notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplatePaymentReceipt,
			To:       sub.Email,
			Data:     data,
			Key:      "receipt:" + ev.IntentID,
		}); err != nil {
			return err
		}
		if _, err := tx.AddJob(ctx, grading.JobArgs{SubmissionID: sub.ID}, nil); err != nil {
			return fmt.Errorf("could not enqueue grade job: %w", err)
		}
	case domain.PaymentStatusRefunded:
		data.AmountCents = ev.AmountCents

		return notify.Enqueue(ctx, tx, notify.JobArgs{
			Template: notify.TemplateRefund,
			To:       sub.Email,
			Data:     data,
			Key:      "refund:" + ev.IntentID,
		})
	}

	return nil
}
