package jsonfile

import (
	"context"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"

	"github.com/google/uuid"
)

func findPayment(c *collections, providerID string) int {
	for i := range c.Payments {
		if c.Payments[i].ProviderID == providerID {
			return i
		}
	}

	return -1
}

func (s *Store) StorePayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.write(func(c *collections) error {
		if findPayment(c, payment.ProviderID) >= 0 {
			return fmt.Errorf("payment %s: %w", payment.ProviderID, storage.ErrDuplicate)
		}
		if uuid.UUID(payment.ID) == uuid.Nil {
			payment.ID = domain.PaymentID(uuid.New())
		}
		payment.CreatedAt = s.timestamp()

		c.Payments = append(c.Payments, payment)
		out = &payment

		return nil
	})

	return out, err
}

func (s *Store) PaymentByProviderID(_ context.Context, providerID string) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.read(func(c *collections) error {
		if i := findPayment(c, providerID); i >= 0 {
			p := c.Payments[i]
			out = &p
		}

		return nil
	})

	return out, err
}

func (s *Store) UpdatePaymentByProviderID(_ context.Context,
	providerID string,
	updates storage.PaymentUpdates) (*domain.Payment, error) {
	var out *domain.Payment
	err := s.write(func(c *collections) error {
		i := findPayment(c, providerID)
		if i < 0 {
			return nil
		}

		p := c.Payments[i]
		if updates.Status != nil {
			p.Status = *updates.Status
		}
		if updates.SubmissionID != nil {
			p.SubmissionID = *updates.SubmissionID
		}
		if updates.RefundID != nil {
			p.RefundID = *updates.RefundID
		}
		if updates.FailureMessage != nil {
			p.FailureMessage = *updates.FailureMessage
		}
		p.UpdatedAt = s.timestamp()

		c.Payments[i] = p
		out = &p

		return nil
	})

	return out, err
}

func (s *Store) SubmissionPayments(_ context.Context, id domain.SubmissionID) ([]domain.Payment, error) {
	out := []domain.Payment{}
	err := s.read(func(c *collections) error {
		for _, p := range c.Payments {
			if p.SubmissionID == id {
				out = append(out, p)
			}
		}

		return nil
	})

	return out, err
}

func (s *Store) Revenue(_ context.Context) (storage.Revenue, error) {
	var rev storage.Revenue
	err := s.read(func(c *collections) error {
		for _, p := range c.Payments {
			switch p.Status {
			case domain.PaymentStatusPaid:
				rev.PaidCents += p.AmountCents
				rev.PaidCount++
			case domain.PaymentStatusRefunded:
				rev.RefundedCents += p.AmountCents
				rev.RefundedCount++
			default:
			}
		}

		return nil
	})

	return rev, err
}
