package postgres

import (
	"context"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	paymentsTable = "payments"
)

func (p *PgSQL) StorePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	var row PgPayment
	row.FromDomain(payment)

	var result PgPayment
	if _, err := p.Builder.Insert(paymentsTable).
		Rows(row).
		Returning(&PgPayment{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, wrapErr(err, "could not store payment into pg")
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) PaymentByProviderID(ctx context.Context, providerID string) (*domain.Payment, error) {
	var row PgPayment
	found, err := p.Builder.From(paymentsTable).
		Where(goqu.I("provider_id").Eq(providerID)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch payment by provider id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UpdatePaymentByProviderID(ctx context.Context,
	providerID string,
	updates storage.PaymentUpdates) (*domain.Payment, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Status != nil {
		rec["status"] = string(*updates.Status)
	}
	if updates.SubmissionID != nil {
		rec["submission_id"] = nullUUID(uuid.UUID(*updates.SubmissionID))
	}
	if updates.RefundID != nil {
		rec["refund_id"] = *updates.RefundID
	}
	if updates.FailureMessage != nil {
		rec["failure_message"] = *updates.FailureMessage
	}

	var row PgPayment
	found, err := p.Builder.Update(paymentsTable).
		Set(rec).
		Where(goqu.I("provider_id").Eq(providerID)).
		Returning(&PgPayment{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update payment in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) SubmissionPayments(ctx context.Context, id domain.SubmissionID) ([]domain.Payment, error) {
	var rows []PgPayment
	if err := p.Builder.From(paymentsTable).
		Where(goqu.I("submission_id").Eq(uuid.UUID(id))).
		Order(goqu.I("created_at").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch submission payments from pg: %w", err)
	}

	out := make([]domain.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

// Revenue sums paid and refunded payments grouped by status.
func (p *PgSQL) Revenue(ctx context.Context) (storage.Revenue, error) {
	var rows []struct {
		Status string `db:"status"`
		Total  int64  `db:"total"`
		Count  int64  `db:"count"`
	}
	if err := p.Builder.From(paymentsTable).
		Select(
			goqu.I("status"),
			goqu.L("COALESCE(SUM(amount_cents), 0)::BIGINT").As("total"),
			goqu.COUNT("*").As("count"),
		).
		Where(goqu.I("status").In(string(domain.PaymentStatusPaid), string(domain.PaymentStatusRefunded))).
		GroupBy(goqu.I("status")).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.Revenue{}, fmt.Errorf("could not sum revenue in pg: %w", err)
	}

	var rev storage.Revenue
	for _, row := range rows {
		switch domain.PaymentStatus(row.Status) {
		case domain.PaymentStatusPaid:
			rev.PaidCents, rev.PaidCount = row.Total, row.Count
		case domain.PaymentStatusRefunded:
			rev.RefundedCents, rev.RefundedCount = row.Total, row.Count
		default:
		}
	}

	return rev, nil
}
