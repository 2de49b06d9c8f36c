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
	submissionsTable = "submissions"
)

func (p *PgSQL) StoreSubmission(ctx context.Context, submission domain.Submission) (*domain.Submission, error) {
	var row PgSubmission
	if err := row.FromDomain(submission); err != nil {
		return nil, err
	}

	var result PgSubmission
	if _, err := p.Builder.Insert(submissionsTable).
		Rows(row).
		Returning(&PgSubmission{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, wrapErr(err, "could not store submission into pg")
	}

	return result.ToDomain()
}

// SubmissionByID returns a submission by its ID, excluding soft-deleted rows.
func (p *PgSQL) SubmissionByID(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	return p.submissionWhere(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) SubmissionByPaymentIntent(ctx context.Context, intentID string) (*domain.Submission, error) {
	return p.submissionWhere(ctx, goqu.I("payment_intent_id").Eq(intentID))
}

func (p *PgSQL) submissionWhere(ctx context.Context, exp goqu.Expression) (*domain.Submission, error) {
	var row PgSubmission
	found, err := p.Builder.From(submissionsTable).
		Where(exp, goqu.I("deleted_at").IsNull()).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch submission: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UpdateSubmission sets the provided fields and updated_at, returning the
// updated row or nil when the submission does not exist.
func (p *PgSQL) UpdateSubmission(ctx context.Context,
	id domain.SubmissionID,
	updates storage.SubmissionUpdates) (*domain.Submission, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Status != nil {
		rec["status"] = string(*updates.Status)
	}
	if updates.PaymentStatus != nil {
		rec["payment_status"] = string(*updates.PaymentStatus)
	}
	if updates.PaymentIntentID != nil {
		if *updates.PaymentIntentID == "" {
			rec["payment_intent_id"] = goqu.L("NULL")
		} else {
			rec["payment_intent_id"] = *updates.PaymentIntentID
		}
	}
	if updates.AssignedTo != nil {
		rec["assigned_to"] = *updates.AssignedTo
	}
	if updates.DeliveredKey != nil {
		rec["delivered_file_key"] = *updates.DeliveredKey
		rec["delivered_at"] = goqu.L("CURRENT_TIMESTAMP")
	}
	if updates.DeliveredName != nil {
		rec["delivered_file_name"] = *updates.DeliveredName
	}

	var row PgSubmission
	found, err := p.Builder.Update(submissionsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgSubmission{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, wrapErr(err, "could not update submission in pg")
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteSubmission performs a soft delete by setting deleted_at timestamp,
// returning the deleted record.
func (p *PgSQL) DeleteSubmission(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	var row PgSubmission
	found, err := p.Builder.Update(submissionsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgSubmission{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete submission in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// ListSubmissions returns submissions filtered by status and free-text query,
// ordered by created_at DESC, id DESC, with keyset pagination on created_at.
func (p *PgSQL) ListSubmissions(ctx context.Context, filter storage.SubmissionFilter) (storage.SubmissionPage, error) {
	w := []goqu.Expression{
		goqu.I("deleted_at").IsNull(),
	}
	if filter.Status != "" {
		w = append(w, goqu.I("status").Eq(string(filter.Status)))
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		w = append(w, goqu.Or(
			goqu.I("full_name").ILike(pattern),
			goqu.I("email").ILike(pattern),
		))
	}
	if !filter.Cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(filter.Cursor))
	}

	// fetch one extra to determine if there is a next page
	ds := p.Builder.From(submissionsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(filter.Limit + 1)

	var rows []PgSubmission
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.SubmissionPage{}, fmt.Errorf("could not list submissions from pg: %w", err)
	}

	page := storage.SubmissionPage{}
	if uint(len(rows)) > filter.Limit {
		rows = rows[:filter.Limit]
		next := rows[len(rows)-1].CreatedAt
		page.NextCursor = &next
	}

	submissions, err := pgSubmissionsToDomain(rows)
	if err != nil {
		return storage.SubmissionPage{}, err
	}
	page.Submissions = submissions

	return page, nil
}

func (p *PgSQL) SubmissionCounts(ctx context.Context) (map[domain.SubmissionStatus]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := p.Builder.From(submissionsTable).
		Select(goqu.I("status"), goqu.COUNT("*").As("count")).
		Where(goqu.I("deleted_at").IsNull()).
		GroupBy(goqu.I("status")).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not count submissions in pg: %w", err)
	}

	counts := make(map[domain.SubmissionStatus]int64, len(domain.SubmissionStatuses))
	for _, s := range domain.SubmissionStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[domain.SubmissionStatus(row.Status)] = row.Count
	}

	return counts, nil
}
