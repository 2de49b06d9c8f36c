package postgres

import (
	"context"
	"fmt"
	"rightfit/pkg/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	activityTable = "activity_logs"
	notesTable    = "review_notes"
	gradesTable   = "ai_grades"
)

func (p *PgSQL) StoreActivity(ctx context.Context, logs ...domain.ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}

	rows := make([]PgActivity, len(logs))
	for i := range logs {
		rows[i].FromDomain(logs[i])
	}

	if _, err := p.Builder.Insert(activityTable).Rows(rows).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store activity into pg: %w", err)
	}

	return nil
}

func (p *PgSQL) SubmissionActivity(ctx context.Context, id domain.SubmissionID) ([]domain.ActivityLog, error) {
	var rows []PgActivity
	if err := p.Builder.From(activityTable).
		Where(goqu.I("submission_id").Eq(uuid.UUID(id))).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch submission activity from pg: %w", err)
	}

	return pgActivityToDomain(rows), nil
}

func (p *PgSQL) RecentActivity(ctx context.Context, limit uint) ([]domain.ActivityLog, error) {
	var rows []PgActivity
	if err := p.Builder.From(activityTable).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch recent activity from pg: %w", err)
	}

	return pgActivityToDomain(rows), nil
}

func pgActivityToDomain(rows []PgActivity) []domain.ActivityLog {
	out := make([]domain.ActivityLog, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out
}

func (p *PgSQL) StoreNote(ctx context.Context, note domain.ReviewNote) (*domain.ReviewNote, error) {
	var row PgNote
	row.FromDomain(note)

	var result PgNote
	if _, err := p.Builder.Insert(notesTable).
		Rows(row).
		Returning(&PgNote{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store note into pg: %w", err)
	}

	n := result.ToDomain()

	return &n, nil
}

func (p *PgSQL) SubmissionNotes(ctx context.Context, id domain.SubmissionID) ([]domain.ReviewNote, error) {
	var rows []PgNote
	if err := p.Builder.From(notesTable).
		Where(goqu.I("submission_id").Eq(uuid.UUID(id))).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch submission notes from pg: %w", err)
	}

	out := make([]domain.ReviewNote, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

func (p *PgSQL) StoreGrade(ctx context.Context, grade domain.AIGrade) (*domain.AIGrade, error) {
	var row PgGrade
	if err := row.FromDomain(grade); err != nil {
		return nil, err
	}

	var result PgGrade
	if _, err := p.Builder.Insert(gradesTable).
		Rows(row).
		Returning(&PgGrade{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store grade into pg: %w", err)
	}

	return result.ToDomain()
}

func (p *PgSQL) SubmissionGrades(ctx context.Context, id domain.SubmissionID) ([]domain.AIGrade, error) {
	var rows []PgGrade
	if err := p.Builder.From(gradesTable).
		Where(goqu.I("submission_id").Eq(uuid.UUID(id))).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch submission grades from pg: %w", err)
	}

	out := make([]domain.AIGrade, 0, len(rows))
	for _, row := range rows {
		g, err := row.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *g)
	}

	return out, nil
}
