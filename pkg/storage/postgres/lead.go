package postgres

import (
	"context"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const (
	leadsTable = "leads"
)

// UpsertLead inserts a lead or refreshes name and step of the existing
// (email, source) row. Empty incoming values keep the stored ones.
func (p *PgSQL) UpsertLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error) {
	var row PgLead
	row.FromDomain(lead)

	var result PgLead
	if _, err := p.Builder.Insert(leadsTable).
		Rows(row).
		OnConflict(goqu.DoUpdate("email, source", goqu.Record{
			"name":       goqu.L("COALESCE(NULLIF(EXCLUDED.name, ''), leads.name)"),
			"step":       goqu.L("COALESCE(NULLIF(EXCLUDED.step, ''), leads.step)"),
			"converted":  goqu.L("leads.converted OR EXCLUDED.converted"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Returning(&PgLead{}).
		Executor().ScanStructContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not upsert lead into pg: %w", err)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) MarkLeadsConverted(ctx context.Context, email string) error {
	_, err := p.Builder.Update(leadsTable).
		Set(goqu.Record{
			"converted":  true,
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("email").Eq(email),
		goqu.I("converted").IsFalse(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not mark leads converted in pg: %w", err)
	}

	return nil
}

func (p *PgSQL) ListLeads(ctx context.Context, filter storage.LeadFilter) (storage.LeadPage, error) {
	var w []goqu.Expression
	if filter.Source != "" {
		w = append(w, goqu.I("source").Eq(string(filter.Source)))
	}
	if !filter.Cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(filter.Cursor))
	}

	var rows []PgLead
	if err := p.Builder.From(leadsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(filter.Limit+1).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.LeadPage{}, fmt.Errorf("could not list leads from pg: %w", err)
	}

	page := storage.LeadPage{}
	if uint(len(rows)) > filter.Limit {
		rows = rows[:filter.Limit]
		next := rows[len(rows)-1].CreatedAt
		page.NextCursor = &next
	}
	page.Leads = make([]domain.Lead, 0, len(rows))
	for i := range rows {
		page.Leads = append(page.Leads, *rows[i].ToDomain())
	}

	return page, nil
}

func (p *PgSQL) LeadCount(ctx context.Context) (int64, error) {
	count, err := p.Builder.From(leadsTable).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count leads in pg: %w", err)
	}

	return count, nil
}
