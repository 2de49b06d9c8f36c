package storage

import (
	"context"
	"rightfit/pkg/domain"
	"time"
)

// LeadFilter narrows ListLeads.
type LeadFilter struct {
	// Source, when non-empty, restricts results to that source.
	Source domain.LeadSource
	Cursor time.Time
	Limit  uint
}

// LeadPage is a page of leads ordered by created_at DESC.
type LeadPage struct {
	Leads      []domain.Lead
	NextCursor *time.Time
}

// LeadStorage persists captured leads. Leads are unique by (email, source).
type LeadStorage interface {
	// UpsertLead inserts a lead or, when (email, source) already exists,
	// updates its name and step. Empty name or step never overwrite stored
	// values. Returns the stored row.
	UpsertLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error)
	// MarkLeadsConverted flags every lead with the given email as converted.
	MarkLeadsConverted(ctx context.Context, email string) error
	// ListLeads returns a page of leads.
	ListLeads(ctx context.Context, filter LeadFilter) (LeadPage, error)
	// LeadCount returns the total number of leads.
	LeadCount(ctx context.Context) (int64, error)
}
