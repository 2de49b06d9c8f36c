package jsonfile

import (
	"context"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"
	"sort"

	"github.com/google/uuid"
)

func (s *Store) UpsertLead(_ context.Context, lead domain.Lead) (*domain.Lead, error) {
	var out *domain.Lead
	err := s.write(func(c *collections) error {
		now := s.timestamp()
		for i := range c.Leads {
			existing := &c.Leads[i]
			if existing.Email != lead.Email || existing.Source != lead.Source {
				continue
			}
			if lead.Name != "" {
				existing.Name = lead.Name
			}
			if lead.Step != "" {
				existing.Step = lead.Step
			}
			existing.Converted = existing.Converted || lead.Converted
			existing.UpdatedAt = now

			l := *existing
			out = &l

			return nil
		}

		if uuid.UUID(lead.ID) == uuid.Nil {
			lead.ID = domain.LeadID(uuid.New())
		}
		lead.CreatedAt = now
		c.Leads = append(c.Leads, lead)
		out = &lead

		return nil
	})

	return out, err
}

func (s *Store) MarkLeadsConverted(_ context.Context, email string) error {
	return s.write(func(c *collections) error {
		now := s.timestamp()
		for i := range c.Leads {
			if c.Leads[i].Email == email && !c.Leads[i].Converted {
				c.Leads[i].Converted = true
				c.Leads[i].UpdatedAt = now
			}
		}

		return nil
	})
}

func (s *Store) ListLeads(_ context.Context, filter storage.LeadFilter) (storage.LeadPage, error) {
	var page storage.LeadPage
	err := s.read(func(c *collections) error {
		rows := []domain.Lead{}
		for i := len(c.Leads) - 1; i >= 0; i-- {
			l := c.Leads[i]
			if filter.Source != "" && l.Source != filter.Source {
				continue
			}
			if !filter.Cursor.IsZero() && !l.CreatedAt.Before(filter.Cursor) {
				continue
			}
			rows = append(rows, l)
		}
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].CreatedAt.After(rows[b].CreatedAt) })

		if uint(len(rows)) > filter.Limit {
			rows = rows[:filter.Limit]
			next := rows[len(rows)-1].CreatedAt
			page.NextCursor = &next
		}
		page.Leads = rows

		return nil
	})

	return page, err
}

func (s *Store) LeadCount(_ context.Context) (int64, error) {
	var n int64
	err := s.read(func(c *collections) error {
		n = int64(len(c.Leads))

		return nil
	})

	return n, err
}
