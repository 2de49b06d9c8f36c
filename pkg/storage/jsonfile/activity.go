package jsonfile

import (
	"context"
	"rightfit/pkg/domain"
	"slices"

	"github.com/google/uuid"
)

func (s *Store) StoreActivity(_ context.Context, logs ...domain.ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}

	return s.write(func(c *collections) error {
		for _, l := range logs {
			if uuid.UUID(l.ID) == uuid.Nil {
				l.ID = domain.ActivityID(uuid.New())
			}
			l.CreatedAt = s.timestamp()
			c.Activity = append(c.Activity, l)
		}

		return nil
	})
}

func (s *Store) SubmissionActivity(_ context.Context, id domain.SubmissionID) ([]domain.ActivityLog, error) {
	out := []domain.ActivityLog{}
	err := s.read(func(c *collections) error {
		for _, l := range c.Activity {
			if l.SubmissionID == id {
				out = append(out, l)
			}
		}

		return nil
	})

	return out, err
}

func (s *Store) RecentActivity(_ context.Context, limit uint) ([]domain.ActivityLog, error) {
	out := []domain.ActivityLog{}
	err := s.read(func(c *collections) error {
		for i := len(c.Activity) - 1; i >= 0 && uint(len(out)) < limit; i-- {
			out = append(out, c.Activity[i])
		}

		return nil
	})

	return out, err
}

func (s *Store) StoreNote(_ context.Context, note domain.ReviewNote) (*domain.ReviewNote, error) {
	var out *domain.ReviewNote
	err := s.write(func(c *collections) error {
		if uuid.UUID(note.ID) == uuid.Nil {
			note.ID = domain.NoteID(uuid.New())
		}
		note.CreatedAt = s.timestamp()
		c.Notes = append(c.Notes, note)
		out = &note

		return nil
	})

	return out, err
}

func (s *Store) SubmissionNotes(_ context.Context, id domain.SubmissionID) ([]domain.ReviewNote, error) {
	out := []domain.ReviewNote{}
	err := s.read(func(c *collections) error {
		for _, n := range c.Notes {
			if n.SubmissionID == id {
				out = append(out, n)
			}
		}

		return nil
	})

	return out, err
}

func cloneGrade(g domain.AIGrade) domain.AIGrade {
	g.Strengths = slices.Clone(g.Strengths)
	g.Improvements = slices.Clone(g.Improvements)

	return g
}

func (s *Store) StoreGrade(_ context.Context, grade domain.AIGrade) (*domain.AIGrade, error) {
	var out *domain.AIGrade
	err := s.write(func(c *collections) error {
		if uuid.UUID(grade.ID) == uuid.Nil {
			grade.ID = domain.GradeID(uuid.New())
		}
		grade.CreatedAt = s.timestamp()
		c.Grades = append(c.Grades, cloneGrade(grade))
		g := cloneGrade(grade)
		out = &g

		return nil
	})

	return out, err
}

func (s *Store) SubmissionGrades(_ context.Context, id domain.SubmissionID) ([]domain.AIGrade, error) {
	out := []domain.AIGrade{}
	err := s.read(func(c *collections) error {
		for i := len(c.Grades) - 1; i >= 0; i-- {
			if c.Grades[i].SubmissionID == id {
				out = append(out, cloneGrade(c.Grades[i]))
			}
		}

		return nil
	})

	return out, err
}
