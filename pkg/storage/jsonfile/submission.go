package jsonfile

import (
	"context"
	"fmt"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func cloneSubmission(s domain.Submission) *domain.Submission {
	s.AddOns = slices.Clone(s.AddOns)
	if s.AddOns == nil {
		s.AddOns = []domain.AddOn{}
	}

	return &s
}

// findSubmission returns the index of a live submission or -1.
func findSubmission(c *collections, match func(s *domain.Submission) bool) int {
	for i := range c.Submissions {
		if c.Submissions[i].DeletedAt.IsZero() && match(&c.Submissions[i]) {
			return i
		}
	}

	return -1
}

func intentTaken(c *collections, intentID string, except domain.SubmissionID) bool {
	if intentID == "" {
		return false
	}
	for i := range c.Submissions {
		if c.Submissions[i].PaymentIntentID == intentID && c.Submissions[i].ID != except {
			return true
		}
	}

	return false
}

func (s *Store) StoreSubmission(_ context.Context, submission domain.Submission) (*domain.Submission, error) {
	var out *domain.Submission
	err := s.write(func(c *collections) error {
		if submission.ID.IsZero() {
			submission.ID = domain.SubmissionID(uuid.New())
		}
		if intentTaken(c, submission.PaymentIntentID, submission.ID) {
			return fmt.Errorf("payment intent %s: %w", submission.PaymentIntentID, storage.ErrDuplicate)
		}
		if submission.Status == "" {
			submission.Status = domain.SubmissionStatusPending
		}
		if submission.PaymentStatus == "" {
			submission.PaymentStatus = domain.PaymentStatusUnpaid
		}
		if submission.Currency == "" {
			submission.Currency = domain.DefaultCurrency
		}
		submission.CreatedAt = s.timestamp()
		submission.UpdatedAt = time.Time{}
		submission.DeliveredAt = time.Time{}
		submission.DeletedAt = time.Time{}

		stored := cloneSubmission(submission)
		c.Submissions = append(c.Submissions, *stored)
		out = cloneSubmission(*stored)

		return nil
	})

	return out, err
}

func (s *Store) SubmissionByID(_ context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	return s.submissionWhere(func(sub *domain.Submission) bool { return sub.ID == id })
}

func (s *Store) SubmissionByPaymentIntent(_ context.Context, intentID string) (*domain.Submission, error) {
	return s.submissionWhere(func(sub *domain.Submission) bool { return sub.PaymentIntentID == intentID })
}

func (s *Store) submissionWhere(match func(s *domain.Submission) bool) (*domain.Submission, error) {
	var out *domain.Submission
	err := s.read(func(c *collections) error {
		if i := findSubmission(c, match); i >= 0 {
			out = cloneSubmission(c.Submissions[i])
		}

		return nil
	})

	return out, err
}

func (s *Store) UpdateSubmission(_ context.Context,
	id domain.SubmissionID,
	updates storage.SubmissionUpdates) (*domain.Submission, error) {
	var out *domain.Submission
	err := s.write(func(c *collections) error {
		i := findSubmission(c, func(sub *domain.Submission) bool { return sub.ID == id })
		if i < 0 {
			return nil
		}

		sub := c.Submissions[i]
		now := s.timestamp()
		if updates.Status != nil {
			sub.Status = *updates.Status
		}
		if updates.PaymentStatus != nil {
			sub.PaymentStatus = *updates.PaymentStatus
		}
		if updates.PaymentIntentID != nil {
			if intentTaken(c, *updates.PaymentIntentID, id) {
				return fmt.Errorf("payment intent %s: %w", *updates.PaymentIntentID, storage.ErrDuplicate)
			}
			sub.PaymentIntentID = *updates.PaymentIntentID
		}
		if updates.AssignedTo != nil {
			sub.AssignedTo = *updates.AssignedTo
		}
		if updates.DeliveredKey != nil {
			sub.DeliveredKey = *updates.DeliveredKey
			sub.DeliveredAt = now
		}
		if updates.DeliveredName != nil {
			sub.DeliveredName = *updates.DeliveredName
		}
		sub.UpdatedAt = now

		c.Submissions[i] = sub
		out = cloneSubmission(sub)

		return nil
	})

	return out, err
}

func (s *Store) DeleteSubmission(_ context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	var out *domain.Submission
	err := s.write(func(c *collections) error {
		i := findSubmission(c, func(sub *domain.Submission) bool { return sub.ID == id })
		if i < 0 {
			return nil
		}

		c.Submissions[i].DeletedAt = s.timestamp()
		out = cloneSubmission(c.Submissions[i])

		return nil
	})

	return out, err
}

func (s *Store) ListSubmissions(_ context.Context, filter storage.SubmissionFilter) (storage.SubmissionPage, error) {
	var page storage.SubmissionPage
	err := s.read(func(c *collections) error {
		query := strings.ToLower(strings.TrimSpace(filter.Query))

		var rows []domain.Submission
		// newest insertions first so that ties keep a stable order
		for i := len(c.Submissions) - 1; i >= 0; i-- {
			sub := c.Submissions[i]
			if !sub.DeletedAt.IsZero() {
				continue
			}
			if filter.Status != "" && sub.Status != filter.Status {
				continue
			}
			if query != "" &&
				!strings.Contains(strings.ToLower(sub.FullName), query) &&
				!strings.Contains(strings.ToLower(sub.Email), query) {
				continue
			}
			if !filter.Cursor.IsZero() && !sub.CreatedAt.Before(filter.Cursor) {
				continue
			}
			rows = append(rows, *cloneSubmission(sub))
		}
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].CreatedAt.After(rows[b].CreatedAt) })

		if uint(len(rows)) > filter.Limit {
			rows = rows[:filter.Limit]
			next := rows[len(rows)-1].CreatedAt
			page.NextCursor = &next
		}
		page.Submissions = rows

		return nil
	})

	return page, err
}

func (s *Store) SubmissionCounts(_ context.Context) (map[domain.SubmissionStatus]int64, error) {
	counts := make(map[domain.SubmissionStatus]int64, len(domain.SubmissionStatuses))
	for _, st := range domain.SubmissionStatuses {
		counts[st] = 0
	}

	err := s.read(func(c *collections) error {
		for i := range c.Submissions {
			if c.Submissions[i].DeletedAt.IsZero() {
				counts[c.Submissions[i].Status]++
			}
		}

		return nil
	})

	return counts, err
}
