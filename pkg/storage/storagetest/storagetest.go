// Package storagetest holds a backend-agnostic test suite for storage.Storage
// implementations. Each backend runs it from its own tests.
package storagetest

import (
	"context"
	"errors"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"
	"testing"

	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty storage for a single test.
type Factory func(t *testing.T) storage.Storage

// Run executes the whole suite against storages produced by newStorage.
func Run(t *testing.T, newStorage Factory) {
	t.Helper()

	tests := map[string]func(t *testing.T, s storage.Storage){
		"SubmissionLifecycle":       testSubmissionLifecycle,
		"SubmissionDuplicateIntent": testSubmissionDuplicateIntent,
		"ListSubmissions":           testListSubmissions,
		"Payments":                  testPayments,
		"Leads":                     testLeads,
		"ActivityNotesGrades":       testActivityNotesGrades,
		"WithTxRollback":            testWithTxRollback,
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			fn(t, newStorage(t))
		})
	}
}

// NewSubmission returns a valid submission with the given email.
func NewSubmission(email string) domain.Submission {
	return domain.Submission{
		FullName:    "Ada Lovelace",
		Email:       email,
		TargetRole:  "Staff Engineer",
		Package:     domain.PackageProfessional,
		AddOns:      []domain.AddOn{domain.AddOnRush},
		Status:      domain.SubmissionStatusPending,
		AmountCents: 12400,
		Currency:    domain.DefaultCurrency,
		CVText:      "Experienced engineer.",
	}
}

func ptr[T any](v T) *T { return &v }

func testSubmissionLifecycle(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	stored, err := s.StoreSubmission(ctx, NewSubmission("ada@example.com"))
	require.NoError(t, err)
	require.False(t, stored.ID.IsZero())
	require.False(t, stored.CreatedAt.IsZero())
	require.Equal(t, domain.PaymentStatusUnpaid, stored.PaymentStatus)
	require.Equal(t, []domain.AddOn{domain.AddOnRush}, stored.AddOns)

	got, err := s.SubmissionByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, stored.Email, got.Email)

	missing, err := s.SubmissionByID(ctx, domain.NewSubmissionID())
	require.NoError(t, err)
	require.Nil(t, missing)

	updated, err := s.UpdateSubmission(ctx, stored.ID, storage.SubmissionUpdates{
		Status:          ptr(domain.SubmissionStatusInProgress),
		PaymentStatus:   ptr(domain.PaymentStatusPaid),
		PaymentIntentID: ptr("pi_123"),
		AssignedTo:      ptr("reviewer@rightfit.example"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, domain.SubmissionStatusInProgress, updated.Status)
	require.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)
	require.Equal(t, "reviewer@rightfit.example", updated.AssignedTo)
	require.False(t, updated.UpdatedAt.IsZero())
	require.True(t, updated.DeliveredAt.IsZero())

	byIntent, err := s.SubmissionByPaymentIntent(ctx, "pi_123")
	require.NoError(t, err)
	require.NotNil(t, byIntent)
	require.Equal(t, stored.ID, byIntent.ID)

	delivered, err := s.UpdateSubmission(ctx, stored.ID, storage.SubmissionUpdates{
		DeliveredKey:  ptr("delivered/x/cv.pdf"),
		DeliveredName: ptr("cv.pdf"),
	})
	require.NoError(t, err)
	require.Equal(t, "delivered/x/cv.pdf", delivered.DeliveredKey)
	require.False(t, delivered.DeliveredAt.IsZero())

	counts, err := s.SubmissionCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[domain.SubmissionStatusInProgress])
	require.Equal(t, int64(0), counts[domain.SubmissionStatusPending])

	deleted, err := s.DeleteSubmission(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	gone, err := s.SubmissionByID(ctx, stored.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	again, err := s.DeleteSubmission(ctx, stored.ID)
	require.NoError(t, err)
	require.Nil(t, again)

	noop, err := s.UpdateSubmission(ctx, stored.ID, storage.SubmissionUpdates{AssignedTo: ptr("x")})
	require.NoError(t, err)
	require.Nil(t, noop)
}

func testSubmissionDuplicateIntent(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first := NewSubmission("a@example.com")
	first.PaymentIntentID = "pi_dup"
	_, err := s.StoreSubmission(ctx, first)
	require.NoError(t, err)

	second := NewSubmission("b@example.com")
	second.PaymentIntentID = "pi_dup"
	_, err = s.StoreSubmission(ctx, second)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func testListSubmissions(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	emails := []string{"one@example.com", "two@example.com", "three@example.com", "grace@navy.example"}
	for _, e := range emails {
		_, err := s.StoreSubmission(ctx, NewSubmission(e))
		require.NoError(t, err)
	}

	first, err := s.ListSubmissions(ctx, storage.SubmissionFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Submissions, 3)
	require.NotNil(t, first.NextCursor)
	// newest first
	require.Equal(t, "grace@navy.example", first.Submissions[0].Email)

	second, err := s.ListSubmissions(ctx, storage.SubmissionFilter{Limit: 3, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Submissions, 1)
	require.Nil(t, second.NextCursor)
	require.Equal(t, "one@example.com", second.Submissions[0].Email)

	byQuery, err := s.ListSubmissions(ctx, storage.SubmissionFilter{Limit: 10, Query: "NAVY"})
	require.NoError(t, err)
	require.Len(t, byQuery.Submissions, 1)

	none, err := s.ListSubmissions(ctx, storage.SubmissionFilter{Limit: 10, Status: domain.SubmissionStatusDelivered})
	require.NoError(t, err)
	require.Empty(t, none.Submissions)
}

func testPayments(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	sub, err := s.StoreSubmission(ctx, NewSubmission("pay@example.com"))
	require.NoError(t, err)

	p, err := s.StorePayment(ctx, domain.Payment{
		ProviderID:  "pi_pay",
		AmountCents: 9900,
		Currency:    domain.DefaultCurrency,
		Status:      domain.PaymentStatusPending,
		Email:       "pay@example.com",
	})
	require.NoError(t, err)
	require.True(t, p.SubmissionID.IsZero())

	_, err = s.StorePayment(ctx, domain.Payment{ProviderID: "pi_pay", Status: domain.PaymentStatusPending})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	updated, err := s.UpdatePaymentByProviderID(ctx, "pi_pay", storage.PaymentUpdates{
		Status:       ptr(domain.PaymentStatusPaid),
		SubmissionID: ptr(sub.ID),
	})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusPaid, updated.Status)
	require.Equal(t, sub.ID, updated.SubmissionID)

	missing, err := s.UpdatePaymentByProviderID(ctx, "pi_missing", storage.PaymentUpdates{Status: ptr(domain.PaymentStatusPaid)})
	require.NoError(t, err)
	require.Nil(t, missing)

	got, err := s.PaymentByProviderID(ctx, "pi_pay")
	require.NoError(t, err)
	require.Equal(t, int64(9900), got.AmountCents)

	linked, err := s.SubmissionPayments(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)

	_, err = s.StorePayment(ctx, domain.Payment{
		ProviderID:  "pi_refunded",
		AmountCents: 4900,
		Currency:    domain.DefaultCurrency,
		Status:      domain.PaymentStatusRefunded,
		Email:       "pay@example.com",
	})
	require.NoError(t, err)

	rev, err := s.Revenue(ctx)
	require.NoError(t, err)
	require.Equal(t, storage.Revenue{
		PaidCents:     9900,
		PaidCount:     1,
		RefundedCents: 4900,
		RefundedCount: 1,
	}, rev)
}

func testLeads(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.UpsertLead(ctx, domain.Lead{
		Email:  "lead@example.com",
		Name:   "Lead",
		Source: domain.LeadSourceFormAbandon,
		Step:   "details",
	})
	require.NoError(t, err)
	require.False(t, first.Converted)

	second, err := s.UpsertLead(ctx, domain.Lead{
		Email:  "lead@example.com",
		Source: domain.LeadSourceFormAbandon,
		Step:   "payment",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Lead", second.Name, "empty name keeps the stored one")
	require.Equal(t, "payment", second.Step)

	_, err = s.UpsertLead(ctx, domain.Lead{Email: "lead@example.com", Source: domain.LeadSourceFreeAudit})
	require.NoError(t, err)
	_, err = s.UpsertLead(ctx, domain.Lead{Email: "other@example.com", Source: domain.LeadSourceNewsletter})
	require.NoError(t, err)

	count, err := s.LeadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	require.NoError(t, s.MarkLeadsConverted(ctx, "lead@example.com"))

	page, err := s.ListLeads(ctx, storage.LeadFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Leads, 3)
	require.Nil(t, page.NextCursor)
	converted := 0
	for _, l := range page.Leads {
		if l.Converted {
			require.Equal(t, "lead@example.com", l.Email)
			converted++
		}
	}
	require.Equal(t, 2, converted)

	bySource, err := s.ListLeads(ctx, storage.LeadFilter{Limit: 10, Source: domain.LeadSourceNewsletter})
	require.NoError(t, err)
	require.Len(t, bySource.Leads, 1)
}

func testActivityNotesGrades(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	sub, err := s.StoreSubmission(ctx, NewSubmission("act@example.com"))
	require.NoError(t, err)

	require.NoError(t, s.StoreActivity(ctx,
		domain.ActivityLog{SubmissionID: sub.ID, Actor: domain.ActorSystem, Action: domain.ActivitySubmitted},
		domain.ActivityLog{SubmissionID: sub.ID, Actor: domain.ActorSystem, Action: domain.ActivityPaymentPaid},
	))
	require.NoError(t, s.StoreActivity(ctx,
		domain.ActivityLog{SubmissionID: sub.ID, Actor: "admin", Action: domain.ActivityStatusChanged, Details: "pending -> in_progress"},
	))

	logs, err := s.SubmissionActivity(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, domain.ActivitySubmitted, logs[0].Action)
	require.Equal(t, domain.ActivityStatusChanged, logs[2].Action)

	recent, err := s.RecentActivity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, domain.ActivityStatusChanged, recent[0].Action)

	note, err := s.StoreNote(ctx, domain.ReviewNote{SubmissionID: sub.ID, Author: "admin", Body: "Needs metrics."})
	require.NoError(t, err)
	require.False(t, note.CreatedAt.IsZero())
	notes, err := s.SubmissionNotes(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Needs metrics.", notes[0].Body)

	grade := domain.AIGrade{
		SubmissionID: sub.ID,
		Email:        sub.Email,
		Overall:      72,
		Breakdown:    domain.GradeBreakdown{ATS: 70, Impact: 65, Clarity: 80, Formatting: 75},
		Strengths:    []string{"Clear layout"},
		Improvements: []string{"Quantify impact"},
		Summary:      "Solid base.",
		Model:        "gpt-4o-mini",
	}
	_, err = s.StoreGrade(ctx, grade)
	require.NoError(t, err)

	free := grade
	free.SubmissionID = domain.SubmissionID{}
	_, err = s.StoreGrade(ctx, free)
	require.NoError(t, err)

	grades, err := s.SubmissionGrades(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.Equal(t, grade.Breakdown, grades[0].Breakdown)
	require.Equal(t, grade.Strengths, grades[0].Strengths)
}

func testWithTxRollback(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	boom := errors.New("boom")

	var id domain.SubmissionID
	err := s.WithTx(ctx, func(tx storage.AllStorage) error {
		sub, err := tx.StoreSubmission(ctx, NewSubmission("tx@example.com"))
		if err != nil {
			return err
		}
		id = sub.ID

		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.SubmissionByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)

	err = s.WithTx(ctx, func(tx storage.AllStorage) error {
		sub, err := tx.StoreSubmission(ctx, NewSubmission("tx@example.com"))
		if err != nil {
			return err
		}
		id = sub.ID

		return nil
	})
	require.NoError(t, err)

	got, err = s.SubmissionByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
}
