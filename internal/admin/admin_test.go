package admin_test

import (
	"context"
	"io"
	"rightfit/internal/admin"
	"rightfit/internal/grading"
	"rightfit/internal/notify"
	"rightfit/pkg/blob"
	"rightfit/pkg/blob/dirblob"
	"rightfit/pkg/domain"
	"rightfit/pkg/ordertoken"
	"rightfit/pkg/payments"
	mockpayments "rightfit/pkg/payments/mock"
	"rightfit/pkg/serrors"
	"rightfit/pkg/storage"
	"rightfit/pkg/storage/jsonfile"
	"rightfit/pkg/storage/storagetest"
	"strings"
	"sync"
	"testing"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingRunner struct {
	mu   sync.Mutex
	jobs []river.JobArgs
}

func (r *recordingRunner) Dispatch(_ context.Context, args river.JobArgs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, args)

	return nil
}

func (r *recordingRunner) Jobs() []river.JobArgs {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]river.JobArgs(nil), r.jobs...)
}

type fixture struct {
	store    *jsonfile.Store
	runner   *recordingRunner
	payments *mockpayments.MockProvider
	blobs    *dirblob.Dir
	svc      admin.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{runner: &recordingRunner{}, payments: mockpayments.NewMockProvider(ctrl)}
	var err error
	f.store, err = jsonfile.New(t.TempDir(), f.runner)
	require.NoError(t, err)
	f.blobs, err = dirblob.New(t.TempDir())
	require.NoError(t, err)
	tokens, err := ordertoken.New("order-secret")
	require.NoError(t, err)

	f.svc = admin.New(admin.Options{PublicURL: "https://rightfitcv.com"}, f.store, f.payments, f.blobs, tokens)

	return f
}

func (f *fixture) submission(t *testing.T) *domain.Submission {
	t.Helper()
	sub, err := f.store.StoreSubmission(context.Background(), storagetest.NewSubmission("ada@example.com"))
	require.NoError(t, err)

	return sub
}

// paidSubmission stores a submission linked to a paid payment.
func (f *fixture) paidSubmission(t *testing.T, intentID string) *domain.Submission {
	t.Helper()
	ctx := context.Background()
	sub := storagetest.NewSubmission("ada@example.com")
	sub.PaymentIntentID = intentID
	sub.PaymentStatus = domain.PaymentStatusPaid
	stored, err := f.store.StoreSubmission(ctx, sub)
	require.NoError(t, err)
	_, err = f.store.StorePayment(ctx, domain.Payment{
		SubmissionID: stored.ID,
		ProviderID:   intentID,
		AmountCents:  stored.AmountCents,
		Currency:     stored.Currency,
		Status:       domain.PaymentStatusPaid,
		Email:        stored.Email,
	})
	require.NoError(t, err)

	return stored
}

func (f *fixture) actions(t *testing.T, id domain.SubmissionID) []domain.ActivityAction {
	t.Helper()
	logs, err := f.store.SubmissionActivity(context.Background(), id)
	require.NoError(t, err)
	out := make([]domain.ActivityAction, len(logs))
	for i, l := range logs {
		out[i] = l.Action
	}

	return out
}

func ptr[T any](v T) *T { return &v }

func TestUpdateSubmission(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.submission(t)

	got, err := f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{
		Status:     ptr(domain.SubmissionStatusInProgress),
		AssignedTo: ptr(" Grace "),
	})
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusInProgress, got.Status)
	require.Equal(t, "Grace", got.AssignedTo)
	require.Equal(t, []domain.ActivityAction{domain.ActivityStatusChanged, domain.ActivityAssigned}, f.actions(t, sub.ID))

	jobs := f.runner.Jobs()
	require.Len(t, jobs, 1)
	email, ok := jobs[0].(notify.JobArgs)
	require.True(t, ok)
	require.Equal(t, notify.TemplateStatusUpdate, email.Template)
	require.Equal(t, "in_progress", email.Data.Status)
	require.Contains(t, email.Data.StatusURL, "https://rightfitcv.com/order-status?")

	// unchanged values are a no-op
	_, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{AssignedTo: ptr("Grace")})
	require.NoError(t, err)
	require.Len(t, f.runner.Jobs(), 1)

	_, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{Status: ptr(domain.SubmissionStatusDelivered)})
	require.ErrorIs(t, err, serrors.ErrConflict)
	_, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{Status: ptr(domain.SubmissionStatus("lost"))})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	_, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{Status: ptr(domain.SubmissionStatusRefunded)})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	_, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	_, err = f.svc.UpdateSubmission(ctx, domain.NewSubmissionID(), "admin", admin.SubmissionPatch{AssignedTo: ptr("x")})
	require.ErrorIs(t, err, serrors.ErrNotFound)

	// unassign keeps an audit entry
	got, err = f.svc.UpdateSubmission(ctx, sub.ID, "admin", admin.SubmissionPatch{AssignedTo: ptr("")})
	require.NoError(t, err)
	require.Empty(t, got.AssignedTo)
	logs, err := f.store.SubmissionActivity(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, "unassigned", logs[len(logs)-1].Details)
}

func TestSubmissionDetailAndNotes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.paidSubmission(t, "pi_detail")

	note, err := f.svc.AddNote(ctx, sub.ID, "admin", "  Needs more metrics  ")
	require.NoError(t, err)
	require.Equal(t, "Needs more metrics", note.Body)

	_, err = f.svc.AddNote(ctx, sub.ID, "admin", " ")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	_, err = f.svc.AddNote(ctx, domain.NewSubmissionID(), "admin", "hi")
	require.ErrorIs(t, err, serrors.ErrNotFound)

	detail, err := f.svc.Submission(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, sub.ID, detail.Submission.ID)
	require.Len(t, detail.Notes, 1)
	require.Len(t, detail.Activity, 1)
	require.Equal(t, domain.ActivityNoteAdded, detail.Activity[0].Action)
	require.Len(t, detail.Payments, 1)
	require.Empty(t, detail.Grades)
	require.Contains(t, detail.StatusURL, "orderId="+sub.ID.String())

	_, err = f.svc.Submission(ctx, domain.NewSubmissionID())
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestDeleteSubmission(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.submission(t)

	require.NoError(t, f.svc.DeleteSubmission(ctx, sub.ID, "admin"))
	require.ErrorIs(t, f.svc.DeleteSubmission(ctx, sub.ID, "admin"), serrors.ErrNotFound)

	page, err := f.svc.ListSubmissions(ctx, storage.SubmissionFilter{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, page.Submissions)

	recent, err := f.svc.RecentActivity(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, domain.ActivityDeleted, recent[0].Action)
}

func TestListSubmissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.submission(t)

	page, err := f.svc.ListSubmissions(ctx, storage.SubmissionFilter{Query: "ADA", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Submissions, 1)

	_, err = f.svc.ListSubmissions(ctx, storage.SubmissionFilter{Status: "lost"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestDeliver(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.submission(t)

	got, err := f.svc.Deliver(ctx, sub.ID, "admin", admin.Upload{
		Name: "Ada Lovelace CV.pdf",
		Body: strings.NewReader("%PDF-1.7"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusDelivered, got.Status)
	require.Equal(t, "Ada_Lovelace_CV.pdf", got.DeliveredName)
	require.Equal(t, blob.Key(blob.PrefixDelivered, sub.ID, "Ada_Lovelace_CV.pdf"), got.DeliveredKey)
	require.False(t, got.DeliveredAt.IsZero())
	require.Equal(t, []domain.ActivityAction{domain.ActivityDelivered}, f.actions(t, sub.ID))

	jobs := f.runner.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, notify.TemplateDelivery, jobs[0].(notify.JobArgs).Template)

	obj, name, err := f.svc.File(ctx, sub.ID, admin.FileDelivered)
	require.NoError(t, err)
	defer obj.Close()
	require.Equal(t, "Ada_Lovelace_CV.pdf", name)
	b, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(b))

	_, err = f.svc.Deliver(ctx, sub.ID, "admin", admin.Upload{Name: "cv.exe", Body: strings.NewReader("MZ")})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	_, err = f.svc.Deliver(ctx, domain.NewSubmissionID(), "admin", admin.Upload{Name: "cv.pdf", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.submission(t)

	_, _, err := f.svc.File(ctx, sub.ID, admin.FileCV)
	require.ErrorIs(t, err, serrors.ErrNotFound)
	_, _, err = f.svc.File(ctx, sub.ID, "photo")
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	in := storagetest.NewSubmission("ada@example.com")
	in.ID = domain.NewSubmissionID()
	in.CVFileKey = blob.Key(blob.PrefixCV, in.ID, "cv.txt")
	in.CVFileName = "cv.txt"
	withFile, err := f.store.StoreSubmission(ctx, in)
	require.NoError(t, err)

	_, _, err = f.svc.File(ctx, withFile.ID, admin.FileCV)
	require.ErrorIs(t, err, serrors.ErrNotFound, "missing blob")

	require.NoError(t, f.blobs.Put(ctx, in.CVFileKey, strings.NewReader("cv"), 2, "text/plain"))
	obj, name, err := f.svc.File(ctx, withFile.ID, admin.FileCV)
	require.NoError(t, err)
	require.NoError(t, obj.Close())
	require.Equal(t, "cv.txt", name)
}

func TestRefund(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.paidSubmission(t, "pi_refund")

	f.payments.EXPECT().Refund(gomock.Any(), "pi_refund", "customer request").
		Return(payments.Refund{ID: "re_1", Status: "succeeded"}, nil)

	got, err := f.svc.Refund(ctx, sub.ID, "admin", " customer request ")
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusRefunded, got.Status)
	require.Equal(t, domain.PaymentStatusRefunded, got.PaymentStatus)

	p, err := f.store.PaymentByProviderID(ctx, "pi_refund")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusRefunded, p.Status)
	require.Equal(t, "re_1", p.RefundID)

	jobs := f.runner.Jobs()
	require.Len(t, jobs, 1)
	email := jobs[0].(notify.JobArgs)
	require.Equal(t, notify.TemplateRefund, email.Template)
	require.Equal(t, "refund:pi_refund", email.Key)
	require.Equal(t, "customer request", email.Data.Reason)

	logs, err := f.store.SubmissionActivity(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, "$124.00: customer request", logs[0].Details)

	_, err = f.svc.Refund(ctx, sub.ID, "admin", "")
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestRefund_Rejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	unpaid := f.submission(t)
	_, err := f.svc.Refund(ctx, unpaid.ID, "admin", "")
	require.ErrorIs(t, err, serrors.ErrConflict)

	sub := f.paidSubmission(t, "pi_fail")
	f.payments.EXPECT().Refund(gomock.Any(), "pi_fail", "").
		Return(payments.Refund{}, serrors.With(serrors.ErrUnavailable, "stripe down"))
	_, err = f.svc.Refund(ctx, sub.ID, "admin", "")
	require.ErrorIs(t, err, serrors.ErrUnavailable)

	got, err := f.store.SubmissionByID(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SubmissionStatusPending, got.Status)
	require.Empty(t, f.runner.Jobs())
}

func TestRegrade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	sub := f.submission(t)

	require.NoError(t, f.svc.Regrade(ctx, sub.ID, "admin"))
	require.Equal(t, []river.JobArgs{grading.JobArgs{SubmissionID: sub.ID}}, f.runner.Jobs())

	empty := storagetest.NewSubmission("blank@example.com")
	empty.CVText = ""
	stored, err := f.store.StoreSubmission(ctx, empty)
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.Regrade(ctx, stored.ID, "admin"), serrors.ErrConflict)

	noRunner, err := jsonfile.New(t.TempDir(), nil)
	require.NoError(t, err)
	stored, err = noRunner.StoreSubmission(ctx, storagetest.NewSubmission("ada@example.com"))
	require.NoError(t, err)
	svc := admin.New(admin.Options{}, noRunner, payments.Disabled{}, f.blobs, nil)
	require.ErrorIs(t, svc.Regrade(ctx, stored.ID, "admin"), serrors.ErrUnavailable)
}

// queuedRunner treats every job it received as still queued.
type queuedRunner struct {
	recordingRunner
}

func (r *queuedRunner) IsDuplicate(args river.JobArgs) bool {
	for _, j := range r.Jobs() {
		if j == args {
			return true
		}
	}

	return false
}

func TestRegrade_AlreadyQueued(t *testing.T) {
	ctx := context.Background()
	runner := &queuedRunner{}
	store, err := jsonfile.New(t.TempDir(), runner)
	require.NoError(t, err)
	stored, err := store.StoreSubmission(ctx, storagetest.NewSubmission("ada@example.com"))
	require.NoError(t, err)
	blobs, err := dirblob.New(t.TempDir())
	require.NoError(t, err)
	svc := admin.New(admin.Options{}, store, payments.Disabled{}, blobs, nil)

	require.NoError(t, svc.Regrade(ctx, stored.ID, "admin"))
	require.ErrorIs(t, svc.Regrade(ctx, stored.ID, "admin"), serrors.ErrConflict)
	require.Equal(t, []river.JobArgs{grading.JobArgs{SubmissionID: stored.ID}}, runner.Jobs())
}

func TestStatsAndLeads(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.submission(t)
	f.paidSubmission(t, "pi_stats")
	_, err := f.store.UpsertLead(ctx, domain.Lead{Email: "lead@example.com", Source: domain.LeadSourceFreeAudit})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(2), stats.Submissions[domain.SubmissionStatusPending])
	require.Equal(t, int64(0), stats.Submissions[domain.SubmissionStatusDelivered])
	require.Equal(t, int64(12400), stats.PaidCents)
	require.Equal(t, int64(1), stats.PaidCount)
	require.Equal(t, int64(12400), stats.GrossCents)
	require.Equal(t, int64(1), stats.Leads)

	page, err := f.svc.ListLeads(ctx, storage.LeadFilter{Source: domain.LeadSourceFreeAudit, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)

	_, err = f.svc.ListLeads(ctx, storage.LeadFilter{Source: "tiktok"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}
