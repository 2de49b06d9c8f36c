package jsonfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"
	"rightfit/pkg/storage/jsonfile"
	"rightfit/pkg/storage/storagetest"
	"sync"
	"testing"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
)

type dummyJobArgs struct {
	Name string `json:"name"`
}

func (dummyJobArgs) Kind() string { return "dummy" }

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

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		t.Helper()
		s, err := jsonfile.New(t.TempDir(), &recordingRunner{})
		require.NoError(t, err)

		return s
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := jsonfile.New(dir, nil)
	require.NoError(t, err)
	stored, err := s.StoreSubmission(ctx, storagetest.NewSubmission("reopen@example.com"))
	require.NoError(t, err)
	_, err = s.UpsertLead(ctx, domain.Lead{Email: "reopen@example.com", Source: domain.LeadSourceNewsletter})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.FileExists(t, filepath.Join(dir, "submissions.json"))
	require.FileExists(t, filepath.Join(dir, "leads.json"))

	reopened, err := jsonfile.New(dir, nil)
	require.NoError(t, err)
	got, err := reopened.SubmissionByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, stored.Email, got.Email)
	require.Equal(t, stored.AddOns, got.AddOns)

	count, err := reopened.LeadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payments.json"), []byte("{not json"), 0o600))

	_, err := jsonfile.New(dir, nil)
	require.Error(t, err)
}

func TestStore_JobsDispatchedAfterCommit(t *testing.T) {
	runner := &recordingRunner{}
	s, err := jsonfile.New(t.TempDir(), runner)
	require.NoError(t, err)
	ctx := context.Background()

	err = s.WithTx(ctx, func(tx storage.AllStorage) error {
		ok, err := tx.AddJob(ctx, dummyJobArgs{Name: "committed"}, nil)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, runner.Jobs(), "jobs must wait for commit")

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []river.JobArgs{dummyJobArgs{Name: "committed"}}, runner.Jobs())

	err = s.WithTx(ctx, func(tx storage.AllStorage) error {
		_, err := tx.AddJob(ctx, dummyJobArgs{Name: "rolled back"}, nil)
		require.NoError(t, err)

		return errors.New("boom")
	})
	require.Error(t, err)
	require.Len(t, runner.Jobs(), 1, "rolled back jobs are dropped")

	ok, err := s.AddJob(ctx, dummyJobArgs{Name: "direct"}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, runner.Jobs(), 2)
}

func TestStore_AddJobWithoutRunner(t *testing.T) {
	s, err := jsonfile.New(t.TempDir(), nil)
	require.NoError(t, err)

	ok, err := s.AddJob(context.Background(), dummyJobArgs{}, nil)
	require.ErrorIs(t, err, storage.ErrNoJobRunner)
	require.False(t, ok)
}

// busyRunner reports every job it already received as a duplicate.
type busyRunner struct {
	recordingRunner
}

func (r *busyRunner) IsDuplicate(args river.JobArgs) bool {
	for _, j := range r.Jobs() {
		if j == args {
			return true
		}
	}

	return false
}

func TestStore_AddJobReportsDuplicates(t *testing.T) {
	runner := &busyRunner{}
	s, err := jsonfile.New(t.TempDir(), runner)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := s.AddJob(ctx, dummyJobArgs{Name: "grade"}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	err = s.WithTx(ctx, func(tx storage.AllStorage) error {
		ok, err := tx.AddJob(ctx, dummyJobArgs{Name: "grade"}, nil)
		require.NoError(t, err)
		require.False(t, ok)

		return nil
	})
	require.NoError(t, err)
	require.Len(t, runner.Jobs(), 1)
}

func TestStore_TxMisuse(t *testing.T) {
	s, err := jsonfile.New(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, s.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, s.Rollback(), storage.ErrNotInTx)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.(*jsonfile.Store).Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)
	require.NoError(t, tx.Commit())

	_, err = tx.SubmissionByID(ctx, domain.NewSubmissionID())
	require.ErrorIs(t, err, storage.ErrNotInTx, "finished tx is unusable")

	// the lock was released by Commit
	_, err = s.StoreSubmission(ctx, storagetest.NewSubmission("after@example.com"))
	require.NoError(t, err)
}
