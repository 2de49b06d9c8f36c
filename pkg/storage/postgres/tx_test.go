package postgres_test

import (
	"context"
	"errors"
	"rightfit/pkg/domain"
	"rightfit/pkg/storage"
	"rightfit/pkg/storage/postgres"
	"rightfit/pkg/storage/storagetest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_TxMisuse(t *testing.T) {
	pg := newTestDB(t)
	ctx := context.Background()

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.(*postgres.PgSQL).Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)
	require.NoError(t, tx.Rollback())
}

func TestPgSQL_SubmissionVisibleAfterCommit(t *testing.T) {
	pg := newTestDB(t)
	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	stored, err := tx.StoreSubmission(ctx, storagetest.NewSubmission("commit@example.com"))
	require.NoError(t, err)

	got, err := pg.SubmissionByID(ctx, stored.ID)
	require.NoError(t, err)
	require.Nil(t, got, "uncommitted rows are invisible outside the tx")

	require.NoError(t, tx.Commit())
	got, err = pg.SubmissionByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "commit@example.com", got.Email)
}

func TestPgSQL_WithTxRollsBackIntake(t *testing.T) {
	pg := newTestDB(t)
	ctx := context.Background()

	var id domain.SubmissionID
	err := pg.WithTx(ctx, func(tx storage.AllStorage) error {
		stored, err := tx.StoreSubmission(ctx, storagetest.NewSubmission("rollback@example.com"))
		require.NoError(t, err)
		id = stored.ID
		require.NoError(t, tx.StoreActivity(ctx, domain.ActivityLog{
			SubmissionID: stored.ID,
			Actor:        domain.ActorSystem,
			Action:       domain.ActivitySubmitted,
		}))

		return errors.New("payment check failed")
	})
	require.Error(t, err)

	got, err := pg.SubmissionByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)
	activity, err := pg.SubmissionActivity(ctx, id)
	require.NoError(t, err)
	require.Empty(t, activity)
}
