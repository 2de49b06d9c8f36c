package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivertype"
)

// newJobInserter creates an insert-only River client over db. It registers no
// workers, so it never fetches jobs; the serve command runs its own client.
func newJobInserter(db *sql.DB) (*river.Client[*sql.Tx], error) {
	client, err := river.NewClient(riverdatabasesql.New(db), &river.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create river insert client: %w", err)
	}

	return client, nil
}

// AddJob inserts args into River. Inside a transaction the job becomes
// visible on commit, so an email or grade job never outlives a rolled back
// submission. It reports false when River skipped the job because its unique
// options matched a job still pending, running or scheduled for retry.
func (p *PgSQL) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	if p.jobs == nil {
		db, ok := p.DB.(*sql.DB)
		if !ok {
			return false, fmt.Errorf("could not insert %s job: no insert client in tx", args.Kind())
		}
		jobs, err := newJobInserter(db)
		if err != nil {
			return false, err
		}
		p.jobs = jobs
	}

	var (
		res *rivertype.JobInsertResult
		err error
	)
	if tx, ok := p.DB.(*sql.Tx); ok {
		res, err = p.jobs.InsertTx(ctx, tx, args, opts)
	} else {
		res, err = p.jobs.Insert(ctx, args, opts)
	}
	if err != nil {
		return false, fmt.Errorf("could not insert %s job: %w", args.Kind(), err)
	}

	return !res.UniqueSkippedAsDuplicate, nil
}
