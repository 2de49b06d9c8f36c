package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues email and grade jobs next to the rows that caused them.
type JobStorage interface {
	// AddJob enqueues args, atomically with the surrounding transaction when
	// the backend supports it. It reports false with a nil error when the
	// job's unique options matched a job that is still queued or running, and
	// returns ErrNoJobRunner when jobs cannot run at all.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
