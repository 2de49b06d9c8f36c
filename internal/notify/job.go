package notify

import (
	"context"
	"fmt"
	"rightfit/pkg/storage"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments of an email job submitted to River.
type JobArgs struct {
	Template Template `json:"template"`
	To       string   `json:"to"`
	Data     Data     `json:"data"`
	// Key, when set, makes the job unique so the same email is never queued
	// twice, e.g. a receipt per payment intent.
	Key string `json:"key,omitempty" river:"unique"`
}

// Kind returns the River job kind used to register and dispatch the email worker.
func (args JobArgs) Kind() string { return "SendEmailJob" }

// InsertOpts retries transient provider failures and deduplicates keyed jobs
// across every non-discarded state.
func (args JobArgs) InsertOpts() river.InsertOpts {
	opts := river.InsertOpts{MaxAttempts: 8}
	if args.Key != "" {
		opts.UniqueOpts = river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		}
	}

	return opts
}

// Enqueue adds an email job through js, usually inside a transaction.
func Enqueue(ctx context.Context, js storage.JobStorage, args JobArgs) error {
	if _, err := js.AddJob(ctx, args, nil); err != nil {
		return fmt.Errorf("could not enqueue %s email: %w", args.Template, err)
	}

	return nil
}
