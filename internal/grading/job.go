package grading

import (
	"rightfit/pkg/domain"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments for a grade job submitted to River.
// Only one unfinished job may exist per submission.
type JobArgs struct {
	SubmissionID domain.SubmissionID `json:"submissionId" river:"unique"`
}

// Kind returns the River job kind used to register and dispatch the grade worker.
func (args JobArgs) Kind() string { return "GradeSubmissionJob" }

// InsertOpts deduplicates unfinished jobs for the same submission. Completed
// jobs do not count so an admin can ask for a regrade.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 10,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
