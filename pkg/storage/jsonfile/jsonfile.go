// Package jsonfile implements storage.Storage on top of flat JSON files, one
// per collection, under a data directory. It is meant for local setups and
// demos where no database is configured.
//
// All collections are held in memory behind a single mutex. A transaction
// holds the mutex until Commit or Rollback and restores a snapshot on
// rollback. Jobs added through AddJob are handed to a JobRunner once the
// surrounding transaction commits.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/storage"
	"slices"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// JobRunner executes jobs outside of River.
type JobRunner interface {
	Dispatch(ctx context.Context, args river.JobArgs) error
}

// DuplicateChecker is implemented by runners that skip unique jobs already
// queued or running. AddJob consults it to report duplicates.
type DuplicateChecker interface {
	IsDuplicate(args river.JobArgs) bool
}

type collections struct {
	Submissions []domain.Submission
	Payments    []domain.Payment
	Leads       []domain.Lead
	Activity    []domain.ActivityLog
	Notes       []domain.ReviewNote
	Grades      []domain.AIGrade
}

func (c *collections) clone() collections {
	return collections{
		Submissions: slices.Clone(c.Submissions),
		Payments:    slices.Clone(c.Payments),
		Leads:       slices.Clone(c.Leads),
		Activity:    slices.Clone(c.Activity),
		Notes:       slices.Clone(c.Notes),
		Grades:      slices.Clone(c.Grades),
	}
}

// files maps each collection to its file name and a pointer into collections.
func (c *collections) files() map[string]any {
	return map[string]any{
		"submissions.json":   &c.Submissions,
		"payments.json":      &c.Payments,
		"leads.json":         &c.Leads,
		"activity_logs.json": &c.Activity,
		"review_notes.json":  &c.Notes,
		"ai_grades.json":     &c.Grades,
	}
}

type shared struct {
	mu     sync.Mutex
	dir    string
	data   collections
	runner JobRunner
	now    func() time.Time
}

type pendingJob struct {
	ctx  context.Context //nolint: containedctx
	args river.JobArgs
}

type txState struct {
	snapshot collections
	jobs     []pendingJob
	done     bool
}

// Store implements storage.Storage and storage.TxStorage.
type Store struct {
	shared *shared
	tx     *txState
}

var (
	_ storage.Storage   = (*Store)(nil)
	_ storage.TxStorage = (*Store)(nil)
)

// Option customizes a Store.
type Option func(*shared)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *shared) { s.now = now }
}

// New loads (or initializes) the collections stored under dir. runner may be
// nil, in which case AddJob fails with storage.ErrNoJobRunner.
func New(dir string, runner JobRunner, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("could not create data dir: %w", err)
	}

	sh := &shared{
		dir:    dir,
		runner: runner,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sh)
	}

	for name, dst := range sh.data.files() {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", name, err)
		}
		if len(b) == 0 {
			continue
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", name, err)
		}
	}

	return &Store{shared: sh}, nil
}

// SetRunner replaces the job runner. It must be called before the store is
// shared between goroutines.
func (s *Store) SetRunner(runner JobRunner) {
	s.shared.runner = runner
}

func (s *Store) timestamp() time.Time {
	return s.shared.now().UTC()
}

// persist writes every collection to disk. Each file is written to a temp
// file first and renamed into place.
func (sh *shared) persist() error {
	for name, src := range sh.data.files() {
		b, err := json.MarshalIndent(src, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode %s: %w", name, err)
		}

		tmp, err := os.CreateTemp(sh.dir, name+".*.tmp")
		if err != nil {
			return fmt.Errorf("could not create temp file for %s: %w", name, err)
		}
		if _, err := tmp.Write(b); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())

			return fmt.Errorf("could not write %s: %w", name, err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())

			return fmt.Errorf("could not close %s: %w", name, err)
		}
		if err := os.Rename(tmp.Name(), filepath.Join(sh.dir, name)); err != nil {
			return fmt.Errorf("could not replace %s: %w", name, err)
		}
	}

	return nil
}

// read runs fn with shared access to the collections.
func (s *Store) read(fn func(c *collections) error) error {
	if s.tx != nil {
		if s.tx.done {
			return storage.ErrNotInTx
		}

		return fn(&s.shared.data)
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	return fn(&s.shared.data)
}

// write runs fn with exclusive access. Outside a transaction the change is
// persisted immediately and rolled back in memory if fn or the write fails.
func (s *Store) write(fn func(c *collections) error) error {
	if s.tx != nil {
		if s.tx.done {
			return storage.ErrNotInTx
		}

		return fn(&s.shared.data)
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	snapshot := s.shared.data.clone()
	if err := fn(&s.shared.data); err != nil {
		s.shared.data = snapshot

		return err
	}
	if err := s.shared.persist(); err != nil {
		s.shared.data = snapshot

		return err
	}

	return nil
}

// Close is a no-op; every change is already on disk.
func (s *Store) Close() error {
	return nil
}

// Begin locks the store and returns a transactional handle.
func (s *Store) Begin(_ context.Context) (storage.TxStorage, error) {
	if s.tx != nil {
		return nil, storage.ErrAlreadyInTx
	}

	s.shared.mu.Lock()

	return &Store{
		shared: s.shared,
		tx:     &txState{snapshot: s.shared.data.clone()},
	}, nil
}

// Commit persists the transaction, releases the lock and dispatches the jobs
// added during it.
func (s *Store) Commit() error {
	if s.tx == nil || s.tx.done {
		return storage.ErrNotInTx
	}
	s.tx.done = true

	if err := s.shared.persist(); err != nil {
		s.shared.data = s.tx.snapshot
		s.shared.mu.Unlock()

		return fmt.Errorf("could not commit tx: %w", err)
	}
	s.shared.mu.Unlock()

	for _, job := range s.tx.jobs {
		s.dispatch(job.ctx, job.args)
	}

	return nil
}

// Rollback restores the snapshot taken at Begin and releases the lock.
func (s *Store) Rollback() error {
	if s.tx == nil || s.tx.done {
		return storage.ErrNotInTx
	}
	s.tx.done = true

	s.shared.data = s.tx.snapshot
	s.shared.mu.Unlock()

	return nil
}

// WithTx is a helper that starts a transaction, executes the provided callback
// with a transactional storage handle, and commits if the callback returns nil.
// If the callback returns an error, the transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

// AddJob queues the job until commit inside a transaction, or dispatches it
// right away otherwise.
func (s *Store) AddJob(ctx context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	if s.shared.runner == nil {
		return false, storage.ErrNoJobRunner
	}
	if s.tx != nil && s.tx.done {
		return false, storage.ErrNotInTx
	}
	if dc, ok := s.shared.runner.(DuplicateChecker); ok && dc.IsDuplicate(args) {
		logger.Debug(ctx, "job already queued", zap.String("kind", args.Kind()))

		return false, nil
	}

	if s.tx != nil {
		s.tx.jobs = append(s.tx.jobs, pendingJob{ctx: context.WithoutCancel(ctx), args: args})

		return true, nil
	}

	s.dispatch(context.WithoutCancel(ctx), args)

	return true, nil
}

func (s *Store) dispatch(ctx context.Context, args river.JobArgs) {
	if err := s.shared.runner.Dispatch(ctx, args); err != nil {
		logger.Error(ctx, "could not dispatch job", zap.String("kind", args.Kind()), zap.Error(err))
	}
}
