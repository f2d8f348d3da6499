package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(jobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddJob adds a job to storage, generating its ID from sequence.
func (r *JobRepository) AddJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := core.ValidateJobStatus(job.Status); err != nil {
			return err
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		job.Id = core.ID(nextID)

		job.InsertedAt = time.Now().UTC()
		job.UpdatedAt = job.InsertedAt

		key := makeRecordKey(jobRecordPrefix, job.Id)
		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}

		ownerKey := makePairKey(jobOwnerPrefix, job.OwnerId, job.Id)
		if err := tx.Set(ownerKey, storage.MarshalID(job.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// UpdateJob updates an existing job.
func (r *JobRepository) UpdateJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecordKey(jobRecordPrefix, job.Id)
		old, err := readJob(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a single job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id core.ID) (*core.Job, error) {
	var result *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readJob(tx, makeRecordKey(jobRecordPrefix, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetJobsByOwner retrieves an owner's jobs, newest first.
func (r *JobRepository) GetJobsByOwner(ctx context.Context, ownerID core.ID) ([]*core.Job, error) {
	var results []*core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := makePartialPairKey(jobOwnerPrefix, ownerID)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			jobID := idFromPairKey(iter.Item().Key())
			job, err := readJob(tx, makeRecordKey(jobRecordPrefix, jobID))
			if err != nil {
				return err
			}
			if job != nil {
				results = append(results, job)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Index order is oldest first
	slices.Reverse(results)
	return results, nil
}

// readJob reads a job from the transaction.
func readJob(tx *badger.Txn, key []byte) (*core.Job, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var err error
		job, err = storage.UnmarshalJob(val)
		return err
	})
	return job, err
}
