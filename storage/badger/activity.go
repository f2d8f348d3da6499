package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// ActivityRepository implements storage.ActivityLog for BadgerDB.
// The log is append-only; nothing in this module reads it back.
type ActivityRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ActivityLog = (*ActivityRepository)(nil)

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(backend *Backend) (*ActivityRepository, error) {
	idSeq, err := backend.GetSequence(activityIDSeq)
	if err != nil {
		return nil, err
	}

	return &ActivityRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ActivityRepository) Close() error {
	return r.idSeq.Release()
}

// Append stores one activity record.
func (r *ActivityRepository) Append(ctx context.Context, record *core.ActivityRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
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
		record.Id = core.ID(nextID)
		record.InsertedAt = time.Now().UTC()

		key := makeRecordKey(activityRecordPrefix, record.Id)
		if err := tx.Set(key, storage.MarshalActivityRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
