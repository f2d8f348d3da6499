package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	idSeq, err := backend.GetSequence(candidateIDSeq)
	if err != nil {
		return nil, err
	}

	return &CandidateRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CandidateRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CandidateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCandidates adds candidates to storage. A candidate carrying an
// external identifier gets a content-based ID derived from the owner and
// that identifier, so re-staging the same external record overwrites in
// place instead of duplicating.
func (r *CandidateRepository) AddCandidates(ctx context.Context, candidates ...*core.PendingCandidate) ([]*core.PendingCandidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			if err := core.ValidateCandidate(candidate); err != nil {
				return err
			}

			if candidate.Id == 0 {
				if candidate.ExternalId != "" {
					candidate.Id = core.IDFromContent(fmt.Sprintf("%d/%s", candidate.OwnerId, candidate.ExternalId))
				} else {
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
					candidate.Id = core.ID(nextID)
				}
			}

			candidate.InsertedAt = time.Now().UTC()
			candidate.UpdatedAt = candidate.InsertedAt

			key := makeRecordKey(candidateRecordPrefix, candidate.Id)
			if err := tx.Set(key, storage.MarshalCandidate(candidate)); err != nil {
				return err
			}

			ownerKey := makePairKey(candidateOwnerPrefix, candidate.OwnerId, candidate.Id)
			if err := tx.Set(ownerKey, storage.MarshalID(candidate.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// UpdateCandidates updates existing candidates.
func (r *CandidateRepository) UpdateCandidates(ctx context.Context, candidates ...*core.PendingCandidate) ([]*core.PendingCandidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			key := makeRecordKey(candidateRecordPrefix, candidate.Id)
			old, err := readCandidate(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			candidate.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalCandidate(candidate)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// GetCandidatesByOwner retrieves all of an owner's candidates.
func (r *CandidateRepository) GetCandidatesByOwner(ctx context.Context, ownerID core.ID) ([]*core.PendingCandidate, error) {
	var results []*core.PendingCandidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := makePartialPairKey(candidateOwnerPrefix, ownerID)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			candidateID := idFromPairKey(iter.Item().Key())
			candidate, err := readCandidate(tx, makeRecordKey(candidateRecordPrefix, candidateID))
			if err != nil {
				return err
			}
			if candidate != nil {
				results = append(results, candidate)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// readCandidate reads a candidate from the transaction.
func readCandidate(tx *badger.Txn, key []byte) (*core.PendingCandidate, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var candidate *core.PendingCandidate
	err = item.Value(func(val []byte) error {
		var err error
		candidate, err = storage.UnmarshalCandidate(val)
		return err
	})
	return candidate, err
}
