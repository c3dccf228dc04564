package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/bola-na-rede/internal/kvstore"
	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

// MatchRepo stores the whole match collection as one JSON array under a
// single key.  Every mutation is load → change in memory → save.  There is
// no locking between callers: two overlapping mutations race and the later
// SaveAll wins.  This is a known limitation of the single-blob layout.
type MatchRepo struct {
	store     kvstore.Store
	key       string
	perPerson PerPersonFunc
	now       func() time.Time
}

// NewMatchRepo builds a repository over store.  perPerson is used to fill the
// derived valorUnitario field on every write.
func NewMatchRepo(store kvstore.Store, key string, perPerson PerPersonFunc) *MatchRepo {
	return &MatchRepo{store: store, key: key, perPerson: perPerson, now: time.Now}
}

// Key returns the storage key holding the collection.
func (r *MatchRepo) Key() string { return r.key }

// LoadAll returns every stored match.  A missing key yields an empty slice.
// A blob that does not decode is moved to "<key>.corrupt.<unix>" and treated
// as empty: the copy is written first and the primary key removed only after
// the copy succeeded, so repeated reads back the bytes up once.  Only store
// I/O failures are returned as errors; an empty result on a transient failure
// would otherwise be written back over good data.
func (r *MatchRepo) LoadAll(ctx context.Context) ([]model.Match, error) {
	blob, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if !ok || blob == "" {
		return []model.Match{}, nil
	}
	records, err := decodeMatches(blob)
	if err != nil {
		r.quarantine(ctx, blob, err)
		return []model.Match{}, nil
	}
	return records, nil
}

func (r *MatchRepo) quarantine(ctx context.Context, blob string, cause error) {
	backup := r.key + ".corrupt." + strconv.FormatInt(r.now().Unix(), 10)
	if err := r.store.Set(ctx, backup, blob); err != nil {
		logger.Error("match store: %v; backup to %s failed: %v", cause, backup, err)
		return
	}
	if err := r.store.Remove(ctx, r.key); err != nil {
		logger.Error("match store: backed up to %s but could not clear %s: %v", backup, r.key, err)
		return
	}
	logger.Warn("match store: %v; discarded collection, original kept under %s", cause, backup)
}

// SaveAll overwrites the whole collection with records in one key write.
func (r *MatchRepo) SaveAll(ctx context.Context, records []model.Match) error {
	blob, err := encodeMatches(records, r.perPerson)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, blob); err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	return nil
}

// Append adds rec to the end of the collection.  It fails with ErrConflict if
// the id is already taken.
func (r *MatchRepo) Append(ctx context.Context, rec model.Match) error {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	if _, dup := Index(records)[rec.ID]; dup {
		return fmt.Errorf("append match %d: %w", rec.ID, ErrConflict)
	}
	return r.SaveAll(ctx, append(records, rec))
}

// ReplaceByID applies update to the record with the given id and saves the
// collection.  The record keeps its position.  An error from update aborts
// the write.
func (r *MatchRepo) ReplaceByID(ctx context.Context, id int64, update func(*model.Match) error) (model.Match, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return model.Match{}, err
	}
	i, ok := Index(records)[id]
	if !ok {
		return model.Match{}, ErrMatchNotFound
	}
	next := records[i]
	if err := update(&next); err != nil {
		return model.Match{}, err
	}
	next.ID = id
	records[i] = next
	if err := r.SaveAll(ctx, records); err != nil {
		return model.Match{}, err
	}
	return next, nil
}

// RemoveByID deletes the record with the given id and returns it.
func (r *MatchRepo) RemoveByID(ctx context.Context, id int64) (model.Match, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return model.Match{}, err
	}
	i, ok := Index(records)[id]
	if !ok {
		return model.Match{}, ErrMatchNotFound
	}
	removed := records[i]
	kept := append(records[:i:i], records[i+1:]...)
	if err := r.SaveAll(ctx, kept); err != nil {
		return model.Match{}, err
	}
	return removed, nil
}

// ListForUser returns the matches organized by email or listing it in the
// roster, in stored order.
func (r *MatchRepo) ListForUser(ctx context.Context, email string) ([]model.Match, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterForUser(records, email), nil
}

// Reset removes the stored collection altogether.
func (r *MatchRepo) Reset(ctx context.Context) error {
	if err := r.store.Remove(ctx, r.key); err != nil {
		return fmt.Errorf("reset matches: %w", err)
	}
	return nil
}

// FilterForUser keeps the records that involve email.
func FilterForUser(records []model.Match, email string) []model.Match {
	out := make([]model.Match, 0, len(records))
	for _, m := range records {
		if m.Involves(email) {
			out = append(out, m)
		}
	}
	return out
}

// Index maps each id to its position in records.  With duplicate ids (only
// possible in hand-edited blobs) the first occurrence wins.
func Index(records []model.Match) map[int64]int {
	idx := make(map[int64]int, len(records))
	for i, m := range records {
		if _, seen := idx[m.ID]; !seen {
			idx[m.ID] = i
		}
	}
	return idx
}
