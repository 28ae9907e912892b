package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// tableView exposes a Repository through the untyped types.Table interface.
type tableView[T any] struct {
	repo *Repository[T]
}

var _ types.Table = tableView[types.Customer]{}

func (v tableView[T]) Name() string { return v.repo.table }

func (v tableView[T]) New() any { return new(T) }

// Get returns ErrNotFound where the typed repository returns nil.
func (v tableView[T]) Get(ctx context.Context, id int64, includeRemoved bool) (any, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	e, err := v.repo.Get(ctx, id, includeRemoved)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%s %d: %w", v.repo.table, id, types.ErrNotFound)
	}
	return e, nil
}

func (v tableView[T]) List(ctx context.Context, opts types.ListOptions) ([]any, error) {
	es, err := v.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out, nil
}

// Save writes entity back in one transaction, the way import replays an
// export:
//
//   - a zero or unknown ID is inserted; a record flagged removed lands as a
//     scrubbed tombstone
//   - a known active row is merged, keeping stored blobs the record lacks,
//     or tombstoned when the record is flagged removed
//   - a stored tombstone stays as it is when the record is removed too, and
//     refuses an active record with ErrRemoved
func (v tableView[T]) Save(ctx context.Context, entity any) (int64, error) {
	e, ok := entity.(*T)
	if !ok || e == nil {
		return 0, fmt.Errorf("%s: %w: got %T", v.repo.table, types.ErrInvalidData, entity)
	}
	if err := v.repo.store.checkOpen(); err != nil {
		return 0, err
	}
	m := v.repo.codec.Meta(e)
	removed := m.Removed
	err := v.repo.store.tx.run(ctx, func(ctx context.Context) error {
		if m.ID == 0 {
			return v.insert(ctx, e, removed)
		}
		gone, exists, err := v.repo.removedFlag(ctx, m.ID)
		switch {
		case err != nil:
			return err
		case !exists:
			return v.insert(ctx, e, removed)
		case gone && removed:
			return nil
		case removed:
			if err := v.repo.Remove(ctx, m.ID); err != nil {
				return err
			}
			m.Removed = true
			return nil
		}
		return v.repo.Merge(ctx, e)
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (v tableView[T]) insert(ctx context.Context, e *T, removed bool) error {
	if err := v.repo.Insert(ctx, e); err != nil {
		return err
	}
	if !removed {
		return nil
	}
	m := v.repo.codec.Meta(e)
	if err := v.repo.Remove(ctx, m.ID); err != nil {
		return err
	}
	m.Removed = true
	return nil
}

func (v tableView[T]) Remove(ctx context.Context, id int64) error {
	return v.repo.Remove(ctx, id)
}

func (v tableView[T]) DeleteAll(ctx context.Context) error {
	return v.repo.DeleteAll(ctx)
}

func (v tableView[T]) Count(ctx context.Context, includeRemoved bool) (int, error) {
	return v.repo.Count(ctx, includeRemoved)
}
