package types

import "context"

// Table gives name-based access to one entity repository. Entities pass
// through as any; callers type-assert to the concrete struct pointer.
type Table interface {
	// Name returns the storage table name.
	Name() string

	// New allocates an empty entity of the table's type, for decoding.
	New() any

	// Get returns the entity with the given ID. Returns ErrNotFound when no
	// row exists, or when the row is tombstoned and includeRemoved is false.
	Get(ctx context.Context, id int64, includeRemoved bool) (any, error)

	// List returns entities matching opts in the table's stable order.
	List(ctx context.Context, opts ListOptions) ([]any, error)

	// Save inserts the entity when its ID is zero or unknown and updates it
	// otherwise, keeping stored blobs the entity does not carry. An entity
	// flagged removed is stored as a tombstone; a stored tombstone refuses
	// an active entity with ErrRemoved. Returns the ID used.
	Save(ctx context.Context, entity any) (int64, error)

	// Remove tombstones the entity.
	Remove(ctx context.Context, id int64) error

	// DeleteAll hard-deletes every row and its children.
	DeleteAll(ctx context.Context) error

	// Count returns the number of rows.
	Count(ctx context.Context, includeRemoved bool) (int, error)
}

// Store is an open canvass database.
type Store interface {
	// Table returns the Table for the given name, or ErrTableNotFound.
	Table(name string) (Table, error)

	// Close releases the store. Idempotent; later operations return
	// ErrStoreClosed.
	Close() error
}
