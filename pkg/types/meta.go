package types

import "time"

// Meta carries the bookkeeping columns every persisted entity has.
type Meta struct {
	// ID is immutable once assigned and unique within its entity type. Zero
	// means "not yet assigned"; Insert generates one.
	ID int64 `json:"id"`

	// LastModified is stamped by the store on every write and never taken
	// from the caller. It only moves forward.
	LastModified time.Time `json:"last_modified"`

	// Removed marks a tombstone. Tombstones are terminal.
	Removed bool `json:"removed"`
}

// ListOptions filters a repository listing.
type ListOptions struct {
	// Search is matched case-insensitively as a substring of any textual
	// field, custom field values included. Empty matches everything.
	Search string

	// IncludeRemoved also returns tombstoned rows.
	IncludeRemoved bool

	// ModifiedSince keeps rows whose last_modified is at or after the given
	// instant. The zero time disables the filter.
	ModifiedSince time.Time
}
