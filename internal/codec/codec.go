// Package codec converts between stored rows and domain entities.
//
// A Row holds storage values only: string, int64, float64, []byte, or nil
// for SQL NULL. Dates travel as fixed-layout UTC strings, blobs are NULL
// when absent, enums are integers checked against their mapping, and the
// customer attribute bag is a versioned JSON string. Every Codec is pure
// and stateless.
package codec

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Row is one stored record keyed by column name.
type Row map[string]any

// Values returns the row's values in cols order. Missing columns are NULL.
func (r Row) Values(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = r[c]
	}
	return out
}

// Mapper converts one entity type to and from rows.
type Mapper[T any] interface {
	ToRow(e *T) (Row, error)
	FromRow(r Row) (*T, error)
}

// Codec is a Mapper for an entity stored in its own table with the shared
// id, last_modified, and removed columns.
type Codec[T any] interface {
	Mapper[T]

	// Table is the storage table name.
	Table() string

	// Columns lists every column ToRow produces, id first.
	Columns() []string

	// BlobColumns lists the columns listings skip.
	BlobColumns() []string

	// Meta returns the entity's bookkeeping fields for in-place stamping.
	Meta(e *T) *types.Meta

	// SearchText returns the textual values a search matches against.
	SearchText(e *T) []string
}

// Column names shared by every entity table.
const (
	ColID           = "id"
	ColLastModified = "last_modified"
	ColRemoved      = "removed"
)

func metaRow(m types.Meta) Row {
	return Row{
		ColID:           m.ID,
		ColLastModified: FormatTimestamp(m.LastModified),
		ColRemoved:      boolInt(m.Removed),
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// reader pulls typed values out of a Row and keeps the first failure, so a
// FromRow can read every column and check once.
type reader struct {
	row Row
	err error
}

func newReader(r Row) *reader { return &reader{row: r} }

func (rd *reader) Err() error { return rd.err }

func (rd *reader) fail(col string, err error) {
	if rd.err == nil {
		rd.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (rd *reader) mismatch(col string, v any, want string) {
	rd.fail(col, fmt.Errorf("%w: holds %T, want %s", types.ErrInvalidData, v, want))
}

func (rd *reader) text(col string) string {
	switch v := rd.row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		rd.mismatch(col, v, "text")
		return ""
	}
}

func (rd *reader) int(col string) int64 {
	switch v := rd.row[col].(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	}
	rd.mismatch(col, rd.row[col], "integer")
	return 0
}

func (rd *reader) float(col string) float64 {
	switch v := rd.row[col].(type) {
	case nil:
		return 0
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		rd.mismatch(col, v, "real")
		return 0
	}
}

func (rd *reader) bool(col string) bool {
	return rd.int(col) != 0
}

// blob returns nil for NULL and for zero-length values.
func (rd *reader) blob(col string) []byte {
	switch v := rd.row[col].(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return v
	case string:
		if v == "" {
			return nil
		}
		return []byte(v)
	default:
		rd.mismatch(col, v, "blob")
		return nil
	}
}

func (rd *reader) timestamp(col string) time.Time {
	s := rd.text(col)
	if s == "" {
		return time.Time{}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		rd.fail(col, err)
	}
	return t
}

func (rd *reader) nullTimestamp(col string) *time.Time {
	if rd.row[col] == nil {
		return nil
	}
	t := rd.timestamp(col)
	return &t
}

func (rd *reader) nullDate(col string) *time.Time {
	if rd.row[col] == nil {
		return nil
	}
	t, err := ParseDate(rd.text(col))
	if err != nil {
		rd.fail(col, err)
		return nil
	}
	return &t
}

func (rd *reader) customFields(col string) types.CustomFields {
	f, err := DecodeCustomFields(rd.text(col))
	if err != nil {
		rd.fail(col, err)
	}
	return f
}

func (rd *reader) meta() types.Meta {
	return types.Meta{
		ID:           rd.int(ColID),
		LastModified: rd.timestamp(ColLastModified),
		Removed:      rd.bool(ColRemoved),
	}
}

// readEnum validates a stored integer through the enum's mapping.
func readEnum[E any](rd *reader, col string, from func(int64) (E, error)) E {
	v, err := from(rd.int(col))
	if err != nil {
		rd.fail(col, err)
	}
	return v
}
