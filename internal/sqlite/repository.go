package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/canvass/internal/codec"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// entityOptions are the per-table parts of a Repository.
type entityOptions struct {
	// orderBy is the SQL ordering for listings; it must end in a unique
	// column so the order is total.
	orderBy string

	// scrub holds the values written over identifying columns on Remove.
	scrub codec.Row

	// children are hard-deleted with their parent.
	children []childTable
}

type childTable struct {
	table  string
	column string
}

// Repository stores one entity type in its own table. Mutations join the
// transaction carried by ctx, if any, and otherwise run in their own.
type Repository[T any] struct {
	store *Store
	codec codec.Codec[T]
	opts  entityOptions
	table string

	listCols   []string
	updateCols []string
	scrubCols  []string

	insertSQL string
	updateSQL string
	mergeSQL  string
	getSQL    string
	removeSQL string
}

func newRepository[T any](s *Store, c codec.Codec[T], opts entityOptions) *Repository[T] {
	r := &Repository[T]{store: s, codec: c, opts: opts, table: c.Table()}

	cols := c.Columns()
	blobs := c.BlobColumns()
	for _, col := range cols {
		if !slices.Contains(blobs, col) {
			r.listCols = append(r.listCols, col)
		}
		switch col {
		case codec.ColID, codec.ColLastModified, codec.ColRemoved:
		default:
			r.updateCols = append(r.updateCols, col)
		}
	}

	r.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(cols, ", "), placeholders(len(cols)))

	sets := make([]string, 0, len(r.updateCols)+1)
	merges := make([]string, 0, len(r.updateCols)+1)
	for _, col := range r.updateCols {
		sets = append(sets, col+" = ?")
		if slices.Contains(blobs, col) {
			merges = append(merges, fmt.Sprintf("%s = coalesce(?, %s)", col, col))
		} else {
			merges = append(merges, col+" = ?")
		}
	}
	sets = append(sets, "last_modified = max(?, last_modified)")
	merges = append(merges, "last_modified = max(?, last_modified)")
	const updateFmt = "UPDATE %s SET %s WHERE id = ? AND removed = 0 RETURNING last_modified"
	r.updateSQL = fmt.Sprintf(updateFmt, r.table, strings.Join(sets, ", "))
	r.mergeSQL = fmt.Sprintf(updateFmt, r.table, strings.Join(merges, ", "))

	r.getSQL = fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(cols, ", "), r.table)

	r.scrubCols = make([]string, 0, len(opts.scrub))
	for col := range opts.scrub {
		r.scrubCols = append(r.scrubCols, col)
	}
	slices.Sort(r.scrubCols)
	sets = sets[:0]
	for _, col := range r.scrubCols {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "removed = 1", "last_modified = max(?, last_modified)")
	r.removeSQL = fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.table, strings.Join(sets, ", "))
	return r
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Table returns the storage table name.
func (r *Repository[T]) Table() string { return r.table }

// List returns the entities matching opts in the table's stable order.
// Blob columns are never loaded; use Get for those.
func (r *Repository[T]) List(ctx context.Context, opts types.ListOptions) ([]*T, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if !opts.IncludeRemoved {
		where = append(where, "removed = 0")
	}
	if !opts.ModifiedSince.IsZero() {
		where = append(where, "last_modified >= ?")
		args = append(args, codec.FormatTimestamp(opts.ModifiedSince))
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.listCols, ", "), r.table)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + r.opts.orderBy

	match := newMatcher(opts.Search)
	var out []*T
	err := r.store.tx.read(ctx, func(db DBTX) error {
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("listing %s: %w", r.table, classify(r.table, err))
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanRow(rows, r.listCols)
			if err != nil {
				return fmt.Errorf("listing %s: %w", r.table, err)
			}
			e, err := r.codec.FromRow(row)
			if err != nil {
				return fmt.Errorf("decoding %s %v: %w", r.table, row[codec.ColID], err)
			}
			if match.matches(r.codec.SearchText(e)) {
				out = append(out, e)
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("listing %s: %w", r.table, classify(r.table, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the entity with every column, blobs included. It returns nil
// and no error when the row does not exist, or is tombstoned and
// includeRemoved is false.
func (r *Repository[T]) Get(ctx context.Context, id int64, includeRemoved bool) (*T, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	var row codec.Row
	err := r.store.tx.read(ctx, func(db DBTX) error {
		var err error
		row, err = queryOne(ctx, db, r.codec.Columns(), r.getSQL, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", r.table, id, classify(r.table, err))
	}
	if row == nil {
		return nil, nil
	}
	e, err := r.codec.FromRow(row)
	if err != nil {
		return nil, fmt.Errorf("decoding %s %d: %w", r.table, id, err)
	}
	if r.codec.Meta(e).Removed && !includeRemoved {
		return nil, nil
	}
	return e, nil
}

// Insert writes a new row. A zero ID is replaced with a generated one.
// LastModified is stamped and Removed cleared on e. On failure e is left
// as it was.
func (r *Repository[T]) Insert(ctx context.Context, e *T) error {
	if e == nil {
		return fmt.Errorf("inserting %s: %w", r.table, types.ErrInvalidData)
	}
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	m := r.codec.Meta(e)
	if m.ID < 0 {
		return fmt.Errorf("inserting %s %d: %w", r.table, m.ID, types.ErrInvalidID)
	}

	return r.store.tx.run(ctx, func(ctx context.Context) error {
		prev := *m
		if m.ID == 0 {
			m.ID = r.store.newID()
		}
		if now := r.store.stamp(); now.After(m.LastModified) {
			m.LastModified = now
		}
		m.Removed = false

		row, err := r.codec.ToRow(e)
		if err == nil {
			_, err = r.store.tx.Querier(ctx).ExecContext(ctx, r.insertSQL, row.Values(r.codec.Columns())...)
			err = classify(r.table, err)
		}
		if err != nil {
			*m = prev
			return fmt.Errorf("inserting %s: %w", r.table, err)
		}
		return nil
	})
}

// Update overwrites every column of an active row from e. The stored
// last_modified becomes the later of now and its previous value and is
// copied back to e; the tombstone flag is never touched. Returns
// ErrNotFound for a missing row and ErrRemoved for a tombstoned one.
func (r *Repository[T]) Update(ctx context.Context, e *T) error {
	return r.update(ctx, e, r.updateSQL)
}

// Merge is Update except that blob columns left empty on e keep their
// stored content. Listings never carry blobs, so records that went through
// List are saved back with Merge.
func (r *Repository[T]) Merge(ctx context.Context, e *T) error {
	return r.update(ctx, e, r.mergeSQL)
}

func (r *Repository[T]) update(ctx context.Context, e *T, query string) error {
	if e == nil {
		return fmt.Errorf("updating %s: %w", r.table, types.ErrInvalidData)
	}
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	m := r.codec.Meta(e)
	if m.ID <= 0 {
		return fmt.Errorf("updating %s %d: %w", r.table, m.ID, types.ErrInvalidID)
	}

	return r.store.tx.run(ctx, func(ctx context.Context) error {
		row, err := r.codec.ToRow(e)
		if err != nil {
			return fmt.Errorf("updating %s %d: %w", r.table, m.ID, err)
		}
		args := append(row.Values(r.updateCols), codec.FormatTimestamp(r.store.stamp()), m.ID)

		var stored string
		err = r.store.tx.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return r.missing(ctx, m.ID)
		}
		if err != nil {
			return fmt.Errorf("updating %s %d: %w", r.table, m.ID, classify(r.table, err))
		}
		t, err := codec.ParseTimestamp(stored)
		if err != nil {
			return fmt.Errorf("updating %s %d: %w", r.table, m.ID, err)
		}
		m.LastModified = t
		m.Removed = false
		return nil
	})
}

// missing explains why a row matched no active record.
func (r *Repository[T]) missing(ctx context.Context, id int64) error {
	removed, ok, err := r.removedFlag(ctx, id)
	switch {
	case err != nil:
		return err
	case !ok:
		return fmt.Errorf("%s %d: %w", r.table, id, types.ErrNotFound)
	case removed:
		return fmt.Errorf("%s %d: %w", r.table, id, types.ErrRemoved)
	}
	return fmt.Errorf("%s %d: %w", r.table, id, types.ErrNotFound)
}

func (r *Repository[T]) removedFlag(ctx context.Context, id int64) (removed, ok bool, err error) {
	var flag int64
	err = r.store.tx.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf("SELECT removed FROM %s WHERE id = ?", r.table), id).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("checking %s %d: %w", r.table, id, classify(r.table, err))
	}
	return flag != 0, true, nil
}

// Remove tombstones a row: identifying columns are scrubbed, the row is
// flagged removed and stamped, and its child rows are deleted outright.
// Removing a tombstone again changes nothing.
func (r *Repository[T]) Remove(ctx context.Context, id int64) error {
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		removed, ok, err := r.removedFlag(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("removing %s %d: %w", r.table, id, types.ErrNotFound)
		}
		if removed {
			return nil
		}

		q := r.store.tx.Querier(ctx)
		args := append(r.opts.scrub.Values(r.scrubCols), codec.FormatTimestamp(r.store.stamp()), id)
		if _, err := q.ExecContext(ctx, r.removeSQL, args...); err != nil {
			return fmt.Errorf("removing %s %d: %w", r.table, id, classify(r.table, err))
		}
		for _, child := range r.opts.children {
			if _, err := q.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE %s = ?", child.table, child.column), id); err != nil {
				return fmt.Errorf("removing %s of %s %d: %w", child.table, r.table, id, classify(child.table, err))
			}
		}
		r.store.log.Debug(ctx, "entity removed", "table", r.table, "id", id)
		return nil
	})
}

// DeleteAll hard-deletes every row and every child row.
func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		q := r.store.tx.Querier(ctx)
		for _, child := range r.opts.children {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+child.table); err != nil {
				return fmt.Errorf("deleting %s: %w", child.table, classify(child.table, err))
			}
		}
		res, err := q.ExecContext(ctx, "DELETE FROM "+r.table)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", r.table, classify(r.table, err))
		}
		n, _ := res.RowsAffected()
		r.store.log.Info(ctx, "table purged", "table", r.table, "rows", n)
		return nil
	})
}

// Count returns the number of rows, tombstones included on request.
func (r *Repository[T]) Count(ctx context.Context, includeRemoved bool) (int, error) {
	if err := r.store.checkOpen(); err != nil {
		return 0, err
	}
	q := "SELECT COUNT(*) FROM " + r.table
	if !includeRemoved {
		q += " WHERE removed = 0"
	}
	var n int
	err := r.store.tx.read(ctx, func(db DBTX) error {
		return db.QueryRowContext(ctx, q).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.table, classify(r.table, err))
	}
	return n, nil
}

// scanRow reads the current row of rows into a Row keyed by cols.
func scanRow(rows *sql.Rows, cols []string) (codec.Row, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(codec.Row, len(cols))
	for i, c := range cols {
		row[c] = vals[i]
	}
	return row, nil
}

// queryOne returns the first row of the query, or nil when there is none.
func queryOne(ctx context.Context, q DBTX, cols []string, query string, args ...any) (codec.Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRow(rows, cols)
}

// matcher does case-insensitive substring search with Unicode case folding.
// A nil matcher matches everything.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(search string) *matcher {
	if search == "" {
		return nil
	}
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(search)}
}

func (m *matcher) matches(fields []string) bool {
	if m == nil {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(m.fold.String(f), m.needle) {
			return true
		}
	}
	return false
}
