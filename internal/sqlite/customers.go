package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/canvass/internal/codec"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// customerScrub blanks everything that identifies a person when a
// customer is tombstoned. Notes go too: "#key: value" lines in them are
// custom field data.
var customerScrub = codec.Row{
	"title":         "",
	"first_name":    "",
	"last_name":     "",
	"phone_home":    "",
	"phone_mobile":  "",
	"phone_work":    "",
	"email":         "",
	"street":        "",
	"birthday":      nil,
	"notes":         "",
	"custom_fields": "",
	"image":         nil,
	"consent":       nil,
}

// CustomerRepository stores customers and reaches their custom field
// definitions, presets, and attached files.
type CustomerRepository struct {
	*Repository[types.Customer]

	fields  *CustomFieldRepository
	presets *PresetRepository
	files   *FileRepository
}

func newCustomerRepository(s *Store) *CustomerRepository {
	return &CustomerRepository{
		Repository: newRepository[types.Customer](s, codec.CustomerCodec{}, entityOptions{
			orderBy:  "last_name COLLATE NOCASE, first_name COLLATE NOCASE, id",
			scrub:    customerScrub,
			children: []childTable{{table: types.CustomerFilesTable, column: "customer_id"}},
		}),
		fields:  &CustomFieldRepository{store: s},
		presets: &PresetRepository{store: s},
		files:   &FileRepository{store: s},
	}
}

func (r *CustomerRepository) Fields() *CustomFieldRepository { return r.fields }
func (r *CustomerRepository) Presets() *PresetRepository     { return r.presets }
func (r *CustomerRepository) Files() *FileRepository         { return r.files }

// FileRepository stores binary attachments of customers. Files have no
// tombstone; they are deleted outright, and with their customer.
type FileRepository struct {
	store *Store
}

// Insert attaches f to an active customer. A zero ID is generated and an
// empty name defaults to a fresh UUID. Content must be non-empty.
func (r *FileRepository) Insert(ctx context.Context, f *types.CustomerFile) error {
	if f == nil {
		return fmt.Errorf("inserting file: %w", types.ErrInvalidData)
	}
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		owner := r.store.customers.Repository
		removed, ok, err := owner.removedFlag(ctx, f.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("attaching file to customer %d: %w", f.CustomerID, types.ErrNotFound)
		}
		if removed {
			return fmt.Errorf("attaching file to customer %d: %w", f.CustomerID, types.ErrRemoved)
		}

		prev := *f
		if f.ID == 0 {
			f.ID = r.store.newID()
		}
		if strings.TrimSpace(f.Name) == "" {
			name, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("naming file: %w", err)
			}
			f.Name = name.String()
		}
		row, err := codec.FileCodec{}.ToRow(f)
		if err == nil {
			_, err = r.store.tx.Querier(ctx).ExecContext(ctx,
				`INSERT INTO customer_file (id, customer_id, name, content) VALUES (?, ?, ?, ?)`,
				row.Values(codec.FileColumns)...)
			err = classify(types.CustomerFilesTable, err)
		}
		if err != nil {
			*f = prev
			return fmt.Errorf("inserting file: %w", err)
		}
		return nil
	})
}

// List returns a customer's files ordered by name, without content.
func (r *FileRepository) List(ctx context.Context, customerID int64) ([]*types.CustomerFile, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	cols := codec.FileColumns[:3]
	var out []*types.CustomerFile
	err := r.store.tx.read(ctx, func(db DBTX) error {
		rows, err := db.QueryContext(ctx,
			`SELECT id, customer_id, name FROM customer_file WHERE customer_id = ? ORDER BY name, id`, customerID)
		if err != nil {
			return fmt.Errorf("listing files: %w", classify(types.CustomerFilesTable, err))
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return fmt.Errorf("listing files: %w", err)
			}
			f, err := codec.FileCodec{}.FromRow(row)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the file with its content, or nil when absent.
func (r *FileRepository) Get(ctx context.Context, id int64) (*types.CustomerFile, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	var row codec.Row
	err := r.store.tx.read(ctx, func(db DBTX) error {
		var err error
		row, err = queryOne(ctx, db, codec.FileColumns,
			`SELECT id, customer_id, name, content FROM customer_file WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting file %d: %w", id, classify(types.CustomerFilesTable, err))
	}
	if row == nil {
		return nil, nil
	}
	return codec.FileCodec{}.FromRow(row)
}

// Remove deletes one file.
func (r *FileRepository) Remove(ctx context.Context, id int64) error {
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		res, err := r.store.tx.Querier(ctx).ExecContext(ctx, `DELETE FROM customer_file WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("removing file %d: %w", id, classify(types.CustomerFilesTable, err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("file %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}

// Count returns how many files reference the customer.
func (r *FileRepository) Count(ctx context.Context, customerID int64) (int, error) {
	if err := r.store.checkOpen(); err != nil {
		return 0, err
	}
	var n int
	err := r.store.tx.read(ctx, func(db DBTX) error {
		return db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM customer_file WHERE customer_id = ?`, customerID).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("counting files: %w", classify(types.CustomerFilesTable, err))
	}
	return n, nil
}
