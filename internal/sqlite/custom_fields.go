package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/canvass/internal/codec"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// CustomFieldRepository stores custom field definitions. Titles are unique;
// a clash surfaces as a *types.ConstraintError. Definitions are deleted
// outright together with their presets, so a title can be reused after
// removal. The removed column stays in the table for older readers and is
// always 0.
type CustomFieldRepository struct {
	store *Store
}

var customFieldSelect = "SELECT " + strings.Join(codec.CustomFieldColumns, ", ") + " FROM customer_extra_fields"

// List returns every definition ordered by title.
func (r *CustomFieldRepository) List(ctx context.Context) ([]*types.CustomField, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	var out []*types.CustomField
	err := r.store.tx.read(ctx, func(db DBTX) error {
		rows, err := db.QueryContext(ctx,
			customFieldSelect+" WHERE removed = 0 ORDER BY title COLLATE NOCASE, id")
		if err != nil {
			return fmt.Errorf("listing custom fields: %w", classify(types.CustomFieldsTable, err))
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanRow(rows, codec.CustomFieldColumns)
			if err != nil {
				return fmt.Errorf("listing custom fields: %w", err)
			}
			f, err := codec.CustomFieldCodec{}.FromRow(row)
			if err != nil {
				return fmt.Errorf("decoding custom field %v: %w", row[codec.ColID], err)
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

// Get returns the definition, or nil when absent.
func (r *CustomFieldRepository) Get(ctx context.Context, id int64) (*types.CustomField, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	var row codec.Row
	err := r.store.tx.read(ctx, func(db DBTX) error {
		var err error
		row, err = queryOne(ctx, db, codec.CustomFieldColumns, customFieldSelect+" WHERE id = ?", id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting custom field %d: %w", id, classify(types.CustomFieldsTable, err))
	}
	if row == nil {
		return nil, nil
	}
	return codec.CustomFieldCodec{}.FromRow(row)
}

// Insert adds a definition, generating its ID when zero.
func (r *CustomFieldRepository) Insert(ctx context.Context, f *types.CustomField) error {
	if f == nil {
		return fmt.Errorf("inserting custom field: %w", types.ErrInvalidData)
	}
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		prev := f.Meta
		if f.ID == 0 {
			f.ID = r.store.newID()
		}
		f.LastModified = r.store.stamp()
		f.Removed = false

		row, err := codec.CustomFieldCodec{}.ToRow(f)
		if err == nil {
			_, err = r.store.tx.Querier(ctx).ExecContext(ctx,
				`INSERT INTO customer_extra_fields (id, title, type, last_modified, removed) VALUES (?, ?, ?, ?, ?)`,
				row.Values(codec.CustomFieldColumns)...)
			err = classify(types.CustomFieldsTable, err)
		}
		if err != nil {
			f.Meta = prev
			return fmt.Errorf("inserting custom field %q: %w", f.Title, err)
		}
		return nil
	})
}

// Update renames or retypes a definition.
func (r *CustomFieldRepository) Update(ctx context.Context, f *types.CustomField) error {
	if f == nil {
		return fmt.Errorf("updating custom field: %w", types.ErrInvalidData)
	}
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	if _, err := types.FieldTypeFromInt(int64(f.Type)); err != nil {
		return fmt.Errorf("updating custom field %d: %w", f.ID, err)
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		var stored string
		err := r.store.tx.Querier(ctx).QueryRowContext(ctx,
			`UPDATE customer_extra_fields SET title = ?, type = ?, last_modified = max(?, last_modified)
             WHERE id = ? RETURNING last_modified`,
			f.Title, int64(f.Type), codec.FormatTimestamp(r.store.stamp()), f.ID).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("custom field %d: %w", f.ID, types.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("updating custom field %d: %w", f.ID, classify(types.CustomFieldsTable, err))
		}
		t, err := codec.ParseTimestamp(stored)
		if err != nil {
			return err
		}
		f.LastModified = t
		return nil
	})
}

// Remove deletes a definition and its presets.
func (r *CustomFieldRepository) Remove(ctx context.Context, id int64) error {
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		q := r.store.tx.Querier(ctx)
		if _, err := q.ExecContext(ctx, `DELETE FROM customer_extra_presets WHERE extra_field_id = ?`, id); err != nil {
			return fmt.Errorf("removing presets of field %d: %w", id, classify(types.PresetsTable, err))
		}
		res, err := q.ExecContext(ctx, `DELETE FROM customer_extra_fields WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("removing custom field %d: %w", id, classify(types.CustomFieldsTable, err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("custom field %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}

// PresetRepository stores suggested values of custom fields.
type PresetRepository struct {
	store *Store
}

// List returns the presets of one field ordered by title.
func (r *PresetRepository) List(ctx context.Context, fieldID int64) ([]*types.CustomFieldPreset, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	var out []*types.CustomFieldPreset
	err := r.store.tx.read(ctx, func(db DBTX) error {
		rows, err := db.QueryContext(ctx,
			`SELECT id, extra_field_id, title FROM customer_extra_presets
             WHERE extra_field_id = ? ORDER BY title COLLATE NOCASE, id`, fieldID)
		if err != nil {
			return fmt.Errorf("listing presets: %w", classify(types.PresetsTable, err))
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanRow(rows, codec.PresetColumns)
			if err != nil {
				return fmt.Errorf("listing presets: %w", err)
			}
			p, err := codec.PresetCodec{}.FromRow(row)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert adds a preset to an existing field. An unknown field is a foreign
// key ConstraintError.
func (r *PresetRepository) Insert(ctx context.Context, fieldID int64, title string) (*types.CustomFieldPreset, error) {
	if err := r.store.checkOpen(); err != nil {
		return nil, err
	}
	p := &types.CustomFieldPreset{ID: r.store.newID(), FieldID: fieldID, Title: title}
	err := r.store.tx.run(ctx, func(ctx context.Context) error {
		row, err := codec.PresetCodec{}.ToRow(p)
		if err != nil {
			return err
		}
		_, err = r.store.tx.Querier(ctx).ExecContext(ctx,
			`INSERT INTO customer_extra_presets (id, extra_field_id, title) VALUES (?, ?, ?)`,
			row.Values(codec.PresetColumns)...)
		return classify(types.PresetsTable, err)
	})
	if err != nil {
		return nil, fmt.Errorf("inserting preset %q: %w", title, err)
	}
	return p, nil
}

// Remove deletes one preset.
func (r *PresetRepository) Remove(ctx context.Context, id int64) error {
	if err := r.store.checkOpen(); err != nil {
		return err
	}
	return r.store.tx.run(ctx, func(ctx context.Context) error {
		res, err := r.store.tx.Querier(ctx).ExecContext(ctx, `DELETE FROM customer_extra_presets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("removing preset %d: %w", id, classify(types.PresetsTable, err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("preset %d: %w", id, types.ErrNotFound)
		}
		return nil
	})
}
