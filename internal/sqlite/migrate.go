package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/canvass/internal/codec"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// migration brings one column into existence. It runs only when the column
// is missing, inside its own exclusive transaction, and reports how many
// rows it touched. Steps run in order; a step may rely on every earlier one.
type migration struct {
	table  string
	column string
	apply  func(ctx context.Context, s *Store, q DBTX, stamp string) (int64, error)
}

func (m migration) name() string { return m.table + "." + m.column }

// migrations is the schema history after v1, oldest first. Append only.
var migrations = []migration{
	{table: "customer", column: "customer_group",
		apply: addColumn("customer", "customer_group TEXT NOT NULL DEFAULT ''")},
	{table: "customer", column: "custom_fields",
		apply: migrateNoteFields},
	{table: "customer_extra_fields", column: "last_modified",
		apply: addColumn("customer_extra_fields", "last_modified TEXT NOT NULL DEFAULT ''")},
	{table: "customer_extra_fields", column: "removed",
		apply: addColumn("customer_extra_fields", "removed INTEGER NOT NULL DEFAULT 0")},
	{table: "customer_file", column: "content",
		apply: migrateConsentFiles},
	{table: "appointment", column: "type",
		apply: addColumn("appointment", "type INTEGER NOT NULL DEFAULT 0")},
	{table: "knock", column: "notes",
		apply: addColumn("knock", "notes TEXT NOT NULL DEFAULT ''")},
}

// ensureSchema creates the base tables and then applies each missing step.
// Any failure is returned as a SchemaError and leaves the failed step rolled
// back.
func (s *Store) ensureSchema(ctx context.Context, steps []migration) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q := s.tx.Querier(ctx)
		for _, stmt := range baseSchema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return classify("schema", err)
			}
		}
		return nil
	})
	if err != nil {
		return &types.SchemaError{Step: "base tables", Err: err}
	}

	for _, m := range steps {
		if err := s.applyMigration(ctx, m); err != nil {
			return &types.SchemaError{Step: m.name(), Err: err}
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q := s.tx.Querier(ctx)
		exists, err := columnExists(ctx, q, m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		n, err := m.apply(ctx, s, q, codec.FormatTimestamp(s.stamp()))
		if err != nil {
			return classify(m.table, err)
		}
		s.log.Info(ctx, "migration applied", "step", m.name(), "rows", n)
		return nil
	})
}

// columnExists reports whether table has column. A missing table has no
// columns.
func columnExists(ctx context.Context, q DBTX, table, column string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", table, err)
	}
	return n > 0, nil
}

// addColumn adds a column with a constant default and stamps every row.
func addColumn(table, definition string) func(context.Context, *Store, DBTX, string) (int64, error) {
	return func(ctx context.Context, _ *Store, q DBTX, stamp string) (int64, error) {
		if _, err := q.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, definition)); err != nil {
			return 0, fmt.Errorf("adding column: %w", err)
		}
		return touchAll(ctx, q, table, stamp)
	}
}

func touchAll(ctx context.Context, q DBTX, table, stamp string) (int64, error) {
	res, err := q.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET last_modified = max(?, last_modified)", table), stamp)
	if err != nil {
		return 0, fmt.Errorf("stamping %s: %w", table, err)
	}
	return res.RowsAffected()
}

// migrateNoteFields adds customer.custom_fields and lifts "#key: value"
// lines out of each customer's notes into it. Notes are left as they were.
func migrateNoteFields(ctx context.Context, _ *Store, q DBTX, stamp string) (int64, error) {
	if _, err := q.ExecContext(ctx,
		`ALTER TABLE customer ADD COLUMN custom_fields TEXT NOT NULL DEFAULT ''`); err != nil {
		return 0, fmt.Errorf("adding column: %w", err)
	}

	type pending struct {
		id     int64
		fields string
	}
	rows, err := q.QueryContext(ctx, `SELECT id, notes FROM customer`)
	if err != nil {
		return 0, fmt.Errorf("reading notes: %w", err)
	}
	var updates []pending
	for rows.Next() {
		var id int64
		var notes string
		if err := rows.Scan(&id, &notes); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning notes: %w", err)
		}
		fields := codec.ParseNoteFields(notes)
		if len(fields) == 0 {
			continue
		}
		encoded, err := codec.EncodeCustomFields(fields)
		if err != nil {
			rows.Close()
			return 0, err
		}
		updates = append(updates, pending{id: id, fields: encoded})
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, u := range updates {
		if _, err := q.ExecContext(ctx,
			`UPDATE customer SET custom_fields = ?, last_modified = max(?, last_modified) WHERE id = ?`,
			u.fields, stamp, u.id); err != nil {
			return 0, fmt.Errorf("backfilling customer %d: %w", u.id, err)
		}
	}
	return int64(len(updates)), nil
}

// migrateConsentFiles creates customer_file and copies every stored consent
// blob into a file row named "consent". The consent column stays so older
// readers keep working.
func migrateConsentFiles(ctx context.Context, s *Store, q DBTX, stamp string) (int64, error) {
	for _, stmt := range []string{createCustomerFile, indexCustomerFile} {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("creating customer_file: %w", err)
		}
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id FROM customer WHERE consent IS NOT NULL AND length(consent) > 0 ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("reading consent blobs: %w", err)
	}
	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		owners = append(owners, id)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range owners {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO customer_file (id, customer_id, name, content)
             SELECT ?, id, 'consent', consent FROM customer WHERE id = ?`,
			s.newID(), id); err != nil {
			return 0, fmt.Errorf("copying consent of customer %d: %w", id, err)
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE customer SET last_modified = max(?, last_modified) WHERE id = ?`, stamp, id); err != nil {
			return 0, err
		}
	}
	return int64(len(owners)), nil
}
