package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// writeV1Database creates a database in dir with the first released schema
// and a few rows, as an old install would have left it.
func writeV1Database(t *testing.T, dir string) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFileName))
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range baseSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	for _, stmt := range []string{
		`INSERT INTO customer (id, first_name, phone_home, notes, consent, last_modified)
         VALUES (1, 'Ann', '555-1111', '#roof: slate' || char(10) || 'Likes dogs' || char(10) || '#pets: 2', X'0102', '2020-01-01 00:00:00')`,
		`INSERT INTO customer (id, first_name, notes, last_modified) VALUES (2, 'Bob', 'no tags', '2020-01-01 00:00:00')`,
		`INSERT INTO customer_extra_fields (id, title, type) VALUES (10, 'roof', 4)`,
		`INSERT INTO customer_extra_presets (id, title, extra_field_id) VALUES (11, 'slate', 10)`,
		`INSERT INTO appointment (id, title, starts_at, last_modified) VALUES (20, 'Visit', '2020-02-01 10:00:00', '2020-01-01 00:00:00')`,
		`INSERT INTO knock (id, outcome, knocked_at, last_modified) VALUES (30, 2, '2020-02-01 10:00:00', '2020-01-01 00:00:00')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}

// dump renders every row of every table, plus the schema, as text.
func dump(t *testing.T, db *sql.DB) []string {
	t.Helper()
	var out []string
	rows, err := db.Query(`SELECT type, name, COALESCE(sql, '') FROM sqlite_master ORDER BY type, name`)
	require.NoError(t, err)
	var tables []string
	for rows.Next() {
		var typ, name, ddl string
		require.NoError(t, rows.Scan(&typ, &name, &ddl))
		out = append(out, typ+" "+name+" "+ddl)
		if typ == "table" {
			tables = append(tables, name)
		}
	}
	require.NoError(t, rows.Close())

	for _, table := range tables {
		rows, err := db.Query("SELECT * FROM " + table + " ORDER BY rowid")
		require.NoError(t, err)
		cols, err := rows.Columns()
		require.NoError(t, err)
		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			require.NoError(t, rows.Scan(ptrs...))
			out = append(out, fmt.Sprintf("%s %v", table, vals))
		}
		require.NoError(t, rows.Close())
	}
	return out
}

func TestMigrateV1Database(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeV1Database(t, dir)

	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := openTestStoreIn(t, dir, WithClock(func() time.Time { return stamp }))

	assert.Contains(t, columnNames(t, s.db, "customer"), "customer_group")
	assert.Contains(t, columnNames(t, s.db, "customer"), "custom_fields")
	assert.Contains(t, columnNames(t, s.db, "customer"), "consent", "consent column is kept")
	assert.Contains(t, columnNames(t, s.db, "appointment"), "type")
	assert.Contains(t, columnNames(t, s.db, "knock"), "notes")

	ann, err := s.Customers().Get(ctx, 1, false)
	require.NoError(t, err)
	require.NotNil(t, ann)
	assert.Equal(t, types.CustomFields{"roof": "slate", "pets": "2"}, ann.CustomFields)
	assert.Contains(t, ann.Notes, "Likes dogs", "notes are left as they were")
	assert.Equal(t, []byte{1, 2}, ann.Consent)
	assert.Equal(t, stamp, ann.LastModified)

	bob, err := s.Customers().Get(ctx, 2, false)
	require.NoError(t, err)
	assert.Nil(t, bob.CustomFields)
	assert.Equal(t, stamp, bob.LastModified)

	files, err := s.Customers().Files().List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "consent", files[0].Name)
	file, err := s.Customers().Files().Get(ctx, files[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, file.Content)

	field, err := s.Customers().Fields().Get(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, field)
	assert.Equal(t, types.FieldChoice, field.Type)
	assert.Equal(t, stamp, field.LastModified)
	assert.False(t, field.Removed)

	presets, err := s.Customers().Presets().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "slate", presets[0].Title)

	appt, err := s.Appointments().Get(ctx, 20, false)
	require.NoError(t, err)
	assert.Equal(t, types.AppointmentVisit, appt.Type)

	knock, err := s.Knocks().Get(ctx, 30, false)
	require.NoError(t, err)
	assert.Equal(t, types.KnockInterested, knock.Outcome)
	assert.Empty(t, knock.Notes)
}

func TestMigrateV1DatabaseReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeV1Database(t, dir)

	s, err := Open(ctx, types.Config{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openTestStoreIn(t, dir)
	n, err := s.Customers().Files().Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "consent is copied once")
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s := openTestStore(t, WithClock(clock.Now))

	c := &types.Customer{FirstName: "Ann", Notes: "#roof: slate", Consent: []byte("yes")}
	require.NoError(t, s.Customers().Insert(ctx, c))
	require.NoError(t, s.Customers().Fields().Insert(ctx, &types.CustomField{Title: "roof"}))
	before := dump(t, s.db)

	clock.Advance(time.Hour)
	require.NoError(t, s.ensureSchema(ctx, migrations))
	require.NoError(t, s.ensureSchema(ctx, migrations))

	assert.Equal(t, before, dump(t, s.db))
}

func TestFailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Customers().Insert(ctx, &types.Customer{FirstName: "Ann"}))
	before := dump(t, s.db)

	errHalfway := errors.New("halfway")
	steps := []migration{{
		table:  "customer",
		column: "loyalty",
		apply: func(ctx context.Context, _ *Store, q DBTX, stamp string) (int64, error) {
			if _, err := addColumn("customer", "loyalty INTEGER NOT NULL DEFAULT 0")(ctx, nil, q, stamp); err != nil {
				return 0, err
			}
			return 0, errHalfway
		},
	}}

	err := s.ensureSchema(ctx, steps)
	require.Error(t, err)
	var se *types.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "customer.loyalty", se.Step)
	assert.ErrorIs(t, err, errHalfway)

	assert.NotContains(t, columnNames(t, s.db, "customer"), "loyalty")
	assert.Equal(t, before, dump(t, s.db))

	// The store stays usable after a failed step.
	assert.NoError(t, s.Customers().Insert(ctx, &types.Customer{FirstName: "Bob"}))
}

func TestOpenFailsOnBrokenSchema(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFileName))
	require.NoError(t, err)
	// A view squatting on the customer table name cannot be indexed.
	_, err = db.Exec(`CREATE VIEW customer AS SELECT 1 AS id`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(context.Background(), types.Config{DataDir: dir})
	require.Error(t, err)
	assert.True(t, types.IsSchema(err))

	// The failed open released the file.
	_, err = Open(context.Background(), types.Config{DataDir: dir})
	assert.True(t, types.IsSchema(err))
}
