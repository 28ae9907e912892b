package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// fakeClock is a settable clock for WithClock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return openTestStoreIn(t, t.TempDir(), opts...)
}

func openTestStoreIn(t *testing.T, dir string, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), types.Config{DataDir: dir, IndexDebounce: time.Hour}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s := openTestStoreIn(t, dir)

	_, err := os.Stat(filepath.Join(dir, DBFileName))
	require.NoError(t, err, "database file should exist")
	assert.Equal(t, types.BackendSQLite, s.Config().Backend)
	assert.Equal(t, int64(types.DefaultNodeID), s.Config().NodeID)
	assert.True(t, filepath.IsAbs(s.Path()))
}

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	openTestStoreIn(t, dir)

	_, err := os.Stat(filepath.Join(dir, DBFileName))
	assert.NoError(t, err)
}

func TestOpenInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.Config
		want error
	}{
		{"unknown backend", types.Config{Backend: "postgres"}, types.ErrBackendUnknown},
		{"node id too large", types.Config{NodeID: 4096}, types.ErrNodeIDInvalid},
		{"negative debounce", types.Config{IndexDebounce: -time.Second}, types.ErrIndexDebounceInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.DataDir = t.TempDir()
			_, err := Open(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenTwiceSameFile(t *testing.T) {
	dir := t.TempDir()
	openTestStoreIn(t, dir)

	_, err := Open(context.Background(), types.Config{DataDir: dir})
	assert.ErrorIs(t, err, types.ErrAlreadyOpen)
}

func TestReopenAfterClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, types.Config{DataDir: dir})
	require.NoError(t, err)
	c := &types.Customer{FirstName: "Ann"}
	require.NoError(t, s.Customers().Insert(ctx, c))
	require.NoError(t, s.Close())

	s = openTestStoreIn(t, dir)
	got, err := s.Customers().Get(ctx, c.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.FirstName)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, types.Config{DataDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "second Close is a no-op")

	tests := []struct {
		name string
		call func() error
	}{
		{"list", func() error { _, err := s.Customers().List(ctx, types.ListOptions{}); return err }},
		{"get", func() error { _, err := s.Prospects().Get(ctx, 1, false); return err }},
		{"insert", func() error { return s.Notes().Insert(ctx, &types.Note{Text: "x"}) }},
		{"update", func() error { return s.Trips().Update(ctx, &types.Trip{Meta: types.Meta{ID: 1}}) }},
		{"remove", func() error { return s.Knocks().Remove(ctx, 1) }},
		{"count", func() error { _, err := s.Objections().Count(ctx, true); return err }},
		{"table", func() error { _, err := s.Table(types.CustomersTable); return err }},
		{"begin", func() error { _, _, err := s.Begin(ctx); return err }},
		{"fields", func() error { _, err := s.Customers().Fields().List(ctx); return err }},
		{"files", func() error { _, err := s.Customers().Files().List(ctx, 1); return err }},
		{"directory", func() error { _, err := s.Directory().Rebuild(ctx); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), types.ErrStoreClosed)
		})
	}
}

func TestTable(t *testing.T) {
	s := openTestStore(t)

	for _, name := range types.EntityTableNames {
		tbl, err := s.Table(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, tbl.Name())
	}

	_, err := s.Table("widgets")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestDSN(t *testing.T) {
	got := dsn("/data/canvass.db", 1500*time.Millisecond)
	assert.Contains(t, got, "/data/canvass.db?")
	assert.Contains(t, got, "_pragma=foreign_keys%281%29")
	assert.Contains(t, got, "_pragma=busy_timeout%281500%29")
	assert.Contains(t, got, "_txlock=exclusive")
}
