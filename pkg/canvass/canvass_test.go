package canvass_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func TestOpenInsertAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := canvass.Open(ctx, types.Config{DataDir: dir})
	require.NoError(t, err)

	c := &types.Customer{FirstName: "Ann", PhoneHome: "555-1111"}
	require.NoError(t, store.Customers().Insert(ctx, c))
	require.NoError(t, store.Close())

	store, err = canvass.Open(ctx, types.Config{DataDir: dir})
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Customers().Get(ctx, c.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ann", got.FirstName)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := canvass.Open(context.Background(), types.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
