package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

func TestCustomFields(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store)
	}{
		{
			name: "duplicate title is a unique violation and one row remains",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()

				require.NoError(t, fields.Insert(ctx, &types.CustomField{Title: "roof", Type: types.FieldText}))
				dup := &types.CustomField{Title: "roof", Type: types.FieldNumber}
				err := fields.Insert(ctx, dup)
				require.Error(t, err)
				assert.True(t, types.IsUniqueViolation(err))
				assert.Zero(t, dup.ID, "failed insert leaves the definition untouched")

				var n int
				require.NoError(t, s.db.QueryRow(
					`SELECT COUNT(*) FROM customer_extra_fields WHERE title = 'roof'`).Scan(&n))
				assert.Equal(t, 1, n)
			},
		},
		{
			name: "list is ordered by title",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()
				for _, title := range []string{"siding", "Pets", "roof"} {
					require.NoError(t, fields.Insert(ctx, &types.CustomField{Title: title}))
				}

				got, err := fields.List(ctx)
				require.NoError(t, err)
				var titles []string
				for _, f := range got {
					titles = append(titles, f.Title)
				}
				assert.Equal(t, []string{"Pets", "roof", "siding"}, titles)
			},
		},
		{
			name: "update renames and retypes",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()
				f := &types.CustomField{Title: "roof"}
				require.NoError(t, fields.Insert(ctx, f))

				f.Title = "roof material"
				f.Type = types.FieldChoice
				require.NoError(t, fields.Update(ctx, f))

				got, err := fields.Get(ctx, f.ID)
				require.NoError(t, err)
				assert.Equal(t, f, got)
			},
		},
		{
			name: "update to a taken title is a unique violation",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()
				require.NoError(t, fields.Insert(ctx, &types.CustomField{Title: "roof"}))
				f := &types.CustomField{Title: "pets"}
				require.NoError(t, fields.Insert(ctx, f))

				f.Title = "roof"
				assert.True(t, types.IsUniqueViolation(fields.Update(ctx, f)))
			},
		},
		{
			name: "update rejects unknown types and missing rows",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()

				err := fields.Update(ctx, &types.CustomField{Meta: types.Meta{ID: 1}, Type: types.FieldType(99)})
				assert.ErrorIs(t, err, types.ErrUnknownEnum)
				err = fields.Update(ctx, &types.CustomField{Meta: types.Meta{ID: 404}, Title: "x"})
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "remove deletes the definition and its presets",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				fields := s.Customers().Fields()
				presets := s.Customers().Presets()

				f := &types.CustomField{Title: "roof", Type: types.FieldChoice}
				require.NoError(t, fields.Insert(ctx, f))
				for _, title := range []string{"slate", "tile"} {
					_, err := presets.Insert(ctx, f.ID, title)
					require.NoError(t, err)
				}

				require.NoError(t, fields.Remove(ctx, f.ID))

				got, err := fields.Get(ctx, f.ID)
				require.NoError(t, err)
				assert.Nil(t, got, "definitions are deleted, not tombstoned")
				left, err := presets.List(ctx, f.ID)
				require.NoError(t, err)
				assert.Empty(t, left)

				assert.ErrorIs(t, fields.Remove(ctx, f.ID), types.ErrNotFound)
				assert.NoError(t, fields.Insert(ctx, &types.CustomField{Title: "roof"}), "title is free again")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, openTestStore(t))
		})
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store)
	}{
		{
			name: "preset of unknown field is a foreign key violation",
			check: func(t *testing.T, s *Store) {
				_, err := s.Customers().Presets().Insert(context.Background(), 404, "slate")
				require.Error(t, err)
				var ce *types.ConstraintError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, types.ConstraintForeignKey, ce.Constraint)
			},
		},
		{
			name: "list returns one field's presets ordered by title",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				roof := &types.CustomField{Title: "roof"}
				pets := &types.CustomField{Title: "pets"}
				require.NoError(t, s.Customers().Fields().Insert(ctx, roof))
				require.NoError(t, s.Customers().Fields().Insert(ctx, pets))

				presets := s.Customers().Presets()
				for _, title := range []string{"tile", "Slate", "metal"} {
					_, err := presets.Insert(ctx, roof.ID, title)
					require.NoError(t, err)
				}
				_, err := presets.Insert(ctx, pets.ID, "dog")
				require.NoError(t, err)

				got, err := presets.List(ctx, roof.ID)
				require.NoError(t, err)
				var titles []string
				for _, p := range got {
					assert.Equal(t, roof.ID, p.FieldID)
					titles = append(titles, p.Title)
				}
				assert.Equal(t, []string{"metal", "Slate", "tile"}, titles)
			},
		},
		{
			name: "remove deletes one preset",
			check: func(t *testing.T, s *Store) {
				ctx := context.Background()
				f := &types.CustomField{Title: "roof"}
				require.NoError(t, s.Customers().Fields().Insert(ctx, f))
				p, err := s.Customers().Presets().Insert(ctx, f.ID, "slate")
				require.NoError(t, err)

				require.NoError(t, s.Customers().Presets().Remove(ctx, p.ID))
				assert.ErrorIs(t, s.Customers().Presets().Remove(ctx, p.ID), types.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, openTestStore(t))
		})
	}
}

func TestCustomerFiles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	files := s.Customers().Files()

	err := files.Insert(ctx, &types.CustomerFile{CustomerID: 404, Content: []byte("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)

	c := &types.Customer{FirstName: "Ann"}
	require.NoError(t, s.Customers().Insert(ctx, c))

	named := &types.CustomerFile{CustomerID: c.ID, Name: "b.pdf", Content: []byte("pdf")}
	unnamed := &types.CustomerFile{CustomerID: c.ID, Content: []byte("raw")}
	require.NoError(t, files.Insert(ctx, named))
	require.NoError(t, files.Insert(ctx, unnamed))
	assert.NotEmpty(t, unnamed.Name, "an empty name is generated")

	empty := &types.CustomerFile{CustomerID: c.ID}
	err = files.Insert(ctx, empty)
	assert.True(t, types.IsConstraint(err), "content is required: %v", err)
	assert.Equal(t, &types.CustomerFile{CustomerID: c.ID}, empty, "a failed insert leaves the file as it was")

	list, err := files.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, f := range list {
		assert.Nil(t, f.Content, "listings do not load content")
	}

	got, err := files.Get(ctx, named.ID)
	require.NoError(t, err)
	assert.Equal(t, named, got)

	require.NoError(t, files.Remove(ctx, named.ID))
	assert.ErrorIs(t, files.Remove(ctx, named.ID), types.ErrNotFound)
	got, err = files.Get(ctx, named.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Customers().Remove(ctx, c.ID))
	err = files.Insert(ctx, &types.CustomerFile{CustomerID: c.ID, Content: []byte("late")})
	assert.ErrorIs(t, err, types.ErrRemoved)
}
