package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

var (
	stamp    = time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC)
	birthday = time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)
	ends     = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
)

func roundTrip[T any](t *testing.T, m Mapper[T], e *T) *T {
	t.Helper()
	row, err := m.ToRow(e)
	require.NoError(t, err)
	got, err := m.FromRow(row)
	require.NoError(t, err)
	return got
}

func TestCustomerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    types.Customer
	}{
		{
			name: "every field set",
			c: types.Customer{
				Meta:         types.Meta{ID: 42, LastModified: stamp, Removed: true},
				Title:        "Dr.",
				FirstName:    "Ann",
				LastName:     "Lee",
				PhoneHome:    "555-1111",
				PhoneMobile:  "555-3333",
				PhoneWork:    "555-4444",
				Email:        "ann@example.com",
				Street:       "1 Main St",
				Zipcode:      "12345",
				City:         "Springfield",
				Country:      "US",
				Birthday:     &birthday,
				Notes:        "prefers mornings",
				Group:        "gold",
				CustomFields: types.CustomFields{"roof": "slate", "dog": "yes"},
				Image:        []byte{0x89, 0x50, 0x4e, 0x47},
				Consent:      []byte("signed"),
			},
		},
		{
			name: "null birthday and blobs",
			c: types.Customer{
				Meta:      types.Meta{ID: 7, LastModified: stamp},
				FirstName: "Bob",
			},
		},
		{
			name: "zero value",
			c:    types.Customer{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip[types.Customer](t, CustomerCodec{}, &tt.c)
			assert.Equal(t, &tt.c, got)
		})
	}
}

func TestCustomerToRowStorageValues(t *testing.T) {
	c := &types.Customer{
		Meta:     types.Meta{ID: 1, LastModified: stamp},
		Birthday: &birthday,
		Image:    []byte{},
	}
	row, err := CustomerCodec{}.ToRow(c)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01 10:30:15", row[ColLastModified])
	assert.Equal(t, "1980-05-17", row["birthday"])
	assert.Equal(t, int64(0), row[ColRemoved])
	assert.Nil(t, row["image"], "empty blob is stored as NULL")
	assert.Nil(t, row["consent"])
	assert.Equal(t, "", row["custom_fields"])
	assert.ElementsMatch(t, CustomerCodec{}.Columns(), keys(row))
}

func TestCustomerFromRowEmptyBlobIsNil(t *testing.T) {
	c, err := CustomerCodec{}.FromRow(Row{ColID: int64(3), "image": []byte{}, "consent": nil})
	require.NoError(t, err)
	assert.Nil(t, c.Image)
	assert.Nil(t, c.Consent)
}

func TestFromRowRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		decode  func() error
		wantErr error
	}{
		{
			name: "unknown field type",
			decode: func() error {
				_, err := CustomFieldCodec{}.FromRow(Row{ColID: int64(1), "title": "Roof", "type": int64(9)})
				return err
			},
			wantErr: types.ErrUnknownEnum,
		},
		{
			name: "unknown knock outcome",
			decode: func() error {
				_, err := KnockCodec{}.FromRow(Row{ColID: int64(1), "outcome": int64(-2)})
				return err
			},
			wantErr: types.ErrUnknownEnum,
		},
		{
			name: "malformed timestamp",
			decode: func() error {
				_, err := NoteCodec{}.FromRow(Row{ColID: int64(1), "created_at": "yesterday"})
				return err
			},
			wantErr: types.ErrInvalidData,
		},
		{
			name: "text in an integer column",
			decode: func() error {
				_, err := TripCodec{}.FromRow(Row{ColID: "abc"})
				return err
			},
			wantErr: types.ErrInvalidData,
		},
		{
			name: "broken custom fields",
			decode: func() error {
				_, err := CustomerCodec{}.FromRow(Row{ColID: int64(1), "custom_fields": "{not json"})
				return err
			},
			wantErr: types.ErrInvalidData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.decode(), tt.wantErr)
		})
	}
}

func TestToRowRejectsUnknownEnums(t *testing.T) {
	_, err := AppointmentCodec{}.ToRow(&types.Appointment{Type: types.AppointmentType(12)})
	assert.ErrorIs(t, err, types.ErrUnknownEnum)

	_, err = CustomFieldCodec{}.ToRow(&types.CustomField{Type: types.FieldType(5)})
	assert.ErrorIs(t, err, types.ErrUnknownEnum)
}

func TestSiblingRoundTrips(t *testing.T) {
	meta := types.Meta{ID: 99, LastModified: stamp}

	t.Run("prospect", func(t *testing.T) {
		p := &types.Prospect{
			Meta: meta, FirstName: "Cara", LastName: "Diaz", Company: "Acme",
			Phone: "555-0000", Email: "c@acme.test", Street: "2 Elm", Zipcode: "999",
			City: "Shelbyville", Latitude: 47.6, Longitude: -122.3,
			Status: types.ProspectQualified, Notes: "call back",
		}
		assert.Equal(t, p, roundTrip[types.Prospect](t, ProspectCodec{}, p))
	})

	t.Run("appointment with end", func(t *testing.T) {
		a := &types.Appointment{
			Meta: meta, CustomerID: 7, Title: "Demo", Location: "HQ",
			StartsAt: stamp, EndsAt: &ends, Type: types.AppointmentDemo,
		}
		assert.Equal(t, a, roundTrip[types.Appointment](t, AppointmentCodec{}, a))
	})

	t.Run("appointment without end", func(t *testing.T) {
		a := &types.Appointment{Meta: meta, Title: "Call", StartsAt: stamp, Type: types.AppointmentCall}
		assert.Equal(t, a, roundTrip[types.Appointment](t, AppointmentCodec{}, a))
	})

	t.Run("knock", func(t *testing.T) {
		k := &types.Knock{
			Meta: meta, ProspectID: 5, Latitude: 1.5, Longitude: 2.5,
			Outcome: types.KnockSale, KnockedAt: stamp, Notes: "signed",
		}
		assert.Equal(t, k, roundTrip[types.Knock](t, KnockCodec{}, k))
	})

	t.Run("note", func(t *testing.T) {
		n := &types.Note{Meta: meta, CustomerID: 3, Text: "gate code 1234", CreatedAt: stamp}
		assert.Equal(t, n, roundTrip[types.Note](t, NoteCodec{}, n))
	})

	t.Run("trip", func(t *testing.T) {
		tr := &types.Trip{Meta: meta, Title: "North loop", StartedAt: stamp, DistanceMeters: 12500}
		assert.Equal(t, tr, roundTrip[types.Trip](t, TripCodec{}, tr))
	})

	t.Run("objection", func(t *testing.T) {
		o := &types.Objection{Meta: meta, Title: "Too expensive", Answer: "Financing", Category: "price", UsedCount: 4}
		assert.Equal(t, o, roundTrip[types.Objection](t, ObjectionCodec{}, o))
	})

	t.Run("custom field", func(t *testing.T) {
		f := &types.CustomField{Meta: meta, Title: "Roof", Type: types.FieldChoice}
		assert.Equal(t, f, roundTrip[types.CustomField](t, CustomFieldCodec{}, f))
	})

	t.Run("preset", func(t *testing.T) {
		p := &types.CustomFieldPreset{ID: 4, FieldID: 99, Title: "slate"}
		assert.Equal(t, p, roundTrip[types.CustomFieldPreset](t, PresetCodec{}, p))
	})

	t.Run("file", func(t *testing.T) {
		f := &types.CustomerFile{ID: 8, CustomerID: 7, Name: "consent", Content: []byte("pdf")}
		assert.Equal(t, f, roundTrip[types.CustomerFile](t, FileCodec{}, f))
	})
}

func TestCustomerSearchTextIncludesCustomFieldValues(t *testing.T) {
	c := &types.Customer{FirstName: "Ann", CustomFields: types.CustomFields{"b": "second", "a": "first"}}
	text := CustomerCodec{}.SearchText(c)
	assert.Contains(t, text, "Ann")
	assert.Equal(t, []string{"first", "second"}, text[len(text)-2:])
}

func TestRowValuesFollowsColumnOrder(t *testing.T) {
	r := Row{"a": int64(1), "b": "two"}
	assert.Equal(t, []any{"two", int64(1), nil}, r.Values([]string{"b", "a", "missing"}))
}

func keys(r Row) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
