package codec

import (
	"maps"
	"slices"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// CustomerCodec maps types.Customer to the customer table.
type CustomerCodec struct{}

var _ Codec[types.Customer] = CustomerCodec{}

var customerColumns = []string{
	ColID,
	"title", "first_name", "last_name",
	"phone_home", "phone_mobile", "phone_work",
	"email", "street", "zipcode", "city", "country",
	"birthday", "notes", "customer_group", "custom_fields",
	"image", "consent",
	ColLastModified, ColRemoved,
}

func (CustomerCodec) Table() string                      { return types.CustomersTable }
func (CustomerCodec) Columns() []string                  { return customerColumns }
func (CustomerCodec) BlobColumns() []string              { return []string{"image", "consent"} }
func (CustomerCodec) Meta(c *types.Customer) *types.Meta { return &c.Meta }

func (CustomerCodec) ToRow(c *types.Customer) (Row, error) {
	fields, err := EncodeCustomFields(c.CustomFields)
	if err != nil {
		return nil, err
	}
	r := metaRow(c.Meta)
	r["title"] = c.Title
	r["first_name"] = c.FirstName
	r["last_name"] = c.LastName
	r["phone_home"] = c.PhoneHome
	r["phone_mobile"] = c.PhoneMobile
	r["phone_work"] = c.PhoneWork
	r["email"] = c.Email
	r["street"] = c.Street
	r["zipcode"] = c.Zipcode
	r["city"] = c.City
	r["country"] = c.Country
	r["birthday"] = NullDate(c.Birthday)
	r["notes"] = c.Notes
	r["customer_group"] = c.Group
	r["custom_fields"] = fields
	r["image"] = NullBlob(c.Image)
	r["consent"] = NullBlob(c.Consent)
	return r, nil
}

func (CustomerCodec) FromRow(r Row) (*types.Customer, error) {
	rd := newReader(r)
	c := &types.Customer{
		Meta:         rd.meta(),
		Title:        rd.text("title"),
		FirstName:    rd.text("first_name"),
		LastName:     rd.text("last_name"),
		PhoneHome:    rd.text("phone_home"),
		PhoneMobile:  rd.text("phone_mobile"),
		PhoneWork:    rd.text("phone_work"),
		Email:        rd.text("email"),
		Street:       rd.text("street"),
		Zipcode:      rd.text("zipcode"),
		City:         rd.text("city"),
		Country:      rd.text("country"),
		Birthday:     rd.nullDate("birthday"),
		Notes:        rd.text("notes"),
		Group:        rd.text("customer_group"),
		CustomFields: rd.customFields("custom_fields"),
		Image:        rd.blob("image"),
		Consent:      rd.blob("consent"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// SearchText covers every textual column plus each custom field value, in
// key order.
func (CustomerCodec) SearchText(c *types.Customer) []string {
	out := []string{
		c.Title, c.FirstName, c.LastName,
		c.PhoneHome, c.PhoneMobile, c.PhoneWork,
		c.Email, c.Street, c.Zipcode, c.City, c.Country,
		c.Notes, c.Group,
	}
	for _, k := range slices.Sorted(maps.Keys(c.CustomFields)) {
		out = append(out, c.CustomFields[k])
	}
	return out
}

// CustomFieldCodec maps types.CustomField to customer_extra_fields.
type CustomFieldCodec struct{}

var _ Mapper[types.CustomField] = CustomFieldCodec{}

// CustomFieldColumns lists the customer_extra_fields columns.
var CustomFieldColumns = []string{ColID, "title", "type", ColLastModified, ColRemoved}

func (CustomFieldCodec) ToRow(f *types.CustomField) (Row, error) {
	if _, err := types.FieldTypeFromInt(int64(f.Type)); err != nil {
		return nil, err
	}
	r := metaRow(f.Meta)
	r["title"] = f.Title
	r["type"] = int64(f.Type)
	return r, nil
}

func (CustomFieldCodec) FromRow(r Row) (*types.CustomField, error) {
	rd := newReader(r)
	f := &types.CustomField{
		Meta:  rd.meta(),
		Title: rd.text("title"),
		Type:  readEnum(rd, "type", types.FieldTypeFromInt),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// PresetCodec maps types.CustomFieldPreset to customer_extra_presets.
type PresetCodec struct{}

var _ Mapper[types.CustomFieldPreset] = PresetCodec{}

// PresetColumns lists the customer_extra_presets columns.
var PresetColumns = []string{ColID, "extra_field_id", "title"}

func (PresetCodec) ToRow(p *types.CustomFieldPreset) (Row, error) {
	return Row{ColID: p.ID, "extra_field_id": p.FieldID, "title": p.Title}, nil
}

func (PresetCodec) FromRow(r Row) (*types.CustomFieldPreset, error) {
	rd := newReader(r)
	p := &types.CustomFieldPreset{
		ID:      rd.int(ColID),
		FieldID: rd.int("extra_field_id"),
		Title:   rd.text("title"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// FileCodec maps types.CustomerFile to customer_file.
type FileCodec struct{}

var _ Mapper[types.CustomerFile] = FileCodec{}

// FileColumns lists the customer_file columns; content comes last so
// listings can drop it.
var FileColumns = []string{ColID, "customer_id", "name", "content"}

func (FileCodec) ToRow(f *types.CustomerFile) (Row, error) {
	return Row{
		ColID:         f.ID,
		"customer_id": f.CustomerID,
		"name":        f.Name,
		"content":     NullBlob(f.Content),
	}, nil
}

func (FileCodec) FromRow(r Row) (*types.CustomerFile, error) {
	rd := newReader(r)
	f := &types.CustomerFile{
		ID:         rd.int(ColID),
		CustomerID: rd.int("customer_id"),
		Name:       rd.text("name"),
		Content:    rd.blob("content"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return f, nil
}
