package codec

import "github.com/mesh-intelligence/canvass/pkg/types"

// ProspectCodec maps types.Prospect to the prospect table.
type ProspectCodec struct{}

var _ Codec[types.Prospect] = ProspectCodec{}

var prospectColumns = []string{
	ColID, "first_name", "last_name", "company", "phone", "email",
	"street", "zipcode", "city", "latitude", "longitude", "status", "notes",
	ColLastModified, ColRemoved,
}

func (ProspectCodec) Table() string                      { return types.ProspectsTable }
func (ProspectCodec) Columns() []string                  { return prospectColumns }
func (ProspectCodec) BlobColumns() []string              { return nil }
func (ProspectCodec) Meta(p *types.Prospect) *types.Meta { return &p.Meta }

func (ProspectCodec) ToRow(p *types.Prospect) (Row, error) {
	if _, err := types.ProspectStatusFromInt(int64(p.Status)); err != nil {
		return nil, err
	}
	r := metaRow(p.Meta)
	r["first_name"] = p.FirstName
	r["last_name"] = p.LastName
	r["company"] = p.Company
	r["phone"] = p.Phone
	r["email"] = p.Email
	r["street"] = p.Street
	r["zipcode"] = p.Zipcode
	r["city"] = p.City
	r["latitude"] = p.Latitude
	r["longitude"] = p.Longitude
	r["status"] = int64(p.Status)
	r["notes"] = p.Notes
	return r, nil
}

func (ProspectCodec) FromRow(r Row) (*types.Prospect, error) {
	rd := newReader(r)
	p := &types.Prospect{
		Meta:      rd.meta(),
		FirstName: rd.text("first_name"),
		LastName:  rd.text("last_name"),
		Company:   rd.text("company"),
		Phone:     rd.text("phone"),
		Email:     rd.text("email"),
		Street:    rd.text("street"),
		Zipcode:   rd.text("zipcode"),
		City:      rd.text("city"),
		Latitude:  rd.float("latitude"),
		Longitude: rd.float("longitude"),
		Status:    readEnum(rd, "status", types.ProspectStatusFromInt),
		Notes:     rd.text("notes"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (ProspectCodec) SearchText(p *types.Prospect) []string {
	return []string{p.FirstName, p.LastName, p.Company, p.Phone, p.Email, p.Street, p.Zipcode, p.City, p.Notes}
}

// AppointmentCodec maps types.Appointment to the appointment table.
type AppointmentCodec struct{}

var _ Codec[types.Appointment] = AppointmentCodec{}

var appointmentColumns = []string{
	ColID, "customer_id", "title", "location", "notes", "starts_at", "ends_at", "type",
	ColLastModified, ColRemoved,
}

func (AppointmentCodec) Table() string                         { return types.AppointmentsTable }
func (AppointmentCodec) Columns() []string                     { return appointmentColumns }
func (AppointmentCodec) BlobColumns() []string                 { return nil }
func (AppointmentCodec) Meta(a *types.Appointment) *types.Meta { return &a.Meta }

func (AppointmentCodec) ToRow(a *types.Appointment) (Row, error) {
	if _, err := types.AppointmentTypeFromInt(int64(a.Type)); err != nil {
		return nil, err
	}
	r := metaRow(a.Meta)
	r["customer_id"] = a.CustomerID
	r["title"] = a.Title
	r["location"] = a.Location
	r["notes"] = a.Notes
	r["starts_at"] = FormatTimestamp(a.StartsAt)
	r["ends_at"] = NullTimestamp(a.EndsAt)
	r["type"] = int64(a.Type)
	return r, nil
}

func (AppointmentCodec) FromRow(r Row) (*types.Appointment, error) {
	rd := newReader(r)
	a := &types.Appointment{
		Meta:       rd.meta(),
		CustomerID: rd.int("customer_id"),
		Title:      rd.text("title"),
		Location:   rd.text("location"),
		Notes:      rd.text("notes"),
		StartsAt:   rd.timestamp("starts_at"),
		EndsAt:     rd.nullTimestamp("ends_at"),
		Type:       readEnum(rd, "type", types.AppointmentTypeFromInt),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

func (AppointmentCodec) SearchText(a *types.Appointment) []string {
	return []string{a.Title, a.Location, a.Notes}
}

// KnockCodec maps types.Knock to the knock table.
type KnockCodec struct{}

var _ Codec[types.Knock] = KnockCodec{}

var knockColumns = []string{
	ColID, "prospect_id", "latitude", "longitude", "outcome", "knocked_at", "notes",
	ColLastModified, ColRemoved,
}

func (KnockCodec) Table() string                   { return types.KnocksTable }
func (KnockCodec) Columns() []string               { return knockColumns }
func (KnockCodec) BlobColumns() []string           { return nil }
func (KnockCodec) Meta(k *types.Knock) *types.Meta { return &k.Meta }

func (KnockCodec) ToRow(k *types.Knock) (Row, error) {
	if _, err := types.KnockOutcomeFromInt(int64(k.Outcome)); err != nil {
		return nil, err
	}
	r := metaRow(k.Meta)
	r["prospect_id"] = k.ProspectID
	r["latitude"] = k.Latitude
	r["longitude"] = k.Longitude
	r["outcome"] = int64(k.Outcome)
	r["knocked_at"] = FormatTimestamp(k.KnockedAt)
	r["notes"] = k.Notes
	return r, nil
}

func (KnockCodec) FromRow(r Row) (*types.Knock, error) {
	rd := newReader(r)
	k := &types.Knock{
		Meta:       rd.meta(),
		ProspectID: rd.int("prospect_id"),
		Latitude:   rd.float("latitude"),
		Longitude:  rd.float("longitude"),
		Outcome:    readEnum(rd, "outcome", types.KnockOutcomeFromInt),
		KnockedAt:  rd.timestamp("knocked_at"),
		Notes:      rd.text("notes"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return k, nil
}

func (KnockCodec) SearchText(k *types.Knock) []string {
	return []string{k.Notes, k.Outcome.String()}
}

// NoteCodec maps types.Note to the note table.
type NoteCodec struct{}

var _ Codec[types.Note] = NoteCodec{}

var noteColumns = []string{ColID, "customer_id", "text", "created_at", ColLastModified, ColRemoved}

func (NoteCodec) Table() string                  { return types.NotesTable }
func (NoteCodec) Columns() []string              { return noteColumns }
func (NoteCodec) BlobColumns() []string          { return nil }
func (NoteCodec) Meta(n *types.Note) *types.Meta { return &n.Meta }

func (NoteCodec) ToRow(n *types.Note) (Row, error) {
	r := metaRow(n.Meta)
	r["customer_id"] = n.CustomerID
	r["text"] = n.Text
	r["created_at"] = FormatTimestamp(n.CreatedAt)
	return r, nil
}

func (NoteCodec) FromRow(r Row) (*types.Note, error) {
	rd := newReader(r)
	n := &types.Note{
		Meta:       rd.meta(),
		CustomerID: rd.int("customer_id"),
		Text:       rd.text("text"),
		CreatedAt:  rd.timestamp("created_at"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return n, nil
}

func (NoteCodec) SearchText(n *types.Note) []string { return []string{n.Text} }

// TripCodec maps types.Trip to the trip table.
type TripCodec struct{}

var _ Codec[types.Trip] = TripCodec{}

var tripColumns = []string{
	ColID, "title", "started_at", "ended_at", "distance_meters", "notes",
	ColLastModified, ColRemoved,
}

func (TripCodec) Table() string                  { return types.TripsTable }
func (TripCodec) Columns() []string              { return tripColumns }
func (TripCodec) BlobColumns() []string          { return nil }
func (TripCodec) Meta(t *types.Trip) *types.Meta { return &t.Meta }

func (TripCodec) ToRow(t *types.Trip) (Row, error) {
	r := metaRow(t.Meta)
	r["title"] = t.Title
	r["started_at"] = FormatTimestamp(t.StartedAt)
	r["ended_at"] = NullTimestamp(t.EndedAt)
	r["distance_meters"] = t.DistanceMeters
	r["notes"] = t.Notes
	return r, nil
}

func (TripCodec) FromRow(r Row) (*types.Trip, error) {
	rd := newReader(r)
	t := &types.Trip{
		Meta:           rd.meta(),
		Title:          rd.text("title"),
		StartedAt:      rd.timestamp("started_at"),
		EndedAt:        rd.nullTimestamp("ended_at"),
		DistanceMeters: rd.int("distance_meters"),
		Notes:          rd.text("notes"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (TripCodec) SearchText(t *types.Trip) []string { return []string{t.Title, t.Notes} }

// ObjectionCodec maps types.Objection to the objection table.
type ObjectionCodec struct{}

var _ Codec[types.Objection] = ObjectionCodec{}

var objectionColumns = []string{
	ColID, "title", "answer", "category", "used_count",
	ColLastModified, ColRemoved,
}

func (ObjectionCodec) Table() string                       { return types.ObjectionsTable }
func (ObjectionCodec) Columns() []string                   { return objectionColumns }
func (ObjectionCodec) BlobColumns() []string               { return nil }
func (ObjectionCodec) Meta(o *types.Objection) *types.Meta { return &o.Meta }

func (ObjectionCodec) ToRow(o *types.Objection) (Row, error) {
	r := metaRow(o.Meta)
	r["title"] = o.Title
	r["answer"] = o.Answer
	r["category"] = o.Category
	r["used_count"] = o.UsedCount
	return r, nil
}

func (ObjectionCodec) FromRow(r Row) (*types.Objection, error) {
	rd := newReader(r)
	o := &types.Objection{
		Meta:      rd.meta(),
		Title:     rd.text("title"),
		Answer:    rd.text("answer"),
		Category:  rd.text("category"),
		UsedCount: rd.int("used_count"),
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func (ObjectionCodec) SearchText(o *types.Objection) []string {
	return []string{o.Title, o.Answer, o.Category}
}
