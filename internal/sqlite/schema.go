package sqlite

// Base tables in their first released shape. Columns and tables introduced
// later arrive through migrations, so fresh and upgraded databases converge
// on the same schema. Dates are TEXT so the driver hands back the stored
// string untouched.
const (
	createCustomer = `CREATE TABLE IF NOT EXISTS customer (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    phone_home TEXT NOT NULL DEFAULT '',
    phone_mobile TEXT NOT NULL DEFAULT '',
    phone_work TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    zipcode TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT '',
    birthday TEXT,
    notes TEXT NOT NULL DEFAULT '',
    image BLOB,
    consent BLOB,
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createCustomFields = `CREATE TABLE IF NOT EXISTS customer_extra_fields (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    type INTEGER NOT NULL DEFAULT 0
)`

	createPresets = `CREATE TABLE IF NOT EXISTS customer_extra_presets (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    extra_field_id INTEGER NOT NULL REFERENCES customer_extra_fields(id) ON DELETE CASCADE
)`

	createProspect = `CREATE TABLE IF NOT EXISTS prospect (
    id INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    zipcode TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    latitude REAL NOT NULL DEFAULT 0,
    longitude REAL NOT NULL DEFAULT 0,
    status INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createAppointment = `CREATE TABLE IF NOT EXISTS appointment (
    id INTEGER PRIMARY KEY,
    customer_id INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    starts_at TEXT NOT NULL,
    ends_at TEXT,
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createKnock = `CREATE TABLE IF NOT EXISTS knock (
    id INTEGER PRIMARY KEY,
    prospect_id INTEGER NOT NULL DEFAULT 0,
    latitude REAL NOT NULL DEFAULT 0,
    longitude REAL NOT NULL DEFAULT 0,
    outcome INTEGER NOT NULL DEFAULT 0,
    knocked_at TEXT NOT NULL,
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createNote = `CREATE TABLE IF NOT EXISTS note (
    id INTEGER PRIMARY KEY,
    customer_id INTEGER NOT NULL DEFAULT 0,
    text TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createTrip = `CREATE TABLE IF NOT EXISTS trip (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    ended_at TEXT,
    distance_meters INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createObjection = `CREATE TABLE IF NOT EXISTS objection (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    answer TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    used_count INTEGER NOT NULL DEFAULT 0,
    last_modified TEXT NOT NULL,
    removed INTEGER NOT NULL DEFAULT 0
)`

	createPhoneDirectory = `CREATE TABLE IF NOT EXISTS phone_directory (
    phone TEXT NOT NULL,
    display_name TEXT NOT NULL,
    owner_id INTEGER NOT NULL
)`

	createCustomerFile = `CREATE TABLE customer_file (
    id INTEGER PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customer(id),
    name TEXT NOT NULL,
    content BLOB NOT NULL
)`
)

// Index DDL.
const (
	indexCustomerModified = `CREATE INDEX IF NOT EXISTS idx_customer_last_modified ON customer(last_modified)`
	indexPresetsField     = `CREATE INDEX IF NOT EXISTS idx_presets_field ON customer_extra_presets(extra_field_id)`
	indexAppointmentCust  = `CREATE INDEX IF NOT EXISTS idx_appointment_customer ON appointment(customer_id)`
	indexKnockProspect    = `CREATE INDEX IF NOT EXISTS idx_knock_prospect ON knock(prospect_id)`
	indexNoteCustomer     = `CREATE INDEX IF NOT EXISTS idx_note_customer ON note(customer_id)`
	indexPhoneDirectory   = `CREATE INDEX IF NOT EXISTS idx_phone_directory_phone ON phone_directory(phone)`
	indexCustomerFile     = `CREATE INDEX IF NOT EXISTS idx_customer_file_customer ON customer_file(customer_id)`
)

// baseSchema creates every v1 table and index. Each statement is safe to
// repeat.
var baseSchema = []string{
	createCustomer,
	createCustomFields,
	createPresets,
	createProspect,
	createAppointment,
	createKnock,
	createNote,
	createTrip,
	createObjection,
	createPhoneDirectory,
	indexCustomerModified,
	indexPresetsField,
	indexAppointmentCust,
	indexKnockProspect,
	indexNoteCustomer,
	indexPhoneDirectory,
}
