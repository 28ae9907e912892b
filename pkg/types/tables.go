package types

// Entity table names accepted by Store.Table.
const (
	CustomersTable    = "customer"
	ProspectsTable    = "prospect"
	AppointmentsTable = "appointment"
	KnocksTable       = "knock"
	NotesTable        = "note"
	TripsTable        = "trip"
	ObjectionsTable   = "objection"
)

// Supporting table names.
const (
	CustomFieldsTable   = "customer_extra_fields"
	PresetsTable        = "customer_extra_presets"
	CustomerFilesTable  = "customer_file"
	PhoneDirectoryTable = "phone_directory"
)

// EntityTableNames lists the tables Store.Table serves, in display order.
var EntityTableNames = []string{
	CustomersTable,
	ProspectsTable,
	AppointmentsTable,
	KnocksTable,
	NotesTable,
	TripsTable,
	ObjectionsTable,
}
