package types

import "fmt"

// Enumerations are stored as integers. Each has an exhaustive mapping from
// integer to symbolic name; integers outside the mapping are rejected with
// ErrUnknownEnum rather than defaulted.

// FieldType is the value kind of a custom field definition.
//
//	0 text, 1 number, 2 date, 3 boolean, 4 choice
type FieldType int64

const (
	FieldText FieldType = iota
	FieldNumber
	FieldDate
	FieldBoolean
	FieldChoice
)

// AppointmentType classifies an appointment.
//
//	0 visit, 1 call, 2 demo, 3 follow_up
type AppointmentType int64

const (
	AppointmentVisit AppointmentType = iota
	AppointmentCall
	AppointmentDemo
	AppointmentFollowUp
)

// KnockOutcome records what happened at a door.
//
//	0 not_home, 1 not_interested, 2 interested, 3 callback, 4 sale
type KnockOutcome int64

const (
	KnockNotHome KnockOutcome = iota
	KnockNotInterested
	KnockInterested
	KnockCallback
	KnockSale
)

// ProspectStatus tracks a prospect through the sales funnel.
//
//	0 new, 1 contacted, 2 qualified, 3 converted, 4 lost
type ProspectStatus int64

const (
	ProspectNew ProspectStatus = iota
	ProspectContacted
	ProspectQualified
	ProspectConverted
	ProspectLost
)

// enumNames maps the integers 0..len(names)-1 of one enum to names.
type enumNames[E ~int64] struct {
	kind  string
	names []string
}

func (n enumNames[E]) name(v E) string {
	if v >= 0 && int(v) < len(n.names) {
		return n.names[v]
	}
	return fmt.Sprintf("%s(%d)", n.kind, int64(v))
}

func (n enumNames[E]) parse(s string) (E, error) {
	for i, name := range n.names {
		if name == s {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownEnum, n.kind, s)
}

func (n enumNames[E]) fromInt(v int64) (E, error) {
	if v < 0 || v >= int64(len(n.names)) {
		return 0, fmt.Errorf("%w: %s %d", ErrUnknownEnum, n.kind, v)
	}
	return E(v), nil
}

var (
	fieldTypeNames       = enumNames[FieldType]{"field type", []string{"text", "number", "date", "boolean", "choice"}}
	appointmentTypeNames = enumNames[AppointmentType]{"appointment type", []string{"visit", "call", "demo", "follow_up"}}
	knockOutcomeNames    = enumNames[KnockOutcome]{"knock outcome", []string{"not_home", "not_interested", "interested", "callback", "sale"}}
	prospectStatusNames  = enumNames[ProspectStatus]{"prospect status", []string{"new", "contacted", "qualified", "converted", "lost"}}
)

func (t FieldType) String() string { return fieldTypeNames.name(t) }

// ParseFieldType returns the FieldType with the given symbolic name.
func ParseFieldType(s string) (FieldType, error) { return fieldTypeNames.parse(s) }

// FieldTypeFromInt validates a stored integer.
func FieldTypeFromInt(v int64) (FieldType, error) { return fieldTypeNames.fromInt(v) }

func (t FieldType) MarshalText() ([]byte, error) {
	if _, err := FieldTypeFromInt(int64(t)); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(b []byte) error {
	v, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t AppointmentType) String() string { return appointmentTypeNames.name(t) }

// ParseAppointmentType returns the AppointmentType with the given name.
func ParseAppointmentType(s string) (AppointmentType, error) { return appointmentTypeNames.parse(s) }

// AppointmentTypeFromInt validates a stored integer.
func AppointmentTypeFromInt(v int64) (AppointmentType, error) {
	return appointmentTypeNames.fromInt(v)
}

func (t AppointmentType) MarshalText() ([]byte, error) {
	if _, err := AppointmentTypeFromInt(int64(t)); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

func (t *AppointmentType) UnmarshalText(b []byte) error {
	v, err := ParseAppointmentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (o KnockOutcome) String() string { return knockOutcomeNames.name(o) }

// ParseKnockOutcome returns the KnockOutcome with the given name.
func ParseKnockOutcome(s string) (KnockOutcome, error) { return knockOutcomeNames.parse(s) }

// KnockOutcomeFromInt validates a stored integer.
func KnockOutcomeFromInt(v int64) (KnockOutcome, error) { return knockOutcomeNames.fromInt(v) }

func (o KnockOutcome) MarshalText() ([]byte, error) {
	if _, err := KnockOutcomeFromInt(int64(o)); err != nil {
		return nil, err
	}
	return []byte(o.String()), nil
}

func (o *KnockOutcome) UnmarshalText(b []byte) error {
	v, err := ParseKnockOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (s ProspectStatus) String() string { return prospectStatusNames.name(s) }

// ParseProspectStatus returns the ProspectStatus with the given name.
func ParseProspectStatus(s string) (ProspectStatus, error) { return prospectStatusNames.parse(s) }

// ProspectStatusFromInt validates a stored integer.
func ProspectStatusFromInt(v int64) (ProspectStatus, error) { return prospectStatusNames.fromInt(v) }

func (s ProspectStatus) MarshalText() ([]byte, error) {
	if _, err := ProspectStatusFromInt(int64(s)); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *ProspectStatus) UnmarshalText(b []byte) error {
	v, err := ParseProspectStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
