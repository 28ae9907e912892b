package types

import (
	"strings"
	"time"
)

// CustomFields is the free-form attribute bag attached to a customer, keyed
// by custom field title. Values are validated against their definitions by
// callers, not by the store.
type CustomFields map[string]string

// Customer is the canonical CRM entity.
type Customer struct {
	Meta

	Title       string `json:"title"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneHome   string `json:"phone_home"`
	PhoneMobile string `json:"phone_mobile"`
	PhoneWork   string `json:"phone_work"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	Zipcode     string `json:"zipcode"`
	City        string `json:"city"`
	Country     string `json:"country"`

	// Birthday is date-only; nil when unknown.
	Birthday *time.Time `json:"birthday,omitempty"`

	Notes        string       `json:"notes"`
	Group        string       `json:"customer_group"`
	CustomFields CustomFields `json:"custom_fields,omitempty"`

	// Image and Consent are nil when absent. Listings never load them.
	Image   []byte `json:"image,omitempty"`
	Consent []byte `json:"consent,omitempty"`
}

// DisplayName joins first and last name.
func (c *Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Phones returns the non-empty phone numbers in home, mobile, work order.
func (c *Customer) Phones() []string {
	var out []string
	for _, p := range []string{c.PhoneHome, c.PhoneMobile, c.PhoneWork} {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CustomField defines one user-configurable customer attribute. Titles are
// unique across all definitions.
type CustomField struct {
	Meta

	Title string    `json:"title"`
	Type  FieldType `json:"type"`
}

// CustomFieldPreset is a suggested value for a custom field. Presets live
// and die with their field.
type CustomFieldPreset struct {
	ID      int64  `json:"id"`
	FieldID int64  `json:"field_id"`
	Title   string `json:"title"`
}

// CustomerFile is a binary attachment owned by a customer.
type CustomerFile struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Content    []byte `json:"content,omitempty"`
}

// PhoneEntry is one row of the derived phone directory.
type PhoneEntry struct {
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	OwnerID     int64  `json:"owner_id"`
}
