package types

import "time"

// Prospect is a lead that has not become a customer yet.
type Prospect struct {
	Meta

	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Company   string         `json:"company"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	Street    string         `json:"street"`
	Zipcode   string         `json:"zipcode"`
	City      string         `json:"city"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Status    ProspectStatus `json:"status"`
	Notes     string         `json:"notes"`
}

// Appointment is a scheduled meeting, optionally tied to a customer.
type Appointment struct {
	Meta

	CustomerID int64           `json:"customer_id"`
	Title      string          `json:"title"`
	Location   string          `json:"location"`
	Notes      string          `json:"notes"`
	StartsAt   time.Time       `json:"starts_at"`
	EndsAt     *time.Time      `json:"ends_at,omitempty"`
	Type       AppointmentType `json:"type"`
}

// Knock records a door visit while canvassing.
type Knock struct {
	Meta

	ProspectID int64        `json:"prospect_id"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	Outcome    KnockOutcome `json:"outcome"`
	KnockedAt  time.Time    `json:"knocked_at"`
	Notes      string       `json:"notes"`
}

// Note is a free-text note about a customer.
type Note struct {
	Meta

	CustomerID int64     `json:"customer_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Trip is a logged drive between visits.
type Trip struct {
	Meta

	Title          string     `json:"title"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	DistanceMeters int64      `json:"distance_meters"`
	Notes          string     `json:"notes"`
}

// Objection is a sales objection with a prepared answer.
type Objection struct {
	Meta

	Title     string `json:"title"`
	Answer    string `json:"answer"`
	Category  string `json:"category"`
	UsedCount int64  `json:"used_count"`
}
