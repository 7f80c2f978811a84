package entity

import "time"

// Kind identifies a searchable record type. The set is closed; anything the
// model emits outside it maps to KindUnknown and is ignored downstream.
type Kind string

const (
	KindDeal    Kind = "deal"
	KindContact Kind = "contact"
	KindEvent   Kind = "event"
	KindUnknown Kind = ""
)

// ParseKind maps a free-form type name to a Kind, with KindUnknown fallback.
func ParseKind(s string) Kind {
	switch s {
	case "deal", "deals":
		return KindDeal
	case "contact", "contacts":
		return KindContact
	case "event", "events":
		return KindEvent
	default:
		return KindUnknown
	}
}

// Tag is a user-defined label. Only the name participates in serialization;
// color and id are presentation metadata.
type Tag struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Deal is a sales opportunity record.
type Deal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Value       *float64   `json:"value,omitempty"`
	Stage       string     `json:"stage"`
	Probability *int       `json:"probability,omitempty"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	ContactID   string     `json:"contact_id,omitempty"`
	Contact     *Contact   `json:"contact,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Contact is a person record.
type Contact struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	Company         string     `json:"company,omitempty"`
	Position        string     `json:"position,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	Tags            []Tag      `json:"tags,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Event is a calendar entry record.
type Event struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Location    string     `json:"location,omitempty"`
	ContactID   string     `json:"contact_id,omitempty"`
	Contact     *Contact   `json:"contact,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
