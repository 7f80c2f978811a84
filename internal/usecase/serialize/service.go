// Package serialize projects full CRM records into compact, schema-stable
// field/value blocks for inclusion in a model prompt. Every field is always
// present ("N/A" / "$0" sentinels for absent values) so the prompt schema
// never shifts between requests.
package serialize

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/entity"
	"github.com/kailas-cloud/crmfind/internal/domain/result"
)

// Formatting constants. Changing these changes the prompt contract.
const (
	// MaxFreeTextBytes bounds description/notes fields.
	MaxFreeTextBytes = 200
	// TruncationMarker is appended when free text is cut.
	TruncationMarker = "..."
	// AbsentValue marks absent dates, timestamps and references.
	AbsentValue = "N/A"
)

// Limits caps how many records of each kind enter the prompt. Records beyond
// the cap are silently excluded in upstream store order.
type Limits struct {
	Deals    int
	Contacts int
	Events   int
}

// DefaultLimits returns the stock per-kind caps.
func DefaultLimits() Limits {
	return Limits{Deals: 100, Contacts: 100, Events: 50}
}

// Field is one name/value line of a serialized entity.
type Field struct {
	Name  string
	Value string
}

// Serialized is a flat, ordered projection of one record.
type Serialized struct {
	ID     string
	Fields []Field
}

// Snapshot holds all serialized records for one search invocation, plus the
// considered counts before capping.
type Snapshot struct {
	Deals      []Serialized
	Contacts   []Serialized
	Events     []Serialized
	Considered result.Counts
}

// Service converts domain records into prompt-ready projections.
type Service struct {
	deals    DealSource
	contacts ContactSource
	events   EventSource
	limits   Limits
	now      func() time.Time
}

// New creates a serializer with default limits.
func New(deals DealSource, contacts ContactSource, events EventSource) *Service {
	return &Service{
		deals:    deals,
		contacts: contacts,
		events:   events,
		limits:   DefaultLimits(),
		now:      time.Now,
	}
}

// WithLimits overrides the per-kind caps. Non-positive values keep defaults.
func (s *Service) WithLimits(l Limits) *Service {
	if l.Deals > 0 {
		s.limits.Deals = l.Deals
	}
	if l.Contacts > 0 {
		s.limits.Contacts = l.Contacts
	}
	if l.Events > 0 {
		s.limits.Events = l.Events
	}
	return s
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SerializeAll loads and projects every record kind for a user. Any store
// failure aborts the whole snapshot; no partial serialization is emitted.
func (s *Service) SerializeAll(ctx context.Context, userID string) (Snapshot, error) {
	deals, err := s.deals.ListDeals(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}
	contacts, err := s.contacts.ListContacts(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}
	events, err := s.events.ListEvents(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}

	snap := Snapshot{
		Considered: result.Counts{
			Deals:    len(deals),
			Contacts: len(contacts),
			Events:   len(events),
		},
	}

	now := s.now()

	if len(deals) > s.limits.Deals {
		deals = deals[:s.limits.Deals]
	}
	snap.Deals = make([]Serialized, len(deals))
	for i := range deals {
		snap.Deals[i] = serializeDeal(&deals[i], now)
	}

	if len(contacts) > s.limits.Contacts {
		contacts = contacts[:s.limits.Contacts]
	}
	snap.Contacts = make([]Serialized, len(contacts))
	for i := range contacts {
		snap.Contacts[i] = serializeContact(&contacts[i], now)
	}

	if len(events) > s.limits.Events {
		events = events[:s.limits.Events]
	}
	snap.Events = make([]Serialized, len(events))
	for i := range events {
		snap.Events[i] = serializeEvent(&events[i], now)
	}

	return snap, nil
}

func serializeDeal(d *entity.Deal, now time.Time) Serialized {
	return Serialized{
		ID: d.ID,
		Fields: []Field{
			{"id", d.ID},
			{"title", d.Title},
			{"value", formatMoney(d.Value)},
			{"stage", d.Stage},
			{"probability", formatProbability(d.Probability)},
			{"close_date", formatDate(d.CloseDate)},
			{"days_until_close", formatDays(d.CloseDate, now)},
			{"contact", contactName(d.Contact)},
			{"tags", tagNames(d.Tags)},
			{"notes", truncate(d.Notes)},
		},
	}
}

func serializeContact(c *entity.Contact, now time.Time) Serialized {
	return Serialized{
		ID: c.ID,
		Fields: []Field{
			{"id", c.ID},
			{"name", c.Name},
			{"email", c.Email},
			{"company", c.Company},
			{"position", c.Position},
			{"phone", c.Phone},
			{"last_contacted", formatTimestamp(c.LastContactedAt)},
			{"days_since_contact", formatDaysSince(c.LastContactedAt, now)},
			{"tags", tagNames(c.Tags)},
			{"notes", truncate(c.Notes)},
		},
	}
}

func serializeEvent(e *entity.Event, now time.Time) Serialized {
	return Serialized{
		ID: e.ID,
		Fields: []Field{
			{"id", e.ID},
			{"title", e.Title},
			{"starts_at", formatTimestamp(e.StartsAt)},
			{"ends_at", formatTimestamp(e.EndsAt)},
			{"days_until", formatDays(e.StartsAt, now)},
			{"location", e.Location},
			{"contact", contactName(e.Contact)},
			{"description", truncate(e.Description)},
		},
	}
}

// formatMoney renders an absent amount as "$0" and a present amount as
// "$" + decimal string, no thousands separators.
func formatMoney(v *float64) string {
	if v == nil {
		return "$0"
	}
	return "$" + strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatProbability(p *int) string {
	if p == nil {
		return AbsentValue
	}
	return strconv.Itoa(*p) + "%"
}

// formatDate renders a date-only value as an ISO calendar date.
func formatDate(t *time.Time) string {
	if t == nil {
		return AbsentValue
	}
	return t.Format("2006-01-02")
}

// formatTimestamp renders a second-truncated ISO-8601 timestamp.
func formatTimestamp(t *time.Time) string {
	if t == nil {
		return AbsentValue
	}
	return t.Truncate(time.Second).Format("2006-01-02T15:04:05Z07:00")
}

// formatDays renders the whole calendar days from now until t
// (negative when t is in the past).
func formatDays(t *time.Time, now time.Time) string {
	if t == nil {
		return AbsentValue
	}
	return strconv.Itoa(calendarDays(now, *t))
}

// formatDaysSince renders the whole calendar days from t until now.
func formatDaysSince(t *time.Time, now time.Time) string {
	if t == nil {
		return AbsentValue
	}
	return strconv.Itoa(calendarDays(*t, now))
}

// calendarDays counts day-boundary crossings between from and to in the
// timestamps' own locations.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// truncate cuts free text to MaxFreeTextBytes bytes and appends the marker.
func truncate(s string) string {
	if len(s) <= MaxFreeTextBytes {
		return s
	}
	return s[:MaxFreeTextBytes] + TruncationMarker
}

// tagNames reduces a tag collection to an ordered list of names.
func tagNames(tags []entity.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

// contactName resolves a loaded cross-entity reference to its display name.
func contactName(c *entity.Contact) string {
	if c == nil || c.Name == "" {
		return AbsentValue
	}
	return c.Name
}
