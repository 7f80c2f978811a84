// Package records stores CRM records (deals, contacts, events) as JSON
// values inside per-user Redis hashes. One hash per (kind, user), one field
// per record id, so list is a single HGETALL and lookup a single HGET.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/crmfind/internal/db"
	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

// store is the consumer interface for record storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
}

// Repository persists deals, contacts and events.
type Repository struct {
	store  store
	prefix string
}

// New creates a record repository. keyPrefix namespaces all keys.
func New(s store, keyPrefix string) *Repository {
	return &Repository{store: s, prefix: keyPrefix}
}

func (r *Repository) key(kind entity.Kind, userID string) string {
	return fmt.Sprintf("%srecords:%s:%s", r.prefix, kind, userID)
}

// --- Deals ---

// ListDeals returns all deals for a user, newest first.
func (r *Repository) ListDeals(ctx context.Context, userID string) ([]entity.Deal, error) {
	raw, err := r.store.HGetAll(ctx, r.key(entity.KindDeal, userID))
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	out := make([]entity.Deal, 0, len(raw))
	for id, data := range raw {
		var d entity.Deal
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, fmt.Errorf("decode deal %s: %w", id, err)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetDeal returns one deal by id, or domain.ErrRecordNotFound.
func (r *Repository) GetDeal(ctx context.Context, userID, id string) (entity.Deal, error) {
	data, err := r.store.HGet(ctx, r.key(entity.KindDeal, userID), id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return entity.Deal{}, fmt.Errorf("deal %s: %w", id, domain.ErrRecordNotFound)
		}
		return entity.Deal{}, fmt.Errorf("get deal %s: %w", id, err)
	}
	var d entity.Deal
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return entity.Deal{}, fmt.Errorf("decode deal %s: %w", id, err)
	}
	return d, nil
}

// PutDeal inserts or overwrites a deal.
func (r *Repository) PutDeal(ctx context.Context, d *entity.Deal) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode deal %s: %w", d.ID, err)
	}
	if err := r.store.HSet(ctx, r.key(entity.KindDeal, d.UserID), map[string]string{d.ID: string(data)}); err != nil {
		return fmt.Errorf("put deal %s: %w", d.ID, err)
	}
	return nil
}

// DeleteDeal removes a deal.
func (r *Repository) DeleteDeal(ctx context.Context, userID, id string) error {
	if err := r.store.HDel(ctx, r.key(entity.KindDeal, userID), id); err != nil {
		return fmt.Errorf("delete deal %s: %w", id, err)
	}
	return nil
}

// --- Contacts ---

// ListContacts returns all contacts for a user, newest first.
func (r *Repository) ListContacts(ctx context.Context, userID string) ([]entity.Contact, error) {
	raw, err := r.store.HGetAll(ctx, r.key(entity.KindContact, userID))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	out := make([]entity.Contact, 0, len(raw))
	for id, data := range raw {
		var c entity.Contact
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("decode contact %s: %w", id, err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetContact returns one contact by id, or domain.ErrRecordNotFound.
func (r *Repository) GetContact(ctx context.Context, userID, id string) (entity.Contact, error) {
	data, err := r.store.HGet(ctx, r.key(entity.KindContact, userID), id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return entity.Contact{}, fmt.Errorf("contact %s: %w", id, domain.ErrRecordNotFound)
		}
		return entity.Contact{}, fmt.Errorf("get contact %s: %w", id, err)
	}
	var c entity.Contact
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return entity.Contact{}, fmt.Errorf("decode contact %s: %w", id, err)
	}
	return c, nil
}

// PutContact inserts or overwrites a contact.
func (r *Repository) PutContact(ctx context.Context, c *entity.Contact) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode contact %s: %w", c.ID, err)
	}
	if err := r.store.HSet(ctx, r.key(entity.KindContact, c.UserID), map[string]string{c.ID: string(data)}); err != nil {
		return fmt.Errorf("put contact %s: %w", c.ID, err)
	}
	return nil
}

// DeleteContact removes a contact.
func (r *Repository) DeleteContact(ctx context.Context, userID, id string) error {
	if err := r.store.HDel(ctx, r.key(entity.KindContact, userID), id); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}

// --- Events ---

// ListEvents returns all events for a user, newest first.
func (r *Repository) ListEvents(ctx context.Context, userID string) ([]entity.Event, error) {
	raw, err := r.store.HGetAll(ctx, r.key(entity.KindEvent, userID))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]entity.Event, 0, len(raw))
	for id, data := range raw {
		var e entity.Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", id, err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetEvent returns one event by id, or domain.ErrRecordNotFound.
func (r *Repository) GetEvent(ctx context.Context, userID, id string) (entity.Event, error) {
	data, err := r.store.HGet(ctx, r.key(entity.KindEvent, userID), id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return entity.Event{}, fmt.Errorf("event %s: %w", id, domain.ErrRecordNotFound)
		}
		return entity.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	var e entity.Event
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return entity.Event{}, fmt.Errorf("decode event %s: %w", id, err)
	}
	return e, nil
}

// PutEvent inserts or overwrites an event.
func (r *Repository) PutEvent(ctx context.Context, e *entity.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	if err := r.store.HSet(ctx, r.key(entity.KindEvent, e.UserID), map[string]string{e.ID: string(data)}); err != nil {
		return fmt.Errorf("put event %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, userID, id string) error {
	if err := r.store.HDel(ctx, r.key(entity.KindEvent, userID), id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}
