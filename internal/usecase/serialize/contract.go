package serialize

import (
	"context"

	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

// DealSource reads a user's deals.
type DealSource interface {
	ListDeals(ctx context.Context, userID string) ([]entity.Deal, error)
}

// ContactSource reads a user's contacts.
type ContactSource interface {
	ListContacts(ctx context.Context, userID string) ([]entity.Contact, error)
}

// EventSource reads a user's events.
type EventSource interface {
	ListEvents(ctx context.Context, userID string) ([]entity.Event, error)
}
