package results

import (
	"context"

	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

// DealReader fetches single deals by id.
type DealReader interface {
	GetDeal(ctx context.Context, userID, id string) (entity.Deal, error)
}

// ContactReader fetches single contacts by id.
type ContactReader interface {
	GetContact(ctx context.Context, userID, id string) (entity.Contact, error)
}

// EventReader fetches single events by id.
type EventReader interface {
	GetEvent(ctx context.Context, userID, id string) (entity.Event, error)
}
