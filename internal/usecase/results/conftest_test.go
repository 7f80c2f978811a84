package results

import (
	"context"

	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

// mockReaders implements all three record readers for tests.
type mockReaders struct {
	dealFn    func(ctx context.Context, userID, id string) (entity.Deal, error)
	contactFn func(ctx context.Context, userID, id string) (entity.Contact, error)
	eventFn   func(ctx context.Context, userID, id string) (entity.Event, error)
}

func (m *mockReaders) GetDeal(ctx context.Context, userID, id string) (entity.Deal, error) {
	if m.dealFn != nil {
		return m.dealFn(ctx, userID, id)
	}
	return entity.Deal{ID: id, UserID: userID}, nil
}

func (m *mockReaders) GetContact(ctx context.Context, userID, id string) (entity.Contact, error) {
	if m.contactFn != nil {
		return m.contactFn(ctx, userID, id)
	}
	return entity.Contact{ID: id, UserID: userID}, nil
}

func (m *mockReaders) GetEvent(ctx context.Context, userID, id string) (entity.Event, error) {
	if m.eventFn != nil {
		return m.eventFn(ctx, userID, id)
	}
	return entity.Event{ID: id, UserID: userID}, nil
}
