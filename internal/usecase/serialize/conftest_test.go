package serialize

import (
	"context"

	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

// mockSources implements all three record sources for tests.
type mockSources struct {
	dealsFn    func(ctx context.Context, userID string) ([]entity.Deal, error)
	contactsFn func(ctx context.Context, userID string) ([]entity.Contact, error)
	eventsFn   func(ctx context.Context, userID string) ([]entity.Event, error)
}

func (m *mockSources) ListDeals(ctx context.Context, userID string) ([]entity.Deal, error) {
	if m.dealsFn != nil {
		return m.dealsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSources) ListContacts(ctx context.Context, userID string) ([]entity.Contact, error) {
	if m.contactsFn != nil {
		return m.contactsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSources) ListEvents(ctx context.Context, userID string) ([]entity.Event, error) {
	if m.eventsFn != nil {
		return m.eventsFn(ctx, userID)
	}
	return nil, nil
}
