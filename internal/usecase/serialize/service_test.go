package serialize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/entity"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(m *mockSources) *Service {
	return New(m, m, m).WithClock(func() time.Time { return testNow })
}

func fieldValue(s Serialized, name string) (string, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestSerializeAll_DealFields(t *testing.T) {
	value := 75000.0
	prob := 60
	closeDate := time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC)

	m := &mockSources{
		dealsFn: func(_ context.Context, _ string) ([]entity.Deal, error) {
			return []entity.Deal{{
				ID:          "d1",
				UserID:      "u1",
				Title:       "Acme Renewal",
				Value:       &value,
				Stage:       "proposal",
				Probability: &prob,
				CloseDate:   &closeDate,
				Contact:     &entity.Contact{ID: "c1", Name: "Jane Doe"},
				Tags:        []entity.Tag{{Name: "renewal"}, {Name: "enterprise"}},
				Notes:       "Negotiating terms",
			}}, nil
		},
	}

	snap, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}
	if len(snap.Deals) != 1 {
		t.Fatalf("expected 1 deal, got %d", len(snap.Deals))
	}

	want := map[string]string{
		"id":               "d1",
		"title":            "Acme Renewal",
		"value":            "$75000",
		"stage":            "proposal",
		"probability":      "60%",
		"close_date":       "2025-06-22",
		"days_until_close": "7",
		"contact":          "Jane Doe",
		"tags":             "renewal, enterprise",
		"notes":            "Negotiating terms",
	}
	for name, expected := range want {
		got, ok := fieldValue(snap.Deals[0], name)
		if !ok {
			t.Errorf("missing field %q", name)
			continue
		}
		if got != expected {
			t.Errorf("field %q: expected %q, got %q", name, expected, got)
		}
	}
}

func TestSerializeAll_AbsentValues(t *testing.T) {
	m := &mockSources{
		dealsFn: func(_ context.Context, _ string) ([]entity.Deal, error) {
			return []entity.Deal{{ID: "d1", Title: "Bare deal"}}, nil
		},
	}

	snap, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}

	want := map[string]string{
		"value":            "$0",
		"probability":      "N/A",
		"close_date":       "N/A",
		"days_until_close": "N/A",
		"contact":          "N/A",
		"tags":             "",
	}
	for name, expected := range want {
		if got, _ := fieldValue(snap.Deals[0], name); got != expected {
			t.Errorf("field %q: expected %q, got %q", name, expected, got)
		}
	}
}

func TestSerializeAll_MoneyFormatting(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{75000, "$75000"},
		{1234.5, "$1234.5"},
		{0, "$0"},
		{99.99, "$99.99"},
	}
	for _, tt := range tests {
		v := tt.value
		if got := formatMoney(&v); got != tt.want {
			t.Errorf("formatMoney(%v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestSerializeAll_ContactDayMath(t *testing.T) {
	// 23:59 on June 5 is 10 calendar days before noon June 15,
	// even though only ~9.5 * 24h elapsed.
	last := time.Date(2025, 6, 5, 23, 59, 0, 0, time.UTC)
	m := &mockSources{
		contactsFn: func(_ context.Context, _ string) ([]entity.Contact, error) {
			return []entity.Contact{{ID: "c1", Name: "Jane", LastContactedAt: &last}}, nil
		},
	}

	snap, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}
	if got, _ := fieldValue(snap.Contacts[0], "days_since_contact"); got != "10" {
		t.Errorf("expected 10 calendar days, got %q", got)
	}
	if got, _ := fieldValue(snap.Contacts[0], "last_contacted"); got != "2025-06-05T23:59:00Z" {
		t.Errorf("unexpected timestamp format: %q", got)
	}
}

func TestSerializeAll_NegativeDaysUntil(t *testing.T) {
	past := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	m := &mockSources{
		eventsFn: func(_ context.Context, _ string) ([]entity.Event, error) {
			return []entity.Event{{ID: "e1", Title: "Retro", StartsAt: &past}}, nil
		},
	}

	snap, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}
	if got, _ := fieldValue(snap.Events[0], "days_until"); got != "-5" {
		t.Errorf("expected -5 for a past event, got %q", got)
	}
}

func TestSerializeAll_Truncation(t *testing.T) {
	long := strings.Repeat("x", 250)
	m := &mockSources{
		dealsFn: func(_ context.Context, _ string) ([]entity.Deal, error) {
			return []entity.Deal{{ID: "d1", Notes: long}}, nil
		},
	}

	snap, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}
	got, _ := fieldValue(snap.Deals[0], "notes")
	if len(got) != MaxFreeTextBytes+len(TruncationMarker) {
		t.Errorf("expected %d bytes, got %d", MaxFreeTextBytes+len(TruncationMarker), len(got))
	}
	if !strings.HasSuffix(got, TruncationMarker) {
		t.Errorf("expected truncation marker suffix")
	}

	// Exactly at the cap: untouched.
	exact := strings.Repeat("y", MaxFreeTextBytes)
	if truncate(exact) != exact {
		t.Error("text at the cap must not be truncated")
	}
}

func TestSerializeAll_CapsAndConsidered(t *testing.T) {
	deals := make([]entity.Deal, 7)
	for i := range deals {
		deals[i] = entity.Deal{ID: "d" + string(rune('0'+i))}
	}
	m := &mockSources{
		dealsFn: func(_ context.Context, _ string) ([]entity.Deal, error) {
			return deals, nil
		},
	}

	svc := newTestService(m).WithLimits(Limits{Deals: 5})
	snap, err := svc.SerializeAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SerializeAll failed: %v", err)
	}
	if len(snap.Deals) != 5 {
		t.Errorf("expected 5 serialized deals, got %d", len(snap.Deals))
	}
	if snap.Considered.Deals != 7 {
		t.Errorf("considered must count before capping, got %d", snap.Considered.Deals)
	}
	// First N in store order survive.
	if snap.Deals[0].ID != "d0" || snap.Deals[4].ID != "d4" {
		t.Errorf("capping must keep store order, got %s..%s", snap.Deals[0].ID, snap.Deals[4].ID)
	}
}

func TestSerializeAll_StoreFailure(t *testing.T) {
	m := &mockSources{
		contactsFn: func(_ context.Context, _ string) ([]entity.Contact, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := newTestService(m).SerializeAll(context.Background(), "u1")
	if !errors.Is(err, domain.ErrSerialization) {
		t.Fatalf("expected ErrSerialization, got %v", err)
	}
}
