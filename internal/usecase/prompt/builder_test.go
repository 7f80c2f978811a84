package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/query"
	"github.com/kailas-cloud/crmfind/internal/usecase/serialize"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func mustQuery(t *testing.T, text string) query.Query {
	t.Helper()
	q, err := query.New("u1", text)
	if err != nil {
		t.Fatalf("query.New failed: %v", err)
	}
	return q
}

func TestBuild_SystemInstruction(t *testing.T) {
	b := New(domain.DefaultThresholds())
	req := b.Build(mustQuery(t, "high value deals"), serialize.Snapshot{}, testNow)

	for _, want := range []string{
		"more than $50000",
		"probability below 30%",
		"more than 30 days ago",
		"next 7 days",
		"<results>",
		"<query_interpretation>",
		"<item><id>",
		"90-100",
		"Below 40: omit",
	} {
		if !strings.Contains(req.System, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
}

func TestBuild_ThresholdsAreConfigurable(t *testing.T) {
	b := New(domain.Thresholds{
		HighValueMin:         100000,
		AtRiskProbabilityMax: 20,
		StaleContactDays:     45,
		UpcomingEventDays:    14,
	})
	req := b.Build(mustQuery(t, "at risk"), serialize.Snapshot{}, testNow)

	for _, want := range []string{"$100000", "below 20%", "45 days", "next 14 days"} {
		if !strings.Contains(req.System, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
}

func TestBuild_UserMessage(t *testing.T) {
	snap := serialize.Snapshot{
		Deals: []serialize.Serialized{{
			ID: "d1",
			Fields: []serialize.Field{
				{Name: "id", Value: "d1"},
				{Name: "title", Value: "Acme Renewal"},
				{Name: "value", Value: "$75000"},
			},
		}},
	}

	b := New(domain.DefaultThresholds())
	req := b.Build(mustQuery(t, "renewals"), snap, testNow)

	if len(req.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(req.Messages))
	}
	msg := req.Messages[0]
	if msg.Role != domain.RoleUser {
		t.Errorf("expected user role, got %q", msg.Role)
	}

	for _, want := range []string{
		"Current date: 2025-06-15",
		"Query: renewals",
		"## Deals",
		"id: d1",
		"title: Acme Renewal",
		"value: $75000",
		"## Contacts",
		"## Events",
		"None available",
	} {
		if !strings.Contains(msg.Content, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestBuild_EmptySectionsSayNoneAvailable(t *testing.T) {
	b := New(domain.DefaultThresholds())
	req := b.Build(mustQuery(t, "anything"), serialize.Snapshot{}, testNow)

	if got := strings.Count(req.Messages[0].Content, "None available"); got != 3 {
		t.Errorf("expected 3 empty sections, got %d", got)
	}
}
