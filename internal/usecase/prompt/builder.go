// Package prompt assembles the completion request sent to the model for a
// search. The system instruction carries the scoring rubric and the output
// grammar; the user message carries the query and the serialized records.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/query"
	"github.com/kailas-cloud/crmfind/internal/usecase/serialize"
)

// Version identifies the prompt contract. Bump on any change to the system
// instruction, the record schema, or the output grammar so cached evals and
// regression fixtures can be pinned to a prompt generation.
const Version = "v1"

// ScoreFloor is the relevance score below which the model is told to omit
// a record entirely.
const ScoreFloor = 40

const systemTemplate = `You are a CRM search assistant. You receive a user's natural language query and their CRM records (deals, contacts, events). Identify which records are relevant to the query and score each one.

Interpretation guidance:
- "high value" deals are deals worth more than $%.0f.
- "at risk" deals have a close probability below %d%%.
- A contact is "stale" or "needs follow-up" when last contacted more than %d days ago.
- "upcoming" events start within the next %d days.

Record schema. Deals: id, title, value, stage, probability, close_date, days_until_close, contact, tags, notes. Contacts: id, name, email, company, position, phone, last_contacted, days_since_contact, tags, notes. Events: id, title, starts_at, ends_at, days_until, location, contact, description.

Score each relevant record from 0 to 100:
- 90-100: direct, unambiguous match of the query's intent.
- 70-89: strong match on a primary attribute.
- 40-69: partial or indirect match.
- Below %d: omit the record entirely.

Respond with exactly this XML structure and nothing else:

<results>
<query_interpretation>one sentence restating what the user is looking for</query_interpretation>
<deals>
<item><id>record id</id><score>0-100</score><reason>short justification</reason></item>
</deals>
<contacts>
<item><id>record id</id><score>0-100</score><reason>short justification</reason></item>
</contacts>
<events>
<item><id>record id</id><score>0-100</score><reason>short justification</reason></item>
</events>
</results>

Only use ids that appear in the provided records. Leave a section empty when no record of that kind is relevant.`

// Builder renders completion requests for search queries.
type Builder struct {
	thresholds domain.Thresholds
}

// New creates a prompt builder with the given interpretation thresholds.
func New(t domain.Thresholds) *Builder {
	return &Builder{thresholds: t}
}

// Build renders the full completion request for one search. The serialized
// snapshot is embedded verbatim; now anchors relative date language.
func (b *Builder) Build(q query.Query, snap serialize.Snapshot, now time.Time) domain.CompletionRequest {
	system := fmt.Sprintf(systemTemplate,
		b.thresholds.HighValueMin,
		b.thresholds.AtRiskProbabilityMax,
		b.thresholds.StaleContactDays,
		b.thresholds.UpcomingEventDays,
		ScoreFloor,
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current date: %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Query: %s\n\n", q.Text())

	writeSection(&sb, "Deals", snap.Deals)
	writeSection(&sb, "Contacts", snap.Contacts)
	writeSection(&sb, "Events", snap.Events)

	return domain.CompletionRequest{
		System: system,
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: strings.TrimRight(sb.String(), "\n")},
		},
	}
}

func writeSection(sb *strings.Builder, title string, records []serialize.Serialized) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(records) == 0 {
		sb.WriteString("None available\n\n")
		return
	}
	for _, r := range records {
		for _, f := range r.Fields {
			fmt.Fprintf(sb, "%s: %s\n", f.Name, f.Value)
		}
		sb.WriteString("\n")
	}
}
