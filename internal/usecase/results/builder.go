// Package results resolves model match lists back into full CRM records.
// The model's ids are untrusted: anything malformed or not present in the
// user's store is dropped, never surfaced as an error.
package results

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/entity"
	"github.com/kailas-cloud/crmfind/internal/domain/match"
	"github.com/kailas-cloud/crmfind/internal/domain/result"
)

// idPattern bounds ids accepted from model output before any store lookup.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Builder assembles search results from match sets.
type Builder struct {
	deals    DealReader
	contacts ContactReader
	events   EventReader
	logger   *zap.Logger
}

// New creates a result builder.
func New(deals DealReader, contacts ContactReader, events EventReader, logger *zap.Logger) *Builder {
	return &Builder{deals: deals, contacts: contacts, events: events, logger: logger}
}

// Build resolves every match against the user's records and orders each list
// by descending score. Ties keep the model's original order. Metadata and the
// cached flag are the caller's concern.
func (b *Builder) Build(ctx context.Context, userID string, rs match.ResultSet, queryText string) result.SearchResult {
	res := result.SearchResult{
		Query:          queryText,
		Interpretation: rs.Interpretation(),
		Deals:          b.resolveDeals(ctx, userID, rs.Deals()),
		Contacts:       b.resolveContacts(ctx, userID, rs.Contacts()),
		Events:         b.resolveEvents(ctx, userID, rs.Events()),
	}

	sort.SliceStable(res.Deals, func(i, j int) bool {
		return res.Deals[i].SearchScore > res.Deals[j].SearchScore
	})
	sort.SliceStable(res.Contacts, func(i, j int) bool {
		return res.Contacts[i].SearchScore > res.Contacts[j].SearchScore
	})
	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].SearchScore > res.Events[j].SearchScore
	})

	return res
}

func (b *Builder) resolveDeals(ctx context.Context, userID string, matches []match.Match) []result.ScoredDeal {
	out := make([]result.ScoredDeal, 0, len(matches))
	for _, m := range matches {
		if !b.acceptID(m.ID(), entity.KindDeal) {
			continue
		}
		d, err := b.deals.GetDeal(ctx, userID, m.ID())
		if err != nil {
			b.dropMissing(m.ID(), entity.KindDeal, err)
			continue
		}
		out = append(out, result.ScoredDeal{
			Deal:         d,
			SearchScore:  m.Score(),
			SearchReason: m.Reason(),
		})
	}
	return out
}

func (b *Builder) resolveContacts(ctx context.Context, userID string, matches []match.Match) []result.ScoredContact {
	out := make([]result.ScoredContact, 0, len(matches))
	for _, m := range matches {
		if !b.acceptID(m.ID(), entity.KindContact) {
			continue
		}
		c, err := b.contacts.GetContact(ctx, userID, m.ID())
		if err != nil {
			b.dropMissing(m.ID(), entity.KindContact, err)
			continue
		}
		out = append(out, result.ScoredContact{
			Contact:      c,
			SearchScore:  m.Score(),
			SearchReason: m.Reason(),
		})
	}
	return out
}

func (b *Builder) resolveEvents(ctx context.Context, userID string, matches []match.Match) []result.ScoredEvent {
	out := make([]result.ScoredEvent, 0, len(matches))
	for _, m := range matches {
		if !b.acceptID(m.ID(), entity.KindEvent) {
			continue
		}
		e, err := b.events.GetEvent(ctx, userID, m.ID())
		if err != nil {
			b.dropMissing(m.ID(), entity.KindEvent, err)
			continue
		}
		out = append(out, result.ScoredEvent{
			Event:        e,
			SearchScore:  m.Score(),
			SearchReason: m.Reason(),
		})
	}
	return out
}

func (b *Builder) acceptID(id string, kind entity.Kind) bool {
	if idPattern.MatchString(id) {
		return true
	}
	if b.logger != nil {
		b.logger.Debug("Dropped malformed id from model output",
			zap.String("kind", string(kind)),
			zap.String("id", id))
	}
	return false
}

// dropMissing logs hallucinated ids at debug and store failures at warn.
// Either way the record is skipped and the search proceeds.
func (b *Builder) dropMissing(id string, kind entity.Kind, err error) {
	if b.logger == nil {
		return
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		b.logger.Debug("Dropped hallucinated id from model output",
			zap.String("kind", string(kind)),
			zap.String("id", id))
		return
	}
	b.logger.Warn("Failed to resolve matched record",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.Error(err))
}
