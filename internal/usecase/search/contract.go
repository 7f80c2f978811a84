package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/match"
	"github.com/kailas-cloud/crmfind/internal/domain/query"
	"github.com/kailas-cloud/crmfind/internal/domain/result"
	"github.com/kailas-cloud/crmfind/internal/usecase/serialize"
)

// Cache stores computed results per (user, query).
type Cache interface {
	Get(userID, queryText string) (result.SearchResult, bool)
	Put(userID, queryText string, value result.SearchResult)
}

// Serializer produces the record snapshot fed to the model.
type Serializer interface {
	SerializeAll(ctx context.Context, userID string) (serialize.Snapshot, error)
}

// PromptBuilder renders the completion request for a query and snapshot.
type PromptBuilder interface {
	Build(q query.Query, snap serialize.Snapshot, now time.Time) domain.CompletionRequest
}

// ResponseParser extracts matches from raw completion text.
type ResponseParser interface {
	Parse(text string) (match.ResultSet, error)
}

// ResultAssembler resolves matches into full scored records.
type ResultAssembler interface {
	Build(ctx context.Context, userID string, rs match.ResultSet, queryText string) result.SearchResult
}
