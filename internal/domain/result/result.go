package result

import "github.com/kailas-cloud/crmfind/internal/domain/entity"

// Counts holds per-kind entity counts.
type Counts struct {
	Deals    int `json:"deals"`
	Contacts int `json:"contacts"`
	Events   int `json:"events"`
}

// Metadata describes how a search result was produced.
type Metadata struct {
	ElapsedMS  int64  `json:"elapsed_ms"`
	Considered Counts `json:"considered"`
	Matched    Counts `json:"matched"`
}

// ScoredDeal is a full deal record plus the model's relevance claim.
type ScoredDeal struct {
	entity.Deal
	SearchScore  int    `json:"search_score"`
	SearchReason string `json:"search_reason"`
}

// ScoredContact is a full contact record plus the model's relevance claim.
type ScoredContact struct {
	entity.Contact
	SearchScore  int    `json:"search_score"`
	SearchReason string `json:"search_reason"`
}

// ScoredEvent is a full event record plus the model's relevance claim.
type ScoredEvent struct {
	entity.Event
	SearchScore  int    `json:"search_score"`
	SearchReason string `json:"search_reason"`
}

// SearchResult is the final ranked answer for one search invocation.
// Each list is sorted by SearchScore descending, ties in model order.
type SearchResult struct {
	Query          string          `json:"query"`
	Interpretation string          `json:"query_interpretation"`
	Deals          []ScoredDeal    `json:"deals"`
	Contacts       []ScoredContact `json:"contacts"`
	Events         []ScoredEvent   `json:"events"`
	Meta           Metadata        `json:"metadata"`
	Cached         bool            `json:"cached"`
}

// MatchedCounts returns per-kind matched counts.
func (r *SearchResult) MatchedCounts() Counts {
	return Counts{
		Deals:    len(r.Deals),
		Contacts: len(r.Contacts),
		Events:   len(r.Events),
	}
}
