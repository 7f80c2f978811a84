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

type cacheKey struct {
	userID string
	query  string
}

// mockCache is a plain map cache without TTL.
type mockCache struct {
	entries map[cacheKey]result.SearchResult
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[cacheKey]result.SearchResult{}}
}

func (m *mockCache) Get(userID, queryText string) (result.SearchResult, bool) {
	v, ok := m.entries[cacheKey{userID, queryText}]
	return v, ok
}

func (m *mockCache) Put(userID, queryText string, value result.SearchResult) {
	m.puts++
	m.entries[cacheKey{userID, queryText}] = value
}

type mockSerializer struct {
	snap  serialize.Snapshot
	err   error
	calls int
}

func (m *mockSerializer) SerializeAll(_ context.Context, _ string) (serialize.Snapshot, error) {
	m.calls++
	return m.snap, m.err
}

type mockPrompts struct {
	req domain.CompletionRequest
}

func (m *mockPrompts) Build(_ query.Query, _ serialize.Snapshot, _ time.Time) domain.CompletionRequest {
	return m.req
}

type mockCompleter struct {
	resp    domain.CompletionResponse
	err     error
	calls   int
	lastReq domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	m.calls++
	m.lastReq = req
	return m.resp, m.err
}

type mockParser struct {
	rs  match.ResultSet
	err error
}

func (m *mockParser) Parse(_ string) (match.ResultSet, error) {
	return m.rs, m.err
}

type mockAssembler struct {
	res result.SearchResult
}

func (m *mockAssembler) Build(_ context.Context, _ string, _ match.ResultSet, queryText string) result.SearchResult {
	res := m.res
	res.Query = queryText
	return res
}
