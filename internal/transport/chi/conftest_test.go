package chi

import (
	"context"
	"net/http/httptest"
	"sync"

	chiRouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/crmfind/internal/db"
	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/repository/records"
	"github.com/kailas-cloud/crmfind/internal/repository/searchcache"
	healthuc "github.com/kailas-cloud/crmfind/internal/usecase/health"
	parseuc "github.com/kailas-cloud/crmfind/internal/usecase/parse"
	promptuc "github.com/kailas-cloud/crmfind/internal/usecase/prompt"
	resultsuc "github.com/kailas-cloud/crmfind/internal/usecase/results"
	searchuc "github.com/kailas-cloud/crmfind/internal/usecase/search"
	serializeuc "github.com/kailas-cloud/crmfind/internal/usecase/serialize"
)

// memStore is an in-memory hash store backing transport tests.
type memStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}}
}

func (s *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = map[string]string{}
		s.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
	return nil
}

func (s *memStore) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	if !ok {
		return "", db.ErrKeyNotFound
	}
	return v, nil
}

func (s *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for f, v := range s.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (s *memStore) HDel(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fields {
		delete(s.hashes[key], f)
	}
	return nil
}

func (s *memStore) Ping(_ context.Context) error { return nil }

// scriptedCompleter returns a fixed completion and counts invocations.
type scriptedCompleter struct {
	content string
	calls   int
}

func (c *scriptedCompleter) Complete(_ context.Context, _ domain.CompletionRequest) (domain.CompletionResponse, error) {
	c.calls++
	return domain.CompletionResponse{Content: c.content, Model: "test-model"}, nil
}

type testEnv struct {
	server    *httptest.Server
	store     *memStore
	completer *scriptedCompleter
	cache     *searchcache.Cache
}

// newTestEnv wires the full HTTP stack over in-memory fakes.
func newTestEnv(content string) *testEnv {
	store := newMemStore()
	completer := &scriptedCompleter{content: content}
	logger := zap.NewNop()

	recordsRepo := records.New(store, "crmfind:")
	cache := searchcache.New(searchcache.DefaultTTL, nil, logger)

	serializer := serializeuc.New(recordsRepo, recordsRepo, recordsRepo)
	prompts := promptuc.New(domain.DefaultThresholds())
	parser := parseuc.New()
	assembler := resultsuc.New(recordsRepo, recordsRepo, recordsRepo, logger)
	searchSvc := searchuc.New(cache, serializer, prompts, completer, parser, assembler, logger)
	healthSvc := healthuc.New(store, nil)

	srv := NewServer(searchSvc, recordsRepo, cache, healthSvc, logger)

	r := chiRouter.NewRouter()
	srv.Routes(r)

	return &testEnv{
		server:    httptest.NewServer(r),
		store:     store,
		completer: completer,
		cache:     cache,
	}
}

func (e *testEnv) close() {
	e.cache.Stop()
	e.server.Close()
}
