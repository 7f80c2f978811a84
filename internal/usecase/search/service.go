// Package search orchestrates the full query pipeline: validate, consult the
// cache, serialize records, prompt the model, parse, resolve, cache.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/query"
	"github.com/kailas-cloud/crmfind/internal/domain/result"
	"github.com/kailas-cloud/crmfind/internal/metrics"
)

// Options tunes a single search invocation.
type Options struct {
	// BypassCache forces a fresh computation and overwrites any cached entry.
	BypassCache bool
	// Model overrides the configured completion model when non-empty.
	Model string
	// Temperature overrides the configured temperature when non-zero.
	Temperature float32
}

// Service runs searches end to end.
type Service struct {
	cache      Cache
	serializer Serializer
	prompts    PromptBuilder
	model      domain.Completer
	parser     ResponseParser
	assembler  ResultAssembler
	logger     *zap.Logger
	now        func() time.Time
}

// New creates the search service.
func New(
	cache Cache,
	serializer Serializer,
	prompts PromptBuilder,
	model domain.Completer,
	parser ResponseParser,
	assembler ResultAssembler,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cache:      cache,
		serializer: serializer,
		prompts:    prompts,
		model:      model,
		parser:     parser,
		assembler:  assembler,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search answers a natural language query over a user's records. The model is
// consulted once per cache miss; a cached result is returned with Cached set
// and its original metadata intact.
func (s *Service) Search(ctx context.Context, userID, queryText string, opts Options) (result.SearchResult, error) {
	q, err := query.New(userID, queryText)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid").Inc()
		return result.SearchResult{}, err
	}

	if !opts.BypassCache {
		if cached, ok := s.cache.Get(userID, queryText); ok {
			cached.Cached = true
			metrics.SearchRequestsTotal.WithLabelValues("cached").Inc()
			s.logger.Debug("Search served from cache", zap.String("user_id", userID))
			return cached, nil
		}
	}

	start := s.now()

	snap, err := s.serializer.SerializeAll(ctx, userID)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.SearchResult{}, err
	}

	req := s.prompts.Build(q, snap, start)
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != 0 {
		req.Temperature = opts.Temperature
	}

	resp, err := s.model.Complete(ctx, req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.SearchResult{}, fmt.Errorf("complete: %w", err)
	}

	rs, err := s.parser.Parse(resp.Content)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.SearchResult{}, err
	}

	res := s.assembler.Build(ctx, userID, rs, queryText)

	elapsed := s.now().Sub(start)
	res.Meta = result.Metadata{
		ElapsedMS:  elapsed.Milliseconds(),
		Considered: snap.Considered,
		Matched:    res.MatchedCounts(),
	}
	res.Cached = false

	s.cache.Put(userID, queryText, res)

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())

	s.logger.Info("Search completed",
		zap.String("user_id", userID),
		zap.String("model", resp.Model),
		zap.Int64("elapsed_ms", res.Meta.ElapsedMS),
		zap.Int("matched_deals", res.Meta.Matched.Deals),
		zap.Int("matched_contacts", res.Meta.Matched.Contacts),
		zap.Int("matched_events", res.Meta.Matched.Events))

	return res, nil
}
