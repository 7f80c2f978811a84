// Package chi is the HTTP transport: routing, request decoding, error
// mapping. All domain logic lives in the usecase layer.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/crmfind/internal/domain"
	"github.com/kailas-cloud/crmfind/internal/domain/entity"
	"github.com/kailas-cloud/crmfind/internal/repository/records"
	healthuc "github.com/kailas-cloud/crmfind/internal/usecase/health"
	searchuc "github.com/kailas-cloud/crmfind/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest    = "bad_request"
	CodeMissingQuery  = "missing_query"
	CodeSearchError   = "search_error"
	CodeNotFound      = "not_found"
	CodeUnauthorized  = "unauthorized"
	CodeInternalError = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	UserID      string  `json:"user_id"`
	Query       string  `json:"query"`
	BypassCache bool    `json:"bypass_cache,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

// CacheInvalidator drops cached search results for a user.
type CacheInvalidator interface {
	InvalidateUser(userID string)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        *searchuc.Service
	records       *records.Repository
	cache         CacheInvalidator
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	recs *records.Repository,
	cache CacheInvalidator,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		records: recs,
		cache:   cache,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQueryTooShort, http.StatusBadRequest, CodeSearchError),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, CodeSearchError),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrSerialization, http.StatusServiceUnavailable, CodeSearchError),
		sentinelHandler(domain.ErrModelConfig, http.StatusServiceUnavailable, CodeSearchError),
		sentinelHandler(domain.ErrModelProvider, http.StatusServiceUnavailable, CodeSearchError),
		sentinelHandler(domain.ErrParseFailure, http.StatusBadGateway, CodeSearchError),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/cache/invalidate", s.InvalidateCache)

			r.Route("/deals", func(r chi.Router) {
				r.Get("/", s.ListDeals)
				r.Post("/", s.CreateDeal)
				r.Get("/{id}", s.GetDeal)
				r.Put("/{id}", s.UpsertDeal)
				r.Delete("/{id}", s.DeleteDeal)
			})
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", s.ListContacts)
				r.Post("/", s.CreateContact)
				r.Get("/{id}", s.GetContact)
				r.Put("/{id}", s.UpsertContact)
				r.Delete("/{id}", s.DeleteContact)
			})
			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.ListEvents)
				r.Post("/", s.CreateEvent)
				r.Get("/{id}", s.GetEvent)
				r.Put("/{id}", s.UpsertEvent)
				r.Delete("/{id}", s.DeleteEvent)
			})
		})
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "user_id is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeMissingQuery, "query is required")
		return
	}

	res, err := s.search.Search(r.Context(), req.UserID, req.Query, searchuc.Options{
		BypassCache: req.BypassCache,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// InvalidateCache handles POST /api/v1/users/{userID}/cache/invalidate.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.cache.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Deals ---

// ListDeals handles GET /api/v1/users/{userID}/deals.
func (s *Server) ListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.records.ListDeals(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

// GetDeal handles GET /api/v1/users/{userID}/deals/{id}.
func (s *Server) GetDeal(w http.ResponseWriter, r *http.Request) {
	d, err := s.records.GetDeal(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreateDeal handles POST /api/v1/users/{userID}/deals.
func (s *Server) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var d entity.Deal
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d.ID = uuid.NewString()
	s.saveDeal(w, r, &d, http.StatusCreated)
}

// UpsertDeal handles PUT /api/v1/users/{userID}/deals/{id}.
func (s *Server) UpsertDeal(w http.ResponseWriter, r *http.Request) {
	var d entity.Deal
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	d.ID = chi.URLParam(r, "id")
	s.saveDeal(w, r, &d, http.StatusOK)
}

func (s *Server) saveDeal(w http.ResponseWriter, r *http.Request, d *entity.Deal, status int) {
	d.UserID = chi.URLParam(r, "userID")
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if err := s.records.PutDeal(r.Context(), d); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(d.UserID)
	writeJSON(w, status, d)
}

// DeleteDeal handles DELETE /api/v1/users/{userID}/deals/{id}.
func (s *Server) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.records.DeleteDeal(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Contacts ---

// ListContacts handles GET /api/v1/users/{userID}/contacts.
func (s *Server) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.records.ListContacts(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// GetContact handles GET /api/v1/users/{userID}/contacts/{id}.
func (s *Server) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.records.GetContact(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContact handles POST /api/v1/users/{userID}/contacts.
func (s *Server) CreateContact(w http.ResponseWriter, r *http.Request) {
	var c entity.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	c.ID = uuid.NewString()
	s.saveContact(w, r, &c, http.StatusCreated)
}

// UpsertContact handles PUT /api/v1/users/{userID}/contacts/{id}.
func (s *Server) UpsertContact(w http.ResponseWriter, r *http.Request) {
	var c entity.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	c.ID = chi.URLParam(r, "id")
	s.saveContact(w, r, &c, http.StatusOK)
}

func (s *Server) saveContact(w http.ResponseWriter, r *http.Request, c *entity.Contact, status int) {
	c.UserID = chi.URLParam(r, "userID")
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := s.records.PutContact(r.Context(), c); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(c.UserID)
	writeJSON(w, status, c)
}

// DeleteContact handles DELETE /api/v1/users/{userID}/contacts/{id}.
func (s *Server) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.records.DeleteContact(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Events ---

// ListEvents handles GET /api/v1/users/{userID}/events.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.records.ListEvents(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/v1/users/{userID}/events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.records.GetEvent(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEvent handles POST /api/v1/users/{userID}/events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var e entity.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	e.ID = uuid.NewString()
	s.saveEvent(w, r, &e, http.StatusCreated)
}

// UpsertEvent handles PUT /api/v1/users/{userID}/events/{id}.
func (s *Server) UpsertEvent(w http.ResponseWriter, r *http.Request) {
	var e entity.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	e.ID = chi.URLParam(r, "id")
	s.saveEvent(w, r, &e, http.StatusOK)
}

func (s *Server) saveEvent(w http.ResponseWriter, r *http.Request, e *entity.Event, status int) {
	e.UserID = chi.URLParam(r, "userID")
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := s.records.PutEvent(r.Context(), e); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(e.UserID)
	writeJSON(w, status, e)
}

// DeleteEvent handles DELETE /api/v1/users/{userID}/events/{id}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.records.DeleteEvent(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.cache.InvalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrQueryTooShort), errors.Is(err, domain.ErrQueryTooLong):
		return err.Error()
	case errors.Is(err, domain.ErrRecordNotFound):
		return domain.ErrRecordNotFound.Error()
	case errors.Is(err, domain.ErrParseFailure):
		return "failed to parse search results"
	case errors.Is(err, domain.ErrSerialization),
		errors.Is(err, domain.ErrModelConfig),
		errors.Is(err, domain.ErrModelProvider):
		return "search service temporarily unavailable"
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
