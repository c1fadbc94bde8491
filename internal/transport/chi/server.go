package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/metrics"
	healthuc "github.com/kailas-cloud/feedradar/internal/usecase/health"
)

// Pagination bounds for the items listing.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the HTTP API handlers.
type Server struct {
	pipeline Pipeline
	items    Items
	feedback Feedback
	cycles   Cycles
	health   Health
	apiKeys  []string
	logger   *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates a Server with its domain error mapping.
func NewServer(pipeline Pipeline, items Items, feedback Feedback, cycles Cycles, health Health, apiKeys []string, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		items:    items,
		feedback: feedback,
		cycles:   cycles,
		health:   health,
		apiKeys:  apiKeys,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrSummaryNotFound, http.StatusNotFound, codeSummaryNotFound),
		sentinelHandler(domain.ErrInvalidFeedback, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Router assembles the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/items", s.ListItems)
		r.Get("/items/{id}", s.GetItem)
		r.Post("/feedback", s.PostFeedback)
		r.Post("/cycles/run", s.RunCycle)
		r.Get("/cycles/latest", s.LatestCycle)
	})

	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListItems handles GET /v1/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	kind := r.URL.Query().Get("kind")

	scored, err := s.items.Top(r.Context(), limit, offset, kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := itemListResponse{
		Items:  make([]itemResponse, len(scored)),
		Limit:  limit,
		Offset: offset,
		Count:  len(scored),
	}
	for i := range scored {
		resp.Items[i] = itemToResponse(&scored[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetItem handles GET /v1/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scored, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(&scored))
}

// PostFeedback handles POST /v1/feedback.
func (s *Server) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "item_id is required")
		return
	}

	rec, err := s.feedback.Record(r.Context(), req.ItemID, req.Type, req.Weight)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.FeedbackTotal.WithLabelValues(string(rec.Type())).Inc()
	writeJSON(w, http.StatusAccepted, feedbackToResponse(&rec))
}

// RunCycle handles POST /v1/cycles/run.
func (s *Server) RunCycle(w http.ResponseWriter, r *http.Request) {
	sum, err := s.pipeline.Run(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cycleToResponse(sum))
}

// LatestCycle handles GET /v1/cycles/latest.
func (s *Server) LatestCycle(w http.ResponseWriter, r *http.Request) {
	sum, err := s.cycles.Latest(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cycleToResponse(sum))
}

// pageParams parses limit and offset, applying the default and the page cap.
func pageParams(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// handleDomainError maps a domain error to an HTTP response.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, msg)
}

// sentinelHandler builds an errorHandler for one sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns err.Error() when the error wraps a known domain
// sentinel, or a generic message otherwise (avoids leaking internals).
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrSummaryNotFound,
		domain.ErrInvalidFeedback,
		domain.ErrSourceUnavailable,
		domain.ErrMalformedItem,
		domain.ErrPersistenceConflict,
		domain.ErrConfiguration,
		domain.ErrUnknownSourceKind,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
