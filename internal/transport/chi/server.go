package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openrailwaymap/railsearch/internal/domain"
	"github.com/openrailwaymap/railsearch/internal/domain/search/request"
	logpkg "github.com/openrailwaymap/railsearch/internal/logger"
	"github.com/openrailwaymap/railsearch/internal/metrics"
	gen "github.com/openrailwaymap/railsearch/internal/transport/generated"
	healthuc "github.com/openrailwaymap/railsearch/internal/usecase/health"
	searchuc "github.com/openrailwaymap/railsearch/internal/usecase/search"
)

const (
	internalErrorSummary = "Internal server error."
	internalErrorDetail  = "The request could not be completed."
)

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	search *searchuc.Service
	health *healthuc.Service
	limits request.Limits
	logger *zap.Logger
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		limits: limits,
		logger: logger,
	}
}

// SearchFacilities handles GET /facility.
func (s *Server) SearchFacilities(w http.ResponseWriter, r *http.Request, params gen.SearchFacilitiesParams) {
	req, err := request.Parse(request.Params{
		Q:      params.Q,
		Name:   params.Name,
		Ref:    params.Ref,
		UICRef: params.UicRef,
		Limit:  params.Limit,
	}, s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.SetSearchMode(r.Context(), string(req.Mode()))

	records, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks)
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	status := gen.HealthResponseStatus(report.Status)
	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: status,
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// InvalidParam is the ErrorHandlerFunc for query parameters the router cannot bind.
func (s *Server) InvalidParam(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).Warn("invalid parameter", zap.Error(err))
	metrics.RequestErrorsTotal.WithLabelValues(string(gen.ErrorResponseTypeInvalidParameter)).Inc()

	detail := "Invalid query parameter."
	var pe *gen.InvalidParamFormatError
	if errors.As(err, &pe) {
		detail = "Invalid value provided for parameter \"" + pe.ParamName + "\"."
	}
	writeError(w, http.StatusBadRequest, gen.ErrorResponseTypeInvalidParameter, "Invalid parameter.", detail)
}

// requestLogger prefers the per-request logger set by the wide-event middleware.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ gen.ErrorResponseType, summary, detail string) {
	writeJSON(w, status, gen.ErrorResponse{
		Type:   typ,
		Error:  summary,
		Detail: detail,
	})
}

// handleDomainError renders request errors as 400 with their own type and
// messages. Anything else is logged and hidden behind internal_error.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)

	var re *domain.RequestError
	if errors.As(err, &re) {
		log.Warn("request error", zap.String("error_type", string(re.Type)))
		metrics.RequestErrorsTotal.WithLabelValues(string(re.Type)).Inc()
		writeError(w, http.StatusBadRequest, gen.ErrorResponseType(re.Type), re.Summary, re.Detail)
		return
	}

	log.Error("internal error", zap.Error(err))
	metrics.RequestErrorsTotal.WithLabelValues(string(gen.ErrorResponseTypeInternalError)).Inc()
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseTypeInternalError,
		internalErrorSummary, internalErrorDetail)
}
