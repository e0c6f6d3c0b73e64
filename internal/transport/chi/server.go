package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	healthuc "github.com/kailas-cloud/recommender/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

// maxBodyBytes bounds request bodies of /recommend and the form UI.
const maxBodyBytes = 1 << 20

// sentinelMapping ties a domain sentinel to the HTTP status and code it is reported with.
type sentinelMapping struct {
	err    error
	status int
	code   ErrorCode
}

// sentinelMappings is the single error→status table for the JSON API and the form UI.
var sentinelMappings = []sentinelMapping{
	{domain.ErrNotReady, http.StatusServiceUnavailable, ErrorCodeNotReady},
	{domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError},
	{domain.ErrSearchFailed, http.StatusBadGateway, ErrorCodeSearchFailed},
	{domain.ErrInvalidLimit, http.StatusBadRequest, ErrorCodeBadRequest},
}

// mapDomainError finds the mapping for err. Unknown errors are internal.
func mapDomainError(err error) (sentinelMapping, bool) {
	for _, m := range sentinelMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return sentinelMapping{status: http.StatusInternalServerError, code: ErrorCodeInternalError}, false
}

// Server serves the recommendation API and the form UI.
type Server struct {
	recommend    *recommenduc.Service
	health       *healthuc.Service
	logger       *zap.Logger
	defaultLimit int
}

// NewServer creates an HTTP API server.
func NewServer(recommend *recommenduc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		recommend:    recommend,
		health:       health,
		logger:       logger,
		defaultLimit: recommenduc.DefaultLimit,
	}
}

// WithDefaultLimit sets the limit used when a request omits it.
func (s *Server) WithDefaultLimit(limit int) *Server {
	if limit > 0 {
		s.defaultLimit = recommenduc.ClampLimit(limit)
	}
	return s
}

// Recommend handles POST /recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	limit := s.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rec, err := s.recommend.Recommend(ctx, req.Query, recommenduc.ClampLimit(limit))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Assessment, len(rec.Items))
	for i, it := range rec.Items {
		items[i] = assessmentToResponse(it)
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, RecommendResponse{RecommendedAssessments: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:       string(report.Status),
		EngineLoaded: report.EngineLoaded,
		Checks:       checks,
	})
}

func assessmentToResponse(r domassess.Record) Assessment {
	types := r.TestTypes()
	if types == nil {
		types = []string{}
	}
	return Assessment{
		URL:             r.URL(),
		Name:            r.Name(),
		AdaptiveSupport: string(r.AdaptiveSupport()),
		Description:     r.Description(),
		Duration:        r.Duration(),
		RemoteSupport:   string(r.RemoteSupport()),
		TestType:        types,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if tokens, used := usage.Snapshot(); used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(tokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	m, known := mapDomainError(err)
	if !known {
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, m.status, m.code, "internal error")
		return
	}
	s.logger.Warn("domain error", zap.Error(err))
	// Only the sentinel text reaches the client.
	writeError(w, m.status, m.code, m.err.Error())
}

// errorStatus is the HTTP status the JSON API reports for err.
func errorStatus(err error) int {
	m, _ := mapDomainError(err)
	return m.status
}
