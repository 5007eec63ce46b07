// Package chi serves the scxa JSON API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/logger"
	cacheuc "github.com/kailas-cloud/scxa/internal/usecase/cache"
	cellmetadatauc "github.com/kailas-cloud/scxa/internal/usecase/cellmetadata"
	celltypeuc "github.com/kailas-cloud/scxa/internal/usecase/celltype"
	genesearchuc "github.com/kailas-cloud/scxa/internal/usecase/genesearch"
	healthuc "github.com/kailas-cloud/scxa/internal/usecase/health"
)

const (
	maxBodyBytes = 1 << 20
	maxGeneIDs   = 10000
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the scxa API.
type Server struct {
	genes         *genesearchuc.Service
	cellTypes     *celltypeuc.Service
	cellMetadata  *cellmetadatauc.Service
	cache         *cacheuc.Service
	health        *healthuc.Service
	adminKeys     []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. adminKeys guard the administrative
// routes; with none configured those routes are disabled.
func NewServer(
	genes *genesearchuc.Service,
	cellTypes *celltypeuc.Service,
	cellMetadata *cellmetadatauc.Service,
	cache *cacheuc.Service,
	health *healthuc.Service,
	adminKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		genes:        genes,
		cellTypes:    cellTypes,
		cellMetadata: cellMetadata,
		cache:        cache,
		health:       health,
		adminKeys:    adminKeys,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTerm, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownCategory, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidAccession, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout),
		// Most specific backend failure first: ErrExport is an ErrBackendFault is an ErrIO.
		sentinelHandler(db.ErrExport, http.StatusBadGateway, ErrorCodeExportFault),
		sentinelHandler(db.ErrBackendFault, http.StatusBadGateway, ErrorCodeBackendFault),
		sentinelHandler(db.ErrIO, http.StatusServiceUnavailable, ErrorCodeBackendUnavailable),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/genes/search", s.SearchGenes)
		r.Get("/species", s.SearchSpecies)
		r.Post("/cell-types/by-genes", s.CellTypesByGenes)
		r.Post("/organism-parts/by-genes", s.OrganismPartsByGenes)

		r.Route("/experiments/{accession}", func(r chi.Router) {
			r.Get("/cell-types", s.ExperimentCellTypes)
			r.Get("/cells/{cellID}/metadata", s.CellMetadata)
			r.Get("/metadata-fields", s.MetadataFields)
			r.With(AdminAuthMiddleware(s.adminKeys)).Delete("/cache", s.InvalidateCache)
		})
	})
}

// SearchGenes handles GET /api/v1/genes/search?q=&category=&species=.
func (s *Server) SearchGenes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ids, err := s.genes.ResolveGeneIDs(r.Context(), q.Get("q"), q.Get("category"), q.Get("species"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(ids))
}

// SearchSpecies handles GET /api/v1/species?q=&category=.
func (s *Server) SearchSpecies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	species, err := s.genes.SearchSpecies(r.Context(), q.Get("q"), q.Get("category"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(species))
}

// CellTypesByGenes handles POST /api/v1/cell-types/by-genes.
func (s *Server) CellTypesByGenes(w http.ResponseWriter, r *http.Request) {
	geneIDs, ok := s.decodeGeneIDs(w, r)
	if !ok {
		return
	}
	types, err := s.cellTypes.CellTypesByGeneIDs(r.Context(), geneIDs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(types))
}

// OrganismPartsByGenes handles POST /api/v1/organism-parts/by-genes.
func (s *Server) OrganismPartsByGenes(w http.ResponseWriter, r *http.Request) {
	geneIDs, ok := s.decodeGeneIDs(w, r)
	if !ok {
		return
	}
	parts, err := s.cellTypes.OrganismPartsByGeneIDs(r.Context(), geneIDs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(parts))
}

// ExperimentCellTypes handles GET /api/v1/experiments/{accession}/cell-types?organism_part=.
// organism_part may be repeated.
func (s *Server) ExperimentCellTypes(w http.ResponseWriter, r *http.Request) {
	parts := r.URL.Query()["organism_part"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "organism_part is required")
		return
	}
	types, err := s.cellTypes.CellTypesByOrganismParts(r.Context(), chi.URLParam(r, "accession"), parts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(types))
}

// CellMetadata handles GET /api/v1/experiments/{accession}/cells/{cellID}/metadata.
func (s *Server) CellMetadata(w http.ResponseWriter, r *http.Request) {
	acc, cellID := chi.URLParam(r, "accession"), chi.URLParam(r, "cellID")
	fields, err := s.cellMetadata.MetadataForCell(r.Context(), acc, cellID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CellMetadataResponse{Experiment: acc, CellID: cellID, Metadata: make([]MetadataField, len(fields))}
	for i, f := range fields {
		resp.Metadata[i] = MetadataField{Name: f.Name, Value: f.Value}
	}
	writeJSON(w, http.StatusOK, resp)
}

// MetadataFields handles GET /api/v1/experiments/{accession}/metadata-fields.
func (s *Server) MetadataFields(w http.ResponseWriter, r *http.Request) {
	names, err := s.cellMetadata.FieldNames(r.Context(), chi.URLParam(r, "accession"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesResponse(names))
}

// InvalidateCache handles DELETE /api/v1/experiments/{accession}/cache.
// Unscoped results are dropped along with the experiment's own.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	acc := chi.URLParam(r, "accession")
	n, err := s.cache.InvalidateExperiment(r.Context(), acc)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Experiment: acc, Removed: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeGeneIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req GeneIDsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.GeneIDs) > maxGeneIDs {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("at most %d gene ids are accepted, got %d", maxGeneIDs, len(req.GeneIDs)))
		return nil, false
	}
	return req.GeneIDs, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message without exposing internals.
// Validation errors carry the offending value; backend faults never carry
// the compiled expression.
func safeDomainMessage(err error) string {
	for _, s := range []error{
		domain.ErrInvalidTerm,
		domain.ErrUnknownCategory,
		domain.ErrInvalidAccession,
		domain.ErrInvalidInput,
		domain.ErrNotFound,
	} {
		if errors.Is(err, s) {
			return validationMessage(err, s)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "search timed out"
	case errors.Is(err, db.ErrExport):
		return "search backend cannot export a requested field"
	case errors.Is(err, db.ErrBackendFault):
		return "search backend rejected the query"
	case errors.Is(err, db.ErrIO):
		return "search backend unavailable"
	}
	return "internal error"
}

// validationMessage trims the wrapping context off err, keeping the sentinel
// and its detail, e.g. `invalid experiment accession: "5061"`.
func validationMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)

	var be *db.BackendError
	if errors.As(err, &be) {
		log.Error("search backend fault",
			zap.String("expression", be.Expression),
			zap.String("fault", be.Message))
	} else {
		log.Warn("domain error", zap.Error(err))
	}

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
