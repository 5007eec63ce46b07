package chi

// ErrorCode is a machine-readable error class returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeExportFault        ErrorCode = "export_fault"
	ErrorCodeBackendFault       ErrorCode = "backend_fault"
	ErrorCodeBackendUnavailable ErrorCode = "backend_unavailable"
	ErrorCodeTimeout            ErrorCode = "timeout"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GeneIDsRequest is the body of the gene ID based lookups.
type GeneIDsRequest struct {
	GeneIDs []string `json:"gene_ids"`
}

// ValuesResponse wraps a sorted set of values.
type ValuesResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// MetadataField is one metadata value of a cell.
type MetadataField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CellMetadataResponse is the body of GET .../cells/{cellID}/metadata.
type CellMetadataResponse struct {
	Experiment string          `json:"experiment_accession"`
	CellID     string          `json:"cell_id"`
	Metadata   []MetadataField `json:"metadata"`
}

// InvalidateResponse is the body of DELETE .../cache.
type InvalidateResponse struct {
	Experiment string `json:"experiment_accession"`
	Removed    int    `json:"removed"`
}

func valuesResponse(items []string) ValuesResponse {
	if items == nil {
		items = []string{}
	}
	return ValuesResponse{Items: items, Total: len(items)}
}
