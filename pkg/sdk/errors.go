package scxa

import (
	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain"
)

// Sentinel errors re-exported from the domain and storage layers.
// Use errors.Is() to check.
var (
	ErrInvalidTerm      = domain.ErrInvalidTerm
	ErrUnknownCategory  = domain.ErrUnknownCategory
	ErrInvalidAccession = domain.ErrInvalidAccession
	ErrInvalidInput     = domain.ErrInvalidInput

	// ErrIO is the root of every search backend failure.
	ErrIO = db.ErrIO
	// ErrBackendFault is a fault reported by the backend itself.
	ErrBackendFault = db.ErrBackendFault
	// ErrExport is an all-docs export of a field without doc values.
	ErrExport = db.ErrExport
)

// NotAvailable is the value reported for a metadata field a cell lacks.
const NotAvailable = domain.NotAvailable
