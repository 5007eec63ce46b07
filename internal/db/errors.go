package db

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for backend operations.
var (
	// ErrKeyNotFound is returned by KVStore.Get for a missing key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIO is the root of every search backend failure.
	ErrIO = errors.New("db: search backend i/o error")
	// ErrBackendFault is a fault reported by the backend itself.
	ErrBackendFault = fmt.Errorf("%w: backend fault", ErrIO)
	// ErrExport is the fault raised when an all-docs export requests a field
	// without doc values.
	ErrExport = fmt.Errorf("%w: export", ErrBackendFault)
)

// Op constants name backend operations for error context.
const (
	OpStream = "STREAM"
	OpSelect = "SELECT"
	OpPing   = "PING"
	OpGet    = "GET"
	OpSet    = "SET"
	OpDel    = "DEL"
	OpScan   = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is reports search transport failures as ErrIO. KV operations are excluded.
func (e *Error) Is(target error) bool {
	return target == ErrIO && (e.Op == OpStream || e.Op == OpSelect)
}

// BackendError is a fault object returned by the backend, kept together with
// the compiled expression that caused it.
type BackendError struct {
	Expression string
	Message    string
	// Kind is ErrBackendFault or ErrExport.
	Kind error
}

// NewBackendError classifies msg and wraps it with expression.
func NewBackendError(expression, msg string) *BackendError {
	kind := ErrBackendFault
	if isExportFault(msg) {
		kind = ErrExport
	}
	return &BackendError{Expression: expression, Message: msg, Kind: kind}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend fault: %s (expression: %s)", e.Message, e.Expression)
}

func (e *BackendError) Unwrap() error { return e.Kind }

// ExportFaultMarker is the text the backend reports when a field cannot be exported.
const ExportFaultMarker = "must have DocValues to use this feature"

func isExportFault(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "docvalues")
}
