package domain

import "errors"

var (
	// ErrInvalidTerm signals a blank or malformed search term.
	ErrInvalidTerm = errors.New("invalid search term")
	// ErrUnknownCategory signals an unsupported gene property category.
	ErrUnknownCategory = errors.New("unknown gene category")
	// ErrInvalidAccession signals a malformed experiment accession.
	ErrInvalidAccession = errors.New("invalid experiment accession")
	// ErrInvalidInput signals a malformed request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
