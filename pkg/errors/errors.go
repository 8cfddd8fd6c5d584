package errors

import (
	"errors"
	"net/http"
)

var (
	// Configuration errors, raised once at construction
	ErrInvalidConfig      = errors.New("invalid index configuration")
	ErrNoReferenceObjects = errors.New("reference object set is empty")

	// Validation errors, internal invariant violations
	ErrInvalidPosition   = errors.New("posting position out of range")
	ErrDuplicateEvidence = errors.New("duplicate posting for the same pivot")

	// Argument errors
	ErrInvalidN         = errors.New("number of neighbours must be positive")
	ErrNotEnoughObjects = errors.New("not enough objects to sample reference objects")
	ErrUnsupportedSpace = errors.New("unsupported space type")
	ErrInvalidDimension = errors.New("invalid vector dimension")

	// Collection errors
	ErrCollectionExists   = errors.New("collection already exists")
	ErrCollectionNotFound = errors.New("collection not found")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")

	ErrIndexAlreadyBuilt = errors.New("index already built")
)

// IsConfig reports whether err comes from invalid construction parameters.
func IsConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrNoReferenceObjects)
}

// IsValidation reports whether err is an internal invariant violation.
// These are defects and must never be swallowed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPosition) || errors.Is(err, ErrDuplicateEvidence)
}

// StatusCode maps an error to the HTTP status the server answers with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrCollectionNotFound), errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCollectionExists), errors.Is(err, ErrDocumentExists),
		errors.Is(err, ErrIndexAlreadyBuilt):
		return http.StatusConflict
	case IsConfig(err), errors.Is(err, ErrInvalidN), errors.Is(err, ErrInvalidDimension),
		errors.Is(err, ErrUnsupportedSpace), errors.Is(err, ErrNotEnoughObjects):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
