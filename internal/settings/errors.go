package settings

import "errors"

// Sentinel errors for settings loading, expansion, and validation.
var (
	// ErrNotFound indicates a referenced path, file, or table key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMissingField indicates a required key is absent from an input document.
	ErrMissingField = errors.New("required field missing")
	// ErrMissingConfiguration indicates the settings lack a required parameter group.
	ErrMissingConfiguration = errors.New("missing configuration")
	// ErrConflict indicates two scenario overrides set the same settings key.
	ErrConflict = errors.New("conflicting overrides")
	// ErrDuplicateKey indicates a list parameter repeats entries that must be unique.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidValue indicates a referenced label has no match in the reference data.
	ErrInvalidValue = errors.New("invalid value")
)

// ConflictError records a settings key written by two different category
// overrides while expanding a single case.
type ConflictError struct {
	Key    string // Dot-path of the conflicting leaf key.
	CaseID string
}

// Error returns a human-readable description naming the key and case.
func (e *ConflictError) Error() string {
	return "settings key " + e.Key + " is modified twice in case id " + e.CaseID
}

// Unwrap returns ErrConflict for use with errors.Is.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
