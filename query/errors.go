package query

import (
	"errors"
	"fmt"

	"github.com/hupe1980/termq/index"
)

var (
	// ErrUnresolved is returned when a catalog or index name is unknown in
	// the evaluation context.
	ErrUnresolved = errors.New("unresolved index reference")
	// ErrUnsupported is returned when an index lacks the capability a term
	// or sort needs.
	ErrUnsupported = errors.New("unsupported index capability")
	// ErrInvalidTerm is returned when evaluating a malformed term.
	ErrInvalidTerm = errors.New("invalid term")
	// ErrInvalidOption is returned for invalid search options.
	ErrInvalidOption = errors.New("invalid search option")
)

// ResolveError reports an unknown catalog or index. Index is empty when the
// catalog itself is missing.
type ResolveError struct {
	Catalog string
	Index   string
	Err     error
}

// Error implements error.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("index %q not found in catalog %q", e.Index, e.Catalog)
	if e.Index == "" {
		msg = fmt.Sprintf("catalog %q not found", e.Catalog)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying errors.
func (e *ResolveError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnresolved, e.Err}
	}
	return []error{ErrUnresolved}
}

// CapabilityError reports an index that cannot answer a term.
type CapabilityError struct {
	Catalog    string
	Index      string
	Capability index.Capability
}

// Error implements error.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("index %q in catalog %q does not support %s queries", e.Index, e.Catalog, e.Capability)
}

// Unwrap returns ErrUnsupported.
func (e *CapabilityError) Unwrap() error { return ErrUnsupported }

// SortError reports a sort index without the sort capability.
// Catalog is empty when the index was passed directly with WithSortIndex.
type SortError struct {
	Catalog string
	Index   string
}

// Error implements error.
func (e *SortError) Error() string {
	if e.Catalog == "" {
		return fmt.Sprintf("index %q does not support sorting", e.Index)
	}
	return fmt.Sprintf("index %q in catalog %q does not support sorting", e.Index, e.Catalog)
}

// Unwrap returns ErrUnsupported.
func (e *SortError) Unwrap() error { return ErrUnsupported }
