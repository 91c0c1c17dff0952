package termq

import (
	"errors"
	"fmt"

	"github.com/hupe1980/termq/blobstore"
	"github.com/hupe1980/termq/docstore"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/intid"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/value"
)

var (
	// ErrUnresolved is returned when a catalog, index or object resolver
	// cannot be found in the search context.
	ErrUnresolved = query.ErrUnresolved
	// ErrUnsupported is returned when an index lacks a capability a term needs.
	ErrUnsupported = query.ErrUnsupported
	// ErrInvalidTerm is returned for terms that cannot be evaluated.
	ErrInvalidTerm = query.ErrInvalidTerm
	// ErrInvalidOption is returned for invalid search options.
	ErrInvalidOption = query.ErrInvalidOption
	// ErrIncomparable is returned for range bounds that cannot be ordered.
	ErrIncomparable = value.ErrIncomparable
	// ErrNotFound is returned when an object or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNilContext is returned by New without a search context.
	ErrNilContext = errors.New("termq: nil search context")
)

// ErrMissingCapability indicates that an index cannot answer a term.
//
// The underlying error can be accessed via errors.Unwrap.
type ErrMissingCapability struct {
	Ref        model.IndexRef
	Capability index.Capability
	cause      error
}

func (e *ErrMissingCapability) Error() string {
	return fmt.Sprintf("index %s does not support %s", e.Ref, e.Capability)
}

func (e *ErrMissingCapability) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, docstore.ErrNotFound) ||
		errors.Is(err, intid.ErrNotFound) ||
		errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var ce *query.CapabilityError
	if errors.As(err, &ce) {
		return &ErrMissingCapability{
			Ref:        model.Ref(ce.Catalog, ce.Index),
			Capability: ce.Capability,
			cause:      err,
		}
	}

	var se *query.SortError
	if errors.As(err, &se) {
		return &ErrMissingCapability{
			Ref:        model.Ref(se.Catalog, se.Index),
			Capability: index.CapSort,
			cause:      err,
		}
	}

	return err
}
