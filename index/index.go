package index

import (
	"errors"
	"strings"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

// ErrMalformedQuery is returned by text indexes for unparseable query text.
var ErrMalformedQuery = errors.New("malformed text query")

// Capability is a set of query families an index supports.
type Capability uint8

const (
	// CapField marks single-valued field queries.
	CapField Capability = 1 << iota
	// CapSet marks multi-valued set queries.
	CapSet
	// CapExtent marks extent-bounded queries.
	CapExtent
	// CapText marks text queries.
	CapText
	// CapSort marks the ability to order ids.
	CapSort
)

// Has reports whether c includes all capabilities in other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// String returns a string representation of the Capability.
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, p := range []struct {
		cap  Capability
		name string
	}{
		{CapField, "field"},
		{CapSet, "set"},
		{CapExtent, "extent"},
		{CapText, "text"},
		{CapSort, "sort"},
	} {
		if c.Has(p.cap) {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}

// Range is an optionally bounded value interval. A null bound is unbounded.
type Range struct {
	Min        value.Value
	Max        value.Value
	ExcludeMin bool
	ExcludeMax bool
}

// Index is implemented by every index.
type Index interface {
	Name() string
	Capabilities() Capability
	// All returns every id the index has a value for.
	All() *idset.Set
}

// FieldQuerier answers single-valued field queries.
type FieldQuerier interface {
	Index
	Equal(v value.Value) (*idset.Set, error)
	In(vs []value.Value) (*idset.Set, error)
	Between(r Range) (*idset.Set, error)
}

// SetQuerier answers queries over multi-valued fields.
type SetQuerier interface {
	Index
	// AnyOf returns ids holding at least one of vs.
	AnyOf(vs []value.Value) (*idset.Set, error)
	// AllOf returns ids holding every one of vs.
	AllOf(vs []value.Value) (*idset.Set, error)
	// SetBetween returns ids holding at least one member inside r.
	SetBetween(r Range) (*idset.Set, error)
}

// ExtentQuerier answers extent-bounded queries. A nil extent is unrestricted.
type ExtentQuerier interface {
	Index
	// ExtentAny returns the ids of extent the index has a value for.
	ExtentAny(extent *idset.Set) (*idset.Set, error)
	// ExtentNone returns the ids of extent the index has no value for.
	ExtentNone(extent *idset.Set) (*idset.Set, error)
}

// TextQuerier answers free-text queries.
type TextQuerier interface {
	Index
	// MatchText returns the matching ids. Unparseable text fails with an
	// error wrapping ErrMalformedQuery.
	MatchText(query string) (*idset.Set, error)
}

// Sorter orders ids by their indexed value.
type Sorter interface {
	Index
	// Sort returns a permutation of ids. Ids without a value come last in
	// ascending id order. limit > 0 is a hint; callers window the result.
	Sort(ids []model.DocID, reverse bool, limit int) ([]model.DocID, error)
}

// Maintainer is implemented by indexes that catalogs can feed documents to.
type Maintainer interface {
	Index
	IndexDoc(id model.DocID, doc value.Document) error
	UnindexDoc(id model.DocID)
}

// Catalog is a named collection of indexes.
type Catalog interface {
	Name() string
	Index(name string) (Index, bool)
}
