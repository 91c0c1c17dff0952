// Package set provides an in-memory index over multi-valued document fields.
//
// Each document holds a set of members. An array value contributes each of
// its elements, a scalar counts as a one-member set, and null or an empty
// array leaves the document unindexed.
package set

import (
	"sync"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

var (
	_ index.SetQuerier    = (*Index)(nil)
	_ index.ExtentQuerier = (*Index)(nil)
	_ index.Maintainer    = (*Index)(nil)
)

// Index maps member values to the documents holding them.
type Index struct {
	name  string
	field string

	mu       sync.RWMutex
	postings map[string]*idset.Set
	members  map[string]value.Value
	docs     map[model.DocID][]value.Value
	domain   *idset.Set
}

// Option configures an Index.
type Option func(*Index)

// WithField reads members from the named document field instead of the
// index name.
func WithField(field string) Option {
	return func(ix *Index) {
		ix.field = field
	}
}

// New creates an empty set index.
func New(name string, opts ...Option) *Index {
	ix := &Index{
		name:     name,
		field:    name,
		postings: make(map[string]*idset.Set),
		members:  make(map[string]value.Value),
		docs:     make(map[model.DocID][]value.Value),
		domain:   idset.New(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Capabilities implements index.Index.
func (ix *Index) Capabilities() index.Capability {
	return index.CapSet | index.CapExtent
}

// Set replaces the members indexed for id.
func (ix *Index) Set(id model.DocID, v value.Value) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(id)

	var kept []value.Value
	seen := make(map[string]struct{})
	for _, m := range v.Elements() {
		if m.IsNull() {
			continue
		}
		key := m.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ids, ok := ix.postings[key]
		if !ok {
			ids = idset.New()
			ix.postings[key] = ids
			ix.members[key] = m.Clone()
		}
		ids.Add(id)
		kept = append(kept, m.Clone())
	}
	if len(kept) == 0 {
		return
	}
	ix.docs[id] = kept
	ix.domain.Add(id)
}

// Members returns the members indexed for id.
func (ix *Index) Members(id model.DocID) []value.Value {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return append([]value.Value(nil), ix.docs[id]...)
}

// IndexDoc implements index.Maintainer.
func (ix *Index) IndexDoc(id model.DocID, doc value.Document) error {
	ix.Set(id, doc[ix.field])
	return nil
}

// UnindexDoc implements index.Maintainer.
func (ix *Index) UnindexDoc(id model.DocID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(id)
}

func (ix *Index) removeLocked(id model.DocID) {
	for _, m := range ix.docs[id] {
		key := m.Key()
		if ids, ok := ix.postings[key]; ok {
			ids.Remove(id)
			if ids.IsEmpty() {
				delete(ix.postings, key)
				delete(ix.members, key)
			}
		}
	}
	delete(ix.docs, id)
	ix.domain.Remove(id)
}

// All implements index.Index.
func (ix *Index) All() *idset.Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.domain.Clone()
}

// AnyOf implements index.SetQuerier. No values match nothing.
func (ix *Index) AnyOf(vs []value.Value) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	sets := make([]*idset.Set, 0, len(vs))
	for _, v := range vs {
		if ids, ok := ix.postings[v.Key()]; ok && !v.IsNull() {
			sets = append(sets, ids)
		}
	}
	return idset.Union(sets...), nil
}

// AllOf implements index.SetQuerier. No values match every indexed document.
func (ix *Index) AllOf(vs []value.Value) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(vs) == 0 {
		return ix.domain.Clone(), nil
	}
	sets := make([]*idset.Set, 0, len(vs))
	for _, v := range vs {
		ids, ok := ix.postings[v.Key()]
		if !ok || v.IsNull() {
			return idset.New(), nil
		}
		sets = append(sets, ids)
	}
	return idset.Intersect(sets...), nil
}

// SetBetween implements index.SetQuerier.
func (ix *Index) SetBetween(r index.Range) (*idset.Set, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if r.Unbounded() {
		return ix.domain.Clone(), nil
	}
	var sets []*idset.Set
	for key, m := range ix.members {
		if r.Contains(m) {
			sets = append(sets, ix.postings[key])
		}
	}
	return idset.Union(sets...), nil
}

// ExtentAny implements index.ExtentQuerier.
func (ix *Index) ExtentAny(extent *idset.Set) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if extent == nil {
		return ix.domain.Clone(), nil
	}
	return idset.Intersect(extent, ix.domain), nil
}

// ExtentNone implements index.ExtentQuerier.
func (ix *Index) ExtentNone(extent *idset.Set) (*idset.Set, error) {
	if extent == nil {
		return idset.New(), nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return idset.Difference(extent, ix.domain), nil
}
