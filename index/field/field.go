// Package field provides an in-memory index over a single-valued document
// field.
//
// Postings are Roaring bitmaps keyed by value.Key; distinct values are kept
// in value.Order for range scans and sorting.
package field

import (
	"cmp"
	"slices"
	"sync"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

var (
	_ index.FieldQuerier  = (*Index)(nil)
	_ index.ExtentQuerier = (*Index)(nil)
	_ index.Sorter        = (*Index)(nil)
	_ index.Maintainer    = (*Index)(nil)
)

// Index maps one value per document to posting lists.
type Index struct {
	name  string
	field string

	mu sync.RWMutex

	// value key -> ids holding that value
	postings map[string]*idset.Set
	// value key -> value
	values map[string]value.Value
	// id -> value
	docs   map[model.DocID]value.Value
	domain *idset.Set

	// distinct values in value.Order, rebuilt lazily after writes
	sorted []value.Value
	dirty  bool
}

// Option configures an Index.
type Option func(*Index)

// WithField reads the indexed value from the named document field instead of
// the index name.
func WithField(field string) Option {
	return func(ix *Index) {
		ix.field = field
	}
}

// New creates an empty field index.
func New(name string, opts ...Option) *Index {
	ix := &Index{
		name:     name,
		field:    name,
		postings: make(map[string]*idset.Set),
		values:   make(map[string]value.Value),
		docs:     make(map[model.DocID]value.Value),
		domain:   idset.New(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Field returns the document field the index reads.
func (ix *Index) Field() string { return ix.field }

// Capabilities implements index.Index.
func (ix *Index) Capabilities() index.Capability {
	return index.CapField | index.CapExtent | index.CapSort
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.docs)
}

// Set indexes v for id, replacing any previous value. A null v unindexes id.
func (ix *Index) Set(id model.DocID, v value.Value) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(id)
	if v.IsNull() {
		return
	}

	key := v.Key()
	ids, ok := ix.postings[key]
	if !ok {
		ids = idset.New()
		ix.postings[key] = ids
		ix.values[key] = v.Clone()
		ix.dirty = true
	}
	ids.Add(id)
	ix.docs[id] = v.Clone()
	ix.domain.Add(id)
}

// Value returns the value indexed for id.
func (ix *Index) Value(id model.DocID) (value.Value, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	v, ok := ix.docs[id]
	return v, ok
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

// removeLocked drops id from all postings.
// Caller must hold ix.mu.Lock().
func (ix *Index) removeLocked(id model.DocID) {
	old, ok := ix.docs[id]
	if !ok {
		return
	}
	key := old.Key()
	if ids, ok := ix.postings[key]; ok {
		ids.Remove(id)
		if ids.IsEmpty() {
			delete(ix.postings, key)
			delete(ix.values, key)
			ix.dirty = true
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

// Equal implements index.FieldQuerier.
func (ix *Index) Equal(v value.Value) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ids, ok := ix.postings[v.Key()]; ok && !v.IsNull() {
		return ids.Clone(), nil
	}
	return idset.New(), nil
}

// In implements index.FieldQuerier.
func (ix *Index) In(vs []value.Value) (*idset.Set, error) {
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

// Between implements index.FieldQuerier.
func (ix *Index) Between(r index.Range) (*idset.Set, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Unbounded() {
		return ix.All(), nil
	}

	sorted := ix.sortedValues()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// Values of one comparable family are contiguous in value.Order, so the
	// scan starts at the lower bound (or at the family of the upper bound)
	// and stops at the first value past the range.
	anchor := r.Min
	if anchor.IsNull() {
		anchor = r.Max
	}
	start, _ := slices.BinarySearchFunc(sorted, anchor, func(e, target value.Value) int {
		if r.Min.IsNull() {
			if sameFamily(e, target) {
				return 1
			}
		}
		return value.Order(e, target)
	})

	var sets []*idset.Set
	for _, v := range sorted[start:] {
		if !sameFamily(v, anchor) {
			break
		}
		if !r.Contains(v) {
			if !r.Max.IsNull() {
				if c, err := value.Compare(v, r.Max); err == nil && c > 0 {
					break
				}
			}
			continue
		}
		if ids, ok := ix.postings[v.Key()]; ok {
			sets = append(sets, ids)
		}
	}
	return idset.Union(sets...), nil
}

// ExtentAny implements index.ExtentQuerier.
func (ix *Index) ExtentAny(extent *idset.Set) (*idset.Set, error) {
	if extent == nil {
		return ix.All(), nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

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

// Sort implements index.Sorter.
func (ix *Index) Sort(ids []model.DocID, reverse bool, limit int) ([]model.DocID, error) {
	ix.mu.RLock()
	keyed := make([]model.DocID, 0, len(ids))
	var missing []model.DocID
	vals := make(map[model.DocID]value.Value, len(ids))
	for _, id := range ids {
		if v, ok := ix.docs[id]; ok {
			keyed = append(keyed, id)
			vals[id] = v
		} else {
			missing = append(missing, id)
		}
	}
	ix.mu.RUnlock()

	slices.SortFunc(keyed, func(a, b model.DocID) int {
		if c := value.Order(vals[a], vals[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	slices.Sort(missing)

	out := append(keyed, missing...)
	if reverse {
		slices.Reverse(out)
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// sortedValues returns the distinct values in value.Order.
func (ix *Index) sortedValues() []value.Value {
	ix.mu.RLock()
	if !ix.dirty && ix.sorted != nil {
		s := ix.sorted
		ix.mu.RUnlock()
		return s
	}
	ix.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dirty || ix.sorted == nil {
		sorted := make([]value.Value, 0, len(ix.values))
		for _, v := range ix.values {
			sorted = append(sorted, v)
		}
		slices.SortFunc(sorted, value.Order)
		ix.sorted = sorted
		ix.dirty = false
	}
	return ix.sorted
}

func sameFamily(a, b value.Value) bool {
	_, err := value.Compare(a, b)
	return err == nil
}
