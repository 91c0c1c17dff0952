package idset

import (
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/termq/model"
)

// Set is a set of document ids.
type Set struct {
	rb *roaring.Bitmap
}

// New creates a new empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Of creates a set holding the given ids.
func Of(ids ...model.DocID) *Set {
	s := New()
	for _, id := range ids {
		s.rb.Add(uint32(id))
	}
	return s
}

// FromBitmap wraps a copy of rb.
func FromBitmap(rb *roaring.Bitmap) *Set {
	if rb == nil {
		return New()
	}
	return &Set{rb: rb.Clone()}
}

// Bitmap returns a copy of the underlying bitmap.
func (s *Set) Bitmap() *roaring.Bitmap {
	if s == nil {
		return roaring.New()
	}
	return s.rb.Clone()
}

// Add adds an id to the set.
func (s *Set) Add(id model.DocID) {
	s.rb.Add(uint32(id))
}

// Remove removes an id from the set.
func (s *Set) Remove(id model.DocID) {
	s.rb.Remove(uint32(id))
}

// Contains checks if id is in the set.
func (s *Set) Contains(id model.DocID) bool {
	if s == nil {
		return false
	}
	return s.rb.Contains(uint32(id))
}

// Len returns the number of ids in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set is empty.
func (s *Set) IsEmpty() bool {
	return s == nil || s.rb.IsEmpty()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	if s == nil {
		return New()
	}
	return &Set{rb: s.rb.Clone()}
}

// Equal reports whether both sets hold the same ids.
func (s *Set) Equal(other *Set) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	return s.rb.Equals(other.rb)
}

// IDs returns the ids in ascending order.
func (s *Set) IDs() []model.DocID {
	if s == nil {
		return nil
	}
	out := make([]model.DocID, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		out = append(out, model.DocID(it.Next()))
	}
	return out
}

// All returns an iterator over the ids in ascending order.
func (s *Set) All() iter.Seq[model.DocID] {
	return func(yield func(model.DocID) bool) {
		if s == nil {
			return
		}
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(model.DocID(it.Next())) {
				return
			}
		}
	}
}

// Union returns the union of all sets.
func Union(sets ...*Set) *Set {
	bms := make([]*roaring.Bitmap, 0, len(sets))
	for _, s := range sets {
		if !s.IsEmpty() {
			bms = append(bms, s.rb)
		}
	}
	switch len(bms) {
	case 0:
		return New()
	case 1:
		return &Set{rb: bms[0].Clone()}
	default:
		return &Set{rb: roaring.FastOr(bms...)}
	}
}

// Intersect returns the intersection of all sets, combining the smallest
// sets first. Intersect of no sets is the empty set.
func Intersect(sets ...*Set) *Set {
	if len(sets) == 0 {
		return New()
	}
	for _, s := range sets {
		if s.IsEmpty() {
			return New()
		}
	}
	ordered := slices.Clone(sets)
	slices.SortStableFunc(ordered, func(a, b *Set) int {
		return int(int64(a.rb.GetCardinality()) - int64(b.rb.GetCardinality()))
	})

	out := ordered[0].rb.Clone()
	for _, s := range ordered[1:] {
		out.And(s.rb)
		if out.IsEmpty() {
			break
		}
	}
	return &Set{rb: out}
}

// Difference returns the ids of a that are in none of the others.
func Difference(a *Set, others ...*Set) *Set {
	if a.IsEmpty() {
		return New()
	}
	out := a.rb.Clone()
	for _, s := range others {
		if s.IsEmpty() {
			continue
		}
		out.AndNot(s.rb)
		if out.IsEmpty() {
			break
		}
	}
	return &Set{rb: out}
}
