package query

import (
	"iter"
	"slices"

	"github.com/hupe1980/termq/model"
)

// Result is the windowed, ordered outcome of a search.
type Result struct {
	total   int
	ids     []model.DocID
	entries []any
}

// Total returns the number of matching documents before windowing.
func (r *Result) Total() int { return r.total }

// Count returns the number of entries in the window.
func (r *Result) Count() int { return len(r.entries) }

// Len is an alias of Count.
func (r *Result) Len() int { return len(r.entries) }

// First returns the first entry, or false if the window is empty.
func (r *Result) First() (any, bool) {
	if len(r.entries) == 0 {
		return nil, false
	}
	return r.entries[0], true
}

// Entries returns the materialized entries in order.
func (r *Result) Entries() []any { return slices.Clone(r.entries) }

// IDs returns the ids of the window in order.
func (r *Result) IDs() []model.DocID { return slices.Clone(r.ids) }

// All returns an iterator over the entries in order.
func (r *Result) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, e := range r.entries {
			if !yield(e) {
				return
			}
		}
	}
}
