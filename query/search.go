package query

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
)

// SearchOption configures Search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	evaluator *Evaluator

	sortRef   *model.IndexRef
	sortIndex index.Index
	reverse   bool

	start    int
	limit    int
	hasLimit bool

	wrapper   func(any) any
	locateTo  any
	hasLocate bool
}

// WithSort orders results by the referenced index, which must declare
// index.CapSort.
func WithSort(ref model.IndexRef) SearchOption {
	return func(o *searchOptions) {
		o.sortRef = &ref
		o.sortIndex = nil
	}
}

// WithSortIndex orders results by idx directly, without resolving a
// reference.
func WithSortIndex(idx index.Index) SearchOption {
	return func(o *searchOptions) {
		o.sortIndex = idx
		o.sortRef = nil
	}
}

// WithReverse reverses the result order.
func WithReverse() SearchOption {
	return func(o *searchOptions) {
		o.reverse = true
	}
}

// WithLimit caps the number of returned entries.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) {
		o.limit = n
		o.hasLimit = true
	}
}

// WithStart skips the first n ordered entries.
func WithStart(n int) SearchOption {
	return func(o *searchOptions) {
		o.start = n
	}
}

// WithWrapper applies fn to every materialized object.
func WithWrapper(fn func(obj any) any) SearchOption {
	return func(o *searchOptions) {
		o.wrapper = fn
	}
}

// WithLocateTo returns each entry as a *Located with the given parent.
func WithLocateTo(parent any) SearchOption {
	return func(o *searchOptions) {
		o.locateTo = parent
		o.hasLocate = true
	}
}

// WithEvaluator evaluates terms with e instead of the default evaluator.
func WithEvaluator(e *Evaluator) SearchOption {
	return func(o *searchOptions) {
		if e != nil {
			o.evaluator = e
		}
	}
}

// Located places an object under a parent without modifying it.
type Located struct {
	Object any
	Parent any
}

// Search evaluates t in qctx, then orders, windows and materializes the
// matching documents.
func Search(ctx context.Context, t Term, qctx Context, opts ...SearchOption) (*Result, error) {
	o := searchOptions{evaluator: defaultEvaluator}
	for _, opt := range opts {
		opt(&o)
	}
	if o.start < 0 {
		return nil, fmt.Errorf("%w: negative start %d", ErrInvalidOption, o.start)
	}
	if o.hasLimit && o.limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidOption, o.limit)
	}

	ids, err := o.evaluator.Evaluate(ctx, t, qctx)
	if err != nil {
		return nil, err
	}
	sorter, err := resolveSorter(qctx, &o)
	if err != nil {
		return nil, err
	}
	total := ids.Len()
	if total == 0 {
		return &Result{}, nil
	}

	ordered, err := order(ids.IDs(), sorter, &o)
	if err != nil {
		return nil, err
	}
	window := slice(ordered, o.start, o.limit, o.hasLimit)

	entries, err := materialize(ctx, qctx, window, &o)
	if err != nil {
		return nil, err
	}

	return &Result{total: total, ids: window, entries: entries}, nil
}

// resolveSorter returns the sort index of the options, or nil when results
// keep the default ascending id order.
func resolveSorter(qctx Context, o *searchOptions) (index.Sorter, error) {
	if o.sortRef == nil && o.sortIndex == nil {
		return nil, nil
	}

	idx, catalog := o.sortIndex, ""
	if o.sortRef != nil {
		var err error
		if idx, err = resolveIndex(qctx, *o.sortRef); err != nil {
			return nil, err
		}
		catalog = o.sortRef.Catalog
	}

	name := idx.Name()
	if o.sortRef != nil {
		name = o.sortRef.Index
	}
	sorter, ok := idx.(index.Sorter)
	if !ok || !idx.Capabilities().Has(index.CapSort) {
		return nil, &SortError{Catalog: catalog, Index: name}
	}
	return sorter, nil
}

// order returns ids sorted per the options. ids are ascending on entry.
func order(ids []model.DocID, sorter index.Sorter, o *searchOptions) ([]model.DocID, error) {
	if sorter == nil {
		if o.reverse {
			slices.Reverse(ids)
		}
		return ids, nil
	}

	hint := 0
	if o.hasLimit {
		if o.limit == 0 {
			return nil, nil
		}
		// A window running past MaxInt needs every id, which hint 0 means.
		if o.limit <= math.MaxInt-o.start {
			hint = o.start + o.limit
		}
	}
	sorted, err := sorter.Sort(ids, o.reverse, hint)
	if err != nil {
		return nil, fmt.Errorf("sort by %s: %w", sorter.Name(), err)
	}
	return sorted, nil
}

func slice(ids []model.DocID, start, limit int, hasLimit bool) []model.DocID {
	if start >= len(ids) {
		return nil
	}
	end := len(ids)
	if hasLimit && limit < end-start {
		end = start + limit
	}
	return ids[start:end]
}

func materialize(ctx context.Context, qctx Context, ids []model.DocID, o *searchOptions) ([]any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	objs, err := resolver(qctx)
	if err != nil {
		return nil, err
	}

	entries := make([]any, len(ids))
	for i, id := range ids {
		obj, err := objs.Object(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("materialize %d: %w", id, err)
		}
		if o.wrapper != nil {
			obj = o.wrapper(obj)
		}
		if o.hasLocate {
			obj = &Located{Object: obj, Parent: o.locateTo}
		}
		entries[i] = obj
	}
	return entries, nil
}
