package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
)

// Evaluator computes the id set of a term.
type Evaluator struct {
	logger         *slog.Logger
	onTextRejected func(ctx context.Context, ref model.IndexRef, query string, err error)
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// OnTextRejected registers a callback for text queries an index rejected as
// malformed, replacing the default debug log. The leaf still evaluates to the
// empty set.
func OnTextRejected(fn func(ctx context.Context, ref model.IndexRef, query string, err error)) EvaluatorOption {
	return func(e *Evaluator) { e.onTextRejected = fn }
}

// NewEvaluator creates an Evaluator. A nil logger discards output.
func NewEvaluator(logger *slog.Logger, opts ...EvaluatorOption) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Evaluator{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator(nil)

// Evaluate computes the id set of t in qctx with a discarding logger.
func Evaluate(ctx context.Context, t Term, qctx Context) (*idset.Set, error) {
	return defaultEvaluator.Evaluate(ctx, t, qctx)
}

// Evaluate computes the id set of t in qctx. Index references are resolved
// against qctx on every call.
func (e *Evaluator) Evaluate(ctx context.Context, t Term, qctx Context) (*idset.Set, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if qctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrUnresolved)
	}
	return e.eval(ctx, t, qctx)
}

func (e *Evaluator) eval(ctx context.Context, t Term, qctx Context) (*idset.Set, error) {
	switch t.op {
	case OpAnd:
		sets := make([]*idset.Set, 0, len(t.children))
		for _, c := range t.children {
			s, err := e.eval(ctx, c, qctx)
			if err != nil {
				return nil, err
			}
			if s.IsEmpty() {
				return idset.New(), nil
			}
			sets = append(sets, s)
		}
		return idset.Intersect(sets...), nil

	case OpOr:
		sets := make([]*idset.Set, 0, len(t.children))
		for _, c := range t.children {
			s, err := e.eval(ctx, c, qctx)
			if err != nil {
				return nil, err
			}
			if !s.IsEmpty() {
				sets = append(sets, s)
			}
		}
		return idset.Union(sets...), nil

	case OpNot:
		objs, err := resolver(qctx)
		if err != nil {
			return nil, err
		}
		s, err := e.eval(ctx, t.children[0], qctx)
		if err != nil {
			return nil, err
		}
		return idset.Difference(objs.All(), s), nil

	case OpDifference:
		first, err := e.eval(ctx, t.children[0], qctx)
		if err != nil {
			return nil, err
		}
		if first.IsEmpty() {
			return idset.New(), nil
		}
		rest := make([]*idset.Set, 0, len(t.children)-1)
		for _, c := range t.children[1:] {
			s, err := e.eval(ctx, c, qctx)
			if err != nil {
				return nil, err
			}
			rest = append(rest, s)
		}
		return idset.Difference(first, rest...), nil

	case OpObjects:
		objs, err := resolver(qctx)
		if err != nil {
			return nil, err
		}
		out := idset.New()
		for _, obj := range t.objs {
			id, err := objs.Register(ctx, obj)
			if err != nil {
				return nil, fmt.Errorf("register object: %w", err)
			}
			out.Add(id)
		}
		return out, nil

	default:
		return e.evalLeaf(ctx, t, qctx)
	}
}

func (e *Evaluator) evalLeaf(ctx context.Context, t Term, qctx Context) (*idset.Set, error) {
	idx, err := resolveIndex(qctx, t.ref)
	if err != nil {
		return nil, err
	}

	switch t.op {
	case OpAll:
		return idx.All(), nil

	case OpEq, OpNotEq, OpIn, OpBetween:
		fq, err := capability[index.FieldQuerier](t.ref, idx, index.CapField)
		if err != nil {
			return nil, err
		}
		var s *idset.Set
		switch t.op {
		case OpEq:
			s, err = fq.Equal(t.val)
		case OpNotEq:
			s, err = fq.Equal(t.val)
			if err == nil {
				s = idset.Difference(fq.All(), s)
			}
		case OpIn:
			if len(t.vals) == 0 {
				return idset.New(), nil
			}
			s, err = fq.In(t.vals)
		default:
			s, err = fq.Between(t.rng)
		}
		return leafResult(t, s, err)

	case OpAnyOf, OpAllOf, OpSetBetween:
		sq, err := capability[index.SetQuerier](t.ref, idx, index.CapSet)
		if err != nil {
			return nil, err
		}
		var s *idset.Set
		switch t.op {
		case OpAnyOf:
			s, err = sq.AnyOf(t.vals)
		case OpAllOf:
			s, err = sq.AllOf(t.vals)
		default:
			s, err = sq.SetBetween(t.rng)
		}
		return leafResult(t, s, err)

	case OpExtentAny, OpExtentNone:
		eq, err := capability[index.ExtentQuerier](t.ref, idx, index.CapExtent)
		if err != nil {
			return nil, err
		}
		var s *idset.Set
		if t.op == OpExtentAny {
			s, err = eq.ExtentAny(t.extent)
		} else {
			s, err = eq.ExtentNone(t.extent)
		}
		return leafResult(t, s, err)

	case OpText:
		tq, err := capability[index.TextQuerier](t.ref, idx, index.CapText)
		if err != nil {
			return nil, err
		}
		s, err := tq.MatchText(t.text)
		if errors.Is(err, index.ErrMalformedQuery) {
			if e.onTextRejected != nil {
				e.onTextRejected(ctx, t.ref, t.text, err)
			} else {
				e.logger.DebugContext(ctx, "text query rejected",
					"index", t.ref.String(), "query", t.text, "error", err)
			}
			return idset.New(), nil
		}
		return leafResult(t, s, err)

	default:
		return nil, fmt.Errorf("%w: unknown op %s", ErrInvalidTerm, t.op)
	}
}

func leafResult(t Term, s *idset.Set, err error) (*idset.Set, error) {
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", t.op, t.ref, err)
	}
	if s == nil {
		return idset.New(), nil
	}
	return s, nil
}

// capability asserts that idx declares c and implements Q.
func capability[Q index.Index](ref model.IndexRef, idx index.Index, c index.Capability) (Q, error) {
	q, ok := idx.(Q)
	if !ok || !idx.Capabilities().Has(c) {
		var zero Q
		return zero, &CapabilityError{Catalog: ref.Catalog, Index: ref.Index, Capability: c}
	}
	return q, nil
}

func resolveIndex(qctx Context, ref model.IndexRef) (index.Index, error) {
	cat, err := qctx.Catalog(ref.Catalog)
	if err != nil {
		var re *ResolveError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &ResolveError{Catalog: ref.Catalog, Err: err}
	}
	if cat == nil {
		return nil, &ResolveError{Catalog: ref.Catalog}
	}
	idx, ok := cat.Index(ref.Index)
	if !ok {
		return nil, &ResolveError{Catalog: ref.Catalog, Index: ref.Index}
	}
	return idx, nil
}

func resolver(qctx Context) (ObjectResolver, error) {
	objs := qctx.Objects()
	if objs == nil {
		return nil, fmt.Errorf("%w: no object resolver in context", ErrUnresolved)
	}
	return objs, nil
}
