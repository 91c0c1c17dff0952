package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

// Op identifies the kind of a term.
type Op uint8

const (
	// OpInvalid marks the zero Term.
	OpInvalid Op = iota
	OpAll
	OpEq
	OpNotEq
	OpIn
	OpBetween
	OpAnyOf
	OpAllOf
	OpSetBetween
	OpExtentAny
	OpExtentNone
	OpText
	OpObjects
	OpAnd
	OpOr
	OpNot
	OpDifference
)

var opNames = [...]string{
	OpInvalid:    "Invalid",
	OpAll:        "All",
	OpEq:         "Eq",
	OpNotEq:      "NotEq",
	OpIn:         "In",
	OpBetween:    "Between",
	OpAnyOf:      "AnyOf",
	OpAllOf:      "AllOf",
	OpSetBetween: "SetBetween",
	OpExtentAny:  "ExtentAny",
	OpExtentNone: "ExtentNone",
	OpText:       "Text",
	OpObjects:    "Objects",
	OpAnd:        "And",
	OpOr:         "Or",
	OpNot:        "Not",
	OpDifference: "Difference",
}

// String returns the name of the op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// IsLeaf reports whether terms of this op reference an index.
func (o Op) IsLeaf() bool {
	return o >= OpAll && o <= OpText
}

// Term is an immutable query predicate. Leaves name an index by reference;
// combinators hold child terms. Terms carry no evaluation state and may be
// shared and evaluated concurrently.
//
// The zero Term is invalid.
type Term struct {
	op       Op
	ref      model.IndexRef
	val      value.Value
	vals     []value.Value
	rng      index.Range
	extent   *idset.Set
	text     string
	objs     []any
	children []Term
	err      error
}

// All matches every document the index has a value for.
func All(ref model.IndexRef) Term {
	return Term{op: OpAll, ref: ref}
}

// Eq matches documents whose value equals v. v must not be null.
func Eq(ref model.IndexRef, v value.Value) Term {
	t := Term{op: OpEq, ref: ref, val: v.Clone()}
	if v.IsNull() {
		t.err = fmt.Errorf("%w: Eq(%s) with null value", ErrInvalidTerm, ref)
	}
	return t
}

// NotEq matches indexed documents whose value differs from v.
func NotEq(ref model.IndexRef, v value.Value) Term {
	t := Term{op: OpNotEq, ref: ref, val: v.Clone()}
	if v.IsNull() {
		t.err = fmt.Errorf("%w: NotEq(%s) with null value", ErrInvalidTerm, ref)
	}
	return t
}

// In matches documents whose value equals any of vs. No values match
// nothing; null members are invalid.
func In(ref model.IndexRef, vs ...value.Value) Term {
	t := Term{op: OpIn, ref: ref, vals: cloneValues(vs)}
	if slices.ContainsFunc(vs, value.Value.IsNull) {
		t.err = fmt.Errorf("%w: In(%s) with null value", ErrInvalidTerm, ref)
	}
	return t
}

// BoundOption adjusts range bounds.
type BoundOption func(*index.Range)

// ExcludeMin makes the lower bound exclusive.
func ExcludeMin() BoundOption {
	return func(r *index.Range) { r.ExcludeMin = true }
}

// ExcludeMax makes the upper bound exclusive.
func ExcludeMax() BoundOption {
	return func(r *index.Range) { r.ExcludeMax = true }
}

func newRange(lo, hi value.Value, opts []BoundOption) index.Range {
	r := index.Range{Min: lo.Clone(), Max: hi.Clone()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Between matches documents whose value lies between lo and hi, both
// inclusive unless excluded. A null bound is open; Between with two null
// bounds is equivalent to All.
func Between(ref model.IndexRef, lo, hi value.Value, opts ...BoundOption) Term {
	return Term{op: OpBetween, ref: ref, rng: newRange(lo, hi, opts)}
}

// Ge matches values >= v.
func Ge(ref model.IndexRef, v value.Value) Term {
	return Between(ref, v, value.Null())
}

// Le matches values <= v.
func Le(ref model.IndexRef, v value.Value) Term {
	return Between(ref, value.Null(), v)
}

// Gt matches values > v.
func Gt(ref model.IndexRef, v value.Value) Term {
	return Between(ref, v, value.Null(), ExcludeMin())
}

// Lt matches values < v.
func Lt(ref model.IndexRef, v value.Value) Term {
	return Between(ref, value.Null(), v, ExcludeMax())
}

// AnyOf matches documents holding at least one of vs in a multi-valued
// index. No values match nothing.
func AnyOf(ref model.IndexRef, vs ...value.Value) Term {
	return Term{op: OpAnyOf, ref: ref, vals: cloneValues(vs)}
}

// AllOf matches documents holding every one of vs. No values match every
// indexed document.
func AllOf(ref model.IndexRef, vs ...value.Value) Term {
	return Term{op: OpAllOf, ref: ref, vals: cloneValues(vs)}
}

// SetBetween matches documents holding at least one member between lo and hi.
func SetBetween(ref model.IndexRef, lo, hi value.Value, opts ...BoundOption) Term {
	return Term{op: OpSetBetween, ref: ref, rng: newRange(lo, hi, opts)}
}

// ExtentAny matches the documents of extent the index has a value for. A nil
// extent stands for every document.
func ExtentAny(ref model.IndexRef, extent *idset.Set) Term {
	return Term{op: OpExtentAny, ref: ref, extent: cloneExtent(extent)}
}

// ExtentNone matches the documents of extent the index has no value for. A
// nil extent matches nothing.
func ExtentNone(ref model.IndexRef, extent *idset.Set) Term {
	return Term{op: OpExtentNone, ref: ref, extent: cloneExtent(extent)}
}

// Text matches documents for a free-text query. Query text the index cannot
// parse matches nothing.
func Text(ref model.IndexRef, query string) Term {
	return Term{op: OpText, ref: ref, text: query}
}

// Objects matches the given objects, registering them with the context's
// object resolver as needed.
func Objects(objs ...any) Term {
	return Term{op: OpObjects, objs: slices.Clone(objs)}
}

// And matches the intersection of terms. And with no terms matches nothing.
func And(terms ...Term) Term {
	return combine(OpAnd, terms)
}

// Or matches the union of terms. Or with no terms matches nothing.
func Or(terms ...Term) Term {
	return combine(OpOr, terms)
}

// Not matches every document known to the object resolver that t does not
// match.
func Not(t Term) Term {
	return combine(OpNot, []Term{t})
}

// Difference matches a minus everything matched by any of others.
func Difference(a Term, others ...Term) Term {
	return combine(OpDifference, append([]Term{a}, others...))
}

func combine(op Op, terms []Term) Term {
	t := Term{op: op, children: slices.Clone(terms)}
	for _, c := range terms {
		if err := c.Validate(); err != nil {
			t.err = err
			break
		}
	}
	return t
}

// And returns And(t, others...).
func (t Term) And(others ...Term) Term {
	return And(append([]Term{t}, others...)...)
}

// Or returns Or(t, others...).
func (t Term) Or(others ...Term) Term {
	return Or(append([]Term{t}, others...)...)
}

// Not returns Not(t).
func (t Term) Not() Term {
	return Not(t)
}

// Minus returns Difference(t, others...).
func (t Term) Minus(others ...Term) Term {
	return Difference(t, others...)
}

// Op returns the term kind.
func (t Term) Op() Op { return t.op }

// Ref returns the index reference of a leaf term.
func (t Term) Ref() model.IndexRef { return t.ref }

// Value returns the operand of Eq and NotEq.
func (t Term) Value() value.Value { return t.val.Clone() }

// Values returns the operands of In, AnyOf and AllOf.
func (t Term) Values() []value.Value { return cloneValues(t.vals) }

// Range returns the bounds of Between and SetBetween.
func (t Term) Range() index.Range {
	return index.Range{
		Min:        t.rng.Min.Clone(),
		Max:        t.rng.Max.Clone(),
		ExcludeMin: t.rng.ExcludeMin,
		ExcludeMax: t.rng.ExcludeMax,
	}
}

// Extent returns the extent of ExtentAny and ExtentNone.
func (t Term) Extent() *idset.Set { return cloneExtent(t.extent) }

// Query returns the query text of Text.
func (t Term) Query() string { return t.text }

// ObjectList returns the objects of Objects.
func (t Term) ObjectList() []any { return slices.Clone(t.objs) }

// Children returns the sub-terms of a combinator.
func (t Term) Children() []Term { return slices.Clone(t.children) }

// Validate returns the construction error of t or any sub-term.
func (t Term) Validate() error {
	if t.op == OpInvalid {
		return fmt.Errorf("%w: zero term", ErrInvalidTerm)
	}
	return t.err
}

// String renders the term tree.
func (t Term) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Term) write(sb *strings.Builder) {
	sb.WriteString(t.op.String())
	sb.WriteByte('(')
	switch t.op {
	case OpAll:
		sb.WriteString(t.ref.String())
	case OpEq, OpNotEq:
		fmt.Fprintf(sb, "%s, %s", t.ref, t.val)
	case OpIn, OpAnyOf, OpAllOf:
		sb.WriteString(t.ref.String())
		for _, v := range t.vals {
			sb.WriteString(", ")
			sb.WriteString(v.String())
		}
	case OpBetween, OpSetBetween:
		fmt.Fprintf(sb, "%s, %s", t.ref, t.rng)
	case OpExtentAny, OpExtentNone:
		if t.extent == nil {
			fmt.Fprintf(sb, "%s, *", t.ref)
		} else {
			fmt.Fprintf(sb, "%s, %v", t.ref, t.extent.IDs())
		}
	case OpText:
		fmt.Fprintf(sb, "%s, %q", t.ref, t.text)
	case OpObjects:
		fmt.Fprintf(sb, "%d objects", len(t.objs))
	default:
		for i, c := range t.children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.write(sb)
		}
	}
	sb.WriteByte(')')
}

func cloneValues(vs []value.Value) []value.Value {
	if vs == nil {
		return nil
	}
	out := make([]value.Value, len(vs))
	for i := range vs {
		out[i] = vs[i].Clone()
	}
	return out
}

func cloneExtent(s *idset.Set) *idset.Set {
	if s == nil {
		return nil
	}
	return s.Clone()
}
