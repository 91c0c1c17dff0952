// Package query implements the term algebra and the search pipeline.
//
// A Term is an immutable predicate tree. Leaves name an index through a
// model.IndexRef and are bound to a concrete index only when evaluated, using
// the Context passed to that call:
//
//	a := query.Eq(model.Ref("catalog1", "f1"), value.String("a"))
//	b := query.Eq(model.Ref("catalog1", "f2"), value.String("b"))
//	res, err := query.Search(ctx, a.And(b), site,
//	    query.WithSort(model.Ref("catalog1", "f2")),
//	    query.WithLimit(10),
//	)
//
// # Evaluation
//
// And intersects its children, stopping at the first empty one. Or unions
// them. Not and Difference complement against the universe of the context's
// object resolver, while NotEq complements against the domain of its own
// index. Text queries an index cannot parse match nothing.
//
// # Result Assembly
//
// Results are ordered by the sort index when one is given, otherwise by
// ascending id. Reversal happens before the start/limit window is applied.
// Total counts every match; Count only the windowed entries.
package query
