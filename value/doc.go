// Package value defines the typed scalar values stored in termq indexes.
//
// A Value is a small tagged union (null, int, float, string, bool, array).
// Field and set indexes key their posting lists by Value.Key and order their
// range scans with Compare.
//
//	doc := value.Document{
//	    "title": value.String("hello"),
//	    "year":  value.Int(2024),
//	    "tags":  value.Strings([]string{"go", "query"}),
//	}
//
// # Ordering
//
// Compare orders two values of compatible kinds: ints and floats compare
// numerically with each other, strings lexically, bools false<true. Comparing
// values of incompatible kinds returns ErrIncomparable; callers propagate it
// unchanged.
//
// Order is a total order used for sorting. It ranks kinds first
// (null < bool < number < string < array) and falls back to Compare within a
// rank, so mixed-kind indexes still sort deterministically.
//
// Null doubles as "no bound" in range predicates.
package value
