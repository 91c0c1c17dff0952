// Package idset provides immutable-by-convention document id sets backed by
// 32-bit Roaring bitmaps.
//
// The set operations Union, Intersect and Difference always return new sets
// and never modify their inputs. A nil *Set behaves as the empty set.
// Enumeration is in ascending id order.
package idset
