// Package bm25 provides an in-memory text index with a boolean query
// language and BM25 scoring.
//
// # Query Syntax
//
//	quick brown           both words (implicit AND)
//	quick OR slow         either word
//	quick AND NOT lazy    exclusion
//	"brown fox"           phrase, words adjacent and in order
//	qui*                  prefix match
//	(quick OR slow) fox   grouping
//
// Operators are case-insensitive. Unbalanced parentheses, dangling operators,
// unterminated quotes and empty queries fail with index.ErrMalformedQuery.
//
// # Parameters
//
// Uses standard BM25 parameters: k1=1.2, b=0.75
//
// # Thread Safety
//
// The index is safe for concurrent reads and writes.
package bm25
