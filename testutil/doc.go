// Package testutil provides seeded document and term generators and a
// brute-force evaluator used to cross-check index-backed evaluation.
package testutil
