package value

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrIncomparable is returned when two values of incompatible kinds are compared.
var ErrIncomparable = errors.New("incomparable values")

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b. Ints and floats compare numerically with each other.
//
// Null, array and mixed-kind comparisons fail with ErrIncomparable.
func Compare(a, b Value) (int, error) {
	if isNumber(a) && isNumber(b) {
		if a.Kind == KindInt && b.Kind == KindInt {
			return cmp.Compare(a.I64, b.I64), nil
		}
		return cmp.Compare(asFloat64(a), asFloat64(b)), nil
	}

	if a.Kind != b.Kind {
		return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable, a.Kind, b.Kind)
	}

	switch a.Kind {
	case KindString:
		return cmp.Compare(a.s.Value(), b.s.Value()), nil
	case KindBool:
		return cmp.Compare(boolRank(a.B), boolRank(b.B)), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrIncomparable, a.Kind)
	}
}

// Equal reports whether a and b hold the same value. Numbers compare across
// int and float.
func Equal(a, b Value) bool {
	return a.Key() == b.Key()
}

// Order is a total order over all values, used for sorting.
func Order(a, b Value) int {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNull:
		return 0
	case rankArray:
		n := min(len(a.A), len(b.A))
		for i := 0; i < n; i++ {
			if c := Order(a.A[i], b.A[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.A), len(b.A))
	}
	c, err := Compare(a, b)
	if err != nil {
		return 0
	}
	return c
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankArray
)

func kindRank(k Kind) int {
	switch k {
	case KindBool:
		return rankBool
	case KindInt, KindFloat:
		return rankNumber
	case KindString:
		return rankString
	case KindArray:
		return rankArray
	default:
		return rankNull
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNumber(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func asFloat64(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindFloat:
		return v.F64
	default:
		return 0
	}
}
