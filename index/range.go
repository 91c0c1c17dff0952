package index

import (
	"fmt"

	"github.com/hupe1980/termq/value"
)

// Unbounded reports whether neither bound is set.
func (r Range) Unbounded() bool {
	return r.Min.IsNull() && r.Max.IsNull()
}

// Validate checks that the bounds are scalars and comparable with each other.
func (r Range) Validate() error {
	for _, b := range []value.Value{r.Min, r.Max} {
		if b.Kind == value.KindArray {
			return fmt.Errorf("%w: range bound %s", value.ErrIncomparable, b)
		}
	}
	if !r.Min.IsNull() && !r.Max.IsNull() {
		if _, err := value.Compare(r.Min, r.Max); err != nil {
			return fmt.Errorf("range bounds: %w", err)
		}
	}
	return nil
}

// Contains reports whether v lies inside the range. Values that cannot be
// compared with a bound are outside.
func (r Range) Contains(v value.Value) bool {
	if v.IsNull() {
		return false
	}
	if !r.Min.IsNull() {
		c, err := value.Compare(v, r.Min)
		if err != nil || c < 0 || (c == 0 && r.ExcludeMin) {
			return false
		}
	}
	if !r.Max.IsNull() {
		c, err := value.Compare(v, r.Max)
		if err != nil || c > 0 || (c == 0 && r.ExcludeMax) {
			return false
		}
	}
	if r.Unbounded() && v.Kind == value.KindArray {
		return false
	}
	return true
}

// String returns a string representation of the Range.
func (r Range) String() string {
	lo, hi := "[", "]"
	if r.ExcludeMin {
		lo = "("
	}
	if r.ExcludeMax {
		hi = ")"
	}
	return fmt.Sprintf("%s%s, %s%s", lo, r.Min, r.Max, hi)
}
