// Package amount provides the signed fixed-width magnitude used for order
// sizes. The sign encodes the order side: negative = sell (offering the base
// asset), positive = buy (requesting it).
package amount

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when an arithmetic result does not fit in the
// representable range.
var ErrOverflow = errors.New("amount overflow")

// Signed is a 64-bit magnitude with an explicit sign bit. Zero is always
// normalized to non-negative so struct equality behaves as value equality.
type Signed struct {
	Value    uint64 `json:"value"`
	Negative bool   `json:"negative"`
}

// New returns a Signed with the given magnitude and sign.
func New(value uint64, negative bool) Signed {
	if value == 0 {
		negative = false
	}
	return Signed{Value: value, Negative: negative}
}

// FromInt64 converts a two's-complement int64 into a Signed.
func FromInt64(v int64) Signed {
	if v < 0 {
		// Safe for math.MinInt64: the negation wraps to the correct magnitude
		// in unsigned arithmetic.
		return Signed{Value: uint64(-v), Negative: true}
	}
	return Signed{Value: uint64(v)}
}

// Int64 converts back to a two's-complement int64. Fails with ErrOverflow
// when the magnitude exceeds the int64 range.
func (a Signed) Int64() (int64, error) {
	if a.Negative {
		if a.Value > math.MaxInt64+1 {
			return 0, fmt.Errorf("%w: magnitude %d", ErrOverflow, a.Value)
		}
		return -int64(a.Value), nil
	}
	if a.Value > math.MaxInt64 {
		return 0, fmt.Errorf("%w: magnitude %d", ErrOverflow, a.Value)
	}
	return int64(a.Value), nil
}

// Negate flips the sign. Negating zero is a no-op.
func (a Signed) Negate() Signed {
	return New(a.Value, !a.Negative)
}

// Add returns a+b with overflow checking on the shared magnitude domain.
func (a Signed) Add(b Signed) (Signed, error) {
	if a.Negative == b.Negative {
		sum := a.Value + b.Value
		if sum < a.Value {
			return Signed{}, fmt.Errorf("%w: %d + %d", ErrOverflow, a.Value, b.Value)
		}
		return New(sum, a.Negative), nil
	}
	if a.Value >= b.Value {
		return New(a.Value-b.Value, a.Negative), nil
	}
	return New(b.Value-a.Value, b.Negative), nil
}

// Abs returns the magnitude.
func (a Signed) Abs() uint64 { return a.Value }

// IsZero reports whether the magnitude is zero.
func (a Signed) IsZero() bool { return a.Value == 0 }

// IsNegative reports whether the amount is strictly negative.
func (a Signed) IsNegative() bool { return a.Negative && a.Value != 0 }

func (a Signed) String() string {
	if a.IsNegative() {
		return fmt.Sprintf("-%d", a.Value)
	}
	return fmt.Sprintf("%d", a.Value)
}
