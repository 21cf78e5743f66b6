package engine

import (
	"fmt"
	"math/bits"
)

// pow10 holds the powers of ten representable in a uint64.
var pow10 = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000,
	10000000000, 100000000000, 1000000000000, 10000000000000, 100000000000000,
	1000000000000000, 10000000000000000, 100000000000000000,
	1000000000000000000, 10000000000000000000,
}

// quoteForBase converts a base-asset quantity into quote units at the given
// fixed-point price, truncating:
//
//	quote = base * price / 10^(price_decimals + base_decimals - quote_decimals)
//
// The multiplication runs on a 128-bit intermediate; ErrOverflow is returned
// when the result does not fit in 64 bits.
func quoteForBase(base, price uint64, baseDecimals, quoteDecimals, priceDecimals uint32) (uint64, error) {
	exp := int(priceDecimals) + int(baseDecimals) - int(quoteDecimals)

	hi, lo := bits.Mul64(base, price)

	if exp >= 0 {
		if exp >= len(pow10) {
			// Divisor exceeds uint64; the truncated quotient of any
			// representable product is zero only when hi == 0 as well.
			if hi == 0 {
				return 0, nil
			}
			return 0, fmt.Errorf("%w: price scale 10^%d", ErrOverflow, exp)
		}
		div := pow10[exp]
		if hi >= div {
			return 0, fmt.Errorf("%w: %d * %d / 10^%d", ErrOverflow, base, price, exp)
		}
		q, _ := bits.Div64(hi, lo, div)
		return q, nil
	}

	// Negative exponent: multiply the product up instead.
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, base, price)
	}
	mulExp := -exp
	if mulExp >= len(pow10) {
		return 0, fmt.Errorf("%w: quote scale 10^%d", ErrOverflow, mulExp)
	}
	mul := pow10[mulExp]
	h, l := bits.Mul64(lo, mul)
	if h != 0 {
		return 0, fmt.Errorf("%w: %d * 10^%d", ErrOverflow, lo, mulExp)
	}
	return l, nil
}

// feeShare returns held * part / whole, truncating, on a 128-bit
// intermediate. part == whole yields exactly held, so a fully filled order
// never strands fee dust.
func feeShare(held, part, whole uint64) uint64 {
	if held == 0 || whole == 0 {
		return 0
	}
	hi, lo := bits.Mul64(held, part)
	q, _ := bits.Div64(hi, lo, whole)
	return q
}
