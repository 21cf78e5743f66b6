package engine

import (
	"errors"
	"math"
	"testing"
)

// TestQuoteForBase tests the fixed-point base-to-quote conversion
func TestQuoteForBase(t *testing.T) {
	cases := []struct {
		name                            string
		base, price                     uint64
		baseDec, quoteDec, priceDec     uint32
		want                            uint64
	}{
		// 5 BTC (8 decimals) at 50000 USDC (6 decimals), price decimals 9.
		{"btc usdc", 500_000_000, 50_000_000_000_000, 8, 6, 9, 250_000_000_000},
		{"truncates", 1, 1_500_000_000, 0, 0, 9, 1},
		{"zero base", 0, 50_000_000_000_000, 8, 6, 9, 0},
		// Quote decimals exceed price plus base decimals: scale up.
		{"negative exponent", 7, 3, 1, 4, 2, 210},
	}
	for _, c := range cases {
		got, err := quoteForBase(c.base, c.price, c.baseDec, c.quoteDec, c.priceDec)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

// TestQuoteForBaseOverflow tests that results past the uint64 range fail
func TestQuoteForBaseOverflow(t *testing.T) {
	if _, err := quoteForBase(math.MaxUint64, math.MaxUint64, 0, 0, 0); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
	if _, err := quoteForBase(math.MaxUint64, 10, 0, 18, 0); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow on scale-up, got %v", err)
	}
}

// TestFeeShare tests pro-rata fee splitting
func TestFeeShare(t *testing.T) {
	if got := feeShare(1000, 200_000_000, 500_000_000); got != 400 {
		t.Errorf("partial share: got %d, want 400", got)
	}
	// A complete fill pays out the full held fee, never stranding dust.
	if got := feeShare(1000, 500_000_000, 500_000_000); got != 1000 {
		t.Errorf("full share: got %d, want 1000", got)
	}
	if got := feeShare(0, 1, 2); got != 0 {
		t.Errorf("zero held: got %d", got)
	}
	if got := feeShare(1000, 0, 2); got != 0 {
		t.Errorf("zero part: got %d", got)
	}
}
