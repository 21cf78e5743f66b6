package escrow

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/types"
)

var (
	alice = types.AddressIdentity(common.HexToAddress("0xAA00000000000000000000000000000000000000"))
	btc   = types.AssetFromHex("0x01")
	usdc  = types.AssetFromHex("0x02")
)

// TestDepositWithdraw tests the basic credit/debit cycle
func TestDepositWithdraw(t *testing.T) {
	l := NewLedger()

	if err := l.Deposit(alice, btc, 500); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if got := l.Balance(alice, btc); got != 500 {
		t.Errorf("balance after deposit: got %d, want 500", got)
	}
	if got := l.Balance(alice, usdc); got != 0 {
		t.Errorf("untouched asset should be zero, got %d", got)
	}

	if err := l.Withdraw(alice, btc, 200); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if got := l.Balance(alice, btc); got != 300 {
		t.Errorf("balance after withdraw: got %d, want 300", got)
	}
}

// TestWithdrawInsufficient tests that over-withdrawal fails without mutation
func TestWithdrawInsufficient(t *testing.T) {
	l := NewLedger()
	l.Deposit(alice, btc, 100)

	err := l.Withdraw(alice, btc, 101)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := l.Balance(alice, btc); got != 100 {
		t.Errorf("failed withdraw mutated balance: got %d, want 100", got)
	}
}

// TestHoldRelease tests the escrow round trip used by open and cancel
func TestHoldRelease(t *testing.T) {
	l := NewLedger()
	l.Deposit(alice, btc, 500)

	if err := l.Hold(alice, btc, 500); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if got := l.Balance(alice, btc); got != 0 {
		t.Errorf("hold should zero the free balance, got %d", got)
	}
	if err := l.Hold(alice, btc, 1); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("hold on empty balance should fail, got %v", err)
	}

	l.Release(alice, btc, 500)
	if got := l.Balance(alice, btc); got != 500 {
		t.Errorf("release should restore the balance, got %d", got)
	}
}

// TestDepositOverflow tests that a credit past the uint64 range is rejected
func TestDepositOverflow(t *testing.T) {
	l := NewLedger()
	l.Deposit(alice, btc, math.MaxUint64)

	if err := l.Deposit(alice, btc, 1); !errors.Is(err, amount.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if got := l.Balance(alice, btc); got != math.MaxUint64 {
		t.Errorf("failed deposit mutated balance: got %d", got)
	}
}

// TestZeroBalancePruned tests that fully debited entries disappear from
// iteration
func TestZeroBalancePruned(t *testing.T) {
	l := NewLedger()
	l.Deposit(alice, btc, 100)
	if err := l.Withdraw(alice, btc, 100); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	if l.Len() != 0 {
		t.Errorf("expected empty ledger, got %d entries", l.Len())
	}
	count := 0
	l.Each(func(Key, uint64) { count++ })
	if count != 0 {
		t.Errorf("zero entries should not be iterated, saw %d", count)
	}
}
