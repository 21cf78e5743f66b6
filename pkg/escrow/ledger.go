// Package escrow tracks the funds the engine holds on behalf of depositors:
// the per-(owner, asset) free balances not currently backing an order.
package escrow

import (
	"errors"
	"fmt"
	"math"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// ErrInsufficientBalance is returned when a debit exceeds the free balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Key addresses one balance entry.
type Key struct {
	Owner types.Identity
	Asset types.AssetID
}

// Ledger holds strictly non-negative free balances. Not internally
// synchronized: the engine serializes all access under its own lock.
type Ledger struct {
	balances map[Key]uint64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[Key]uint64)}
}

// Deposit credits a free balance. Fails with amount.ErrOverflow when the
// credit would exceed the representable balance.
func (l *Ledger) Deposit(owner types.Identity, asset types.AssetID, amt uint64) error {
	k := Key{Owner: owner, Asset: asset}
	if l.balances[k] > math.MaxUint64-amt {
		return fmt.Errorf("%w: balance for %s", amount.ErrOverflow, owner)
	}
	l.balances[k] += amt
	return nil
}

// Withdraw debits a free balance, releasing funds out of the engine.
func (l *Ledger) Withdraw(owner types.Identity, asset types.AssetID, amount uint64) error {
	return l.debit(owner, asset, amount)
}

// Hold debits a free balance into order escrow. Same arithmetic as Withdraw;
// kept separate so call sites state intent.
func (l *Ledger) Hold(owner types.Identity, asset types.AssetID, amount uint64) error {
	return l.debit(owner, asset, amount)
}

// Release credits funds back to a free balance, used by cancellation refunds
// and match settlement. Releases only move value already held by the engine,
// so overflow here means the ledger state is corrupt.
func (l *Ledger) Release(owner types.Identity, asset types.AssetID, amount uint64) {
	if err := l.Deposit(owner, asset, amount); err != nil {
		panic(fmt.Sprintf("escrow: release of %d %s to %s: %v", amount, asset, owner, err))
	}
}

func (l *Ledger) debit(owner types.Identity, asset types.AssetID, amount uint64) error {
	k := Key{Owner: owner, Asset: asset}
	bal := l.balances[k]
	if bal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, bal, amount)
	}
	if bal == amount {
		delete(l.balances, k)
	} else {
		l.balances[k] = bal - amount
	}
	return nil
}

// Balance returns the free balance for (owner, asset).
func (l *Ledger) Balance(owner types.Identity, asset types.AssetID) uint64 {
	return l.balances[Key{Owner: owner, Asset: asset}]
}

// Each calls fn for every non-zero balance entry. Iteration order is
// unspecified.
func (l *Ledger) Each(fn func(Key, uint64)) {
	for k, v := range l.balances {
		fn(k, v)
	}
}

// Set overwrites one entry. Zero deletes. Used when loading state from
// storage.
func (l *Ledger) Set(k Key, amount uint64) {
	if amount == 0 {
		delete(l.balances, k)
		return
	}
	l.balances[k] = amount
}

// Len returns the number of non-zero entries.
func (l *Ledger) Len() int { return len(l.balances) }
