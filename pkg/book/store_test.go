package book

import (
	"testing"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/types"
)

func sellOrder(owner types.Identity, orderHeight uint64, seq uint64) *Order {
	size := amount.New(100, true)
	return &Order{
		ID:          DeriveID(TypeOf(size), owner, 50, 10, orderHeight),
		Owner:       owner,
		BaseAsset:   types.AssetFromHex("0x01"),
		BasePrice:   50,
		BaseSize:    size,
		BlockHeight: 10,
		OrderHeight: orderHeight,
		Escrow:      100,
		Seq:         seq,
	}
}

// TestStorePutGet tests basic insert and lookup
func TestStorePutGet(t *testing.T) {
	s := NewStore()
	o := sellOrder(alice, 1, 0)
	s.Put(o)

	if got := s.Get(o.ID); got != o {
		t.Errorf("lookup returned wrong order: got %v, want %v", got, o)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 order, got %d", s.Len())
	}
	if got := s.Get(types.OrderID{}); got != nil {
		t.Errorf("missing id should return nil, got %v", got)
	}
}

// TestStoreTraderIndexOrder tests that the trader index keeps insertion order
func TestStoreTraderIndexOrder(t *testing.T) {
	s := NewStore()
	first := sellOrder(alice, 1, 0)
	second := sellOrder(alice, 2, 1)
	other := sellOrder(bob, 1, 2)
	s.Put(first)
	s.Put(second)
	s.Put(other)

	ids := s.OrdersByTrader(alice)
	if len(ids) != 2 || ids[0] != first.ID || ids[1] != second.ID {
		t.Errorf("wrong trader index: %v", ids)
	}
	if ids := s.OrdersByTrader(bob); len(ids) != 1 || ids[0] != other.ID {
		t.Errorf("wrong index for second trader: %v", ids)
	}
}

// TestStorePutSameIDKeepsPosition tests that re-putting an existing id does
// not duplicate or reorder the trader index
func TestStorePutSameIDKeepsPosition(t *testing.T) {
	s := NewStore()
	first := sellOrder(alice, 1, 0)
	second := sellOrder(alice, 2, 1)
	s.Put(first)
	s.Put(second)

	merged := *first
	merged.BaseSize = amount.New(200, true)
	merged.Escrow = 200
	s.Put(&merged)

	ids := s.OrdersByTrader(alice)
	if len(ids) != 2 || ids[0] != first.ID || ids[1] != second.ID {
		t.Errorf("merge changed the trader index: %v", ids)
	}
	if got := s.Get(first.ID); got.Escrow != 200 {
		t.Errorf("merge did not replace the stored order: escrow %d", got.Escrow)
	}
}

// TestStoreRemove tests removal from storage and from the trader index
func TestStoreRemove(t *testing.T) {
	s := NewStore()
	first := sellOrder(alice, 1, 0)
	second := sellOrder(alice, 2, 1)
	s.Put(first)
	s.Put(second)

	if !s.Remove(first.ID) {
		t.Fatalf("remove reported order missing")
	}
	if s.Get(first.ID) != nil {
		t.Errorf("removed order still resolvable")
	}
	if ids := s.OrdersByTrader(alice); len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("trader index not pruned: %v", ids)
	}
	if s.Remove(first.ID) {
		t.Errorf("second remove should report missing")
	}
}

// TestStoreRebuild tests that reload restores insertion order from sequence
// numbers
func TestStoreRebuild(t *testing.T) {
	a := sellOrder(alice, 1, 3)
	b := sellOrder(alice, 2, 1)
	c := sellOrder(alice, 3, 2)

	s := NewStore()
	s.Rebuild([]*Order{a, b, c})

	ids := s.OrdersByTrader(alice)
	want := []types.OrderID{b.ID, c.ID, a.ID}
	if len(ids) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, ids[i].Hex(), want[i].Hex())
		}
	}
}
