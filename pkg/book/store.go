package book

import (
	"sort"

	"github.com/sparkdex/sparkbook/pkg/types"
)

// Store keeps resting orders keyed by id plus a secondary index from trader
// identity to order ids in insertion order. Not internally synchronized: the
// engine serializes all access under its own lock.
type Store struct {
	orders   map[types.OrderID]*Order
	byTrader map[types.Identity][]types.OrderID
}

// NewStore creates an empty order store.
func NewStore() *Store {
	return &Store{
		orders:   make(map[types.OrderID]*Order),
		byTrader: make(map[types.Identity][]types.OrderID),
	}
}

// Get returns the order with the given id, or nil.
func (s *Store) Get(id types.OrderID) *Order {
	return s.orders[id]
}

// Put inserts a new order and appends it to its trader's index. Putting an id
// that is already present only overwrites the keyed entry; the index position
// is kept (merge case).
func (s *Store) Put(o *Order) {
	if _, exists := s.orders[o.ID]; !exists {
		s.byTrader[o.Owner] = append(s.byTrader[o.Owner], o.ID)
	}
	s.orders[o.ID] = o
}

// Remove deletes an order and its trader-index entry. Returns false if the id
// is unknown.
func (s *Store) Remove(id types.OrderID) bool {
	o, exists := s.orders[id]
	if !exists {
		return false
	}
	delete(s.orders, id)

	ids := s.byTrader[o.Owner]
	for i, oid := range ids {
		if oid == id {
			s.byTrader[o.Owner] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byTrader[o.Owner]) == 0 {
		delete(s.byTrader, o.Owner)
	}
	return true
}

// OrdersByTrader returns the trader's order ids in insertion order. The
// returned slice is a copy.
func (s *Store) OrdersByTrader(owner types.Identity) []types.OrderID {
	ids := s.byTrader[owner]
	out := make([]types.OrderID, len(ids))
	copy(out, ids)
	return out
}

// Each calls fn for every resting order. Iteration order is unspecified.
func (s *Store) Each(fn func(*Order)) {
	for _, o := range s.orders {
		fn(o)
	}
}

// Len returns the number of resting orders.
func (s *Store) Len() int { return len(s.orders) }

// Rebuild replaces the store contents from a flat order list, restoring the
// trader indices in insertion order via the persisted sequence numbers. Used
// when loading state from storage.
func (s *Store) Rebuild(orders []*Order) {
	s.orders = make(map[types.OrderID]*Order, len(orders))
	s.byTrader = make(map[types.Identity][]types.OrderID)

	sort.Slice(orders, func(i, j int) bool { return orders[i].Seq < orders[j].Seq })
	for _, o := range orders {
		s.orders[o.ID] = o
		s.byTrader[o.Owner] = append(s.byTrader[o.Owner], o.ID)
	}
}
