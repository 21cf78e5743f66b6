// Package storage provides pebble-based persistence for the matching engine
// state: markets, resting orders, free balances and engine metadata. Values
// are JSON; every engine operation commits its writes as one atomic batch.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/escrow"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// Store wraps a pebble database holding the full engine state.
// Thread-safe via the engine's lock: the engine never runs two operations
// concurrently.
type Store struct {
	db *pebble.DB
}

// balanceEntry is the persisted form of one ledger entry. The key fields are
// stored in the value too so load never parses keys.
type balanceEntry struct {
	Owner  types.Identity `json:"owner"`
	Asset  types.AssetID  `json:"asset"`
	Amount uint64         `json:"amount"`
}

// Open opens (or creates) the pebble database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// LoadMarkets reads every persisted market definition.
func (s *Store) LoadMarkets() ([]*market.Market, error) {
	var out []*market.Market
	err := s.scan(prefixMarket, func(val []byte) error {
		var m market.Market
		if err := json.Unmarshal(val, &m); err != nil {
			return fmt.Errorf("failed to unmarshal market: %w", err)
		}
		out = append(out, &m)
		return nil
	})
	return out, err
}

// LoadOrders reads every persisted resting order.
func (s *Store) LoadOrders() ([]*book.Order, error) {
	var out []*book.Order
	err := s.scan(prefixOrder, func(val []byte) error {
		var o book.Order
		if err := json.Unmarshal(val, &o); err != nil {
			return fmt.Errorf("failed to unmarshal order: %w", err)
		}
		out = append(out, &o)
		return nil
	})
	return out, err
}

// LoadBalances reads every persisted free balance entry into the ledger.
func (s *Store) LoadBalances(l *escrow.Ledger) error {
	return s.scan(prefixBalance, func(val []byte) error {
		var e balanceEntry
		if err := json.Unmarshal(val, &e); err != nil {
			return fmt.Errorf("failed to unmarshal balance: %w", err)
		}
		l.Set(escrow.Key{Owner: e.Owner, Asset: e.Asset}, e.Amount)
		return nil
	})
}

// LoadMeta reads a metadata value. Returns def if the key is absent.
func (s *Store) LoadMeta(name string, def uint64) (uint64, error) {
	val, closer, err := s.db.Get(metaKey(name))
	if err == pebble.ErrNotFound {
		return def, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get meta %s: %w", name, err)
	}
	defer closer.Close()

	var out uint64
	if err := json.Unmarshal(val, &out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal meta %s: %w", name, err)
	}
	return out, nil
}

func (s *Store) scan(prefix string, fn func(val []byte) error) error {
	lower := []byte(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: keyUpperBound(lower),
	})
	if err != nil {
		return fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Batch accumulates the writes of one engine operation and commits them
// atomically.
type Batch struct {
	batch *pebble.Batch
}

// NewBatch starts a batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{batch: s.db.NewBatch()}
}

// PutMarket adds a market write to the batch.
func (b *Batch) PutMarket(m *market.Market) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal market: %w", err)
	}
	return b.batch.Set(marketKey(m.BaseAsset), data, nil)
}

// PutOrder adds an order upsert to the batch.
func (b *Batch) PutOrder(o *book.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return b.batch.Set(orderKey(o.ID), data, nil)
}

// DeleteOrder adds an order removal to the batch.
func (b *Batch) DeleteOrder(id types.OrderID) error {
	return b.batch.Delete(orderKey(id), nil)
}

// PutBalance adds a balance write to the batch. Zero amounts delete the
// entry.
func (b *Batch) PutBalance(owner types.Identity, asset types.AssetID, amount uint64) error {
	key := balanceKey(owner, asset)
	if amount == 0 {
		return b.batch.Delete(key, nil)
	}
	data, err := json.Marshal(balanceEntry{Owner: owner, Asset: asset, Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}
	return b.batch.Set(key, data, nil)
}

// PutMeta adds a metadata write to the batch.
func (b *Batch) PutMeta(name string, value uint64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal meta %s: %w", name, err)
	}
	return b.batch.Set(metaKey(name), data, nil)
}

// Commit writes the batch to pebble atomically.
func (b *Batch) Commit() error {
	return b.batch.Commit(pebble.Sync)
}

// Close discards the batch without committing.
func (b *Batch) Close() error {
	return b.batch.Close()
}
