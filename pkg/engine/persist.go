package engine

import (
	"fmt"

	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/escrow"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// journal records what one operation touched so commit can persist exactly
// that in a single batch.
type journal struct {
	orders   map[types.OrderID]*book.Order
	removed  map[types.OrderID]struct{}
	balances map[escrow.Key]struct{}
	markets  []*market.Market
	meta     map[string]uint64
}

func newJournal() *journal {
	return &journal{
		orders:   make(map[types.OrderID]*book.Order),
		removed:  make(map[types.OrderID]struct{}),
		balances: make(map[escrow.Key]struct{}),
		meta:     make(map[string]uint64),
	}
}

func (j *journal) touchOrder(o *book.Order) {
	delete(j.removed, o.ID)
	j.orders[o.ID] = o
}

func (j *journal) removeOrder(id types.OrderID) {
	delete(j.orders, id)
	j.removed[id] = struct{}{}
}

func (j *journal) touchBalance(owner types.Identity, asset types.AssetID) {
	j.balances[escrow.Key{Owner: owner, Asset: asset}] = struct{}{}
}

// commit persists a journal. In-memory state is already mutated when commit
// runs; a storage failure would leave memory and disk divergent, so it is
// treated as fatal rather than returned.
func (e *Engine) commit(j *journal) {
	if e.store == nil {
		return
	}

	b := e.store.NewBatch()
	defer b.Close()

	for _, m := range j.markets {
		if err := b.PutMarket(m); err != nil {
			panic(fmt.Sprintf("engine: persist market: %v", err))
		}
	}
	for _, o := range j.orders {
		if err := b.PutOrder(o); err != nil {
			panic(fmt.Sprintf("engine: persist order: %v", err))
		}
	}
	for id := range j.removed {
		if err := b.DeleteOrder(id); err != nil {
			panic(fmt.Sprintf("engine: delete order: %v", err))
		}
	}
	for k := range j.balances {
		if err := b.PutBalance(k.Owner, k.Asset, e.ledger.Balance(k.Owner, k.Asset)); err != nil {
			panic(fmt.Sprintf("engine: persist balance: %v", err))
		}
	}
	for name, val := range j.meta {
		if err := b.PutMeta(name, val); err != nil {
			panic(fmt.Sprintf("engine: persist meta %s: %v", name, err))
		}
	}

	if err := b.Commit(); err != nil {
		panic(fmt.Sprintf("engine: batch commit: %v", err))
	}
}

// load restores the full engine state from storage at construction.
func (e *Engine) load() error {
	markets, err := e.store.LoadMarkets()
	if err != nil {
		return fmt.Errorf("load markets: %w", err)
	}
	for _, m := range markets {
		if err := e.markets.Register(m); err != nil {
			return fmt.Errorf("load markets: %w", err)
		}
	}

	orders, err := e.store.LoadOrders()
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	e.orders.Rebuild(orders)

	if err := e.store.LoadBalances(e.ledger); err != nil {
		return fmt.Errorf("load balances: %w", err)
	}

	if e.matcherFee, err = e.store.LoadMeta(metaMatcherFee, 0); err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	if e.nextSeq, err = e.store.LoadMeta(metaNextSeq, 0); err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	return nil
}
