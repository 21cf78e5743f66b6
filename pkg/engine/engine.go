// Package engine implements the matching engine state machine: deposit and
// withdrawal escrow accounting, content-addressed resting orders, and the
// open/cancel/match operations settling trades between owners.
//
// The engine is a single-writer transactional state machine. Every operation
// runs atomically under one lock across the order store, the escrow ledger
// and the market registry: validation and arithmetic happen before the first
// mutation, so any failure leaves all state untouched, and each successful
// operation commits its writes to storage as one batch.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sparkdex/sparkbook/params"
	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/escrow"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/storage"
	"github.com/sparkdex/sparkbook/pkg/types"
)

const (
	metaMatcherFee = "matcher_fee"
	metaNextSeq    = "next_seq"
)

// Engine holds the combined order/escrow state and exposes the five mutating
// operations plus read-only queries.
type Engine struct {
	mu sync.RWMutex

	cfg   params.Config
	owner types.Identity
	log   *zap.Logger
	store *storage.Store

	markets *market.Registry
	orders  *book.Store
	ledger  *escrow.Ledger

	// matcherFee is the flat per-submission fee in quote units, held at open
	// and paid to the caller of MatchOrders pro-rata to the filled quantity.
	matcherFee uint64
	// nextSeq numbers order insertions so trader indices keep insertion
	// order across restarts.
	nextSeq uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithStore attaches a persistence store. The engine loads its full state
// from it at construction and commits one batch per mutating operation.
func WithStore(s *storage.Store) Option {
	return func(e *Engine) { e.store = s }
}

// New creates an engine with the given immutable configuration. The owner
// identity gates market creation and fee configuration.
func New(cfg params.Config, owner types.Identity, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:     cfg,
		owner:   owner,
		log:     zap.NewNop(),
		markets: market.NewRegistry(),
		orders:  book.NewStore(),
		ledger:  escrow.NewLedger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store != nil {
		if err := e.load(); err != nil {
			return nil, err
		}
	}

	e.log.Debug("engine ready",
		zap.String("quote_asset", cfg.QuoteAsset.Hex()),
		zap.Uint32("quote_decimals", cfg.QuoteDecimals),
		zap.Uint32("price_decimals", cfg.PriceDecimals),
		zap.Int("markets", e.markets.Len()),
		zap.Int("orders", e.orders.Len()),
	)
	return e, nil
}

// Config returns the immutable engine configuration.
func (e *Engine) Config() params.Config {
	return e.cfg
}

// Owner returns the identity allowed to create markets and set the matcher
// fee.
func (e *Engine) Owner() types.Identity {
	return e.owner
}

// MatcherFee returns the current flat matcher fee in quote units.
func (e *Engine) MatcherFee() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcherFee
}

// MarketExists reports whether a market is registered for the base asset.
func (e *Engine) MarketExists(baseAsset types.AssetID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markets.Exists(baseAsset)
}

// Markets returns all registered markets.
func (e *Engine) Markets() []*market.Market {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markets.List()
}

// OrderByID returns a copy of the resting order with the given id, or nil.
func (e *Engine) OrderByID(id types.OrderID) *book.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()

	o := e.orders.Get(id)
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// OrdersByTrader returns the trader's resting order ids in insertion order.
func (e *Engine) OrdersByTrader(owner types.Identity) []types.OrderID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orders.OrdersByTrader(owner)
}

// BalanceOf returns the free (unescrowed) balance held for (owner, asset).
func (e *Engine) BalanceOf(owner types.Identity, asset types.AssetID) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Balance(owner, asset)
}

// EachBalance calls fn for every non-zero free balance entry.
func (e *Engine) EachBalance(fn func(escrow.Key, uint64)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.ledger.Each(fn)
}

// EachOrder calls fn with a copy of every resting order.
func (e *Engine) EachOrder(fn func(book.Order)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.orders.Each(func(o *book.Order) { fn(*o) })
}
