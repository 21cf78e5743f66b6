package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

func addU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return a + b, nil
}

// mustHold debits escrow whose sufficiency was already checked under the same
// lock. A failure here means the check and the ledger disagree.
func (e *Engine) mustHold(owner types.Identity, asset types.AssetID, amt uint64) {
	if err := e.ledger.Hold(owner, asset, amt); err != nil {
		panic(fmt.Sprintf("engine: hold after sufficiency check: %v", err))
	}
}

// OpenOrder records a resting order. The attached funds are credited to the
// caller first, then the required escrow (base magnitude for a sell, quote
// value for a buy) plus the matcher fee is held; any shortfall fails the
// whole operation with no partial credit. A submission deriving an id that
// already rests merges into it. Opening against one's own opposite-signed
// order at the same price settles the overlap immediately, which is how an
// order is cancelled by submitting its reverse.
func (e *Engine) OpenOrder(caller types.Identity, baseAsset types.AssetID, size amount.Signed, basePrice uint64, blockHeight uint32, orderHeight uint64, attached types.Funds) (types.OrderID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mkt := e.markets.Get(baseAsset)
	if mkt == nil {
		return types.OrderID{}, fmt.Errorf("%w: %s", ErrUnknownMarket, baseAsset.Hex())
	}
	if size.IsZero() {
		return types.OrderID{}, ErrZeroSize
	}

	escrowAsset := baseAsset
	escrowAmt := size.Abs()
	if !size.IsNegative() {
		escrowAsset = e.cfg.QuoteAsset
		var err error
		escrowAmt, err = quoteForBase(size.Abs(), basePrice, mkt.BaseDecimals, e.cfg.QuoteDecimals, e.cfg.PriceDecimals)
		if err != nil {
			return types.OrderID{}, err
		}
	}
	fee := e.matcherFee

	// Sufficiency with the attached credit applied, checked before the first
	// mutation.
	need := make(map[types.AssetID]uint64, 2)
	need[escrowAsset] = escrowAmt
	if fee > 0 {
		n, err := addU64(need[e.cfg.QuoteAsset], fee)
		if err != nil {
			return types.OrderID{}, err
		}
		need[e.cfg.QuoteAsset] = n
	}
	for asset, n := range need {
		have := e.ledger.Balance(caller, asset)
		if attached.Asset == asset {
			h, err := addU64(have, attached.Amount)
			if err != nil {
				return types.OrderID{}, err
			}
			have = h
		}
		if have < n {
			return types.OrderID{}, fmt.Errorf("open order needs %d of %s, have %d: %w", n, asset.Hex(), have, ErrInsufficientBalance)
		}
	}

	t := book.TypeOf(size)
	id := book.DeriveID(t, caller, basePrice, blockHeight, orderHeight)

	// Stage the inserted or merged order without touching the store.
	var ord book.Order
	isNew := true
	if existing := e.orders.Get(id); existing != nil {
		isNew = false
		// The id encodes the order type, so the signs match.
		merged, err := existing.BaseSize.Add(size)
		if err != nil {
			return types.OrderID{}, err
		}
		esc, err := addU64(existing.Escrow, escrowAmt)
		if err != nil {
			return types.OrderID{}, err
		}
		held, err := addU64(existing.FeeHeld, fee)
		if err != nil {
			return types.OrderID{}, err
		}
		ord = *existing
		ord.BaseSize = merged
		ord.Escrow = esc
		ord.FeeHeld = held
	} else {
		ord = book.Order{
			ID:          id,
			Owner:       caller,
			BaseAsset:   baseAsset,
			BasePrice:   basePrice,
			BaseSize:    size,
			BlockHeight: blockHeight,
			OrderHeight: orderHeight,
			Escrow:      escrowAmt,
			FeeHeld:     fee,
			Seq:         e.nextSeq,
		}
	}

	plans, err := e.planNetting(&ord, mkt)
	if err != nil {
		return types.OrderID{}, err
	}

	// Apply. The deposit is the first mutation; everything after it cannot
	// fail.
	if attached.Amount > 0 {
		if err := e.ledger.Deposit(caller, attached.Asset, attached.Amount); err != nil {
			return types.OrderID{}, err
		}
	}
	e.mustHold(caller, escrowAsset, escrowAmt)
	if fee > 0 {
		e.mustHold(caller, e.cfg.QuoteAsset, fee)
	}

	o := ord
	e.orders.Put(&o)

	j := newJournal()
	if isNew {
		e.nextSeq++
		j.meta[metaNextSeq] = e.nextSeq
	}
	j.touchOrder(&o)
	j.touchBalance(caller, escrowAsset)
	if attached.Amount > 0 {
		j.touchBalance(caller, attached.Asset)
	}
	if fee > 0 {
		j.touchBalance(caller, e.cfg.QuoteAsset)
	}

	for _, s := range plans {
		e.applySettlement(caller, s, j)
	}

	e.commit(j)

	e.log.Debug("order opened",
		zap.String("id", id.Hex()),
		zap.String("owner", caller.String()),
		zap.String("type", t.String()),
		zap.String("size", size.String()),
		zap.Uint64("price", basePrice),
		zap.Bool("merged", !isNew),
		zap.Int("netted", len(plans)),
	)
	return id, nil
}

// planNetting simulates matching the staged order against the owner's own
// opposite-signed resting orders on the same market at the same price. Pure:
// runs on copies, so an error aborts OpenOrder before any mutation.
func (e *Engine) planNetting(incoming *book.Order, mkt *market.Market) ([]settlement, error) {
	cur := *incoming
	var plans []settlement
	for _, oid := range e.orders.OrdersByTrader(incoming.Owner) {
		if cur.BaseSize.IsZero() {
			break
		}
		if oid == incoming.ID {
			continue
		}
		opp := e.orders.Get(oid)
		if opp.BaseAsset != incoming.BaseAsset || opp.BasePrice != incoming.BasePrice {
			continue
		}
		if opp.Type() == incoming.Type() {
			continue
		}

		oppSim := *opp
		// The resting order is the maker.
		s, err := e.planMatch(&oppSim, &cur, mkt, &oppSim)
		if err != nil {
			return nil, err
		}
		if s.sellerID == oppSim.ID {
			reduceOrders(&oppSim, &cur, s)
		} else {
			reduceOrders(&cur, &oppSim, s)
		}
		plans = append(plans, s)
	}
	return plans, nil
}

// CancelOrder removes a resting order and returns its full held escrow and
// fee to the owner's free balance.
func (e *Engine) CancelOrder(caller types.Identity, id types.OrderID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.orders.Get(id)
	if o == nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id.Hex())
	}
	if o.Owner != caller {
		return fmt.Errorf("cancel %s: %w", id.Hex(), ErrNotOwner)
	}

	quote := e.cfg.QuoteAsset
	escrowAsset := o.EscrowAsset(quote)
	e.ledger.Release(caller, escrowAsset, o.Escrow)
	if o.FeeHeld > 0 {
		e.ledger.Release(caller, quote, o.FeeHeld)
	}
	e.orders.Remove(id)

	j := newJournal()
	j.removeOrder(id)
	j.touchBalance(caller, escrowAsset)
	if o.FeeHeld > 0 {
		j.touchBalance(caller, quote)
	}
	e.commit(j)

	e.log.Debug("order cancelled",
		zap.String("id", id.Hex()),
		zap.String("owner", caller.String()),
		zap.Uint64("escrow_released", o.Escrow),
	)
	return nil
}
