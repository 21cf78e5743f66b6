package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// Trade reports one settled match.
type Trade struct {
	MakerID types.OrderID `json:"maker_id"`
	TakerID types.OrderID `json:"taker_id"`

	Seller types.Identity `json:"seller"`
	Buyer  types.Identity `json:"buyer"`

	BaseAsset types.AssetID `json:"base_asset"`
	// Price is the maker's fixed-point price the trade executed at.
	Price uint64 `json:"price"`
	// BaseAmount is the settled base quantity, QuoteAmount its quote value
	// at Price.
	BaseAmount  uint64 `json:"base_amount"`
	QuoteAmount uint64 `json:"quote_amount"`
	// MatcherFee is the total fee paid to the match submitter.
	MatcherFee uint64 `json:"matcher_fee"`
}

// settlement is the precomputed, side-effect-free plan for one match. All
// arithmetic and every failure mode live in planMatch; applying a settlement
// cannot fail.
type settlement struct {
	makerID  types.OrderID
	sellerID types.OrderID
	buyerID  types.OrderID

	seller types.Identity
	buyer  types.Identity

	baseAsset types.AssetID
	price     uint64

	q        uint64 // settled base quantity
	quotePay uint64 // quote owed to the seller
	// buyerDeduct is released from the buyer's escrow: the full remainder on
	// a complete fill, otherwise the pro-rata hold at the buyer's own price.
	buyerDeduct uint64
	// buyerRefund is escrow freed beyond quotePay, returned to the buyer
	// immediately so held escrow never strands truncation dust.
	buyerRefund uint64

	sellerFee uint64
	buyerFee  uint64
}

// planMatch validates a pair of opposite orders and computes the settlement.
// Pure: no state is touched, so a returned error aborts the whole operation
// with nothing mutated.
func (e *Engine) planMatch(a, b *book.Order, mkt *market.Market, maker *book.Order) (settlement, error) {
	if a.BaseAsset != b.BaseAsset {
		return settlement{}, fmt.Errorf("%w: %s vs %s", ErrIncompatibleMarket, a.BaseAsset.Hex(), b.BaseAsset.Hex())
	}
	if a.Type() == b.Type() {
		return settlement{}, fmt.Errorf("%w: both %s", ErrSameSide, a.Type())
	}

	seller, buyer := a, b
	if seller.Type() == book.Buy {
		seller, buyer = b, a
	}

	price := maker.BasePrice

	q := seller.BaseSize.Abs()
	if buyer.BaseSize.Abs() < q {
		q = buyer.BaseSize.Abs()
	}

	pay, err := quoteForBase(q, price, mkt.BaseDecimals, e.cfg.QuoteDecimals, e.cfg.PriceDecimals)
	if err != nil {
		return settlement{}, err
	}

	deduct := buyer.Escrow
	if q != buyer.BaseSize.Abs() {
		deduct, err = quoteForBase(q, buyer.BasePrice, mkt.BaseDecimals, e.cfg.QuoteDecimals, e.cfg.PriceDecimals)
		if err != nil {
			return settlement{}, err
		}
		if deduct > buyer.Escrow {
			deduct = buyer.Escrow
		}
	}
	if pay > deduct {
		return settlement{}, fmt.Errorf("trade price %d above buyer's funded escrow: %w", price, ErrInsufficientBalance)
	}

	return settlement{
		makerID:     maker.ID,
		sellerID:    seller.ID,
		buyerID:     buyer.ID,
		seller:      seller.Owner,
		buyer:       buyer.Owner,
		baseAsset:   a.BaseAsset,
		price:       price,
		q:           q,
		quotePay:    pay,
		buyerDeduct: deduct,
		buyerRefund: deduct - pay,
		sellerFee:   feeShare(seller.FeeHeld, q, seller.BaseSize.Abs()),
		buyerFee:    feeShare(buyer.FeeHeld, q, buyer.BaseSize.Abs()),
	}, nil
}

// reduceOrders shrinks both orders by the settled quantity. Sign, price,
// owner, id and heights stay untouched.
func reduceOrders(seller, buyer *book.Order, s settlement) {
	seller.BaseSize = amount.New(seller.BaseSize.Abs()-s.q, true)
	seller.Escrow -= s.q
	seller.FeeHeld -= s.sellerFee

	buyer.BaseSize = amount.New(buyer.BaseSize.Abs()-s.q, false)
	buyer.Escrow -= s.buyerDeduct
	buyer.FeeHeld -= s.buyerFee
}

// applySettlement executes a planned settlement: escrow transfers, in-place
// size reduction and removal of fully filled orders. Cannot fail.
func (e *Engine) applySettlement(matcher types.Identity, s settlement, j *journal) *Trade {
	seller := e.orders.Get(s.sellerID)
	buyer := e.orders.Get(s.buyerID)

	reduceOrders(seller, buyer, s)

	quote := e.cfg.QuoteAsset
	e.ledger.Release(s.buyer, s.baseAsset, s.q)
	e.ledger.Release(s.seller, quote, s.quotePay)
	if s.buyerRefund > 0 {
		e.ledger.Release(s.buyer, quote, s.buyerRefund)
	}
	fee := s.sellerFee + s.buyerFee
	if fee > 0 {
		e.ledger.Release(matcher, quote, fee)
	}

	j.touchBalance(s.buyer, s.baseAsset)
	j.touchBalance(s.seller, quote)
	j.touchBalance(s.buyer, quote)
	if fee > 0 {
		j.touchBalance(matcher, quote)
	}

	for _, o := range []*book.Order{seller, buyer} {
		if o.BaseSize.IsZero() {
			e.orders.Remove(o.ID)
			j.removeOrder(o.ID)
		} else {
			j.touchOrder(o)
		}
	}

	takerID := s.sellerID
	if s.makerID == s.sellerID {
		takerID = s.buyerID
	}
	tr := &Trade{
		MakerID:     s.makerID,
		TakerID:     takerID,
		Seller:      s.seller,
		Buyer:       s.buyer,
		BaseAsset:   s.baseAsset,
		Price:       s.price,
		BaseAmount:  s.q,
		QuoteAmount: s.quotePay,
		MatcherFee:  fee,
	}

	e.log.Info("trade settled",
		zap.String("maker", tr.MakerID.Hex()),
		zap.String("taker", tr.TakerID.Hex()),
		zap.Uint64("price", tr.Price),
		zap.Uint64("base_amount", tr.BaseAmount),
		zap.Uint64("quote_amount", tr.QuoteAmount),
		zap.Uint64("matcher_fee", tr.MatcherFee),
	)
	return tr
}

// MatchOrders settles a pair of opposite-signed orders. The trade executes at
// the maker's price, the maker being whichever order was opened first by
// (block height, order height); on a full tie the first argument is the
// maker. Either both escrow transfers and both size updates commit together,
// or nothing does.
func (e *Engine) MatchOrders(caller types.Identity, idA, idB types.OrderID) (*Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.orders.Get(idA)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, idA.Hex())
	}
	b := e.orders.Get(idB)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, idB.Hex())
	}

	mkt := e.markets.Get(a.BaseAsset)
	if mkt == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, a.BaseAsset.Hex())
	}

	maker := a
	if b.OpenedBefore(a) {
		maker = b
	}

	s, err := e.planMatch(a, b, mkt, maker)
	if err != nil {
		return nil, err
	}

	j := newJournal()
	tr := e.applySettlement(caller, s, j)
	e.commit(j)
	return tr, nil
}
