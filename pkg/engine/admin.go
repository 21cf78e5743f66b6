package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// CreateMarket registers a new market for a base asset against the engine's
// quote asset. Owner-only; at most one market per base asset.
func (e *Engine) CreateMarket(caller types.Identity, baseAsset types.AssetID, baseDecimals uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return fmt.Errorf("create market: %w", ErrNotOwner)
	}
	if baseAsset == e.cfg.QuoteAsset {
		return fmt.Errorf("create market: base asset equals quote asset %s", baseAsset.Hex())
	}
	if e.markets.Exists(baseAsset) {
		return fmt.Errorf("%w: %s", ErrMarketExists, baseAsset.Hex())
	}

	m := market.New(baseAsset, baseDecimals)
	if err := e.markets.Register(m); err != nil {
		return err
	}

	j := newJournal()
	j.markets = append(j.markets, m)
	e.commit(j)

	e.log.Info("market created",
		zap.String("base_asset", baseAsset.Hex()),
		zap.Uint32("base_decimals", baseDecimals),
	)
	return nil
}

// SetMatcherFee sets the flat per-submission matcher fee in quote units.
// Owner-only. Orders already resting keep the fee they were opened with.
func (e *Engine) SetMatcherFee(caller types.Identity, fee uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return fmt.Errorf("set matcher fee: %w", ErrNotOwner)
	}

	e.matcherFee = fee

	j := newJournal()
	j.meta[metaMatcherFee] = fee
	e.commit(j)

	e.log.Info("matcher fee set", zap.Uint64("fee", fee))
	return nil
}
