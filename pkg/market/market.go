// Package market holds the per-base-asset market definitions. Every market
// trades against the single quote asset configured at engine construction.
package market

import (
	"fmt"

	"github.com/sparkdex/sparkbook/pkg/types"
)

// Market is one tradable pair: a base asset registered against the engine's
// quote asset.
type Market struct {
	BaseAsset    types.AssetID `json:"base_asset"`
	BaseDecimals uint32        `json:"base_decimals"`
}

// New creates a market for the given base asset.
func New(baseAsset types.AssetID, baseDecimals uint32) *Market {
	return &Market{BaseAsset: baseAsset, BaseDecimals: baseDecimals}
}

func (m *Market) String() string {
	return fmt.Sprintf("market{base=%s decimals=%d}", m.BaseAsset.Hex(), m.BaseDecimals)
}

// Registry maps base asset ids to markets. At most one market per base asset.
// Not internally synchronized: the engine serializes all access under its own
// lock.
type Registry struct {
	markets map[types.AssetID]*Market
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{markets: make(map[types.AssetID]*Market)}
}

// Register adds a market. Returns an error if the base asset already has one.
func (r *Registry) Register(m *Market) error {
	if m == nil {
		return fmt.Errorf("cannot register nil market")
	}
	if _, exists := r.markets[m.BaseAsset]; exists {
		return fmt.Errorf("market %s already registered", m.BaseAsset.Hex())
	}
	r.markets[m.BaseAsset] = m
	return nil
}

// Get retrieves the market for a base asset, or nil if unregistered.
func (r *Registry) Get(baseAsset types.AssetID) *Market {
	return r.markets[baseAsset]
}

// Exists reports whether a market is registered for the base asset.
func (r *Registry) Exists(baseAsset types.AssetID) bool {
	_, ok := r.markets[baseAsset]
	return ok
}

// List returns all registered markets.
func (r *Registry) List() []*Market {
	out := make([]*Market, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, m)
	}
	return out
}

// Len returns the number of registered markets.
func (r *Registry) Len() int { return len(r.markets) }
