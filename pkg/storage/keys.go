package storage

import (
	"fmt"

	"github.com/sparkdex/sparkbook/pkg/types"
)

// Pebble key schema. Prefix-based so each state family can be range-scanned
// on load.
const (
	prefixMarket  = "mkt:"   // market definitions
	prefixOrder   = "ord:"   // resting orders
	prefixBalance = "bal:"   // free escrow balances
	prefixMeta    = "meta:"  // engine metadata (matcher fee, order sequence)
)

// marketKey returns the key for a market definition.
// Format: "mkt:{base asset hex}"
func marketKey(asset types.AssetID) []byte {
	return []byte(prefixMarket + asset.Hex())
}

// orderKey returns the key for a resting order.
// Format: "ord:{order id hex}"
func orderKey(id types.OrderID) []byte {
	return []byte(prefixOrder + id.Hex())
}

// balanceKey returns the key for one free balance entry.
// Format: "bal:{identity kind}:{identity hex}:{asset hex}"
func balanceKey(owner types.Identity, asset types.AssetID) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:%s", prefixBalance, owner.Kind, owner.ID.Hex(), asset.Hex()))
}

func metaKey(name string) []byte {
	return []byte(prefixMeta + name)
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
