// Package book holds the resting order model and the keyed order store with
// its trader index.
package book

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// OrderType is the order side, encoded by the sign of the order size.
type OrderType uint8

const (
	Buy OrderType = iota
	Sell
)

func (t OrderType) String() string {
	if t == Sell {
		return "sell"
	}
	return "buy"
}

// TypeOf returns the order type implied by a signed size.
func TypeOf(size amount.Signed) OrderType {
	if size.IsNegative() {
		return Sell
	}
	return Buy
}

// Order is a resting order. ID, Owner, BaseAsset, BasePrice, BlockHeight and
// OrderHeight are immutable for the order's lifetime; BaseSize, Escrow and
// FeeHeld shrink as the order fills.
type Order struct {
	ID        types.OrderID  `json:"id"`
	Owner     types.Identity `json:"owner"`
	BaseAsset types.AssetID  `json:"base_asset"`
	// BasePrice is scaled by 10^price_decimals.
	BasePrice uint64        `json:"base_price"`
	BaseSize  amount.Signed `json:"base_size"`

	BlockHeight uint32 `json:"block_height"`
	OrderHeight uint64 `json:"order_height"`

	// Escrow is the amount currently held backing this order: base units for
	// a sell, quote units for a buy.
	Escrow uint64 `json:"escrow"`
	// FeeHeld is the matcher fee held in quote units, paid out pro-rata on
	// fills and refunded on cancel.
	FeeHeld uint64 `json:"fee_held"`

	// Seq is the engine-assigned insertion sequence, used to keep the trader
	// index in insertion order across restarts.
	Seq uint64 `json:"seq"`
}

// Type returns the order side.
func (o *Order) Type() OrderType { return TypeOf(o.BaseSize) }

// EscrowAsset returns the asset held in escrow for this order given the
// engine's quote asset.
func (o *Order) EscrowAsset(quote types.AssetID) types.AssetID {
	if o.Type() == Sell {
		return o.BaseAsset
	}
	return quote
}

// OpenedBefore reports whether o was opened before other, ordered by
// (BlockHeight, OrderHeight).
func (o *Order) OpenedBefore(other *Order) bool {
	if o.BlockHeight != other.BlockHeight {
		return o.BlockHeight < other.BlockHeight
	}
	return o.OrderHeight < other.OrderHeight
}

func (o *Order) String() string {
	return fmt.Sprintf("order{id=%s %s size=%s price=%d}", o.ID.Hex(), o.Type(), o.BaseSize, o.BasePrice)
}

// DeriveID computes the content-addressed order id:
// sha256(order_type ∥ identity ∥ price ∥ block_height ∥ order_height),
// with the identity in its canonical kind-discriminated 33-byte encoding and
// all integers fixed-width big-endian. Identical parameters always collide by
// construction; callers advance order_height per owner to avoid that.
func DeriveID(t OrderType, owner types.Identity, basePrice uint64, blockHeight uint32, orderHeight uint64) types.OrderID {
	h := sha256.New()
	h.Write([]byte{byte(t)})
	h.Write(owner.Bytes())

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], basePrice)
	h.Write(buf[:])
	binary.BigEndian.PutUint32(buf[:4], blockHeight)
	h.Write(buf[:4])
	binary.BigEndian.PutUint64(buf[:], orderHeight)
	h.Write(buf[:])

	var id types.OrderID
	copy(id[:], h.Sum(nil))
	return id
}
