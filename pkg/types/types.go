// Package types defines the identity, asset and value primitives shared by
// the matching engine packages.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// IdentityKind discriminates the two account flavors. The discriminant is
// part of every canonical encoding so an address and a contract with the same
// 32 bytes never collide.
type IdentityKind uint8

const (
	// AddressKind is an externally-owned account.
	AddressKind IdentityKind = iota
	// ContractKind is a contract identity.
	ContractKind
)

func (k IdentityKind) String() string {
	switch k {
	case AddressKind:
		return "address"
	case ContractKind:
		return "contract"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Identity is a discriminated account identity. It is comparable and usable
// as a map key.
type Identity struct {
	Kind IdentityKind `json:"kind"`
	ID   common.Hash  `json:"id"`
}

// AddressIdentity builds an Identity from a 20-byte externally-owned address,
// left-padded to 32 bytes.
func AddressIdentity(addr common.Address) Identity {
	return Identity{Kind: AddressKind, ID: common.BytesToHash(addr.Bytes())}
}

// ContractIdentity builds an Identity from a 32-byte contract id.
func ContractIdentity(id common.Hash) Identity {
	return Identity{Kind: ContractKind, ID: id}
}

// Bytes returns the canonical 33-byte encoding: kind discriminant followed by
// the 32-byte id. Used as hash input for order-id derivation and as a storage
// key component.
func (i Identity) Bytes() []byte {
	out := make([]byte, 33)
	out[0] = byte(i.Kind)
	copy(out[1:], i.ID[:])
	return out
}

func (i Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Kind, i.ID.Hex())
}

// AssetID identifies an asset by its 32-byte id.
type AssetID common.Hash

// AssetFromHex parses a hex-encoded asset id.
func AssetFromHex(s string) AssetID {
	return AssetID(common.HexToHash(s))
}

func (a AssetID) Hex() string { return common.Hash(a).Hex() }

func (a AssetID) String() string { return a.Hex() }

// OrderID is the content-addressed 32-byte order identifier.
type OrderID common.Hash

// OrderIDFromHex parses a hex-encoded order id.
func OrderIDFromHex(s string) OrderID {
	return OrderID(common.HexToHash(s))
}

func (o OrderID) Hex() string { return common.Hash(o).Hex() }

func (o OrderID) String() string { return o.Hex() }

// Funds is the explicit "attached funds" parameter: value the caller
// transfers into the engine atomically with an operation.
type Funds struct {
	Asset  AssetID `json:"asset"`
	Amount uint64  `json:"amount"`
}

// NoFunds is the empty attachment.
var NoFunds = Funds{}

func (f Funds) String() string {
	return fmt.Sprintf("%d of %s", f.Amount, f.Asset.Hex())
}
