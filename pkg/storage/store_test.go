package storage

import (
	"fmt"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sparkdex/sparkbook/pkg/amount"
	"github.com/sparkdex/sparkbook/pkg/book"
	"github.com/sparkdex/sparkbook/pkg/escrow"
	"github.com/sparkdex/sparkbook/pkg/market"
	"github.com/sparkdex/sparkbook/pkg/types"
)

// newTestStore opens a store on a unique temporary path so parallel tests
// never hit pebble lock conflicts.
func newTestStore(t *testing.T) *Store {
	path := fmt.Sprintf("./tmp_test_storage_%s.db", t.Name())
	os.RemoveAll(path)
	t.Cleanup(func() { os.RemoveAll(path) })

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var (
	alice = types.AddressIdentity(common.HexToAddress("0xAA00000000000000000000000000000000000000"))
	btc   = types.AssetFromHex("0x01")
)

func testOrder(orderHeight uint64, seq uint64) *book.Order {
	size := amount.New(500_000_000, true)
	return &book.Order{
		ID:          book.DeriveID(book.TypeOf(size), alice, 50_000_000_000_000, 10, orderHeight),
		Owner:       alice,
		BaseAsset:   btc,
		BasePrice:   50_000_000_000_000,
		BaseSize:    size,
		BlockHeight: 10,
		OrderHeight: orderHeight,
		Escrow:      500_000_000,
		Seq:         seq,
	}
}

// TestMarketRoundTrip tests persisting and reloading market definitions
func TestMarketRoundTrip(t *testing.T) {
	s := newTestStore(t)

	b := s.NewBatch()
	require.NoError(t, b.PutMarket(market.New(btc, 8)))
	require.NoError(t, b.Commit())

	markets, err := s.LoadMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 1)
	require.Equal(t, btc, markets[0].BaseAsset)
	require.Equal(t, uint32(8), markets[0].BaseDecimals)
}

// TestOrderRoundTrip tests order upsert, reload and delete
func TestOrderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	o := testOrder(1, 7)

	b := s.NewBatch()
	require.NoError(t, b.PutOrder(o))
	require.NoError(t, b.Commit())

	orders, err := s.LoadOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, *o, *orders[0])

	b = s.NewBatch()
	require.NoError(t, b.DeleteOrder(o.ID))
	require.NoError(t, b.Commit())

	orders, err = s.LoadOrders()
	require.NoError(t, err)
	require.Empty(t, orders)
}

// TestBalanceRoundTrip tests balance writes, including the zero-deletes rule
func TestBalanceRoundTrip(t *testing.T) {
	s := newTestStore(t)

	b := s.NewBatch()
	require.NoError(t, b.PutBalance(alice, btc, 500))
	require.NoError(t, b.Commit())

	l := escrow.NewLedger()
	require.NoError(t, s.LoadBalances(l))
	require.Equal(t, uint64(500), l.Balance(alice, btc))

	// A zero write removes the entry entirely.
	b = s.NewBatch()
	require.NoError(t, b.PutBalance(alice, btc, 0))
	require.NoError(t, b.Commit())

	l = escrow.NewLedger()
	require.NoError(t, s.LoadBalances(l))
	require.Zero(t, l.Len())
}

// TestMetaRoundTrip tests metadata defaults and persistence
func TestMetaRoundTrip(t *testing.T) {
	s := newTestStore(t)

	v, err := s.LoadMeta("matcher_fee", 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)

	b := s.NewBatch()
	require.NoError(t, b.PutMeta("matcher_fee", 1000))
	require.NoError(t, b.Commit())

	v, err = s.LoadMeta("matcher_fee", 42)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), v)
}

// TestBatchAtomicity tests that an uncommitted batch leaves no trace
func TestBatchAtomicity(t *testing.T) {
	s := newTestStore(t)

	b := s.NewBatch()
	require.NoError(t, b.PutOrder(testOrder(1, 0)))
	require.NoError(t, b.Close())

	orders, err := s.LoadOrders()
	require.NoError(t, err)
	require.Empty(t, orders)
}
