package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, initialCash float64) *Store {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	store, err := NewStore(db, initialCash)
	require.NoError(t, err)
	return store
}

func TestWalletSeededOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	db, err := NewDatabase(path)
	require.NoError(t, err)
	store, err := NewStore(db, 10000)
	require.NoError(t, err)

	_, err = store.ExecuteTrade("X", "BUY", 10, 1000)
	require.NoError(t, err)

	// Reopening must not re-seed the wallet.
	db2, err := NewDatabase(path)
	require.NoError(t, err)
	store2, err := NewStore(db2, 10000)
	require.NoError(t, err)

	balance, err := store2.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 9000, balance, 1e-9)
}

func TestBuyUpdatesWalletAndPosition(t *testing.T) {
	store := newTestStore(t, 10000)

	msg, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)
	assert.Contains(t, msg, "BOUGHT")

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 9000, balance, 1e-9)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "X", holdings[0].Ticker)
	assert.InDelta(t, 100, holdings[0].Quantity, 1e-9)
	assert.InDelta(t, 10.0, holdings[0].AvgCost, 1e-9)
}

func TestWeightedAverageCost(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)
	_, err = store.ExecuteTrade("X", "BUY", 20.0, 1000)
	require.NoError(t, err)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.InDelta(t, 150, holdings[0].Quantity, 1e-9)
	assert.InDelta(t, 13.3333, holdings[0].AvgCost, 0.001)
}

func TestWeightedAverageIsDollarWeightedMean(t *testing.T) {
	store := newTestStore(t, 10000)

	buys := []struct{ price, amount float64 }{
		{5.0, 500},
		{8.0, 1200},
		{4.0, 300},
	}

	var totalSpend, totalQty float64
	for _, b := range buys {
		_, err := store.ExecuteTrade("Y", "BUY", b.price, b.amount)
		require.NoError(t, err)
		totalSpend += b.amount
		totalQty += b.amount / b.price
	}

	holdings, err := store.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.InDelta(t, totalQty, holdings[0].Quantity, 1e-9)
	assert.InDelta(t, totalSpend/totalQty, holdings[0].AvgCost, 1e-9)
}

func TestBuyInsufficientFundsNoMutation(t *testing.T) {
	store := newTestStore(t, 500)

	_, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 500, balance, 1e-9)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestUnknownActionRejected(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.ExecuteTrade("X", "SELL", 10.0, 100)
	assert.ErrorIs(t, err, ErrUnknownAction)

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 10000, balance, 1e-9)
}

func TestPositionExposure(t *testing.T) {
	store := newTestStore(t, 10000)

	exposure, err := store.PositionExposure("NONE")
	require.NoError(t, err)
	assert.Zero(t, exposure)

	_, err = store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)

	exposure, err = store.PositionExposure("X")
	require.NoError(t, err)
	assert.InDelta(t, 1000, exposure, 1e-9)
}

func TestLogPendingOrderQuantity(t *testing.T) {
	store := newTestStore(t, 10000)

	msg, err := store.LogPendingOrder("X", KindLimitBuy, 20.0, 1000)
	require.NoError(t, err)
	assert.Contains(t, msg, "QUEUED")

	// Zero target price yields a zero-quantity order, not a division crash.
	_, err = store.LogPendingOrder("X", KindStopLoss, 0, 0)
	require.NoError(t, err)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.InDelta(t, 50, orders[0].Quantity, 1e-9)
	assert.Zero(t, orders[1].Quantity)
}

func TestLimitBuyFillsAtOrBelowTarget(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.LogPendingOrder("X", KindLimitBuy, 20.0, 1000)
	require.NoError(t, err)

	// Above target: untouched.
	msgs, err := store.CheckPendingOrders("X", 20.01)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// At target: fills via the trade path at the target price.
	msgs, err = store.CheckPendingOrders("X", 20.0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "LIMIT FILLED")

	orders, err = store.OpenOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.InDelta(t, 50, holdings[0].Quantity, 1e-9)
	assert.InDelta(t, 20.0, holdings[0].AvgCost, 1e-9)

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 9000, balance, 1e-9)
}

func TestLimitBuyConsumedEvenWhenUnderfunded(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.LogPendingOrder("X", KindLimitBuy, 20.0, 1000)
	require.NoError(t, err)

	// Drain the wallet before the limit price is reached.
	_, err = store.ExecuteTrade("Y", "BUY", 5.0, 9800)
	require.NoError(t, err)

	msgs, err := store.CheckPendingOrders("X", 19.0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "buy failed")

	// The order does not re-arm; the wallet is untouched.
	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 200, balance, 1e-9)
}

func TestStopLossTriggersWithoutSelling(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)
	_, err = store.LogPendingOrder("X", KindStopLoss, 8.0, 0)
	require.NoError(t, err)

	msgs, err := store.CheckPendingOrders("X", 7.5)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "STOP LOSS HIT")

	// Trigger flag only: balance and position are unchanged.
	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 9000, balance, 1e-9)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.InDelta(t, 100, holdings[0].Quantity, 1e-9)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStopLossStaysOpenAboveTarget(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.LogPendingOrder("X", KindStopLoss, 8.0, 0)
	require.NoError(t, err)

	msgs, err := store.CheckPendingOrders("X", 9.0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestResetPortfolio(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)
	_, err = store.LogPendingOrder("X", KindLimitBuy, 9.0, 500)
	require.NoError(t, err)

	msg, err := store.ResetPortfolio(25000)
	require.NoError(t, err)
	assert.Contains(t, msg, "RESET COMPLETE")

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 25000, balance, 1e-9)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	assert.Empty(t, holdings)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)

	// Terminal reset: calling again lands in the same state.
	_, err = store.ResetPortfolio(25000)
	require.NoError(t, err)
	balance, err = store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 25000, balance, 1e-9)
}

func TestClearPositionsThenDeposit(t *testing.T) {
	store := newTestStore(t, 10000)

	_, err := store.ExecuteTrade("X", "BUY", 10.0, 1000)
	require.NoError(t, err)
	_, err = store.LogPendingOrder("X", KindStopLoss, 8.0, 0)
	require.NoError(t, err)

	require.NoError(t, store.ClearPositions())
	require.NoError(t, store.DepositCash(1234.56))

	balance, err := store.Balance()
	require.NoError(t, err)
	assert.InDelta(t, 9000+1234.56, balance, 1e-9)

	holdings, err := store.Holdings()
	require.NoError(t, err)
	assert.Empty(t, holdings)

	orders, err := store.OpenOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}
