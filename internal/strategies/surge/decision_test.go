package surge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/surgebot/internal/domain"
)

func TestOnTickIgnoresUninitializedBaseline(t *testing.T) {
	s, gw, inst := newTestStrategy()

	s.OnTick(tickAt("btcusdt", 105))

	assert.Empty(t, gw.submitted())
	assert.Equal(t, 0, inst.Momentum)
}

func TestThreeRisingTicksTriggerExactlyOneBuy(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100

	// 涨幅在 (2%, 50%) 区间内且连续上行
	s.OnTick(tickAt("btcusdt", 103))
	s.OnTick(tickAt("btcusdt", 104))
	assert.Empty(t, gw.submitted(), "动量不足时不应买入")

	s.OnTick(tickAt("btcusdt", 105))

	orders := gw.submitted()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideBuy, orders[0].Side)
	assert.Equal(t, "btcusdt", orders[0].Symbol)
	// 价格取 min(last, 卖一)
	assert.Equal(t, 105.0, orders[0].Price)
	// 数量 = floor(预算/价格, lot) = floor(1000/105, 0.01) = 9.52
	assert.InDelta(t, 9.52, orders[0].Volume, 1e-9)

	assert.Equal(t, OffsetClose, inst.Offset)
	assert.Equal(t, 105.0, inst.BuyPrice)
	assert.InDelta(t, 9.52*105, inst.CommittedBudget, 1e-6)

	// 同方向继续上涨也不会再买（OffsetClose 挡住）
	s.OnTick(tickAt("btcusdt", 106))
	assert.Len(t, gw.submitted(), 1)
}

func TestBuySkippedAboveEntryCeiling(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100

	// 涨幅 60% 超过上限 50%，追高保护
	for i := 0; i < 5; i++ {
		s.OnTick(tickAt("btcusdt", 160+float64(i)))
	}
	assert.Empty(t, gw.submitted())
	assert.Equal(t, 0, inst.Momentum)
}

func TestDeclinePunishesMomentum(t *testing.T) {
	s, _, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.Momentum = 2
	inst.LastPrice = 104

	s.OnTick(tickAt("btcusdt", 99))

	assert.Equal(t, 1, inst.Momentum)
	// 回落分支不更新 lastPrice
	assert.Equal(t, 104.0, inst.LastPrice)
}

func TestLockoutBlocksRebuy(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.Lockout = true

	for i := 0; i < 5; i++ {
		s.OnTick(tickAt("btcusdt", 103+float64(i)))
	}
	assert.Empty(t, gw.submitted())
}

func TestReentryGuardSkipsBuyNearLastSell(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.LastSellPrice = 110
	inst.AvgBuyPrice = 104 // floor = 110 - (110-104)/3 = 108

	inst.Momentum = 3
	s.OnTick(tickAt("btcusdt", 109)) // 109 >= 108，接回保护生效

	assert.Empty(t, gw.submitted())
}

func TestReentryAllowedBelowGuardFloor(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.LastSellPrice = 110
	inst.AvgBuyPrice = 104

	inst.Momentum = 3
	inst.LastPrice = 106
	s.OnTick(tickAt("btcusdt", 107)) // 107 < 108，允许买入

	require.Len(t, gw.submitted(), 1)
	assert.Equal(t, domain.SideBuy, gw.submitted()[0].Side)
}

func TestZeroVolumeBuyKeepsOffsetOpen(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.CommittedBudget = 1000 // 预算耗尽

	inst.Momentum = 3
	s.OnTick(tickAt("btcusdt", 105))

	assert.Empty(t, gw.submitted())
	assert.Equal(t, OffsetOpen, inst.Offset, "预算不足不应改变开平状态")
}

func TestProfitSellAfterDwellSetsLockout(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.AvgBuyPrice = 100
	inst.PositionVolume = 5
	inst.Offset = OffsetOpen

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	inst.BuyTime = base.Add(-10 * time.Minute) // 超过 5 分钟最短持有

	s.OnTick(tickAt("btcusdt", 106)) // 涨幅 6% > 止盈线 5%

	orders := gw.submitted()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.Equal(t, 5.0, orders[0].Volume)
	// max(current, 卖一 - tick) = max(106, 106.01-0.0001)
	assert.InDelta(t, 106.0099, orders[0].Price, 1e-9)

	assert.True(t, inst.Lockout)
	assert.Equal(t, OffsetUnknown, inst.Offset)
}

func TestProfitSellBlockedDuringDwell(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.AvgBuyPrice = 100
	inst.PositionVolume = 5
	inst.Offset = OffsetOpen

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	inst.BuyTime = base.Add(-1 * time.Minute) // 刚买入

	s.OnTick(tickAt("btcusdt", 106))

	assert.Empty(t, gw.submitted())
	assert.False(t, inst.Lockout)
}

func TestEmergencySellOnDeepDecline(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.BuyPrice = 95
	inst.AvgBuyPrice = 95
	inst.PositionVolume = 5
	inst.SellOrderID = "stale-sell"
	inst.Momentum = 10 // 动量状态不影响止损

	s.OnTick(tickAt("btcusdt", 85)) // 85 < 95*0.9

	assert.Equal(t, []string{"stale-sell"}, gw.canceled())
	orders := gw.submitted()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.Equal(t, 85.0, orders[0].Price)
	assert.Equal(t, 5.0, orders[0].Volume)

	assert.True(t, inst.Liquidating)
	assert.Equal(t, OffsetUnknown, inst.Offset)
}

func TestEmergencySellNotRepeatedWhileLiquidating(t *testing.T) {
	s, gw, inst := newTestStrategy()
	inst.BaselinePrice = 100
	inst.BuyPrice = 95
	inst.AvgBuyPrice = 95
	inst.PositionVolume = 5

	s.OnTick(tickAt("btcusdt", 85))
	s.OnTick(tickAt("btcusdt", 84))
	s.OnTick(tickAt("btcusdt", 83))

	assert.Len(t, gw.submitted(), 1, "清仓在途时不应重复提交止损")
}
