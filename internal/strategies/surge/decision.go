package surge

import (
	"context"

	"github.com/betbot/surgebot/internal/domain"
	"github.com/betbot/surgebot/pkg/marketmath"
)

// 决策常量
const (
	// momentumGate 动量计数超过该值才允许买入（连续第3根上涨行情触发）
	momentumGate = 2
	// stopLossRatio 最新价跌破买入价的该比例时紧急止损
	stopLossRatio = 0.9
	// reentryFraction 重新入场保护：距上次卖价的回撤不足
	// （卖价-均价）的 1/3 时放弃买入，避免卖出后原地接回
	reentryFraction = 3.0
)

// OnTick 行情驱动的状态机。由外部分发线程按 symbol 串行调用；
// 整个评估过程持有该合约的锁。
func (s *Strategy) OnTick(tick domain.Tick) {
	inst, ok := s.registry.Get(tick.Symbol)
	if !ok || !tick.Valid() {
		return
	}

	inst.Lock()
	defer inst.Unlock()

	// 基线未就绪：静默忽略，等下一次基线刷新
	if inst.BaselinePrice == 0 {
		return
	}

	current := tick.Last
	inst.BestBid = tick.BestBid
	inst.BestAsk = tick.BestAsk

	// 回落：惩罚动量；深跌触发紧急止损（优先于一切动量评估）
	if current <= inst.BaselinePrice {
		inst.Momentum--
		if inst.PositionVolume > 0 && !inst.Liquidating && inst.BuyPrice > 0 &&
			current < inst.BuyPrice*stopLossRatio {
			s.emergencySell(inst, current)
		}
		return
	}

	increase := (current - inst.BaselinePrice) / inst.BaselinePrice
	prof := inst.Profile

	// 买入路径：涨幅在观察带内且仍在上行
	if increase > prof.EntryThreshold && increase < prof.EntryCeiling && current > inst.LastPrice {
		inst.Momentum++
		if inst.Momentum > momentumGate && inst.Offset == OffsetOpen && !inst.Lockout {
			if s.tryBuy(inst, current, tick.BestAsk) {
				// 买单已发，本次行情不再评估卖出
				return
			}
		}
	}

	// 卖出路径
	inst.LastPrice = current
	s.tryProfitSell(inst, current, tick.BestAsk)
}

// tryBuy 评估并提交买单。返回 true 表示已提交。调用方持锁。
func (s *Strategy) tryBuy(inst *Instrument, current, bestAsk float64) bool {
	prof := inst.Profile

	price := current
	if bestAsk > 0 && bestAsk < price {
		price = bestAsk
	}

	// 重新入场保护：刚卖出后价格还没跌开，不接回
	if inst.LastSellPrice > 0 {
		floor := inst.LastSellPrice - (inst.LastSellPrice-inst.AvgBuyPrice)/reentryFraction
		if price >= floor {
			log.Debugf("%s 距上次卖价 %v 回撤不足，放弃买入 (price=%v floor=%v)",
				inst.Symbol, inst.LastSellPrice, price, floor)
			return false
		}
	}

	volume := marketmath.RoundHalfDown((prof.FeeBudget-inst.CommittedBudget)/price, inst.LotSize)
	if volume <= 0 {
		// 预算不足：不下单，保持 OPEN 等待下一次满足条件的行情重试
		log.Infof("%s 预算不足，放弃买入 (budget=%v committed=%v price=%v)",
			inst.Symbol, prof.FeeBudget, inst.CommittedBudget, price)
		return false
	}

	orderID, err := s.gateway.SubmitBuy(context.Background(), inst.Symbol, price, volume)
	if err != nil {
		log.Errorf("%s 买入委托失败: %v (price=%v volume=%v)", inst.Symbol, err, price, volume)
		return false
	}

	inst.BuyOrderID = orderID
	inst.BuyPrice = price
	inst.BuyTime = s.now()
	inst.BuyPartial = false
	inst.CommittedBudget += marketmath.MulRound8(volume, price)
	inst.Offset = OffsetClose

	log.Infof("%s 合约执行买入，买入价格:%v 数量:%v 动量:%d 涨幅基线:%v",
		inst.Symbol, price, volume, inst.Momentum, inst.BaselinePrice)
	return true
}

// tryProfitSell 止盈评估。调用方持锁。
func (s *Strategy) tryProfitSell(inst *Instrument, current, bestAsk float64) {
	prof := inst.Profile

	if inst.AvgBuyPrice <= 0 || inst.Offset == OffsetUnknown {
		return
	}
	if (current-inst.AvgBuyPrice)/inst.AvgBuyPrice <= prof.ExitThreshold {
		return
	}
	// 最少持有时间：刚买入立刻止盈容易被手续费吃掉
	if s.now().Sub(inst.BuyTime) < s.cfg.DwellTime.Duration {
		return
	}

	volume := marketmath.RoundHalfDown(inst.PositionVolume, inst.LotSize)
	if volume <= 0 {
		return
	}

	// 挂单价：不低于卖一减一个最小变动价位
	price := current
	if bestAsk > 0 && bestAsk-inst.PriceTick > price {
		price = bestAsk - inst.PriceTick
	}

	orderID, err := s.gateway.SubmitSell(context.Background(), inst.Symbol, price, volume)
	if err != nil {
		log.Errorf("%s 止盈委托失败: %v (price=%v volume=%v)", inst.Symbol, err, price, volume)
		return
	}

	inst.SellOrderID = orderID
	inst.Lockout = true // 当日止盈后不再买入，次日基线刷新解除
	inst.Offset = OffsetUnknown

	log.Infof("%s 合约委托卖出，卖出价格:%v 数量:%v 均价:%v", inst.Symbol, price, volume, inst.AvgBuyPrice)
}

// emergencySell 紧急止损：撤掉在途卖单，以当前价全仓卖出。调用方持锁。
func (s *Strategy) emergencySell(inst *Instrument, current float64) {
	if inst.SellOrderID != "" {
		if err := s.gateway.Cancel(context.Background(), inst.SellOrderID); err != nil {
			log.Warnf("%s 撤销原卖单失败: %v (orderID=%s)", inst.Symbol, err, inst.SellOrderID)
		}
		inst.SellOrderID = ""
	}

	volume := marketmath.RoundHalfDown(inst.PositionVolume, inst.LotSize)
	if volume <= 0 {
		return
	}

	orderID, err := s.gateway.SubmitSell(context.Background(), inst.Symbol, current, volume)
	if err != nil {
		log.Errorf("%s 止损委托失败: %v (price=%v volume=%v)", inst.Symbol, err, current, volume)
		return
	}

	inst.SellOrderID = orderID
	inst.Liquidating = true
	inst.Offset = OffsetUnknown

	log.Warnf("%s 合约触发止损，卖出价格:%v 数量:%v 买入价:%v", inst.Symbol, current, volume, inst.BuyPrice)
}
