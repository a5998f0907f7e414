package surge

import (
	"context"

	"github.com/betbot/surgebot/pkg/marketmath"
)

// timeoutPremium 无买方承接时按均价上浮的限价系数，覆盖来回手续费
const timeoutPremium = 1.005

// supervise 超时巡检：由调度器按固定间隔驱动，与行情到达无关。
// 持仓合约累加等待计数，达到 WaitTime 后强制离场；
// 无持仓但买单长挂的合约直接撤单。
func (s *Strategy) supervise() {
	for _, inst := range s.registry.All() {
		inst.Lock()
		s.superviseOne(inst)
		inst.Unlock()
	}
}

// superviseOne 处理单个合约。调用方持锁。
func (s *Strategy) superviseOne(inst *Instrument) {
	prof := inst.Profile

	if inst.PositionVolume <= 0 {
		// 无持仓：只盯超时未成交的买单
		if inst.BuyOrderID != "" {
			inst.WaitCount++
			if inst.WaitCount >= prof.WaitTime {
				s.cancelStaleBuy(inst)
				inst.Offset = OffsetOpen
				inst.WaitCount = 0
			}
		}
		return
	}

	inst.WaitCount++
	if inst.WaitCount < prof.WaitTime {
		return
	}

	// 买单部分成交还挂着：先撤，剩余持仓留给下一轮处理
	if inst.BuyOrderID != "" && inst.BuyPartial {
		s.cancelStaleBuy(inst)
		return
	}

	// 卖单已在途：本轮不再动作
	if inst.Offset == OffsetUnknown {
		return
	}

	volume := marketmath.RoundHalfDown(inst.PositionVolume, inst.LotSize)
	if volume <= 0 {
		return
	}

	// 买一价高于均价直接吃单离场，否则按均价上浮挂限价
	price := inst.BestBid
	if price < inst.AvgBuyPrice {
		price = marketmath.MulRoundHalfDown(inst.AvgBuyPrice, timeoutPremium, inst.PriceTick)
	}

	inst.Offset = OffsetClose
	orderID, err := s.gateway.SubmitSell(context.Background(), inst.Symbol, price, volume)
	if err != nil {
		log.Errorf("%s 超时卖出委托失败: %v (price=%v volume=%v)", inst.Symbol, err, price, volume)
		return
	}

	inst.SellOrderID = orderID
	inst.WaitCount = 0

	log.Warnf("%s 持仓超时，强制卖出 价格:%v 数量:%v 均价:%v 等待:%d 个周期",
		inst.Symbol, price, volume, inst.AvgBuyPrice, prof.WaitTime)
}

// cancelStaleBuy 撤销超时买单。调用方持锁。
func (s *Strategy) cancelStaleBuy(inst *Instrument) {
	if err := s.gateway.Cancel(context.Background(), inst.BuyOrderID); err != nil {
		log.Warnf("%s 撤销超时买单失败: %v (orderID=%s)", inst.Symbol, err, inst.BuyOrderID)
		return
	}
	log.Infof("%s 撤销超时买单 (orderID=%s)", inst.Symbol, inst.BuyOrderID)
}
