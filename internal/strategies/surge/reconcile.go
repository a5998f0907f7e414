package surge

import (
	"github.com/betbot/surgebot/internal/domain"
	"github.com/betbot/surgebot/pkg/marketmath"
)

// OnFill 成交回报：维护加权均价、持仓量和已占用预算。
// 手续费以币计：买入实际到手 = 成交量 - 手续费。
func (s *Strategy) OnFill(fill domain.Fill) {
	inst, ok := s.registry.Get(fill.Symbol)
	if !ok {
		return
	}

	inst.Lock()
	defer inst.Unlock()

	switch fill.Side {
	case domain.SideBuy:
		s.applyBuyFill(inst, fill)
	case domain.SideSell:
		s.applySellFill(inst, fill)
	}
}

// applyBuyFill 买入成交。调用方持锁。
func (s *Strategy) applyBuyFill(inst *Instrument, fill domain.Fill) {
	netVolume := fill.Volume - fill.Fees
	if netVolume <= 0 {
		log.Warnf("%s 买入成交量不足以覆盖手续费 (volume=%v fees=%v)", inst.Symbol, fill.Volume, fill.Fees)
		return
	}

	total := inst.AvgBuyPrice*inst.PositionVolume + fill.Volume*fill.Price
	inst.PositionVolume += netVolume
	inst.AvgBuyPrice = total / inst.PositionVolume

	// 买入成交后回到 OPEN，允许继续加仓直至预算用尽
	inst.Offset = OffsetOpen

	log.Infof("%s 买入成交，价格:%v 数量:%v 均价:%v 持仓:%v",
		inst.Symbol, fill.Price, fill.Volume, inst.AvgBuyPrice, inst.PositionVolume)
}

// applySellFill 卖出成交。调用方持锁。
func (s *Strategy) applySellFill(inst *Instrument, fill domain.Fill) {
	if fill.Volume >= inst.PositionVolume {
		// 全部卖出：均价清零，持仓归零
		inst.PositionVolume = 0
		inst.AvgBuyPrice = 0
		inst.WaitCount = 0
	} else {
		// 部分卖出：均价不变（已知的近似处理）
		inst.PositionVolume -= fill.Volume
	}
	inst.LastSellPrice = fill.Price

	// 释放预算；不够减说明该笔有盈利
	released := marketmath.MulRound8(fill.Volume, fill.Price) - fill.Fees
	if released >= inst.CommittedBudget {
		log.Infof("%s 卖出释放 %v 超出占用预算 %v，实现盈利 %v",
			inst.Symbol, released, inst.CommittedBudget, marketmath.Round8(released-inst.CommittedBudget))
		inst.CommittedBudget = 0
	} else {
		inst.CommittedBudget -= released
	}

	log.Infof("%s 卖出成交，价格:%v 数量:%v 剩余持仓:%v", inst.Symbol, fill.Price, fill.Volume, inst.PositionVolume)

	// 持仓相对预算可忽略即视为已平仓，重新武装
	if inst.effectivelyClosed() {
		inst.Momentum = 0
		inst.Offset = OffsetOpen
		inst.Liquidating = false
		inst.BuyOrderID = ""
		inst.SellOrderID = ""
	}
}

// OnOrder 委托状态回报：跟踪在途委托的撤销和部分成交。
func (s *Strategy) OnOrder(order domain.Order) {
	inst, ok := s.registry.Get(order.Symbol)
	if !ok {
		return
	}

	inst.Lock()
	defer inst.Unlock()

	switch order.OrderID {
	case inst.BuyOrderID:
		if order.IsPartiallyFilled() {
			inst.BuyPartial = true
		}
		switch order.Status {
		case domain.OrderStatusFilled:
			inst.BuyOrderID = ""
			inst.BuyPartial = false
		case domain.OrderStatusCanceled, domain.OrderStatusRejected:
			inst.BuyOrderID = ""
			inst.BuyPartial = false
			// 买单撤销：释放未成交部分占用的预算并允许重新开仓
			unfilled := order.Volume - order.FilledSize
			if unfilled > 0 {
				refund := marketmath.MulRound8(unfilled, order.Price)
				if refund > inst.CommittedBudget {
					refund = inst.CommittedBudget
				}
				inst.CommittedBudget -= refund
			}
			inst.Offset = OffsetOpen
			log.Infof("%s 买单已撤销 (orderID=%s filled=%v/%v)", inst.Symbol, order.OrderID, order.FilledSize, order.Volume)
		}
	case inst.SellOrderID:
		switch order.Status {
		case domain.OrderStatusFilled:
			inst.SellOrderID = ""
		case domain.OrderStatusCanceled, domain.OrderStatusRejected:
			inst.SellOrderID = ""
			log.Infof("%s 卖单已撤销 (orderID=%s)", inst.Symbol, order.OrderID)
		}
	}
}
