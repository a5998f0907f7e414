package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/betbot/surgebot/internal/domain"
)

// SubmitBuy 实现 ports.OrderGateway。模拟盘即时全额成交，
// 买入手续费按成交数量计（火币现货口径：到手 = 数量 - 手续费）。
func (e *Exchange) SubmitBuy(ctx context.Context, symbol string, price, volume float64) (string, error) {
	return e.submit(ctx, symbol, domain.SideBuy, price, volume)
}

// SubmitSell 实现 ports.OrderGateway。卖出手续费按成交额计。
func (e *Exchange) SubmitSell(ctx context.Context, symbol string, price, volume float64) (string, error) {
	return e.submit(ctx, symbol, domain.SideSell, price, volume)
}

func (e *Exchange) submit(ctx context.Context, symbol string, side domain.Side, price, volume float64) (string, error) {
	if price <= 0 || volume <= 0 {
		return "", fmt.Errorf("非法委托参数: price=%v volume=%v", price, volume)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("下单限频等待被取消: %w", err)
	}

	order := domain.Order{
		OrderID:   uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Volume:    volume,
		Status:    domain.OrderStatusOpen,
		CreatedAt: time.Now(),
	}
	e.mu.Lock()
	e.orders[order.OrderID] = order
	e.mu.Unlock()

	log.Debugf("%s 收到委托 %s %v@%v (orderID=%s)", symbol, side, volume, price, order.OrderID)

	// 回报走异步线程，模拟真实网关的时序
	e.sg.Go(func() { e.fill(order) })
	return order.OrderID, nil
}

// Cancel 实现 ports.OrderGateway。已成交的委托不可撤。
func (e *Exchange) Cancel(_ context.Context, orderID string) error {
	e.mu.Lock()
	order, ok := e.orders[orderID]
	if ok && order.IsActive() {
		order.Status = domain.OrderStatusCanceled
		e.orders[orderID] = order
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("委托不存在: %s", orderID)
	}
	if order.Status != domain.OrderStatusCanceled {
		return fmt.Errorf("委托已终态，不可撤销: %s (%s)", orderID, order.Status)
	}
	if e.events != nil {
		e.sg.Go(func() { e.events.OnOrder(order) })
	}
	return nil
}

// fill 即时全额成交一笔委托并派发回报
func (e *Exchange) fill(order domain.Order) {
	e.mu.Lock()
	stored, ok := e.orders[order.OrderID]
	if !ok || stored.Status != domain.OrderStatusOpen {
		// 已被撤销
		e.mu.Unlock()
		return
	}
	stored.Status = domain.OrderStatusFilled
	stored.FilledSize = stored.Volume
	e.orders[order.OrderID] = stored
	e.mu.Unlock()

	fees := stored.Volume * e.cfg.FeeRate
	if stored.Side == domain.SideSell {
		fees = stored.Volume * stored.Price * e.cfg.FeeRate
	}
	fill := domain.Fill{
		TradeID:   uuid.NewString(),
		OrderID:   stored.OrderID,
		Symbol:    stored.Symbol,
		Side:      stored.Side,
		Price:     stored.Price,
		Volume:    stored.Volume,
		Fees:      fees,
		Timestamp: time.Now(),
	}

	if e.events != nil {
		e.events.OnOrder(stored)
	}
	if e.fills != nil {
		e.fills.OnFill(fill)
	}
	log.Debugf("%s 委托成交 %s %v@%v 手续费:%v", stored.Symbol, stored.Side, stored.Volume, stored.Price, fees)
}
