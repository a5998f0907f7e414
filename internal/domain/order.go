package domain

import "time"

// Side 订单方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"  // 已提交，未收到回报
	OrderStatusOpen     OrderStatus = "open"     // 挂单中
	OrderStatusPartial  OrderStatus = "partial"  // 部分成交
	OrderStatusFilled   OrderStatus = "filled"   // 全部成交
	OrderStatusCanceled OrderStatus = "canceled" // 已取消
	OrderStatusRejected OrderStatus = "rejected" // 被拒绝
)

// Order 订单回报（来自订单网关的异步通知）
type Order struct {
	OrderID    string
	Symbol     string
	Side       Side
	Price      float64
	Volume     float64 // 委托数量
	FilledSize float64 // 累计成交数量
	Status     OrderStatus
	CreatedAt  time.Time
}

// IsActive 检查订单是否仍然活动（可被撤单）
func (o Order) IsActive() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusOpen, OrderStatusPartial:
		return true
	}
	return false
}

// IsPartiallyFilled 检查订单是否处于部分成交状态
func (o Order) IsPartiallyFilled() bool {
	return o.Status == OrderStatusPartial && o.FilledSize > 0 && o.FilledSize < o.Volume
}

// Fill 成交回报。
// 注意：Volume 为本次成交数量，Fees 为以成交币种计的手续费
// （买入时手续费从成交数量中扣除，这是火币现货的计费口径）。
type Fill struct {
	TradeID   string
	OrderID   string
	Symbol    string
	Side      Side
	Price     float64
	Volume    float64
	Fees      float64
	Timestamp time.Time
}
