package ports

import (
	"context"

	"github.com/betbot/surgebot/internal/domain"
)

// Shared, small interfaces for the strategy core to depend on.
// 交易所连接层（行情/下单/目录/历史）都是外部协作方，核心只依赖这些接口。

// TickHandler 行情回调。由外部分发线程同步调用。
type TickHandler func(tick domain.Tick)

// MarketDataFeed 行情订阅
type MarketDataFeed interface {
	// Subscribe 注册一个 symbol 的行情回调；重复订阅覆盖旧回调
	Subscribe(symbol string, h TickHandler) error
}

// OrderGateway 订单网关。提交/撤销只负责发出请求，
// 成交与订单回报通过异步回调（Strategy.OnFill / Strategy.OnOrder）送达。
type OrderGateway interface {
	SubmitBuy(ctx context.Context, symbol string, price, volume float64) (orderID string, err error)
	SubmitSell(ctx context.Context, symbol string, price, volume float64) (orderID string, err error)
	Cancel(ctx context.Context, orderID string) error
}

// CatalogQuery 合约目录查询
type CatalogQuery interface {
	Contracts(ctx context.Context) ([]domain.Contract, error)
}

// HistoryQuery 历史K线查询。返回按时间升序排列的日K线。
type HistoryQuery interface {
	DailyBars(ctx context.Context, symbol string, n int) ([]domain.Bar, error)
}

// FillHandler 成交回调
type FillHandler interface {
	OnFill(fill domain.Fill)
}

// OrderHandler 订单状态回调
type OrderHandler interface {
	OnOrder(order domain.Order)
}
