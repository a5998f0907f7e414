package surge

import (
	"sync"
	"time"
)

// Offset 开平状态：合约当前处于交易循环的哪个阶段
type Offset string

const (
	// OffsetOpen 允许开新仓
	OffsetOpen Offset = "open"
	// OffsetClose 买单已提交，等待成交，期间不再追买
	OffsetClose Offset = "close"
	// OffsetUnknown 卖单已提交，等待成交，期间不再卖出
	OffsetUnknown Offset = "unknown"
)

// Instrument 单个被监控合约的全部可变状态。
//
// 并发模型：行情回调、成交回调、超时监控、基线刷新、快照
// 都可能来自不同线程，所有读写必须持有本合约的锁；
// 持锁期间只允许发出网关请求，不等待任何网络回应。
type Instrument struct {
	mu sync.Mutex

	// 合约标识（启动后只读）
	Symbol    string  `json:"symbol"`
	Exchange  string  `json:"exchange"`
	PriceTick float64 `json:"price_tick"`
	LotSize   float64 `json:"lot_size"`
	Partition string  `json:"partition"`

	// 归属档位（启动后只读）
	Profile *Profile `json:"-"`

	// 行情状态
	BaselinePrice float64 `json:"baseline_price"`  // 当日基线（日K开盘价），0 表示尚未就绪
	LastPrice     float64 `json:"last_price"`      // 上一次参与评估的价格
	Momentum      int     `json:"momentum"`        // 动量计数：连涨加、回落减
	LastSellPrice float64 `json:"last_sell_price"` // 最近一次卖出成交价
	BestBid       float64 `json:"best_bid"`        // 最近行情的买一价
	BestAsk       float64 `json:"best_ask"`        // 最近行情的卖一价

	// 持仓状态
	AvgBuyPrice     float64 `json:"avg_buy_price"`    // 持仓均价（成交量加权），无持仓时为 0
	PositionVolume  float64 `json:"position_volume"`  // 持仓数量，任何时候 >= 0
	CommittedBudget float64 `json:"committed_budget"` // 当日已占用的买入预算（计价币种）

	// 订单状态
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
	BuyPrice    float64   `json:"buy_price"`
	BuyTime     time.Time `json:"buy_time"`
	WaitCount   int       `json:"wait_count"`  // 超时监控计数
	BuyPartial  bool      `json:"buy_partial"` // 买单处于部分成交状态
	Liquidating bool      `json:"liquidating"` // 止损/清仓卖单在途

	// 控制状态
	Offset  Offset `json:"offset"`
	Lockout bool   `json:"lockout"` // 当日止盈后禁止重新买入，基线刷新时清除

	// baselineReady 首次基线拉取成功后置位（启动就绪门，不持久化）
	baselineReady bool
}

// Lock 锁定合约状态
func (a *Instrument) Lock() { a.mu.Lock() }

// Unlock 解锁合约状态
func (a *Instrument) Unlock() { a.mu.Unlock() }

// effectivelyClosed 持仓相对预算是否可忽略（视为已平仓）。调用方必须持锁。
func (a *Instrument) effectivelyClosed() bool {
	if a.Profile == nil || a.Profile.FeeBudget <= 0 {
		return true
	}
	return a.AvgBuyPrice*a.PositionVolume/a.Profile.FeeBudget < closedRatio
}

// closedRatio 持仓价值/预算低于该比例时视为“有效平仓”
const closedRatio = 0.05
