// Package paper 提供一个进程内的模拟交易所：
// 随机游走行情 + 即时成交的订单网关 + 合成日K，
// 用于在不接真实交易所的情况下跑通整套策略。
package paper

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/surgebot/internal/domain"
	"github.com/betbot/surgebot/internal/ports"
	"github.com/betbot/surgebot/internal/strategies/common"
	"github.com/betbot/surgebot/pkg/cache"
	"github.com/betbot/surgebot/pkg/ratelimit"
	"github.com/betbot/surgebot/pkg/syncgroup"
)

var log = logrus.WithField("gateway", "paper")

// Config 模拟交易所参数
type Config struct {
	Contracts []domain.Contract `yaml:"contracts" json:"contracts"`

	FeeRate      float64         `yaml:"fee_rate" json:"fee_rate"`           // 成交手续费率（默认 0.002）
	TickInterval common.Duration `yaml:"tick_interval" json:"tick_interval"` // 行情推送间隔（默认 1s）
	Volatility   float64         `yaml:"volatility" json:"volatility"`       // 单步波动率（默认 0.01）
	Drift        float64         `yaml:"drift" json:"drift"`                 // 单步漂移（默认 0.002，正值模拟拉升）
	InitialPrice float64         `yaml:"initial_price" json:"initial_price"` // 起始价（默认 100）
	Seed         int64           `yaml:"seed" json:"seed"`                   // 随机种子，0 取当前时间

	// OrderRate 下单频率限制（次/秒），模拟交易所限频
	OrderRate int `yaml:"order_rate" json:"order_rate"`
}

func (c *Config) withDefaults() {
	if c.FeeRate == 0 {
		c.FeeRate = 0.002
	}
	if c.TickInterval.Duration == 0 {
		c.TickInterval.Duration = time.Second
	}
	if c.Volatility == 0 {
		c.Volatility = 0.01
	}
	if c.Drift == 0 {
		c.Drift = 0.002
	}
	if c.InitialPrice == 0 {
		c.InitialPrice = 100
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.OrderRate == 0 {
		c.OrderRate = 10
	}
}

// Exchange 模拟交易所。同时充当行情源、订单网关、目录和历史查询。
type Exchange struct {
	cfg Config

	mu       sync.Mutex
	prices   map[string]float64
	handlers map[string]ports.TickHandler
	orders   map[string]domain.Order
	rng      *rand.Rand

	fills  ports.FillHandler
	events ports.OrderHandler

	limiter  *ratelimit.TokenBucket
	barCache *cache.InMemoryCache[string, []domain.Bar]

	sg      *syncgroup.SyncGroup
	stopC   chan struct{}
	started bool
}

// New 创建模拟交易所
func New(cfg Config) *Exchange {
	cfg.withDefaults()
	e := &Exchange{
		cfg:      cfg,
		prices:   make(map[string]float64),
		handlers: make(map[string]ports.TickHandler),
		orders:   make(map[string]domain.Order),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		limiter:  ratelimit.NewTokenBucket(cfg.OrderRate, cfg.OrderRate),
		barCache: cache.New[string, []domain.Bar](time.Hour),
		sg:       syncgroup.New(),
		stopC:    make(chan struct{}),
	}
	for _, c := range cfg.Contracts {
		e.prices[c.Symbol] = e.initialPrice(c.Symbol)
	}
	return e
}

// SetHandlers 注册成交/订单回报的接收方（通常就是策略本体）
func (e *Exchange) SetHandlers(fills ports.FillHandler, events ports.OrderHandler) {
	e.fills = fills
	e.events = events
}

// Contracts 实现 ports.CatalogQuery
func (e *Exchange) Contracts(context.Context) ([]domain.Contract, error) {
	return append([]domain.Contract(nil), e.cfg.Contracts...), nil
}

// DailyBars 实现 ports.HistoryQuery：按合约合成日K并缓存
func (e *Exchange) DailyBars(_ context.Context, symbol string, n int) ([]domain.Bar, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n 必须 > 0")
	}
	key := fmt.Sprintf("%s:%d", symbol, n)
	if bars, ok := e.barCache.Get(key); ok {
		return bars, nil
	}

	e.mu.Lock()
	base, ok := e.prices[symbol]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("未知合约: %s", symbol)
	}

	// 从今天往回推 n 根，开盘价围绕当前价做确定性扰动
	rng := rand.New(rand.NewSource(e.cfg.Seed ^ int64(symbolHash(symbol))))
	bars := make([]domain.Bar, n)
	day := time.Now().Truncate(24 * time.Hour).Add(-time.Duration(n-1) * 24 * time.Hour)
	price := base * (1 - e.cfg.Volatility*float64(n))
	for i := range bars {
		open := price * (1 + e.cfg.Volatility*(rng.Float64()-0.5))
		settle := open * (1 + e.cfg.Drift)
		bars[i] = domain.Bar{
			Symbol: symbol, Open: open,
			High:      open * (1 + e.cfg.Volatility),
			Low:       open * (1 - e.cfg.Volatility),
			Close:     settle,
			Volume:    1000 + 1000*rng.Float64(),
			Timestamp: day.Add(time.Duration(i) * 24 * time.Hour).Unix(),
		}
		price = settle
	}
	e.barCache.Set(key, bars, 0)
	return bars, nil
}

// initialPrice 给每个合约一个由种子决定的起始价，避免全部从同一价格起步
func (e *Exchange) initialPrice(symbol string) float64 {
	spread := float64(symbolHash(symbol)%100) / 100
	return e.cfg.InitialPrice * (0.5 + spread)
}

func symbolHash(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}
