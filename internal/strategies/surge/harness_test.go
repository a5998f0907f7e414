package surge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/betbot/surgebot/internal/domain"
	"github.com/betbot/surgebot/internal/ports"
)

// ---- 测试桩 ----

type submittedOrder struct {
	Symbol string
	Side   domain.Side
	Price  float64
	Volume float64
}

type fakeGateway struct {
	mu      sync.Mutex
	orders  []submittedOrder
	cancels []string
	nextID  int
	failAll bool
}

func (g *fakeGateway) submit(symbol string, side domain.Side, price, volume float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAll {
		return "", fmt.Errorf("gateway down")
	}
	g.nextID++
	g.orders = append(g.orders, submittedOrder{Symbol: symbol, Side: side, Price: price, Volume: volume})
	return fmt.Sprintf("order-%d", g.nextID), nil
}

func (g *fakeGateway) SubmitBuy(_ context.Context, symbol string, price, volume float64) (string, error) {
	return g.submit(symbol, domain.SideBuy, price, volume)
}

func (g *fakeGateway) SubmitSell(_ context.Context, symbol string, price, volume float64) (string, error) {
	return g.submit(symbol, domain.SideSell, price, volume)
}

func (g *fakeGateway) Cancel(_ context.Context, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancels = append(g.cancels, orderID)
	return nil
}

func (g *fakeGateway) submitted() []submittedOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]submittedOrder(nil), g.orders...)
}

func (g *fakeGateway) canceled() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.cancels...)
}

type fakeFeed struct {
	mu       sync.Mutex
	handlers map[string]ports.TickHandler
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{handlers: make(map[string]ports.TickHandler)}
}

func (f *fakeFeed) Subscribe(symbol string, h ports.TickHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[symbol] = h
	return nil
}

type fakeCatalog struct{ contracts []domain.Contract }

func (c *fakeCatalog) Contracts(context.Context) ([]domain.Contract, error) {
	return c.contracts, nil
}

type fakeHistory struct {
	mu   sync.Mutex
	bars map[string][]domain.Bar
	errs map[string]error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{bars: make(map[string][]domain.Bar), errs: make(map[string]error)}
}

func (h *fakeHistory) DailyBars(_ context.Context, symbol string, _ int) ([]domain.Bar, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.errs[symbol]; err != nil {
		return nil, err
	}
	return h.bars[symbol], nil
}

// ---- 构造器 ----

func testProfile() Profile {
	return Profile{
		Name:           "usdt",
		QuoteCurrency:  "usdt",
		FeeBudget:      1000,
		EntryThreshold: 0.02,
		EntryCeiling:   0.5,
		ExitThreshold:  0.05,
		WaitTime:       600,
	}
}

func testConfig() *Config {
	return &Config{
		Profiles:     []Profile{testProfile()},
		BaselineHour: 0,
	}
}

func testContract(symbol string) domain.Contract {
	return domain.Contract{
		Symbol:        symbol,
		Exchange:      "HUOBI",
		QuoteCurrency: "usdt",
		PriceTick:     0.0001,
		LotSize:       0.01,
		Partition:     "main",
	}
}

// newTestStrategy 组装一个已注册 btcusdt 的策略，时钟固定
func newTestStrategy() (*Strategy, *fakeGateway, *Instrument) {
	gw := &fakeGateway{}
	s, err := New(testConfig(), Dependencies{
		Feed:    newFakeFeed(),
		Gateway: gw,
		Catalog: &fakeCatalog{contracts: []domain.Contract{testContract("btcusdt")}},
		History: newFakeHistory(),
	})
	if err != nil {
		panic(err)
	}
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	inst := s.registry.Add(testContract("btcusdt"), &s.cfg.Profiles[0])
	return s, gw, inst
}

func tickAt(symbol string, last float64) domain.Tick {
	return domain.Tick{
		Symbol:    symbol,
		Exchange:  "HUOBI",
		Last:      last,
		BestBid:   last - 0.01,
		BestAsk:   last + 0.01,
		BidVolume: 10,
		AskVolume: 10,
		Timestamp: time.Now(),
	}
}
