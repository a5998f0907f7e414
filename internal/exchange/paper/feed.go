package paper

import (
	"fmt"
	"time"

	"github.com/betbot/surgebot/internal/domain"
	"github.com/betbot/surgebot/internal/ports"
)

// Subscribe 实现 ports.MarketDataFeed。重复订阅覆盖旧回调。
func (e *Exchange) Subscribe(symbol string, h ports.TickHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.prices[symbol]; !ok {
		return fmt.Errorf("未知合约: %s", symbol)
	}
	e.handlers[symbol] = h
	return nil
}

// Start 为每个合约启动一个随机游走行情线程
func (e *Exchange) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		log.Warn("模拟交易所已在运行")
		return
	}
	e.started = true
	e.mu.Unlock()

	for _, c := range e.cfg.Contracts {
		contract := c
		e.sg.Go(func() { e.walk(contract) })
	}
	log.Infof("模拟交易所启动，%d 个合约，行情间隔 %s", len(e.cfg.Contracts), e.cfg.TickInterval.Duration)
}

// Stop 停止行情并等待所有线程退出
func (e *Exchange) Stop() {
	close(e.stopC)
	e.sg.Wait()
	log.Info("模拟交易所已停止")
}

// walk 单合约的随机游走循环
func (e *Exchange) walk(contract domain.Contract) {
	ticker := time.NewTicker(e.cfg.TickInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopC:
			return
		case now := <-ticker.C:
			tick, handler := e.step(contract, now)
			if handler != nil {
				handler(tick)
			}
		}
	}
}

// step 推进一步价格并取出当前回调
func (e *Exchange) step(contract domain.Contract, now time.Time) (domain.Tick, ports.TickHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	price := e.prices[contract.Symbol]
	price *= 1 + e.cfg.Drift + e.cfg.Volatility*e.rng.NormFloat64()
	if price < contract.PriceTick {
		price = contract.PriceTick
	}
	e.prices[contract.Symbol] = price

	spread := contract.PriceTick
	if spread <= 0 {
		spread = price * 0.0001
	}
	tick := domain.Tick{
		Symbol:    contract.Symbol,
		Exchange:  contract.Exchange,
		Last:      price,
		BestBid:   price - spread,
		BestAsk:   price + spread,
		BidVolume: 100 + 100*e.rng.Float64(),
		AskVolume: 100 + 100*e.rng.Float64(),
		Timestamp: now,
	}
	return tick, e.handlers[contract.Symbol]
}
