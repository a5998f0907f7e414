package domain

import "time"

// Tick 行情快照（外部引擎分发，单 symbol 串行）
type Tick struct {
	Symbol    string
	Exchange  string
	Last      float64 // 最新成交价
	BestBid   float64 // 买一价
	BestAsk   float64 // 卖一价
	BidVolume float64
	AskVolume float64
	Timestamp time.Time
}

// Valid 检查行情是否包含可用的最新价
func (t Tick) Valid() bool {
	return t.Last > 0
}
