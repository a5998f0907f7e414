package domain

import "strings"

// Contract 合约领域模型（来自交易所合约目录查询）
type Contract struct {
	Symbol        string  `yaml:"symbol" json:"symbol"`                 // 交易对代码，例如 btcusdt
	Exchange      string  `yaml:"exchange" json:"exchange"`             // 交易所名称
	BaseCurrency  string  `yaml:"base_currency" json:"base_currency"`   // 基础币种，例如 btc
	QuoteCurrency string  `yaml:"quote_currency" json:"quote_currency"` // 计价币种，例如 usdt
	PriceTick     float64 `yaml:"price_tick" json:"price_tick"`         // 最小价格变动单位
	LotSize       float64 `yaml:"lot_size" json:"lot_size"`             // 最小下单数量单位
	Partition     string  `yaml:"partition" json:"partition"`           // 市场分区（main/innovation/bios 等）
}

// VtSymbol 返回“代码.交易所”形式的全局唯一标识
func (c Contract) VtSymbol() string {
	return c.Symbol + "." + c.Exchange
}

// MatchQuote 检查合约计价币种是否匹配（大小写不敏感）
func (c Contract) MatchQuote(quote string) bool {
	return strings.EqualFold(c.QuoteCurrency, quote)
}

// Bar 日K线（基线刷新只消费最近一根的开盘价）
type Bar struct {
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Timestamp 为K线起始时间的 Unix 秒
	Timestamp int64
}
