package surge

import (
	"fmt"
	"strings"
	"time"

	"github.com/betbot/surgebot/internal/strategies/common"
)

const ID = "surge"

// Profile 一组独立参数化的监控档位。
// 不同档位作用于互不相交的合约集合（按计价币种或显式列表划分），
// 替代旧实现里复制粘贴的“参数组1/参数组2”。
type Profile struct {
	Name          string   `yaml:"name" json:"name"`
	QuoteCurrency string   `yaml:"quote_currency" json:"quote_currency"` // 按计价币种筛选合约
	Symbols       []string `yaml:"symbols" json:"symbols"`               // 可选：显式合约列表，优先于计价币种筛选

	FeeBudget      float64 `yaml:"fee_budget" json:"fee_budget"`           // 单合约每日可投入的计价币种预算
	EntryThreshold float64 `yaml:"entry_threshold" json:"entry_threshold"` // 入场涨幅下限（相对基线，小数）
	EntryCeiling   float64 `yaml:"entry_ceiling" json:"entry_ceiling"`     // 入场涨幅上限（超过视为追高，放弃）
	ExitThreshold  float64 `yaml:"exit_threshold" json:"exit_threshold"`   // 止盈涨幅（相对持仓均价，小数）
	WaitTime       int     `yaml:"wait_time" json:"wait_time"`             // 等待窗口（监控周期数），超时撤单/清仓
}

// Validate 参数校验。配置错误直接失败，不监控任何合约。
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("档位名不能为空")
	}
	if strings.TrimSpace(p.QuoteCurrency) == "" && len(p.Symbols) == 0 {
		return fmt.Errorf("档位 %s: quote_currency 与 symbols 不能同时为空", p.Name)
	}
	if p.FeeBudget <= 0 {
		return fmt.Errorf("档位 %s: fee_budget 必须 > 0", p.Name)
	}
	if p.EntryThreshold <= 0 {
		return fmt.Errorf("档位 %s: entry_threshold 必须 > 0", p.Name)
	}
	if p.EntryCeiling <= p.EntryThreshold {
		return fmt.Errorf("档位 %s: entry_ceiling 必须 > entry_threshold", p.Name)
	}
	if p.ExitThreshold <= 0 {
		return fmt.Errorf("档位 %s: exit_threshold 必须 > 0", p.Name)
	}
	if p.WaitTime <= 0 {
		return fmt.Errorf("档位 %s: wait_time 必须 > 0", p.Name)
	}
	return nil
}

// Match 检查合约是否归属本档位
func (p *Profile) Match(symbol, quoteCurrency string) bool {
	for _, s := range p.Symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	if len(p.Symbols) > 0 {
		return false
	}
	return strings.EqualFold(p.QuoteCurrency, quoteCurrency)
}

// Config 策略配置
type Config struct {
	Profiles []Profile `yaml:"profiles" json:"profiles"`

	BaselineHour       float64         `yaml:"baseline_hour" json:"baseline_hour"`             // 每日基线刷新的小时偏移 [0,24)
	DwellTime          common.Duration `yaml:"dwell_time" json:"dwell_time"`                   // 买入后至少持有多久才允许止盈（默认5m）
	SupervisorInterval common.Duration `yaml:"supervisor_interval" json:"supervisor_interval"` // 超时监控周期（默认5s）
	StartupTimeout     common.Duration `yaml:"startup_timeout" json:"startup_timeout"`         // 启动时等待基线就绪的上限（默认30s）
}

// GetName 实现 StrategyConfig 接口
func (c *Config) GetName() string { return ID }

// Validate 校验并填默认值
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("配置为空")
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("至少需要一个监控档位")
	}
	seen := make(map[string]struct{}, len(c.Profiles))
	for i := range c.Profiles {
		if err := c.Profiles[i].Validate(); err != nil {
			return err
		}
		name := strings.ToLower(c.Profiles[i].Name)
		if _, ok := seen[name]; ok {
			return fmt.Errorf("档位名重复: %s", c.Profiles[i].Name)
		}
		seen[name] = struct{}{}
	}
	if c.BaselineHour < 0 || c.BaselineHour >= 24 {
		return fmt.Errorf("baseline_hour 必须在 [0,24) 内")
	}
	if c.DwellTime.Duration == 0 {
		c.DwellTime.Duration = 5 * time.Minute
	}
	if c.SupervisorInterval.Duration == 0 {
		c.SupervisorInterval.Duration = 5 * time.Second
	}
	if c.StartupTimeout.Duration == 0 {
		c.StartupTimeout.Duration = 30 * time.Second
	}
	return nil
}

// ProfileFor 返回合约归属的档位；nil 表示不监控。
// 显式列出合约的档位优先于按计价币种筛选的档位，与配置顺序无关。
func (c *Config) ProfileFor(symbol, quoteCurrency string) *Profile {
	for i := range c.Profiles {
		if len(c.Profiles[i].Symbols) > 0 && c.Profiles[i].Match(symbol, quoteCurrency) {
			return &c.Profiles[i]
		}
	}
	for i := range c.Profiles {
		if len(c.Profiles[i].Symbols) == 0 && c.Profiles[i].Match(symbol, quoteCurrency) {
			return &c.Profiles[i]
		}
	}
	return nil
}
