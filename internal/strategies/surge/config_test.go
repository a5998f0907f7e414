package surge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5*time.Minute, cfg.DwellTime.Duration)
	assert.Equal(t, 5*time.Second, cfg.SupervisorInterval.Duration)
	assert.Equal(t, 30*time.Second, cfg.StartupTimeout.Duration)
}

func TestConfigValidateRejectsBadProfiles(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"空档位名", func(p *Profile) { p.Name = " " }},
		{"无筛选条件", func(p *Profile) { p.QuoteCurrency = ""; p.Symbols = nil }},
		{"预算为零", func(p *Profile) { p.FeeBudget = 0 }},
		{"入场下限为零", func(p *Profile) { p.EntryThreshold = 0 }},
		{"上限不高于下限", func(p *Profile) { p.EntryCeiling = p.EntryThreshold }},
		{"止盈线为零", func(p *Profile) { p.ExitThreshold = 0 }},
		{"等待窗口为零", func(p *Profile) { p.WaitTime = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg.Profiles[0])
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigValidateRejectsDuplicateProfileNames(t *testing.T) {
	cfg := testConfig()
	second := testProfile()
	second.QuoteCurrency = "btc"
	cfg.Profiles = append(cfg.Profiles, second) // 同名

	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsBadBaselineHour(t *testing.T) {
	for _, h := range []float64{-1, 24, 25.5} {
		cfg := testConfig()
		cfg.BaselineHour = h
		assert.Errorf(t, cfg.Validate(), "baseline_hour=%v", h)
	}
}

func TestProfileForExplicitSymbolsOverrideQuoteFilter(t *testing.T) {
	cfg := &Config{Profiles: []Profile{
		{Name: "picked", Symbols: []string{"ethusdt"}, FeeBudget: 500,
			EntryThreshold: 0.01, EntryCeiling: 0.3, ExitThreshold: 0.03, WaitTime: 300},
		{Name: "usdt", QuoteCurrency: "usdt", FeeBudget: 1000,
			EntryThreshold: 0.02, EntryCeiling: 0.5, ExitThreshold: 0.05, WaitTime: 600},
	}}
	require.NoError(t, cfg.Validate())

	// 显式列表优先命中
	assert.Equal(t, "picked", cfg.ProfileFor("ethusdt", "usdt").Name)
	assert.Equal(t, "usdt", cfg.ProfileFor("btcusdt", "usdt").Name)
	assert.Nil(t, cfg.ProfileFor("btceth", "eth"))
}

// 计价币种档位排在前面时，显式列表档位仍然优先，归属与配置顺序无关
func TestProfileForSymbolListWinsRegardlessOfOrder(t *testing.T) {
	cfg := &Config{Profiles: []Profile{
		{Name: "usdt", QuoteCurrency: "usdt", FeeBudget: 1000,
			EntryThreshold: 0.02, EntryCeiling: 0.5, ExitThreshold: 0.05, WaitTime: 600},
		{Name: "majors", Symbols: []string{"btcusdt", "ethusdt"}, FeeBudget: 2000,
			EntryThreshold: 0.01, EntryCeiling: 0.3, ExitThreshold: 0.03, WaitTime: 300},
	}}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "majors", cfg.ProfileFor("btcusdt", "usdt").Name)
	assert.Equal(t, "majors", cfg.ProfileFor("ethusdt", "usdt").Name)
	assert.Equal(t, "usdt", cfg.ProfileFor("dogeusdt", "usdt").Name)
}

func TestConfigUnmarshalYAML(t *testing.T) {
	raw := `
profiles:
  - name: usdt
    quote_currency: usdt
    fee_budget: 1000
    entry_threshold: 0.02
    entry_ceiling: 0.5
    exit_threshold: 0.05
    wait_time: 600
baseline_hour: 0.5
dwell_time: 3m
supervisor_interval: 5s
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.5, cfg.BaselineHour)
	assert.Equal(t, 3*time.Minute, cfg.DwellTime.Duration)
	assert.Equal(t, 600, cfg.Profiles[0].WaitTime)
}
