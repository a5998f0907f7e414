package surge

import "context"

// refreshBaselines 每日基线刷新：逐合约拉取最近一根日线，
// 把开盘价写入基线，并清掉所有日内状态（上次卖价/动量/锁定）。
// 单个合约拉取失败只记日志，不影响其他合约。
func (s *Strategy) refreshBaselines(ctx context.Context) {
	instruments := s.registry.All()

	for _, inst := range instruments {
		bars, err := s.history.DailyBars(ctx, inst.Symbol, 1)
		if err != nil || len(bars) == 0 {
			log.Warnf("%s 获取日线失败: %v", inst.Symbol, err)
			continue
		}

		bar := bars[len(bars)-1]

		inst.Lock()
		inst.BaselinePrice = bar.Open
		inst.LastSellPrice = 0
		inst.Momentum = 0
		inst.Lockout = false
		inst.baselineReady = true
		inst.Unlock()

		log.Infof("%s 刷新基线价格:%v", inst.Symbol, bar.Open)
	}

	ready := 0
	for _, inst := range instruments {
		inst.Lock()
		if inst.baselineReady {
			ready++
		}
		inst.Unlock()
	}

	log.Infof("基线刷新完成，%d/%d 个合约就绪", ready, len(instruments))

	if ready == len(instruments) && ready > 0 {
		s.readyC.Emit()
	}
}
