package surge

import (
	"errors"

	"github.com/betbot/surgebot/pkg/persistence"
)

const (
	snapshotVersion = 1
	snapshotPrefix  = "analyse"
)

// snapshot 注册表的持久化镜像，按自然日键控。
// 只在同一天内恢复：隔天的持仓预算、锁定标志早已失效。
type snapshot struct {
	Version     int           `json:"version"`
	Date        string        `json:"date"` // ISO 日期，如 2026-08-28
	Instruments []*Instrument `json:"instruments"`
}

// snapshotTag 当日快照的存储标签，形如 analyse_2026-08-28
func (s *Strategy) snapshotTag() string {
	return snapshotPrefix + "_" + s.now().Format("2006-01-02")
}

// SaveSnapshot 序列化整个注册表。逐个持锁拷贝，写入当日键。
func (s *Strategy) SaveSnapshot() error {
	if s.persist == nil {
		return nil
	}

	snap := &snapshot{
		Version: snapshotVersion,
		Date:    s.now().Format("2006-01-02"),
	}
	for _, inst := range s.registry.All() {
		inst.Lock()
		cp := &Instrument{}
		copyInstrumentState(cp, inst)
		cp.Symbol = inst.Symbol
		cp.Exchange = inst.Exchange
		cp.PriceTick = inst.PriceTick
		cp.LotSize = inst.LotSize
		cp.Partition = inst.Partition
		inst.Unlock()
		snap.Instruments = append(snap.Instruments, cp)
	}

	store := s.persist.NewStore(snapshotPrefix, ID, s.snapshotTag())
	if err := store.Save(snap); err != nil {
		return err
	}
	log.Infof("快照已保存，%d 个合约 (tag=%s)", len(snap.Instruments), s.snapshotTag())
	return nil
}

// restoreSnapshot 恢复当日快照并合并进注册表。
// 只认当天的键：跨天的快照留在磁盘上但不会被读到。
// 快照里有、目录里没有的合约直接丢弃（已下架或档位调整）。
func (s *Strategy) restoreSnapshot() {
	if s.persist == nil {
		return
	}

	store := s.persist.NewStore(snapshotPrefix, ID, s.snapshotTag())
	var snap snapshot
	if err := store.Load(&snap); err != nil {
		if errors.Is(err, persistence.ErrNotExists) {
			log.Info("当日无快照，全新启动")
		} else {
			log.Errorf("加载快照失败: %v", err)
		}
		return
	}

	if snap.Version != snapshotVersion {
		log.Warnf("快照版本不兼容 (got=%d want=%d)，忽略", snap.Version, snapshotVersion)
		return
	}
	today := s.now().Format("2006-01-02")
	if snap.Date != today {
		log.Warnf("快照日期 %s 不是今天 %s，忽略", snap.Date, today)
		return
	}

	restored := 0
	for _, saved := range snap.Instruments {
		inst, ok := s.registry.Get(saved.Symbol)
		if !ok {
			log.Warnf("%s 在快照中但不在合约目录，跳过", saved.Symbol)
			continue
		}
		inst.Lock()
		copyInstrumentState(inst, saved)
		inst.Unlock()
		restored++
	}
	log.Infof("快照已恢复，%d/%d 个合约 (date=%s)", restored, len(snap.Instruments), snap.Date)
}

// copyInstrumentState 拷贝可变交易状态；合约标识和档位不动。
// 两侧的锁由调用方负责。
func copyInstrumentState(dst, src *Instrument) {
	dst.BaselinePrice = src.BaselinePrice
	dst.LastPrice = src.LastPrice
	dst.Momentum = src.Momentum
	dst.LastSellPrice = src.LastSellPrice
	dst.BestBid = src.BestBid
	dst.BestAsk = src.BestAsk

	dst.AvgBuyPrice = src.AvgBuyPrice
	dst.PositionVolume = src.PositionVolume
	dst.CommittedBudget = src.CommittedBudget

	dst.BuyOrderID = src.BuyOrderID
	dst.SellOrderID = src.SellOrderID
	dst.BuyPrice = src.BuyPrice
	dst.BuyTime = src.BuyTime
	dst.WaitCount = src.WaitCount
	dst.BuyPartial = src.BuyPartial
	dst.Liquidating = src.Liquidating

	dst.Offset = src.Offset
	dst.Lockout = src.Lockout
}
