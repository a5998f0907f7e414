package surge

import (
	"sync"

	"github.com/betbot/surgebot/internal/domain"
)

// Registry 合约状态注册表：symbol -> *Instrument。
// 成员关系用读写锁保护；单个合约的状态由各自的锁序列化，
// 跨合约遍历（调度任务）只需要读锁，不会阻塞行情处理。
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Instrument
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Instrument)}
}

// Add 由目录条目和档位构建全新的合约状态并注册。
// 所有可变字段显式清零（不依赖缺省值），行情订阅由调用方完成。
func (r *Registry) Add(contract domain.Contract, profile *Profile) *Instrument {
	inst := &Instrument{
		Symbol:    contract.Symbol,
		Exchange:  contract.Exchange,
		PriceTick: contract.PriceTick,
		LotSize:   contract.LotSize,
		Partition: contract.Partition,
		Profile:   profile,

		BaselinePrice: 0,
		LastPrice:     0,
		Momentum:      0,
		LastSellPrice: 0,

		AvgBuyPrice:     0,
		PositionVolume:  0,
		CommittedBudget: 0,

		WaitCount: 0,
		Offset:    OffsetOpen,
		Lockout:   false,
	}

	r.mu.Lock()
	r.items[contract.Symbol] = inst
	r.mu.Unlock()

	log.Infof("合约加入监控: %s (档位=%s, tick=%v, lot=%v)",
		contract.VtSymbol(), profile.Name, contract.PriceTick, contract.LotSize)
	return inst
}

// Get 按 symbol 查找
func (r *Registry) Get(symbol string) (*Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.items[symbol]
	return inst, ok
}

// All 返回当前成员的快照切片（供调度任务遍历）
func (r *Registry) All() []*Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instrument, 0, len(r.items))
	for _, inst := range r.items {
		out = append(out, inst)
	}
	return out
}

// Len 返回监控合约数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
