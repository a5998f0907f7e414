package surge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/surgebot/internal/ports"
	"github.com/betbot/surgebot/pkg/persistence"
	"github.com/betbot/surgebot/pkg/scheduler"
	"github.com/betbot/surgebot/pkg/sigchan"
)

var log = logrus.WithField("strategy", ID)

// Dependencies 策略的外部协作方
type Dependencies struct {
	Feed        ports.MarketDataFeed
	Gateway     ports.OrderGateway
	Catalog     ports.CatalogQuery
	History     ports.HistoryQuery
	Persistence persistence.Service
	Scheduler   *scheduler.Scheduler
}

// Strategy 拉升识别策略核心。
//
// 执行模型（见各文件）：
//   - decision.go  OnTick：行情驱动的买/卖/止损状态机
//   - reconcile.go OnFill/OnOrder：成交回报对账（均价、持仓、预算）
//   - timeout.go   supervise：固定周期的超时撤单与清仓
//   - baseline.go  refreshBaselines：每日基线刷新
//   - snapshot.go  快照保存/恢复（按自然日键控）
type Strategy struct {
	cfg      *Config
	registry *Registry

	feed    ports.MarketDataFeed
	gateway ports.OrderGateway
	catalog ports.CatalogQuery
	history ports.HistoryQuery
	persist persistence.Service
	sched   *scheduler.Scheduler

	// readyC 在所有合约的基线首次就绪时发出信号（启动恢复门）
	readyC *sigchan.Chan

	// now 可注入时钟，测试用
	now func() time.Time

	restoreOnce sync.Once
}

// New 创建策略。配置错误直接失败，不监控任何合约。
func New(cfg *Config, deps Dependencies) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("策略配置无效: %w", err)
	}
	if deps.Feed == nil || deps.Gateway == nil || deps.Catalog == nil || deps.History == nil {
		return nil, fmt.Errorf("缺少外部协作方")
	}
	if deps.Scheduler == nil {
		deps.Scheduler = scheduler.New()
	}
	return &Strategy{
		cfg:      cfg,
		registry: NewRegistry(),
		feed:     deps.Feed,
		gateway:  deps.Gateway,
		catalog:  deps.Catalog,
		history:  deps.History,
		persist:  deps.Persistence,
		sched:    deps.Scheduler,
		readyC:   sigchan.New(1),
		now:      time.Now,
	}, nil
}

// Registry 返回注册表（监控/测试用）
func (s *Strategy) Registry() *Registry { return s.registry }

// Initialize 查询合约目录，按档位筛选并建立注册表，订阅行情
func (s *Strategy) Initialize(ctx context.Context) error {
	contracts, err := s.catalog.Contracts(ctx)
	if err != nil {
		return fmt.Errorf("查询合约目录失败: %w", err)
	}

	count := 0
	for _, c := range contracts {
		profile := s.cfg.ProfileFor(c.Symbol, c.QuoteCurrency)
		if profile == nil {
			continue
		}
		s.registry.Add(c, profile)
		if err := s.feed.Subscribe(c.Symbol, s.OnTick); err != nil {
			log.Warnf("订阅 %s 行情失败: %v", c.Symbol, err)
			continue
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("没有匹配任何档位的合约")
	}
	log.Infof("%d 个合约进行了订阅", count)
	return nil
}

// Start 注册调度任务并启动调度器。
// 显式启动序列：订阅（Initialize）→ 首次基线拉取 → 恢复当日快照 → 开始评估。
// 行情评估天然被“基线为 0 则忽略”挡住，不需要额外的墙钟延迟。
func (s *Strategy) Start(ctx context.Context) error {
	if err := s.sched.AddDaily("baseline-refresh", s.cfg.BaselineHour, func() {
		s.refreshBaselines(context.Background())
	}); err != nil {
		return err
	}
	if err := s.sched.AddInterval("timeout-supervisor", s.cfg.SupervisorInterval.Duration, s.supervise); err != nil {
		return err
	}

	// 启动恢复流程：先拉基线，等所有合约就绪（或超时）后恢复快照
	go func() {
		s.refreshBaselines(ctx)
		select {
		case <-s.readyC.C():
		case <-time.After(s.cfg.StartupTimeout.Duration):
			log.Warnf("等待基线就绪超时（%s），直接尝试恢复快照", s.cfg.StartupTimeout.Duration)
		case <-ctx.Done():
			return
		}
		s.restoreOnce.Do(func() { s.restoreSnapshot() })
	}()

	s.sched.Start()
	log.Info("拉升识别策略已启动")
	return nil
}

// Shutdown 保存快照并停止调度器
func (s *Strategy) Shutdown(ctx context.Context) {
	if err := s.SaveSnapshot(); err != nil {
		log.Errorf("保存快照失败: %v", err)
	}
	if err := s.sched.Stop(ctx); err != nil {
		log.Errorf("停止调度器失败: %v", err)
	}
	log.Info("停止算法")
}
