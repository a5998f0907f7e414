package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/surgebot/pkg/logger"
)

// Handler 关闭处理函数
type Handler func(ctx context.Context)

// Manager 优雅关闭管理器：收集各组件的关闭回调，进程退出前统一执行。
// 回调按注册顺序执行（先注册先执行），确保“先存快照，再停调度器”这类顺序可控。
type Manager struct {
	callbacks []entry
	mu        sync.Mutex
}

type entry struct {
	name string
	fn   Handler
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, entry{name: name, fn: handler})
}

// Shutdown 顺序执行所有关闭回调（阻塞调用）。
// ctx 应该带超时，避免某个回调卡死导致进程无法退出。
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	callbacks := make([]entry, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	if len(callbacks) == 0 {
		logger.Info("没有注册的关闭回调")
		return
	}

	logger.Infof("开始优雅关闭，共 %d 个回调", len(callbacks))
	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			logger.Warnf("优雅关闭超时，跳过剩余回调（从 %s 起）", cb.name)
			return
		default:
		}

		done := make(chan struct{})
		go func(e entry) {
			defer close(done)
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("关闭回调 %s panic: %v", e.name, r)
				}
			}()
			e.fn(ctx)
		}(cb)

		select {
		case <-done:
			logger.Infof("关闭回调完成: %s", cb.name)
		case <-ctx.Done():
			logger.Warnf("关闭回调超时: %s", cb.name)
		}
	}
	logger.Info("优雅关闭完成")
}
