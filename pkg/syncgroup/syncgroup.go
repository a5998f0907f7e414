package syncgroup

import "sync"

// SyncGroup 是 sync.WaitGroup 的包装器：Go() 自动配对 Add/Done，
// 避免手写 wg.Add(1) 和漏掉 Done 的老问题。
type SyncGroup struct {
	wg sync.WaitGroup
}

// New 创建 SyncGroup
func New() *SyncGroup {
	return &SyncGroup{}
}

// Go 启动一个受管 goroutine
func (g *SyncGroup) Go(fn func()) {
	if fn == nil {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait 等待所有 goroutine 退出
func (g *SyncGroup) Wait() {
	g.wg.Wait()
}
