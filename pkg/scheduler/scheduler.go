package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "scheduler")

const (
	// MinInterval 周期任务的最小间隔
	MinInterval = 5 * time.Second
	// defaultPoll 调度循环的唤醒粒度
	defaultPoll = 5 * time.Second
)

type jobKind int

const (
	jobInterval jobKind = iota + 1
	jobDaily
)

// job 单个调度任务。interval 与 daily 互斥。
type job struct {
	name string
	kind jobKind
	fn   func()

	// interval 任务
	interval time.Duration
	nextRun  time.Time

	// daily 任务
	taskSec   int    // 目标时刻：当天零点起的秒数
	today     string // 上次评估时的自然日（yyyy-mm-dd）
	todayDone bool
}

// Scheduler 后台任务调度器：周期任务 + 每日定时任务共用一个调度循环。
// 不是单例——每个策略引擎持有自己的实例，便于独立测试。
type Scheduler struct {
	mu       sync.Mutex
	jobs     []*job
	running  bool
	stopOnce sync.Once

	poll  time.Duration
	now   func() time.Time
	stopC chan struct{}
	doneC chan struct{}
}

// New 创建调度器
func New() *Scheduler {
	return &Scheduler{
		poll:  defaultPoll,
		now:   time.Now,
		stopC: make(chan struct{}),
		doneC: make(chan struct{}),
	}
}

// AddInterval 注册周期任务：当 now >= nextRun 时执行，
// 执行后无论成败都重排到 now + every。间隔不能小于 MinInterval。
func (s *Scheduler) AddInterval(name string, every time.Duration, fn func()) error {
	if fn == nil {
		return fmt.Errorf("任务 %s 的执行函数为空", name)
	}
	if every < MinInterval {
		return fmt.Errorf("任务 %s 间隔 %s 小于最小间隔 %s", name, every, MinInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{
		name:     name,
		kind:     jobInterval,
		fn:       fn,
		interval: every,
		nextRun:  s.now().Add(every),
	})
	log.Infof("注册周期任务: %s (间隔=%s)", name, every)
	return nil
}

// AddDaily 注册每日定时任务：hour 为 [0,24) 内的小时偏移，
// 每个自然日内最多执行一次，墙钟时间越过偏移点后首次轮询触发。
//
// 注册当天如果偏移点已经过去，当天标记为已完成（避免重启后在
// 目标时刻附近重复触发），任务从下一个自然日开始生效。这个判断
// 在注册时刻做，轮询间隔不影响结果。
func (s *Scheduler) AddDaily(name string, hour float64, fn func()) error {
	if fn == nil {
		return fmt.Errorf("任务 %s 的执行函数为空", name)
	}
	if hour < 0 || hour >= 24 {
		return fmt.Errorf("任务 %s 的定时偏移 %v 不在 [0,24) 内", name, hour)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	taskSec := int(hour * 3600)
	now := s.now()
	late := secondsSinceMidnight(now) >= taskSec
	s.jobs = append(s.jobs, &job{
		name:      name,
		kind:      jobDaily,
		fn:        fn,
		taskSec:   taskSec,
		today:     dayOf(now),
		todayDone: late,
	})
	if late {
		log.Infof("每日任务 %s 的偏移点今天已过，顺延到明天", name)
	}
	log.Infof("注册每日任务: %s (偏移=%.2fh)", name, hour)
	return nil
}

// Start 启动调度循环。重复调用是 no-op（打印警告），保证最多一个循环 goroutine。
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn("调度器已在运行，忽略重复启动")
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()
	log.Info("调度器已启动")
}

// Stop 停止调度循环并等待其退出；ctx 控制等待上限。重复调用安全。
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stopC) })
	select {
	case <-s.doneC:
		log.Info("调度器已停止")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("等待调度循环退出超时: %w", ctx.Err())
	}
}

func (s *Scheduler) loop() {
	defer close(s.doneC)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopC:
			return
		case <-ticker.C:
			s.runPending(s.now())
		}
	}
}

// runPending 评估所有任务一次。循环的每次唤醒调用；测试可直接用假时钟调用。
func (s *Scheduler) runPending(now time.Time) {
	s.mu.Lock()
	jobs := make([]*job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, j := range jobs {
		switch j.kind {
		case jobInterval:
			s.runIntervalJob(j, now)
		case jobDaily:
			s.runDailyJob(j, now)
		}
	}
}

func (s *Scheduler) runIntervalJob(j *job, now time.Time) {
	if now.Before(j.nextRun) {
		return
	}
	// 无论执行成败都重排
	defer func() { j.nextRun = now.Add(j.interval) }()
	s.invoke(j)
}

func (s *Scheduler) runDailyJob(j *job, now time.Time) {
	daySec := secondsSinceMidnight(now)

	// 跨天重置
	if day := dayOf(now); day != j.today {
		j.today = day
		j.todayDone = false
	}

	if !j.todayDone && daySec >= j.taskSec {
		j.todayDone = true
		s.invoke(j)
	}
}

// invoke 隔离执行单个任务：panic 被捕获并带任务名记录，不影响循环和其他任务。
func (s *Scheduler) invoke(j *job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("任务 %s 执行异常: %v", j.name, r)
		}
	}()
	j.fn()
}

func secondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func dayOf(t time.Time) string {
	return t.Format("2006-01-02")
}
