package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/surgebot/internal/exchange/paper"
	"github.com/betbot/surgebot/internal/strategies/surge"
	"github.com/betbot/surgebot/pkg/config"
	"github.com/betbot/surgebot/pkg/logger"
	"github.com/betbot/surgebot/pkg/persistence"
	"github.com/betbot/surgebot/pkg/shutdown"
)

func main() {
	var (
		configPath      = flag.String("config", "config.yml", "配置文件路径")
		envPath         = flag.String("env", ".env", "环境变量文件路径（可选）")
		shutdownTimeout = flag.Duration("shutdown-timeout", 30*time.Second, "优雅关闭超时")
	)
	flag.Parse()

	// 先用默认配置起日志，配置加载失败的错误才有地方去
	if err := logger.InitDefault(); err != nil {
		os.Exit(1)
	}

	// .env 不存在不算错误，只是本机没配
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		logger.Warnf("加载 %s 失败: %v", *envPath, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Errorf("初始化日志失败: %v", err)
		os.Exit(1)
	}

	if err := run(cfg, *shutdownTimeout); err != nil {
		logger.Errorf("启动失败: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := shutdown.NewManager()

	// 持久化后端
	var persist persistence.Service
	closePersist := func() {}
	switch cfg.Persistence.Backend {
	case "badger":
		svc, err := persistence.OpenBadger(cfg.Persistence.Dir)
		if err != nil {
			return err
		}
		closePersist = func() {
			if err := svc.Close(); err != nil {
				logger.Errorf("关闭 badger 失败: %v", err)
			}
		}
		persist = svc
	default:
		persist = persistence.NewJSONFileService(cfg.Persistence.Dir)
	}

	// 模拟交易所：行情、下单、目录、历史都由它提供
	exchange := paper.New(cfg.Paper)

	strat, err := surge.New(&cfg.Surge, surge.Dependencies{
		Feed:        exchange,
		Gateway:     exchange,
		Catalog:     exchange,
		History:     exchange,
		Persistence: persist,
	})
	if err != nil {
		return err
	}
	exchange.SetHandlers(strat, strat)

	if err := strat.Initialize(ctx); err != nil {
		return err
	}
	exchange.Start()
	if err := strat.Start(ctx); err != nil {
		return err
	}

	// 关闭顺序：先停策略（保存快照），再停行情，最后关持久化
	mgr.OnShutdown("strategy", func(sctx context.Context) { strat.Shutdown(sctx) })
	mgr.OnShutdown("exchange", func(context.Context) { exchange.Stop() })
	mgr.OnShutdown("persistence", func(context.Context) { closePersist() })

	// 按自然日切换日志文件
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := logger.CheckAndRotateLog(); err != nil {
					logger.Errorf("切换日志文件失败: %v", err)
				}
			}
		}
	}()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigC
	logger.Infof("收到信号 %s，开始退出", sig)

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	mgr.Shutdown(sctx)
	return nil
}
