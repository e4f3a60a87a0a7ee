// blesender 模拟一块 BLE 采集板：随机在普通信标、MBT02 中继帧、
// MBT02 组合帧三种报文中取一种，经 websocket 周期性发给接收服务。
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/ble-mock-sender/internal/config"
	"github.com/taoyao-code/ble-mock-sender/internal/frame"
	"github.com/taoyao-code/ble-mock-sender/internal/logging"
	"github.com/taoyao-code/ble-mock-sender/internal/metrics"
	"github.com/taoyao-code/ble-mock-sender/internal/opsserver"
	"github.com/taoyao-code/ble-mock-sender/internal/sender"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: BLEMOCK_CONFIG or configs/example.yaml)")
	flag.Parse()

	// 1) 加载并校验配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	// 2) 初始化日志，session 字段区分同一接收端上的多个模拟器
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("session", uuid.NewString()))
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标与可选运维端点
	reg := metrics.NewRegistry()
	m := metrics.NewSenderMetrics(reg)
	if cfg.Ops.Enable {
		ops := opsserver.New(cfg.Ops, metrics.Handler(reg), func() bool { return true })
		go func() {
			if err := ops.Start(); err != nil {
				log.Error("ops server error", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = ops.Shutdown(ctx)
		}()
	}

	// 4) 建立连接。失败直接退出，不重试。
	conn, err := sender.Dial(cfg.WS.URL)
	if err != nil {
		log.Error("connect failed, is the receiver running?", zap.Error(err))
		os.Exit(1)
	}
	log.Info("connected, sending MBT02 + beacon frames", zap.String("url", cfg.WS.URL))

	// 5) 发送循环，信号触发优雅关停
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := frame.NewBuilder(rand.New(rand.NewSource(time.Now().UnixNano())))
	s := sender.New(conn, sender.Options{
		Interval:    cfg.Send.Interval,
		MaxMessages: cfg.Send.MaxMessages,
		Logger:      log,
		Metrics:     m,
	})
	defer func() { _ = s.Close() }()

	if err := s.Run(ctx, func(step int) ([]byte, string, error) {
		payload, kind, err := builder.Next()
		return payload, kind.String(), err
	}); err != nil {
		log.Error("send loop failed", zap.Error(err))
		os.Exit(1)
	}
}
