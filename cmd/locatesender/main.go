// locatesender 模拟一台固定 MAC 的 MBT02 中继设备沿既定路径匀速移动，
// 周期性发送 RelayLocated 定位报文（含 4 个网关的距离/RSSI 观测）。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/ble-mock-sender/internal/config"
	"github.com/taoyao-code/ble-mock-sender/internal/locate"
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

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("session", uuid.NewString()))
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 路径：配置文件优先，否则用内置默认路径
	waypoints := locate.DefaultWaypoints()
	if cfg.Locate.WaypointsFile != "" {
		raw, err := cfgpkg.LoadWaypoints(cfg.Locate.WaypointsFile)
		if err != nil {
			log.Error("load waypoints failed", zap.Error(err))
			os.Exit(1)
		}
		waypoints = make([]locate.Point, 0, len(raw))
		for _, wp := range raw {
			waypoints = append(waypoints, locate.Point{X: wp[0], Y: wp[1]})
		}
	}

	path := locate.Interpolate(waypoints, cfg.Locate.StepsPerSegment)
	if len(path) == 0 {
		log.Error("no waypoints defined, nothing to send")
		os.Exit(1)
	}
	seq := path
	if cfg.Locate.Loop {
		seq = locate.LoopSequence(path)
	}

	// 4) 指标与可选运维端点
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

	// 5) 建立连接。失败直接退出，不重试。
	conn, err := sender.Dial(cfg.WS.URL)
	if err != nil {
		log.Error("connect failed, is the receiver running?", zap.Error(err))
		os.Exit(1)
	}
	log.Info("connected, sending RelayLocated",
		zap.String("url", cfg.WS.URL),
		zap.String("relayMac", cfg.Locate.RelayMAC),
		zap.Int("sequenceLen", len(seq)),
		zap.Bool("loop", cfg.Locate.Loop),
	)

	// 6) 发送循环：游标按序列长度取模，折返循环不重启
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model := locate.NewModel(locate.ModelConfig{
		RelayMAC:  cfg.Locate.RelayMAC,
		NoisePos:  cfg.Locate.NoisePos,
		NoiseRSSI: cfg.Locate.NoiseRSSI,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	s := sender.New(conn, sender.Options{
		Interval:    cfg.Send.Interval,
		MaxMessages: cfg.Send.MaxMessages,
		Logger:      log,
		Metrics:     m,
	})
	defer func() { _ = s.Close() }()

	if err := s.Run(ctx, func(step int) ([]byte, string, error) {
		idx := step % len(seq)
		m.PathStep.Set(float64(idx))
		payload, err := json.Marshal(model.Located(seq[idx]))
		return payload, "located", err
	}); err != nil {
		log.Error("send loop failed", zap.Error(err))
		os.Exit(1)
	}
}
