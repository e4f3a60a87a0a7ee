package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// WSConfig websocket 出站连接配置
type WSConfig struct {
	URL string `mapstructure:"url"`
}

// SendConfig 发送节奏配置
type SendConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxMessages int           `mapstructure:"maxMessages"`
}

// LocateConfig 定位模拟器（locatesender）配置
type LocateConfig struct {
	RelayMAC        string  `mapstructure:"relayMac"`
	WaypointsFile   string  `mapstructure:"waypointsFile"`
	StepsPerSegment int     `mapstructure:"stepsPerSegment"`
	Loop            bool    `mapstructure:"loop"`
	NoisePos        float64 `mapstructure:"noisePos"`
	NoiseRSSI       float64 `mapstructure:"noiseRssi"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// OpsConfig 运维端点（健康检查 + Prometheus 指标）配置
type OpsConfig struct {
	Enable      bool          `mapstructure:"enable"`
	Addr        string        `mapstructure:"addr"`
	MetricsPath string        `mapstructure:"metricsPath"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	WS      WSConfig      `mapstructure:"ws"`
	Send    SendConfig    `mapstructure:"send"`
	Locate  LocateConfig  `mapstructure:"locate"`
	Logging LoggingConfig `mapstructure:"logging"`
	Ops     OpsConfig     `mapstructure:"ops"`
}

// Load 从 YAML 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 BLEMOCK_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv("BLEMOCK_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// 环境变量覆盖：前缀 BLEMOCK_，并将点号替换为下划线
	v.SetEnvPrefix("BLEMOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate 启动前的配置检查。配置错误一律终止进程，不带病发送。
func (c *Config) Validate() error {
	if c.WS.URL == "" {
		return errors.New("ws.url must not be empty")
	}
	if c.Send.Interval <= 0 {
		return fmt.Errorf("send.interval must be positive, got %s", c.Send.Interval)
	}
	if c.Send.MaxMessages < 0 {
		return fmt.Errorf("send.maxMessages must not be negative, got %d", c.Send.MaxMessages)
	}
	if c.Locate.StepsPerSegment < 1 {
		return fmt.Errorf("locate.stepsPerSegment must be >= 1, got %d", c.Locate.StepsPerSegment)
	}
	if c.Locate.NoisePos < 0 || c.Locate.NoiseRSSI < 0 {
		return errors.New("locate noise magnitudes must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ble-mock-sender")
	v.SetDefault("app.env", "dev")

	v.SetDefault("ws.url", "ws://127.0.0.1:8080/")

	v.SetDefault("send.interval", "1s")
	v.SetDefault("send.maxMessages", 0)

	v.SetDefault("locate.relayMac", "C3:00:00:30:94:F9")
	v.SetDefault("locate.waypointsFile", "")
	v.SetDefault("locate.stepsPerSegment", 2)
	v.SetDefault("locate.loop", true)
	v.SetDefault("locate.noisePos", 0.05)
	v.SetDefault("locate.noiseRssi", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "logs/ble-mock-sender.log")
	v.SetDefault("logging.file.maxSize", 50)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 7)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("ops.enable", false)
	v.SetDefault("ops.addr", ":9100")
	v.SetDefault("ops.metricsPath", "/metrics")
	v.SetDefault("ops.readTimeout", "5s")
}

type waypointsFile struct {
	Waypoints [][]float64 `yaml:"waypoints"`
}

// LoadWaypoints 从 YAML 文件读取路径点列表。文件格式：
//
//	waypoints:
//	  - [0.0, 10.0]
//	  - [3.0, 10.5]
func LoadWaypoints(path string) ([][2]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read waypoints file: %w", err)
	}
	var wf waypointsFile
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("parse waypoints file: %w", err)
	}
	pts := make([][2]float64, 0, len(wf.Waypoints))
	for i, wp := range wf.Waypoints {
		if len(wp) != 2 {
			return nil, fmt.Errorf("waypoint %d: expected [x, y], got %d values", i, len(wp))
		}
		pts = append(pts, [2]float64{wp[0], wp[1]})
	}
	return pts, nil
}
