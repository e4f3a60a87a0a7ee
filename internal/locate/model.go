package locate

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// 4 个固定网关：MAC 前缀与场地四角坐标按索引对应。
// 网关地址尾字节由索引推导，跨周期稳定。
var gatewayPrefixes = [...]string{
	"A0:11:22:33:44",
	"B1:22:33:44:55",
	"C2:33:44:55:66",
	"D3:44:55:66:77",
}

var gatewayPositions = [...]Point{
	{0.0, 0.0},
	{20.0, 0.0},
	{20.0, 10.0},
	{0.0, 10.0},
}

const (
	numAnchors = 4

	// distance -> rssi 的经验模型常数：rssi = -30 - 20*log10(d + 0.01)。
	// 只求随距离单调下降，不是传播模型。
	rssiAt1m      = -30.0
	pathLossSlope = 20.0
	distEpsilon   = 0.01

	// 距离下限，防止 log10 落入负数域
	minDistance = 0.1

	distanceNoise = 0.2
)

// Anchor 单个网关对设备的距离/信号观测
type Anchor struct {
	GMAC     string  `json:"gmac"`
	Distance float64 `json:"distance"`
	RSSI     int     `json:"rssi"`
}

// Located RelayLocated 定位报文
type Located struct {
	Cmd       string   `json:"cmd"`
	RelayMAC  string   `json:"relay_mac"`
	DevType   string   `json:"dev_type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	RSSI      int      `json:"rssi"`
	Anchors   []Anchor `json:"anchors"`
	Timestamp int64    `json:"timestamp"`
}

// ModelConfig 定位模型参数（一次构造，运行期只读）
type ModelConfig struct {
	RelayMAC  string
	NoisePos  float64 // 位置抖动幅度（米）
	NoiseRSSI float64 // RSSI 波动幅度（dB）
}

// Model 由当前位置合成 RelayLocated 报文。
// 时钟可注入，测试用假时钟驱动 timestamp。
type Model struct {
	cfg ModelConfig
	rng *rand.Rand
	now func() time.Time
}

// NewModel 创建定位模型
func NewModel(cfg ModelConfig, rng *rand.Rand) *Model {
	return &Model{cfg: cfg, rng: rng, now: time.Now}
}

// WithClock 替换时钟（测试用）
func (m *Model) WithClock(now func() time.Time) *Model {
	m.now = now
	return m
}

// Anchors 基于当前位置生成 4 个网关观测。
// 距离 = 到网关的欧氏距离 + 均匀噪声，下限 0.1 米。
func (m *Model) Anchors(p Point) []Anchor {
	anchors := make([]Anchor, 0, numAnchors)
	for i := 0; i < numAnchors; i++ {
		gmac := fmt.Sprintf("%s:%02X:%02X",
			gatewayPrefixes[i%len(gatewayPrefixes)], (i*11)%256, (i*37)%256)

		gw := gatewayPositions[i%len(gatewayPositions)]
		distance := math.Hypot(p.X-gw.X, p.Y-gw.Y) + m.uniform(distanceNoise)
		if distance < minDistance {
			distance = minDistance
		}

		rssi := int(math.Round(rssiAt1m - pathLossSlope*math.Log10(distance+distEpsilon) + m.uniform(m.cfg.NoiseRSSI)))

		anchors = append(anchors, Anchor{
			GMAC:     gmac,
			Distance: round2(distance),
			RSSI:     rssi,
		})
	}
	return anchors
}

// Located 构造一条带抖动的定位报文
func (m *Model) Located(p Point) Located {
	return Located{
		Cmd:       "RelayLocated",
		RelayMAC:  m.cfg.RelayMAC,
		DevType:   "MBT02",
		X:         round3(p.X + m.uniform(m.cfg.NoisePos)),
		Y:         round3(p.Y + m.uniform(m.cfg.NoisePos)),
		RSSI:      -100 + m.rng.Intn(61),
		Anchors:   m.Anchors(p),
		Timestamp: m.now().UnixMilli(),
	}
}

// uniform [-mag, mag) 均匀随机
func (m *Model) uniform(mag float64) float64 {
	return (m.rng.Float64()*2 - 1) * mag
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
