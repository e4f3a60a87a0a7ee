// Package frame 构造模拟开发板上报的 BLE 广播帧 JSON 报文。
// 三种帧型：普通信标（beacon）、MBT02 中继帧（relay）、MBT02 组合帧（combo）。
// raw.data 是十六进制占位字节，仅凑长度，不与 parsed 字段互相一致。
package frame

// 各帧型的固定参数。usage 与 product 是设备类别常量，接收端据此分流。
const (
	BeaconMACPrefix = "C3:00:00:24"
	MBT02MACPrefix  = "C3:00:00:30"

	BeaconFrameLen = 10
	RelayFrameLen  = 27
	ComboFrameLen  = 23

	RelayVendor  = 1
	RelayUsage   = 1
	ComboVendor  = 1
	ComboProduct = 8

	MaxRelayEntries = 4
)

// Kind 帧类型标签
type Kind int

const (
	KindBeacon Kind = iota
	KindRelay
	KindCombo
)

func (k Kind) String() string {
	switch k {
	case KindBeacon:
		return "beacon"
	case KindRelay:
		return "relay"
	case KindCombo:
		return "combo"
	default:
		return "unknown"
	}
}

// Raw 广播帧外层（接收侧视角的原始捕获）
type Raw struct {
	MAC  string `json:"mac"`
	RSSI int    `json:"rssi"`
	Len  int    `json:"len"`
	Data string `json:"data"`
	Type string `json:"type,omitempty"`
}

// RelayEntry 中继帧里的单条下游上报
type RelayEntry struct {
	Idx  int    `json:"idx"`
	Tail string `json:"tail"`
	RSSI int    `json:"rssi"`
}

// RelayParsed 中继帧解析结构（Usage 恒为 1）
type RelayParsed struct {
	Type   string       `json:"type"`
	Vendor int          `json:"vendor"`
	Usage  int          `json:"usage"`
	Serial int          `json:"serial"`
	Count  int          `json:"count"`
	Relays []RelayEntry `json:"relays"`
}

// ComboParsed 组合帧解析结构（Product 恒为 8）
type ComboParsed struct {
	Type    string `json:"type"`
	Vendor  int    `json:"vendor"`
	MAC     string `json:"mac"`
	Battery int    `json:"battery"`
	Product int    `json:"product"`
	Tamper  int    `json:"tamper"`
}

// BeaconMessage 普通信标，parsed 恒为 null
type BeaconMessage struct {
	Raw    Raw `json:"raw"`
	Parsed any `json:"parsed"`
}

// RelayMessage MBT02 中继帧
type RelayMessage struct {
	Raw    Raw         `json:"raw"`
	Parsed RelayParsed `json:"parsed"`
}

// ComboMessage MBT02 组合帧
type ComboMessage struct {
	Raw    Raw         `json:"raw"`
	Parsed ComboParsed `json:"parsed"`
}
