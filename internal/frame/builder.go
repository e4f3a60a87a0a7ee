package frame

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// Builder 随机帧构造器。*rand.Rand 由调用方注入，测试可用固定种子。
type Builder struct {
	rng *rand.Rand
}

// NewBuilder 创建构造器
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// Next 在三种帧型中等概率取一种，返回序列化后的 JSON 报文与帧型标签
func (b *Builder) Next() ([]byte, Kind, error) {
	kind := Kind(b.rng.Intn(3))

	var msg any
	switch kind {
	case KindBeacon:
		msg = b.Beacon()
	case KindRelay:
		msg = b.Relay()
	default:
		msg = b.Combo()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, kind, fmt.Errorf("marshal %s frame: %w", kind, err)
	}
	return payload, kind, nil
}

// Beacon 构造一条普通信标
func (b *Builder) Beacon() BeaconMessage {
	return BeaconMessage{
		Raw: Raw{
			MAC:  b.randomMAC(BeaconMACPrefix, 2),
			RSSI: b.intBetween(-85, -30),
			Len:  BeaconFrameLen,
			Data: b.randomHex(BeaconFrameLen),
			Type: "beacon",
		},
		Parsed: nil,
	}
}

// Relay 构造一条 MBT02 中继帧，下游条目数 1~4
func (b *Builder) Relay() RelayMessage {
	count := b.intBetween(1, MaxRelayEntries)
	relays := make([]RelayEntry, 0, count)
	for i := 0; i < count; i++ {
		relays = append(relays, RelayEntry{
			Idx:  i,
			Tail: b.randomOctets(3),
			RSSI: b.intBetween(-90, -40),
		})
	}

	return RelayMessage{
		Raw: Raw{
			MAC:  b.randomMAC(MBT02MACPrefix, 2),
			RSSI: b.intBetween(-80, -40),
			Len:  RelayFrameLen,
			Data: b.randomHex(RelayFrameLen),
		},
		Parsed: RelayParsed{
			Type:   "relay",
			Vendor: RelayVendor,
			Usage:  RelayUsage,
			Serial: b.intBetween(0, 255),
			Count:  count,
			Relays: relays,
		},
	}
}

// Combo 构造一条 MBT02 组合帧
func (b *Builder) Combo() ComboMessage {
	return ComboMessage{
		Raw: Raw{
			MAC:  b.randomMAC(MBT02MACPrefix, 2),
			RSSI: b.intBetween(-75, -35),
			Len:  ComboFrameLen,
			Data: b.randomHex(ComboFrameLen),
		},
		Parsed: ComboParsed{
			Type:    "combo",
			Vendor:  ComboVendor,
			MAC:     b.randomOctets(6),
			Battery: b.intBetween(20, 100),
			Product: ComboProduct,
			Tamper:  b.rng.Intn(2),
		},
	}
}

// intBetween [lo, hi] 闭区间均匀随机
func (b *Builder) intBetween(lo, hi int) int {
	return lo + b.rng.Intn(hi-lo+1)
}

// randomOctets n 个随机字节，冒号分隔大写十六进制
func (b *Builder) randomOctets(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02X", b.rng.Intn(256))
	}
	return strings.Join(parts, ":")
}

// randomMAC 固定前缀 + n 个随机字节
func (b *Builder) randomMAC(prefix string, n int) string {
	return prefix + ":" + b.randomOctets(n)
}

// randomHex n 个随机字节，空格分隔大写十六进制（模拟原始捕获）
func (b *Builder) randomHex(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%02X", b.rng.Intn(256))
	}
	return strings.Join(parts, " ")
}
