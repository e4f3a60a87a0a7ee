package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/ble-mock-sender/internal/frame"
	"github.com/taoyao-code/ble-mock-sender/internal/locate"
)

// mockConn 记录所有写入的假连接
type mockConn struct {
	messages [][]byte
	types    []int
	writeErr error
	closed   bool
}

func (c *mockConn) WriteMessage(messageType int, data []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.types = append(c.types, messageType)
	c.messages = append(c.messages, append([]byte(nil), data...))
	return nil
}

func (c *mockConn) Close() error {
	c.closed = true
	return nil
}

func staticPayload(step int) ([]byte, string, error) {
	return []byte(fmt.Sprintf(`{"step":%d}`, step)), "static", nil
}

func TestRunSendsMaxMessages(t *testing.T) {
	conn := &mockConn{}
	s := New(conn, Options{Interval: time.Millisecond, MaxMessages: 5})

	err := s.Run(context.Background(), staticPayload)
	require.NoError(t, err)
	require.Len(t, conn.messages, 5)

	for i, msg := range conn.messages {
		assert.Equal(t, websocket.TextMessage, conn.types[i], "一律按文本帧发送")
		assert.JSONEq(t, fmt.Sprintf(`{"step":%d}`, i), string(msg))
	}
}

func TestRunStopsOnWriteError(t *testing.T) {
	conn := &mockConn{writeErr: errors.New("broken pipe")}
	s := New(conn, Options{Interval: time.Millisecond, MaxMessages: 10})

	err := s.Run(context.Background(), staticPayload)
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken pipe")
	assert.Empty(t, conn.messages)
}

func TestRunStopsOnPayloadError(t *testing.T) {
	conn := &mockConn{}
	s := New(conn, Options{Interval: time.Millisecond, MaxMessages: 10})

	err := s.Run(context.Background(), func(step int) ([]byte, string, error) {
		if step == 3 {
			return nil, "", errors.New("bad payload")
		}
		return staticPayload(step)
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "step 3")
	assert.Len(t, conn.messages, 3)
}

func TestRunReturnsNilOnCancel(t *testing.T) {
	conn := &mockConn{}
	s := New(conn, Options{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := s.Run(ctx, staticPayload)
	assert.NoError(t, err, "外部取消是正常关停")
	assert.NotEmpty(t, conn.messages)
}

func TestCloseClosesConn(t *testing.T) {
	conn := &mockConn{}
	s := New(conn, Options{Interval: time.Millisecond})
	require.NoError(t, s.Close())
	assert.True(t, conn.closed)
}

// TestLocatedEndToEnd 用假连接跑 N 个周期，验证 RelayLocated 报文
// 逐条合法、x/y 依插值轨迹顺序推进（误差在抖动范围内）、时间戳不回退。
func TestLocatedEndToEnd(t *testing.T) {
	const cycles = 20
	const noisePos = 0.05

	waypoints := []locate.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	seq := locate.LoopSequence(locate.Interpolate(waypoints, 2))
	require.NotEmpty(t, seq)

	model := locate.NewModel(locate.ModelConfig{
		RelayMAC:  "C3:00:00:30:94:F9",
		NoisePos:  noisePos,
		NoiseRSSI: 2,
	}, rand.New(rand.NewSource(7)))

	conn := &mockConn{}
	s := New(conn, Options{Interval: time.Millisecond, MaxMessages: cycles})

	err := s.Run(context.Background(), func(step int) ([]byte, string, error) {
		msg := model.Located(seq[step%len(seq)])
		payload, err := json.Marshal(msg)
		return payload, "located", err
	})
	require.NoError(t, err)
	require.Len(t, conn.messages, cycles)

	var lastTS int64
	for i, raw := range conn.messages {
		var msg locate.Located
		require.NoError(t, json.Unmarshal(raw, &msg), "message %d", i)

		assert.Equal(t, "RelayLocated", msg.Cmd)
		assert.Equal(t, "C3:00:00:30:94:F9", msg.RelayMAC)
		require.Len(t, msg.Anchors, 4)

		want := seq[i%len(seq)]
		assert.LessOrEqual(t, math.Abs(msg.X-want.X), noisePos+0.0005, "message %d x", i)
		assert.LessOrEqual(t, math.Abs(msg.Y-want.Y), noisePos+0.0005, "message %d y", i)

		assert.GreaterOrEqual(t, msg.Timestamp, lastTS, "timestamp 不回退")
		lastTS = msg.Timestamp
	}
}

// TestFramesEndToEnd beacon/relay/combo 随机帧走同一条发送循环
func TestFramesEndToEnd(t *testing.T) {
	builder := frame.NewBuilder(rand.New(rand.NewSource(9)))
	conn := &mockConn{}
	s := New(conn, Options{Interval: time.Millisecond, MaxMessages: 30})

	err := s.Run(context.Background(), func(step int) ([]byte, string, error) {
		payload, kind, err := builder.Next()
		return payload, kind.String(), err
	})
	require.NoError(t, err)
	require.Len(t, conn.messages, 30)

	for _, raw := range conn.messages {
		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Contains(t, decoded, "raw")
	}
}
