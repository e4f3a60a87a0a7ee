// Package sender 维护一条到接收服务的 websocket 长连接，
// 按固定节奏逐条发送文本报文。连接失败或中途写失败都直接终止，
// 不重连不补发（一次性测试工具，不做生产加固）。
package sender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/ble-mock-sender/internal/metrics"
)

// Conn 发送侧需要的最小连接能力，测试注入假连接
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// PayloadFunc 产出第 step 个周期要发送的报文与帧型标签
type PayloadFunc func(step int) (payload []byte, kind string, err error)

// Options 发送循环参数
type Options struct {
	Interval    time.Duration
	MaxMessages int // 0 表示不限
	Logger      *zap.Logger
	Metrics     *metrics.SenderMetrics // 可为 nil
}

// Sender 发送循环
type Sender struct {
	conn    Conn
	opts    Options
	limiter *rate.Limiter
}

// Dial 建立 websocket 连接。失败即返回错误，由调用方决定退出。
func Dial(url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// New 创建发送循环。节奏由 rate.Limiter 控制，
// ctx 取消时 Wait 立即返回，测试无需真实等待。
func New(conn Conn, opts Options) *Sender {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Sender{
		conn:    conn,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
	}
}

// Run 驱动发送循环直到 ctx 取消、报文数达到上限或出错。
// ctx 取消视为正常关停，返回 nil；其余错误原样上抛。
func (s *Sender) Run(ctx context.Context, build PayloadFunc) error {
	log := s.opts.Logger

	for step := 0; s.opts.MaxMessages == 0 || step < s.opts.MaxMessages; step++ {
		if err := s.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("send loop stopped", zap.Int("sent", step))
				return nil
			}
			return fmt.Errorf("wait interval: %w", err)
		}

		payload, kind, err := build(step)
		if err != nil {
			return fmt.Errorf("build payload at step %d: %w", step, err)
		}

		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			if s.opts.Metrics != nil {
				s.opts.Metrics.SendErrors.Inc()
			}
			return fmt.Errorf("send %s at step %d: %w", kind, step, err)
		}

		if s.opts.Metrics != nil {
			s.opts.Metrics.SentTotal.WithLabelValues(kind).Inc()
		}
		log.Info("sent",
			zap.Int("step", step),
			zap.String("kind", kind),
			zap.ByteString("payload", payload),
		)
	}

	log.Info("send loop finished", zap.Int("sent", s.opts.MaxMessages))
	return nil
}

// Close 关闭底层连接
func (s *Sender) Close() error {
	return s.conn.Close()
}
