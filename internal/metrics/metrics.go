package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// SenderMetrics 发送侧业务指标
type SenderMetrics struct {
	SentTotal  *prometheus.CounterVec // labels: kind=beacon|relay|combo|located
	SendErrors prometheus.Counter
	PathStep   prometheus.Gauge // locatesender 当前路径游标
}

// NewSenderMetrics 注册并返回发送侧指标
func NewSenderMetrics(reg *prometheus.Registry) *SenderMetrics {
	m := &SenderMetrics{
		SentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_messages_sent_total",
			Help: "Messages sent over the websocket by payload kind.",
		}, []string{"kind"}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mock_send_errors_total",
			Help: "Failed websocket writes.",
		}),
		PathStep: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mock_path_step",
			Help: "Current step index into the interpolated path.",
		}),
	}
	reg.MustRegister(m.SentTotal, m.SendErrors, m.PathStep)
	return m
}
