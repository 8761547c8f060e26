package prom

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "points"

// lenTimeout ゲージ取得時にバックエンドへ問い合わせる上限時間
const lenTimeout = 2 * time.Second

// PendingCounter 保留トークン数を返すもの
type PendingCounter interface {
	Len(ctx context.Context) (int, error)
}

// QueueDepther 非同期キューの滞留数を返すもの
type QueueDepther interface {
	QueueDepth() int
}

// Collector /metrics で公開するPrometheusメトリクス
type Collector struct {
	registry   *prometheus.Registry
	sweptTotal prometheus.Counter
	sweepRuns  prometheus.Counter
}

// NewCollector 新しいCollectorを作成
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: registry,
		sweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_tokens_swept_total",
			Help:      "Total number of expired pending tokens removed by the sweeper",
		}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_token_sweeps_total",
			Help:      "Total number of sweeper runs",
		}),
	}
	registry.MustRegister(c.sweptTotal, c.sweepRuns)
	return c
}

// WatchPending 保留トークン数のゲージを登録
func (c *Collector) WatchPending(pending PendingCounter) error {
	return c.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_tokens",
		Help:      "Current number of issued tokens that have not been consumed or swept",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), lenTimeout)
		defer cancel()
		n, err := pending.Len(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	}))
}

// WatchRecorderQueue 取引記録キューの滞留数ゲージを登録
func (c *Collector) WatchRecorderQueue(q QueueDepther) error {
	return c.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "transaction_recorder_queue_depth",
		Help:      "Number of transaction records waiting to be persisted",
	}, func() float64 {
		return float64(q.QueueDepth())
	}))
}

// ObserveSweep スイープ結果を記録
func (c *Collector) ObserveSweep(removed int) {
	c.sweepRuns.Inc()
	if removed > 0 {
		c.sweptTotal.Add(float64(removed))
	}
}

// Registry 内部のレジストリを返す
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler /metrics 用のハンドラーを返す
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
