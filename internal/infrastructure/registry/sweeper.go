package registry

import (
	"context"
	"time"

	"points-server/internal/domain/qr_token"
	"points-server/internal/infrastructure/observability/otel"
)

// Sweeper 期限切れの保留トークンを定期的に削除する
type Sweeper struct {
	registry qr_token.Registry
	interval time.Duration
	logger   *otel.Logger
	observe  func(removed int)
}

// NewSweeper 新しいSweeperを作成。observeはnil可
func NewSweeper(registry qr_token.Registry, interval time.Duration, logger *otel.Logger, observe func(removed int)) *Sweeper {
	if observe == nil {
		observe = func(int) {}
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
		observe:  observe,
	}
}

// Run ctxがキャンセルされるまでinterval毎にSweepを実行
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce 1回だけSweepを実行し、削除件数を返す
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed, err := s.registry.Sweep(ctx)
	if err != nil {
		s.logger.Error(ctx, "Failed to sweep pending tokens", err, nil)
		return 0
	}
	s.observe(removed)
	if removed > 0 {
		s.logger.Debug(ctx, "Swept expired pending tokens", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}
