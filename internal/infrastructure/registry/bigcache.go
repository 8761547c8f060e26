package registry

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/qr_token"
)

// defaultLifeWindow bigcache自体の失効時間（トークンの有効期限は値で管理する）
const defaultLifeWindow = 24 * time.Hour

// BigCacheRegistry bigcacheを使ったプロセス内の保留トークンレジストリ
// 値にはトークンの失効時刻（UnixNano）を格納する
type BigCacheRegistry struct {
	cache  *bigcache.BigCache
	now    func() time.Time
	tracer trace.Tracer
}

// BigCacheOption BigCacheRegistryのオプション
type BigCacheOption func(*BigCacheRegistry)

// WithBigCacheClock 現在時刻の取得関数を差し替える
func WithBigCacheClock(now func() time.Time) BigCacheOption {
	return func(r *BigCacheRegistry) {
		r.now = now
	}
}

// NewBigCacheRegistry 新しいBigCacheRegistryを作成
func NewBigCacheRegistry(ctx context.Context, maxEntries int, opts ...BigCacheOption) (*BigCacheRegistry, error) {
	cfg := bigcache.DefaultConfig(defaultLifeWindow)
	cfg.Shards = 256
	if maxEntries > 0 {
		cfg.MaxEntriesInWindow = maxEntries
	}
	cfg.MaxEntrySize = 128
	// 失効はSweepで行うため、bigcacheのクリーンアップは使わない
	cfg.CleanWindow = 0
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigcache: %w", err)
	}

	r := &BigCacheRegistry{
		cache:  cache,
		now:    time.Now,
		tracer: otel.Tracer("pending-token-registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register トークンを保留状態として登録
func (r *BigCacheRegistry) Register(ctx context.Context, raw string, ttl time.Duration) error {
	_, span := r.tracer.Start(ctx, "BigCacheRegistry.Register")
	defer span.End()

	if ttl <= 0 {
		return nil
	}

	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(r.now().Add(ttl).UnixNano()))
	if err := r.cache.Set(qr_token.Key(raw), value); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

// IsPending 保留中かどうか
func (r *BigCacheRegistry) IsPending(ctx context.Context, raw string) (bool, error) {
	_, span := r.tracer.Start(ctx, "BigCacheRegistry.IsPending")
	defer span.End()

	value, err := r.cache.Get(qr_token.Key(raw))
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to look up token: %w", err)
	}
	return r.alive(value), nil
}

// Retire トークンを取り除く。Deleteはシャード単位でロックされるため、成功するのは1回だけ
func (r *BigCacheRegistry) Retire(ctx context.Context, raw string) (bool, error) {
	_, span := r.tracer.Start(ctx, "BigCacheRegistry.Retire")
	defer span.End()

	key := qr_token.Key(raw)
	value, err := r.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to look up token: %w", err)
	}

	if err := r.cache.Delete(key); err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to retire token: %w", err)
	}

	claimed := r.alive(value)
	span.SetAttributes(attribute.Bool("registry.claimed", claimed))
	return claimed, nil
}

// Sweep 期限切れのエントリを削除
func (r *BigCacheRegistry) Sweep(ctx context.Context) (int, error) {
	_, span := r.tracer.Start(ctx, "BigCacheRegistry.Sweep")
	defer span.End()

	var expired []string
	it := r.cache.Iterator()
	for it.SetNext() {
		entry, err := it.Value()
		if err != nil {
			continue
		}
		if !r.alive(entry.Value()) {
			expired = append(expired, entry.Key())
		}
	}

	removed := 0
	for _, key := range expired {
		if err := r.cache.Delete(key); err == nil {
			removed++
		}
	}
	span.SetAttributes(attribute.Int("registry.removed", removed))
	return removed, nil
}

// Len 保留中（期限内）のエントリ数
func (r *BigCacheRegistry) Len(ctx context.Context) (int, error) {
	n := 0
	it := r.cache.Iterator()
	for it.SetNext() {
		entry, err := it.Value()
		if err != nil {
			continue
		}
		if r.alive(entry.Value()) {
			n++
		}
	}
	return n, nil
}

// Close キャッシュを閉じる
func (r *BigCacheRegistry) Close() error {
	return r.cache.Close()
}

func (r *BigCacheRegistry) alive(value []byte) bool {
	if len(value) != 8 {
		return false
	}
	expiresAt := int64(binary.BigEndian.Uint64(value))
	return r.now().UnixNano() < expiresAt
}
