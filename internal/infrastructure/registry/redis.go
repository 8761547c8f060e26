package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"points-server/internal/domain/qr_token"
	"points-server/internal/infrastructure/config"
)

// RedisRegistry Redisを使った保留トークンレジストリ（複数インスタンスで共有できる）
type RedisRegistry struct {
	client redis.UniversalClient
	prefix string
	tracer trace.Tracer
}

// NewRedisClient 設定からRedisクライアントを作成
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewRedisRegistry 新しいRedisRegistryを作成
func NewRedisRegistry(client redis.UniversalClient, prefix string) *RedisRegistry {
	return &RedisRegistry{
		client: client,
		prefix: prefix,
		tracer: otel.Tracer("pending-token-registry"),
	}
}

func (r *RedisRegistry) key(raw string) string {
	return r.prefix + qr_token.Key(raw)
}

// Register SET NX PX で登録（失効はRedisのTTLに任せる）
func (r *RedisRegistry) Register(ctx context.Context, raw string, ttl time.Duration) error {
	ctx, span := r.tracer.Start(ctx, "RedisRegistry.Register")
	defer span.End()

	// PXはミリ秒単位のため、それ未満の残り時間は登録しない
	if ttl < time.Millisecond {
		return nil
	}
	if err := r.client.SetNX(ctx, r.key(raw), 1, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

// IsPending EXISTS で確認
func (r *RedisRegistry) IsPending(ctx context.Context, raw string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "RedisRegistry.IsPending")
	defer span.End()

	n, err := r.client.Exists(ctx, r.key(raw)).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to look up token: %w", err)
	}
	return n == 1, nil
}

// Retire DEL の削除件数が1なら取得成功
func (r *RedisRegistry) Retire(ctx context.Context, raw string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "RedisRegistry.Retire")
	defer span.End()

	n, err := r.client.Del(ctx, r.key(raw)).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to retire token: %w", err)
	}
	span.SetAttributes(attribute.Bool("registry.claimed", n == 1))
	return n == 1, nil
}

// Sweep RedisのTTLで失効するため削除対象はない
func (r *RedisRegistry) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

// Len プレフィックスに一致するキー数をSCANで数える
func (r *RedisRegistry) Len(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan tokens: %w", err)
	}
	return n, nil
}
