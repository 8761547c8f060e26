package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"points-server/internal/domain/account"
	"points-server/internal/domain/catalog"
	"points-server/internal/domain/points"
	"points-server/internal/domain/qr_token"
	"points-server/internal/domain/transaction"
	"points-server/internal/infrastructure/config"
	"points-server/internal/infrastructure/persistence/memory"
	"points-server/internal/infrastructure/persistence/mysql"
	"points-server/internal/infrastructure/registry"
	"points-server/internal/infrastructure/seed"
)

// storage STORAGE_DRIVERに応じたリポジトリ群
type storage struct {
	catalog      catalog.CatalogRepository
	accounts     account.AccountDirectory
	balances     points.BalanceRepository
	transactions transaction.TransactionRepository
	txManager    transaction.TransactionManager
	db           *mysql.DB // memoryの場合はnil
}

func (s *storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		var data *seed.Seed
		if cfg.Storage.CatalogSeedFile != "" {
			s, err := seed.Load(cfg.Storage.CatalogSeedFile)
			if err != nil {
				return nil, err
			}
			data = s
		}
		cat, err := memory.NewCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}
		return &storage{
			catalog:      cat,
			accounts:     cat,
			balances:     memory.NewBalanceRepository(),
			transactions: memory.NewTransactionRepository(),
			txManager:    memory.NewTransactionManager(),
		}, nil

	case "mysql":
		db, err := mysql.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.HealthCheck(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database health check failed: %w", err)
		}
		return &storage{
			catalog:      mysql.NewCatalogRepository(db),
			accounts:     mysql.NewAccountDirectory(db),
			balances:     mysql.NewBalanceRepository(db),
			transactions: mysql.NewTransactionRepository(db),
			txManager:    mysql.NewTransactionManager(db),
			db:           db,
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
}

// pendingRegistry REGISTRY_BACKENDに応じた保留トークンレジストリ
type pendingRegistry interface {
	qr_token.Registry
	Close() error
}

type redisRegistry struct {
	*registry.RedisRegistry
	client *redis.Client
}

func (r *redisRegistry) Close() error {
	return r.client.Close()
}

type mysqlRegistry struct {
	*mysql.PendingTokenRegistry
}

func (mysqlRegistry) Close() error {
	return nil
}

func openRegistry(ctx context.Context, cfg *config.Config, store *storage) (pendingRegistry, error) {
	switch cfg.Registry.Backend {
	case "memory":
		reg, err := registry.NewBigCacheRegistry(ctx, cfg.Registry.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory registry: %w", err)
		}
		return reg, nil

	case "redis":
		client := registry.NewRedisClient(&cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &redisRegistry{
			RedisRegistry: registry.NewRedisRegistry(client, cfg.Redis.KeyPrefix),
			client:        client,
		}, nil

	case "mysql":
		if store.db == nil {
			return nil, fmt.Errorf("mysql registry requires mysql storage")
		}
		return mysqlRegistry{mysql.NewPendingTokenRegistry(store.db)}, nil
	}
	return nil, fmt.Errorf("unsupported registry backend: %s", cfg.Registry.Backend)
}
