//go:build integration

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"points-server/internal/domain/points"
	"points-server/internal/domain/service"
)

var integrationDB *DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not construct pool: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=secret",
			"MYSQL_DATABASE=points_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start mysql: %v", err)
	}
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("root:secret@tcp(localhost:%s)/points_db?charset=utf8mb4&parseTime=True&loc=UTC", resource.GetPort("3306/tcp"))
	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		sqlDB, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return err
		}
		integrationDB = &DB{DB: sqlDB}
		return nil
	}); err != nil {
		log.Fatalf("could not connect to mysql: %v", err)
	}

	if err := Migrate(context.Background(), integrationDB); err != nil {
		log.Fatalf("could not migrate: %v", err)
	}

	code := m.Run()

	_ = integrationDB.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("could not purge resource: %v", err)
	}
	os.Exit(code)
}

func seedClient(t *testing.T, clientID string) {
	t.Helper()
	_, err := integrationDB.Exec(`INSERT IGNORE INTO clients (client_id) VALUES (?)`, clientID)
	require.NoError(t, err)
}

func TestIntegration_MigrateIsIdempotent(t *testing.T) {
	require.NoError(t, Migrate(context.Background(), integrationDB))
}

func TestIntegration_ConcurrentCredits(t *testing.T) {
	ctx := context.Background()
	seedClient(t, "it-client-credit")

	ledger := service.NewLedgerService(
		NewBalanceRepository(integrationDB),
		NewAccountDirectory(integrationDB),
		NewTransactionManager(integrationDB),
		10,
	)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Credit(ctx, "it-client-credit", "it-shop", 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := ledger.Balance(ctx, "it-client-credit", "it-shop")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*5), balance)
}

func TestIntegration_ConcurrentDebitsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	seedClient(t, "it-client-debit")

	ledger := service.NewLedgerService(
		NewBalanceRepository(integrationDB),
		NewAccountDirectory(integrationDB),
		NewTransactionManager(integrationDB),
		10,
	)
	_, err := ledger.Credit(ctx, "it-client-debit", "it-shop", 50)
	require.NoError(t, err)

	var succeeded, insufficient int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Debit(ctx, "it-client-debit", "it-shop", 20)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case assert.ErrorIs(t, err, points.ErrInsufficientPoints):
				atomic.AddInt32(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), succeeded)
	assert.Equal(t, int32(8), insufficient)

	balance, err := ledger.Balance(ctx, "it-client-debit", "it-shop")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestIntegration_PendingTokenRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewPendingTokenRegistry(integrationDB)

	require.NoError(t, r.Register(ctx, "it-token", time.Minute))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := r.Retire(ctx, "it-token")
			assert.NoError(t, err)
			if claimed {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	require.NoError(t, r.Register(ctx, "it-expired", time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	pending, err := r.IsPending(ctx, "it-expired")
	require.NoError(t, err)
	assert.False(t, pending)

	removed, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)
}
