package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	authapp "points-server/internal/application/auth"
	balanceapp "points-server/internal/application/balance"
	historyapp "points-server/internal/application/history"
	"points-server/internal/application/recorder"
	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/service"
	otelinfra "points-server/internal/infrastructure/observability/otel"
	"points-server/internal/infrastructure/observability/prom"
	"points-server/internal/infrastructure/qrcode"
	"points-server/internal/infrastructure/registry"
	"points-server/internal/infrastructure/token"
	grpcserver "points-server/internal/presentation/grpc"
	"points-server/internal/presentation/rest"
)

const shutdownTimeout = 10 * time.Second

var qrImageSize int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "REST APIとgRPCサーバーを起動",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&qrImageSize, "qr-size", 256, "QRコード画像の一辺のピクセル数")
}

func serve(ctx context.Context) error {
	cfg, z, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = z.Sync() }()

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracerShutdown(ctx)
		_ = meterShutdown(ctx)
	}()

	logger := otelinfra.NewLoggerWithZap(otelinfra.Tracer("points-server"), z)
	metrics, err := otelinfra.NewMetrics("points-server")
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reg, err := openRegistry(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer reg.Close()

	codec, err := token.NewJWTCodec(cfg.Token.Secret, cfg.Token.Issuer)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	rec := recorder.NewRecorder(store.transactions, logger, metrics,
		cfg.Recorder.Workers, cfg.Recorder.BufferSize, cfg.Recorder.Timeout)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rec.Close(ctx); err != nil {
			logger.Error(ctx, "Transaction recorder did not drain", err, nil)
		}
	}()

	collector := prom.NewCollector()
	if err := collector.WatchPending(reg); err != nil {
		return fmt.Errorf("failed to register pending token gauge: %w", err)
	}
	if err := collector.WatchRecorderQueue(rec); err != nil {
		return fmt.Errorf("failed to register recorder gauge: %w", err)
	}
	sweeper := registry.NewSweeper(reg, cfg.Registry.SweepInterval, logger, collector.ObserveSweep)

	ledger := service.NewLedgerService(store.balances, store.accounts, store.txManager, cfg.Ledger.MaxRetries)
	tokens := tokenapp.NewTokenTransactionApplicationService(codec, reg, store.catalog, ledger, rec, cfg.Token.TTL, logger, metrics)
	balances := balanceapp.NewBalanceApplicationService(ledger, store.accounts, logger)
	history := historyapp.NewHistoryApplicationService(store.transactions, logger)
	images := qrcode.NewEncoder(qrImageSize)

	router, err := rest.NewRouter(cfg, logger, metrics, rest.Services{
		TokenTransactions: tokens,
		Balances:          balances,
		History:           history,
		Auth:              authapp.NewAuthApplicationService(&cfg.JWT, logger),
		PendingTokens:     reg,
		Sweeper:           sweeper,
		QRImages:          images,
		MetricsHandler:    collector.Handler(),
	})
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	grpcSrv, err := grpcserver.NewServer(cfg, logger, grpcserver.Services{
		TokenTransactions: tokens,
		Balances:          balances,
		History:           history,
		QRImages:          images,
		PendingTokens:     reg,
		Sweeper:           sweeper,
	})
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		address := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info(gctx, "REST API server starting", map[string]interface{}{"address": address})
		if err := router.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST API server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return grpcSrv.Start()
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(router.Shutdown(shutdownCtx), grpcSrv.Stop(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "Servers stopped", nil)
	return nil
}
