package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
	"points-server/internal/presentation/grpc/handler"
	"points-server/internal/presentation/grpc/interceptor"
	"points-server/internal/presentation/grpc/pb"
)

// Services gRPCハンドラーが使うアプリケーションサービス群
type Services struct {
	TokenTransactions handler.TokenTransactionService
	Balances          handler.BalanceService
	History           handler.HistoryService
	QRImages          handler.ImageEncoder
	PendingTokens     handler.PendingCounter
	Sweeper           handler.Sweeper
}

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	listener net.Listener
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(cfg *config.Config, logger *otelinfra.Logger, services Services) (*Server, error) {
	address := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, services, listener), nil
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成（テスト用）
func NewServerWithListener(cfg *config.Config, logger *otelinfra.Logger, services Services, listener net.Listener) *Server {
	opts := []grpc.ServerOption{
		// QRCodeServiceはJWT、AdminServiceはAPIキーで認証
		grpc.ChainUnaryInterceptor(
			interceptor.ForService(pb.QRCodeServiceName, interceptor.AuthInterceptor(&cfg.JWT, logger)),
			interceptor.ForService(pb.AdminServiceName, interceptor.APIKeyInterceptor(&cfg.AdminAPI, logger)),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	grpcServer := grpc.NewServer(opts...)

	pb.RegisterQRCodeServiceServer(grpcServer, handler.NewQRCodeHandler(
		services.TokenTransactions,
		services.Balances,
		services.History,
		services.QRImages,
	))
	pb.RegisterAdminServiceServer(grpcServer, handler.NewAdminHandler(services.PendingTokens, services.Sweeper))

	// リフレクションを有効化（開発環境用）
	if cfg.Environment == "development" {
		reflection.Register(grpcServer)
	}

	return &Server{
		server:   grpcServer,
		listener: listener,
		logger:   logger,
	}
}

// Start サーバーを起動
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server starting", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})
	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止
func (s *Server) Stop(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		// タイムアウトした場合は強制停止
		s.logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Addr 待ち受けアドレス
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
