package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"points-server/internal/application/auth"
	"points-server/internal/domain/account"
	"points-server/internal/infrastructure/config"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

// AuthInterceptor JWT認証インターセプター。検証済みのPrincipalをコンテキストに設定する
func AuthInterceptor(cfg *config.JWTConfig, logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			logger.Warn(ctx, "Missing metadata", nil)
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			logger.Warn(ctx, "Missing authorization header", nil)
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		scheme, tokenString, found := strings.Cut(authHeaders[0], " ")
		if !found || scheme != "Bearer" || tokenString == "" {
			logger.Warn(ctx, "Invalid authorization header format", nil)
			return nil, status.Error(codes.Unauthenticated, "invalid authorization header format")
		}

		principal, err := auth.ParseBearerToken(cfg, tokenString)
		if err != nil {
			logger.Warn(ctx, "Invalid token", map[string]interface{}{
				"error":  err.Error(),
				"method": info.FullMethod,
			})
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		return handler(account.WithPrincipal(ctx, principal), req)
	}
}

// ForService 指定サービスのメソッドにだけinterceptorを適用する
func ForService(serviceName string, interceptor grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	prefix := "/" + serviceName + "/"
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		return interceptor(ctx, req, info, handler)
	}
}
