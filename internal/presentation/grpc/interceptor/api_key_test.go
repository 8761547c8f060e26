package interceptor

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"points-server/internal/infrastructure/config"
)

func TestAPIKeyInterceptor(t *testing.T) {
	enabled := func(ips ...string) *config.AdminAPIConfig {
		return &config.AdminAPIConfig{Enabled: true, APIKey: "test-api-key", AllowedIPs: ips}
	}

	tests := []struct {
		name         string
		cfg          *config.AdminAPIConfig
		md           metadata.MD
		peerAddr     net.Addr
		expectedCode codes.Code
	}{
		{
			name:         "正常系: 有効なAPIキー",
			cfg:          enabled(),
			md:           metadata.Pairs("x-api-key", "test-api-key"),
			expectedCode: codes.OK,
		},
		{
			name:         "異常系: 管理APIが無効",
			cfg:          &config.AdminAPIConfig{Enabled: false, APIKey: "test-api-key"},
			md:           metadata.Pairs("x-api-key", "test-api-key"),
			expectedCode: codes.PermissionDenied,
		},
		{
			name:         "異常系: メタデータなし",
			cfg:          enabled(),
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "異常系: APIキーなし",
			cfg:          enabled(),
			md:           metadata.MD{},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "異常系: 無効なAPIキー",
			cfg:          enabled(),
			md:           metadata.Pairs("x-api-key", "wrong"),
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "正常系: X-Forwarded-ForがCIDRに含まれる",
			cfg:          enabled("10.0.0.0/8"),
			md:           metadata.Pairs("x-api-key", "test-api-key", "x-forwarded-for", "10.1.2.3, 172.16.0.1"),
			expectedCode: codes.OK,
		},
		{
			name:         "正常系: 接続元アドレスで判定",
			cfg:          enabled("127.0.0.1"),
			md:           metadata.Pairs("x-api-key", "test-api-key"),
			peerAddr:     &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 50051},
			expectedCode: codes.OK,
		},
		{
			name:         "異常系: 許可されていないIP",
			cfg:          enabled("10.0.0.0/8"),
			md:           metadata.Pairs("x-api-key", "test-api-key"),
			peerAddr:     &net.TCPAddr{IP: net.ParseIP("192.168.1.1"), Port: 50051},
			expectedCode: codes.PermissionDenied,
		},
		{
			name:         "異常系: IPが特定できない",
			cfg:          enabled("10.0.0.0/8"),
			md:           metadata.Pairs("x-api-key", "test-api-key"),
			expectedCode: codes.PermissionDenied,
		},
	}

	info := &grpc.UnaryServerInfo{FullMethod: "/points.v1.AdminService/CountPendingTokens"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			if tt.peerAddr != nil {
				ctx = peer.NewContext(ctx, &peer.Peer{Addr: tt.peerAddr})
			}

			resp, err := APIKeyInterceptor(tt.cfg, testLogger())(ctx, nil, info, handler)
			assert.Equal(t, tt.expectedCode, status.Code(err))
			if tt.expectedCode == codes.OK {
				assert.Equal(t, "ok", resp)
			}
		})
	}
}
