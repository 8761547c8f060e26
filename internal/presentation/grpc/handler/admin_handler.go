package handler

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"points-server/internal/presentation/grpc/pb"
)

// PendingCounter 保留トークン数を返すもの
type PendingCounter interface {
	Len(ctx context.Context) (int, error)
}

// Sweeper 期限切れの保留トークンを掃除するもの
type Sweeper interface {
	SweepOnce(ctx context.Context) int
}

// AdminHandler points.v1.AdminService の実装
type AdminHandler struct {
	pending PendingCounter
	sweeper Sweeper
}

var _ pb.AdminServiceServer = (*AdminHandler)(nil)

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(pending PendingCounter, sweeper Sweeper) *AdminHandler {
	return &AdminHandler{pending: pending, sweeper: sweeper}
}

// CountPendingTokens 保留トークン数
func (h *AdminHandler) CountPendingTokens(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	n, err := h.pending.Len(ctx)
	if err != nil {
		return nil, ToStatus(fmt.Errorf("failed to count pending tokens: %w", err))
	}
	return newStruct(map[string]interface{}{"pending": n})
}

// SweepPendingTokens 期限切れの保留トークンを掃除
func (h *AdminHandler) SweepPendingTokens(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	removed := h.sweeper.SweepOnce(ctx)
	n, err := h.pending.Len(ctx)
	if err != nil {
		return nil, ToStatus(fmt.Errorf("failed to count pending tokens: %w", err))
	}
	return newStruct(map[string]interface{}{
		"removed": removed,
		"pending": n,
	})
}
