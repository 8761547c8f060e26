package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PendingCounter 保留トークン数を返すもの
type PendingCounter interface {
	Len(ctx context.Context) (int, error)
}

// Sweeper 期限切れの保留トークンを掃除するもの
type Sweeper interface {
	SweepOnce(ctx context.Context) int
}

// AdminHandler 保留トークン管理ハンドラー
type AdminHandler struct {
	pending PendingCounter
	sweeper Sweeper
}

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(pending PendingCounter, sweeper Sweeper) *AdminHandler {
	return &AdminHandler{
		pending: pending,
		sweeper: sweeper,
	}
}

// GetPendingTokens 保留トークン数取得ハンドラー
// @Summary 保留トークン数を取得（管理API）
// @Tags admin
// @Produce json
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} PendingTokensResponse "取得成功"
// @Router /admin/pending-tokens [get]
func (h *AdminHandler) GetPendingTokens(c echo.Context) error {
	n, err := h.pending.Len(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed to count pending tokens: %w", err)
	}
	return c.JSON(http.StatusOK, PendingTokensResponse{Pending: n})
}

// SweepPendingTokens 保留トークン掃除ハンドラー
// @Summary 期限切れの保留トークンを掃除（管理API）
// @Tags admin
// @Produce json
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} SweepResponse "掃除成功"
// @Router /admin/pending-tokens/sweep [post]
func (h *AdminHandler) SweepPendingTokens(c echo.Context) error {
	ctx := c.Request().Context()
	removed := h.sweeper.SweepOnce(ctx)

	n, err := h.pending.Len(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending tokens: %w", err)
	}
	return c.JSON(http.StatusOK, SweepResponse{Removed: removed, Pending: n})
}
