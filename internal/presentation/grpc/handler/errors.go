package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"points-server/internal/domain/account"
	"points-server/internal/domain/catalog"
	"points-server/internal/domain/points"
	"points-server/internal/domain/qr_token"
	"points-server/internal/domain/transaction"
)

// statusMapping ドメインエラーとgRPCステータスの対応
type statusMapping struct {
	target  error
	code    codes.Code
	message string // 空の場合はerr.Error()を返す
}

// statusMappings 上から順に判定する
var statusMappings = []statusMapping{
	{target: qr_token.ErrTokenRejected, code: codes.FailedPrecondition, message: "QR code is invalid, expired or already used"},
	{target: qr_token.ErrInvalidRequest, code: codes.InvalidArgument},
	{target: qr_token.ErrEmptyPrizeID, code: codes.InvalidArgument},
	{target: qr_token.ErrInvalidQuantity, code: codes.InvalidArgument},
	{target: transaction.ErrInvalidTransaction, code: codes.InvalidArgument},
	{target: account.ErrInvalidAccountID, code: codes.InvalidArgument},
	{target: account.ErrInvalidRole, code: codes.InvalidArgument},
	{target: account.ErrRoleNotPermitted, code: codes.PermissionDenied},
	{target: account.ErrPrincipalMissing, code: codes.Unauthenticated},
	{target: points.ErrInsufficientPoints, code: codes.ResourceExhausted, message: "not enough points"},
	{target: catalog.ErrProductNotFound, code: codes.NotFound},
	{target: catalog.ErrPrizeNotFound, code: codes.NotFound},
	{target: catalog.ErrNotOwnedByShop, code: codes.NotFound},
	{target: account.ErrAccountNotFound, code: codes.NotFound},
	{target: transaction.ErrTransactionNotFound, code: codes.NotFound},
}

// ToStatus エラーをgRPCステータスに変換する。既にステータスを持つエラーはそのまま返す
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, m := range statusMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return status.Error(m.code, message)
	}

	return status.Error(codes.Internal, "internal error")
}
