package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokenapp "points-server/internal/application/token_transaction"
	"points-server/internal/domain/account"
	"points-server/internal/domain/points"
	"points-server/internal/domain/qr_token"
	"points-server/internal/infrastructure/qrcode"
)

func newQRCodeHandler(svc *MockTokenTransactionService) *QRCodeHandler {
	return NewQRCodeHandler(svc, qrcode.NewEncoder(128))
}

func TestQRCodeHandler_AssignPoints(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 9, 2, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockTokenTransactionService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "正常系: QRコード発行",
			body: `{"items":[{"product_id":"coffee","quantity":2}]}`,
			setupMock: func(m *MockTokenTransactionService) {
				m.On("IssueAssignment", mock.Anything, mock.Anything, mock.MatchedBy(func(req *tokenapp.IssueAssignmentRequest) bool {
					return len(req.Items) == 1 && req.Items[0].ProductID == "coffee" && req.Items[0].Quantity == 2
				})).Return(&tokenapp.IssueResponse{
					Token:       "signed-token",
					Kind:        "assignment",
					ExpiresAt:   expiresAt,
					TotalPoints: 20,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "異常系: サービスがロール違反を返す",
			body: `{"items":[]}`,
			setupMock: func(m *MockTokenTransactionService) {
				m.On("IssueAssignment", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, account.ErrRoleNotPermitted)
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name: "異常系: 数量が不正",
			body: `{"items":[{"product_id":"coffee","quantity":0}]}`,
			setupMock: func(m *MockTokenTransactionService) {
				m.On("IssueAssignment", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: quantity: must be no less than 1", qr_token.ErrInvalidRequest))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_request",
		},
		{
			name:           "異常系: JSONが不正",
			body:           `{"items":`,
			setupMock:      func(m *MockTokenTransactionService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTokenTransactionService)
			tt.setupMock(svc)

			e := newTestEcho(mustPrincipal(t, "shop-a", account.RoleMerchant))
			e.POST("/api/v1/QRCodes/assignPoints", newQRCodeHandler(svc).AssignPoints)

			rec := doRequest(e, http.MethodPost, "/api/v1/QRCodes/assignPoints", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				var resp QRCodeResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "signed-token", resp.Token)
				assert.Equal(t, "assignment", resp.Kind)
				assert.Equal(t, "2026-01-01T09:02:00Z", resp.ExpiresAt)
				assert.Equal(t, int64(20), resp.TotalPoints)
				assert.True(t, strings.HasPrefix(resp.QRCode, "data:image/png;base64,"))
			}
			if tt.expectedError != "" {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedError, resp["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestQRCodeHandler_RedeemPrize(t *testing.T) {
	svc := new(MockTokenTransactionService)
	svc.On("IssueRedemption", mock.Anything, mock.MatchedBy(func(p *account.Principal) bool {
		return p.ID() == "client-1"
	}), &tokenapp.IssueRedemptionRequest{PrizeID: "mug"}).Return(&tokenapp.IssueResponse{
		Token:     "redeem-token",
		Kind:      "redemption",
		ExpiresAt: time.Date(2026, 1, 1, 9, 2, 0, 0, time.UTC),
	}, nil)
	svc.On("IssueRedemption", mock.Anything, mock.Anything, &tokenapp.IssueRedemptionRequest{PrizeID: ""}).
		Return(nil, qr_token.ErrEmptyPrizeID)

	e := newTestEcho(mustPrincipal(t, "client-1", account.RoleClient))
	e.POST("/api/v1/QRCodes/redeemPrize", newQRCodeHandler(svc).RedeemPrize)

	t.Run("正常系: 景品交換QRコード発行", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/QRCodes/redeemPrize", `{"prize_id":"mug"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp QRCodeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "redemption", resp.Kind)
		assert.Zero(t, resp.TotalPoints)
		assert.NotEmpty(t, resp.QRCode)
	})

	t.Run("異常系: 景品IDが空", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/QRCodes/redeemPrize", `{"prize_id":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQRCodeHandler_Scanned(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "正常系: 読み取り成功",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "異常系: 使用済み",
			err:            qr_token.ErrTokenRejected,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "token_rejected",
		},
		{
			name:           "異常系: ポイント不足",
			err:            fmt.Errorf("failed to debit: %w", points.ErrInsufficientPoints),
			expectedStatus: http.StatusPaymentRequired,
			expectedError:  "insufficient_points",
		},
		{
			name:           "異常系: ロール不一致",
			err:            account.ErrRoleNotPermitted,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTokenTransactionService)
			call := svc.On("Consume", mock.Anything, mock.Anything, &tokenapp.ConsumeRequest{Token: "tok"})
			if tt.err != nil {
				call.Return(nil, tt.err)
			} else {
				call.Return(&tokenapp.ConsumeResponse{
					TransactionID: "txn-1",
					Kind:          "assignment",
					ClientID:      "client-1",
					ShopID:        "shop-a",
					Points:        20,
					BalanceAfter:  120,
				}, nil)
			}

			e := newTestEcho(mustPrincipal(t, "client-1", account.RoleClient))
			e.POST("/api/v1/QRCodes/scanned", newQRCodeHandler(svc).Scanned)

			rec := doRequest(e, http.MethodPost, "/api/v1/QRCodes/scanned", `{"token":"tok"}`)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.err == nil {
				var resp ScannedResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "txn-1", resp.TransactionID)
				assert.Equal(t, int64(120), resp.BalanceAfter)
				return
			}
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp["error"])
		})
	}
}

func TestQRCodeHandler_Unauthenticated(t *testing.T) {
	svc := new(MockTokenTransactionService)
	e := newTestEcho(nil)
	e.POST("/api/v1/QRCodes/scanned", newQRCodeHandler(svc).Scanned)

	rec := doRequest(e, http.MethodPost, "/api/v1/QRCodes/scanned", `{"token":"tok"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}
