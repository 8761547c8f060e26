package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"points-server/internal/domain/points"
)

func newTestBalanceRepository(t *testing.T) (*BalanceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &BalanceRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}, mock
}

func TestBalanceRepository_FindByClientAndShop(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      *points.Balance
		wantError error
	}{
		{
			name: "正常系: 残高を取得",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"client_id", "shop_id", "points", "version"}).
					AddRow("client-1", "shop-1", int64(120), 3)
				mock.ExpectQuery(`SELECT client_id, shop_id, points, version FROM point_balances WHERE client_id = \? AND shop_id = \?$`).
					WithArgs("client-1", "shop-1").
					WillReturnRows(rows)
			},
			want: points.MustNewBalance("client-1", "shop-1", 120, 3),
		},
		{
			name: "異常系: 残高が存在しない",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM point_balances`).
					WithArgs("client-1", "shop-1").
					WillReturnRows(sqlmock.NewRows([]string{"client_id", "shop_id", "points", "version"}))
			},
			wantError: points.ErrBalanceNotFound,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM point_balances`).
					WithArgs("client-1", "shop-1").
					WillReturnError(errors.New("db error"))
			},
			wantError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestBalanceRepository(t)
			tt.setupMock(mock)

			got, err := repo.FindByClientAndShop(context.Background(), "client-1", "shop-1")

			if tt.wantError != nil {
				require.Error(t, err)
				if errors.Is(tt.wantError, points.ErrBalanceNotFound) {
					assert.ErrorIs(t, err, points.ErrBalanceNotFound)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBalanceRepository_FindByClientAndShop_LocksInTransaction(t *testing.T) {
	repo, mock := newTestBalanceRepository(t)
	tm := NewTransactionManager(repo.db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM point_balances WHERE client_id = \? AND shop_id = \? FOR UPDATE`).
		WithArgs("client-1", "shop-1").
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "shop_id", "points", "version"}).
			AddRow("client-1", "shop-1", int64(10), 0))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.FindByClientAndShop(ctx, "client-1", "shop-1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepository_FindByClient(t *testing.T) {
	repo, mock := newTestBalanceRepository(t)

	rows := sqlmock.NewRows([]string{"client_id", "shop_id", "points", "version"}).
		AddRow("client-1", "shop-1", int64(10), 1).
		AddRow("client-1", "shop-2", int64(0), 4)
	mock.ExpectQuery(`SELECT (.+) FROM point_balances WHERE client_id = \? ORDER BY shop_id`).
		WithArgs("client-1").
		WillReturnRows(rows)

	got, err := repo.FindByClient(context.Background(), "client-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "shop-1", got[0].ShopID())
	assert.Equal(t, int64(10), got[0].Points())
	assert.Equal(t, "shop-2", got[1].ShopID())
	assert.Equal(t, 4, got[1].Version())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantError bool
	}{
		{
			name: "正常系: 新規作成",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO point_balances (.+) VALUES \(\?, \?, 0, 0\) ON DUPLICATE KEY UPDATE client_id = client_id`).
					WithArgs("client-1", "shop-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "正常系: 既に存在する場合も成功",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO point_balances`).
					WithArgs("client-1", "shop-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO point_balances`).
					WithArgs("client-1", "shop-1").
					WillReturnError(errors.New("db error"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestBalanceRepository(t)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), points.MustNewBalance("client-1", "shop-1", 0, 0))

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBalanceRepository_Save(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(mock sqlmock.Sqlmock)
		wantError   error
		wantVersion int
	}{
		{
			name: "正常系: 保存しバージョンが進む",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE point_balances SET points = \?, version = version \+ 1 WHERE client_id = \? AND shop_id = \? AND version = \?`).
					WithArgs(int64(150), "client-1", "shop-1", 2).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantVersion: 3,
		},
		{
			name: "異常系: バージョン競合",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE point_balances`).
					WithArgs(int64(150), "client-1", "shop-1", 2).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantError:   points.ErrVersionConflict,
			wantVersion: 2,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE point_balances`).
					WithArgs(int64(150), "client-1", "shop-1", 2).
					WillReturnError(errors.New("db error"))
			},
			wantError:   errors.New("db error"),
			wantVersion: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestBalanceRepository(t)
			tt.setupMock(mock)

			balance := points.MustNewBalance("client-1", "shop-1", 150, 2)
			err := repo.Save(context.Background(), balance)

			if tt.wantError != nil {
				require.Error(t, err)
				if errors.Is(tt.wantError, points.ErrVersionConflict) {
					assert.ErrorIs(t, err, points.ErrVersionConflict)
				}
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantVersion, balance.Version())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBalanceRepository_LockConflictIsRetryable(t *testing.T) {
	repo, mock := newTestBalanceRepository(t)

	mock.ExpectExec(`INSERT INTO point_balances`).
		WithArgs("client-1", "shop-1").
		WillReturnError(&gomysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectExec(`UPDATE point_balances`).
		WillReturnError(&gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectExec(`UPDATE point_balances`).
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), points.MustNewBalance("client-1", "shop-1", 0, 0))
	assert.ErrorIs(t, err, points.ErrVersionConflict)

	err = repo.Save(context.Background(), points.MustNewBalance("client-1", "shop-1", 10, 0))
	assert.ErrorIs(t, err, points.ErrVersionConflict)

	err = repo.Save(context.Background(), points.MustNewBalance("client-1", "shop-1", 10, 0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, points.ErrVersionConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}
