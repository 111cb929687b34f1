package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"mint-server/internal/domain/ledger"
)

func TestTransferRepository_Create(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 5, 0, 0, time.UTC)
	transfer, err := ledger.NewTokenTransfer(
		ledger.TransferIDs{OperationID: "op1", TransactionID: "tx1"},
		"mint", "user1",
		decimal.NewFromInt(300),
		ledger.CategoryMint,
		"Mint D1",
		ledger.BalanceChange{Before: decimal.NewFromInt(1000), After: decimal.NewFromInt(700)},
		ledger.BalanceChange{Before: decimal.Zero, After: decimal.NewFromInt(300)},
		now,
	)
	require.NoError(t, err)

	tests := []struct {
		name      string
		execErr   error
		wantError bool
	}{
		{name: "正常系: 追加"},
		{name: "異常系: DBエラー", execErr: sql.ErrConnDone, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := &TransferRepository{db: &DB{DB: db}, tracer: otel.Tracer("test")}

			exp := mock.ExpectExec(`INSERT INTO token_transfers`).
				WithArgs("op1", "tx1", "mint", "user1", "300", "Mint", "Mint D1", "1000", "700", "0", "300", now)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err = repo.Create(context.Background(), transfer)
			if tt.wantError {
				assert.ErrorIs(t, err, tt.execErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
