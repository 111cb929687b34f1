package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/mint"
)

// MintAccountRepository MySQL実装のmint.MintAccountRepository
//
// ミントアカウントは token_accounts の kind = 'mint' の行として保存される。
type MintAccountRepository struct {
	db        *DB
	accountID string
	tracer    trace.Tracer
}

// NewMintAccountRepository 新しいMintAccountRepositoryを作成
func NewMintAccountRepository(db *DB, accountID string) *MintAccountRepository {
	return &MintAccountRepository{
		db:        db,
		accountID: accountID,
		tracer:    otel.Tracer("mint-account-repository"),
	}
}

// Find ミントアカウントを取得
func (r *MintAccountRepository) Find(ctx context.Context) (*mint.MintAccount, error) {
	return r.find(ctx, "MintAccountRepository.Find", false)
}

// FindForUpdate ミントアカウントを排他ロック付きで取得
func (r *MintAccountRepository) FindForUpdate(ctx context.Context) (*mint.MintAccount, error) {
	return r.find(ctx, "MintAccountRepository.FindForUpdate", true)
}

func (r *MintAccountRepository) find(ctx context.Context, spanName string, forUpdate bool) (*mint.MintAccount, error) {
	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()

	operation := "SELECT"
	query := `
		SELECT account_id, initial_balance, balance, created_at, updated_at
		FROM token_accounts
		WHERE account_id = ? AND kind = 'mint'
	`
	if forUpdate {
		operation = "SELECT FOR UPDATE"
		query += " FOR UPDATE"
	}

	span.SetAttributes(
		attribute.String("db.account_id", r.accountID),
		attribute.String("db.operation", operation),
		attribute.String("db.table", "token_accounts"),
	)

	var (
		accountID      string
		initialBalance decimal.Decimal
		balance        decimal.Decimal
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, r.accountID).Scan(&accountID, &initialBalance, &balance, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Error, "mint account not found")
		return nil, mint.ErrConfigurationMissing
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find mint account: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "mint account found")
	return mint.NewMintAccount(accountID, initialBalance, balance, createdAt, updatedAt)
}
