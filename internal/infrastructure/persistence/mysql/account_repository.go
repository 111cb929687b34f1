package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/ledger"
)

// AccountRepository MySQL実装のledger.AccountRepository
type AccountRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewAccountRepository 新しいAccountRepositoryを作成
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{
		db:     db,
		tracer: otel.Tracer("account-repository"),
	}
}

// FindByIDForUpdate アカウントを排他ロック付きで取得
func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, accountID string) (*ledger.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.FindByIDForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.account_id", accountID),
		attribute.String("db.operation", "SELECT FOR UPDATE"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		SELECT account_id, kind, balance, version
		FROM token_accounts
		WHERE account_id = ?
		FOR UPDATE
	`

	var (
		dbAccountID string
		dbKind      string
		balance     decimal.Decimal
		version     int
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, accountID).Scan(&dbAccountID, &dbKind, &balance, &version)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "account not found")
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	kind, err := ledger.NewAccountKind(dbKind)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("db.balance", balance.String()), attribute.Int("db.version", version))
	span.SetStatus(otelcodes.Ok, "account found")
	return ledger.NewAccount(dbAccountID, kind, balance, version)
}

// Create 新しいアカウントを作成
func (r *AccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.account_id", account.AccountID()),
		attribute.String("db.kind", account.Kind().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		INSERT INTO token_accounts (account_id, kind, initial_balance, balance, version)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		account.AccountID(),
		account.Kind().String(),
		account.Balance(),
		account.Balance(),
		account.Version(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create account: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "account created")
	return nil
}

// Save 残高を保存（楽観的ロック対応）
//
// Debit/Credit で1つ進んだバージョンを受け取り、保存済みのバージョンが1つ前であることを条件に更新する。
func (r *AccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.account_id", account.AccountID()),
		attribute.String("db.balance", account.Balance().String()),
		attribute.Int("db.version", account.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		UPDATE token_accounts
		SET balance = ?, version = ?, updated_at = CURRENT_TIMESTAMP(6)
		WHERE account_id = ? AND version = ?
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		account.Balance(),
		account.Version(),
		account.AccountID(),
		account.Version()-1,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.RecordError(ledger.ErrVersionConflict)
		span.SetStatus(otelcodes.Error, ledger.ErrVersionConflict.Error())
		return ledger.ErrVersionConflict
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "account saved")
	return nil
}
