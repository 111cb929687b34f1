package mysql

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/ledger"
)

// TransferRepository MySQL実装のledger.TransferRepository
type TransferRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransferRepository 新しいTransferRepositoryを作成
func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{
		db:     db,
		tracer: otel.Tracer("transfer-repository"),
	}
}

// Create 送金記録を追加
func (r *TransferRepository) Create(ctx context.Context, t *ledger.TokenTransfer) error {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation_id", t.OperationID()),
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.category", t.Category().String()),
		attribute.String("db.amount", t.Amount().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "token_transfers"),
	)

	query := `
		INSERT INTO token_transfers (
			operation_id, transaction_id, sender_account_id, recipient_account_id,
			amount, category, message,
			sender_balance_before, sender_balance_after,
			recipient_balance_before, recipient_balance_after,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	sender := t.SenderBalance()
	recipient := t.RecipientBalance()

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		t.OperationID(),
		t.TransactionID(),
		t.SenderAccountID(),
		t.RecipientAccountID(),
		t.Amount(),
		t.Category().String(),
		t.Message(),
		sender.Before,
		sender.After,
		recipient.Before,
		recipient.After,
		t.CreatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transfer created")
	return nil
}
