package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/period"
)

// attributionBatchSize 帰属記録を1文で登録する最大件数
const attributionBatchSize = 500

// MintRepository MySQL実装のmint.MintPeriodRepository
type MintRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewMintRepository 新しいMintRepositoryを作成
func NewMintRepository(db *DB) *MintRepository {
	return &MintRepository{
		db:     db,
		tracer: otel.Tracer("mint-repository"),
	}
}

const mintPeriodColumns = `mint_id, period_key, period_code, conversion_rate, total_gems, total_distributed, created_at`

// FindByPeriodKey 期間キーでミント記録を取得
func (r *MintRepository) FindByPeriodKey(ctx context.Context, periodKey string) (*mint.MintPeriod, error) {
	ctx, span := r.tracer.Start(ctx, "MintRepository.FindByPeriodKey")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.period_key", periodKey),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "mint_periods"),
	)

	query := `SELECT ` + mintPeriodColumns + ` FROM mint_periods WHERE period_key = ?`

	p, err := scanMintPeriod(r.db.conn(ctx).QueryRowContext(ctx, query, periodKey))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "mint period not found")
		return nil, mint.ErrMintNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find mint period: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "mint period found")
	return p, nil
}

// Insert ミント記録を登録
func (r *MintRepository) Insert(ctx context.Context, p *mint.MintPeriod) error {
	ctx, span := r.tracer.Start(ctx, "MintRepository.Insert")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.mint_id", p.MintID()),
		attribute.String("db.period_key", p.PeriodKey()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "mint_periods"),
	)

	query := `INSERT INTO mint_periods (` + mintPeriodColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		p.MintID(),
		p.PeriodKey(),
		p.PeriodCode().String(),
		p.ConversionRate(),
		p.TotalGems(),
		p.TotalDistributed(),
		p.CreatedAt(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if isDuplicateKey(err) {
			return mint.ErrAlreadyMinted
		}
		return fmt.Errorf("failed to insert mint period: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "mint period inserted")
	return nil
}

// InsertAttributions ジェム単位の帰属記録を登録
func (r *MintRepository) InsertAttributions(ctx context.Context, attributions []*mint.MintAttribution) error {
	ctx, span := r.tracer.Start(ctx, "MintRepository.InsertAttributions")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.count", len(attributions)),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "mint_attributions"),
	)

	for start := 0; start < len(attributions); start += attributionBatchSize {
		end := start + attributionBatchSize
		if end > len(attributions) {
			end = len(attributions)
		}
		batch := attributions[start:end]

		rows := make([]string, 0, len(batch))
		args := make([]interface{}, 0, len(batch)*7)
		for _, a := range batch {
			rows = append(rows, "("+placeholders(7)+")")
			args = append(args, a.MintID, a.GemID, a.UserID, a.TransactionID, a.OperationID, a.TokenAmount, a.CreatedAt)
		}

		query := `INSERT INTO mint_attributions (mint_id, gem_id, user_id, transaction_id, operation_id, token_amount, created_at) VALUES ` +
			strings.Join(rows, ", ")

		if _, err := r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			if isDuplicateKey(err) {
				// 同じジェムが既に支払われている
				return fmt.Errorf("gem already attributed: %w", mint.ErrAlreadyMinted)
			}
			return fmt.Errorf("failed to insert mint attributions: %w", err)
		}
	}

	span.SetStatus(otelcodes.Ok, "mint attributions inserted")
	return nil
}

// List ミント記録を新しい順に取得
func (r *MintRepository) List(ctx context.Context, limit, offset int) ([]*mint.MintPeriod, error) {
	ctx, span := r.tracer.Start(ctx, "MintRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "mint_periods"),
	)

	query := `SELECT ` + mintPeriodColumns + ` FROM mint_periods ORDER BY period_key DESC LIMIT ? OFFSET ?`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list mint periods: %w", err)
	}
	defer rows.Close()

	var periods []*mint.MintPeriod
	for rows.Next() {
		p, err := scanMintPeriod(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan mint period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate mint periods: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(periods)))
	span.SetStatus(otelcodes.Ok, "mint periods listed")
	return periods, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMintPeriod(row rowScanner) (*mint.MintPeriod, error) {
	var (
		mintID, periodKey, periodCode     string
		rate, totalGems, totalDistributed decimal.Decimal
		createdAt                         time.Time
	)
	if err := row.Scan(&mintID, &periodKey, &periodCode, &rate, &totalGems, &totalDistributed, &createdAt); err != nil {
		return nil, err
	}
	code, err := period.NewCode(periodCode)
	if err != nil {
		return nil, err
	}
	return mint.NewMintPeriod(mintID, periodKey, code, rate, totalGems, totalDistributed, createdAt)
}
