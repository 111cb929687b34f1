package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/gems"
	"mint-server/internal/domain/period"
)

const (
	// interactionBatchSize 1回のジェム生成で処理する行動の最大件数
	interactionBatchSize = 1000
	// gemInsertBatchSize ジェムを1文で登録する最大件数
	gemInsertBatchSize = 500
)

// interactionTables 行動テーブルの許可リスト（テーブル名はプレースホルダにできないため）
var interactionTables = map[string]bool{
	"user_post_views":    true,
	"user_post_likes":    true,
	"user_post_dislikes": true,
	"user_post_comments": true,
}

// GemsRepository MySQL実装のgems.GemsRepository
type GemsRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewGemsRepository 新しいGemsRepositoryを作成
func NewGemsRepository(db *DB) *GemsRepository {
	return &GemsRepository{
		db:     db,
		tracer: otel.Tracer("gems-repository"),
	}
}

// FetchUncollectedForPeriod 期間内に作成された未回収ジェムを取得
func (r *GemsRepository) FetchUncollectedForPeriod(ctx context.Context, window period.Window) ([]*gems.GemRecord, error) {
	ctx, span := r.tracer.Start(ctx, "GemsRepository.FetchUncollectedForPeriod")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.period_key", window.Key()),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gems"),
	)

	query := `
		SELECT g.gem_id, g.user_id, g.post_id, g.from_id, g.amount, g.whereby, g.created_at
		FROM gems g
		LEFT JOIN mint_attributions ma ON ma.gem_id = g.gem_id
		WHERE ma.gem_id IS NULL
		  AND g.created_at >= ? AND g.created_at < ?
		ORDER BY g.user_id, g.gem_id
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, window.Start, window.End)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to fetch uncollected gems: %w", err)
	}
	defer rows.Close()

	var records []*gems.GemRecord
	for rows.Next() {
		var (
			gemID, userID, postID, fromID string
			amount                        decimal.Decimal
			whereby                       int
			createdAt                     time.Time
		)
		if err := rows.Scan(&gemID, &userID, &postID, &fromID, &amount, &whereby, &createdAt); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan gem: %w", err)
		}
		g, err := gems.NewGemRecord(gemID, userID, postID, fromID, amount, gems.Whereby(whereby), createdAt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("invalid gem %s: %w", gemID, err)
		}
		records = append(records, g)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate gems: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(records)))
	span.SetStatus(otelcodes.Ok, "uncollected gems fetched")
	return records, nil
}

// CountUncollected 期間内の未回収ジェム件数と合計を取得
func (r *GemsRepository) CountUncollected(ctx context.Context, window period.Window) (*gems.WindowStat, error) {
	ctx, span := r.tracer.Start(ctx, "GemsRepository.CountUncollected")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.period_key", window.Key()),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gems"),
	)

	query := `
		SELECT COUNT(*), COALESCE(SUM(g.amount), 0)
		FROM gems g
		LEFT JOIN mint_attributions ma ON ma.gem_id = g.gem_id
		WHERE ma.gem_id IS NULL
		  AND g.created_at >= ? AND g.created_at < ?
	`

	stat := &gems.WindowStat{Code: window.Code, Key: window.Key()}
	err := r.db.conn(ctx).QueryRowContext(ctx, query, window.Start, window.End).Scan(&stat.Count, &stat.TotalGems)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to count uncollected gems: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.count", stat.Count))
	span.SetStatus(otelcodes.Ok, "uncollected gems counted")
	return stat, nil
}

// FindUncollectedInteractions ジェム未生成の行動を排他ロック付きで取得
func (r *GemsRepository) FindUncollectedInteractions(ctx context.Context, category gems.Category) ([]*gems.Interaction, error) {
	ctx, span := r.tracer.Start(ctx, "GemsRepository.FindUncollectedInteractions")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.category", category.Name),
		attribute.String("db.operation", "SELECT FOR UPDATE"),
		attribute.String("db.table", category.Table),
	)

	if !interactionTables[category.Table] {
		err := fmt.Errorf("unknown interaction table: %s", category.Table)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	query := `
		SELECT i.id, i.user_id, i.post_id, p.user_id, i.created_at
		FROM ` + category.Table + ` i
		JOIN posts p ON p.id = i.post_id
		WHERE i.collected = 0 AND i.user_id <> p.user_id
		ORDER BY i.id
		LIMIT ?
		FOR UPDATE
	`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, interactionBatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find uncollected %s: %w", category.Name, err)
	}
	defer rows.Close()

	var interactions []*gems.Interaction
	for rows.Next() {
		i := &gems.Interaction{}
		if err := rows.Scan(&i.InteractionID, &i.ActorID, &i.PostID, &i.AuthorID, &i.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan %s: %w", category.Name, err)
		}
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate %s: %w", category.Name, err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(interactions)))
	span.SetStatus(otelcodes.Ok, "uncollected interactions found")
	return interactions, nil
}

// InsertGems ジェムを一括登録し、新規に登録された件数を返す
//
// 同じジェムIDの行は重複キー更新で読み飛ばし、件数に含めない。それ以外のエラーはそのまま返す。
func (r *GemsRepository) InsertGems(ctx context.Context, records []*gems.GemRecord) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "GemsRepository.InsertGems")
	defer span.End()

	span.SetAttributes(
		attribute.Int("db.count", len(records)),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "gems"),
	)

	var inserted int64
	for start := 0; start < len(records); start += gemInsertBatchSize {
		end := start + gemInsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		values := make([]string, 0, len(batch))
		args := make([]interface{}, 0, len(batch)*7)
		for _, g := range batch {
			values = append(values, "("+placeholders(7)+")")
			args = append(args, g.GemID(), g.UserID(), g.PostID(), g.FromID(), g.Amount(), int(g.Whereby()), g.CreatedAt())
		}

		query := `INSERT INTO gems (gem_id, user_id, post_id, from_id, amount, whereby, created_at) VALUES ` +
			strings.Join(values, ", ") +
			` ON DUPLICATE KEY UPDATE gem_id = gem_id`

		result, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return inserted, fmt.Errorf("failed to insert gems: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += n
	}

	span.SetAttributes(attribute.Int64("db.inserted", inserted))
	span.SetStatus(otelcodes.Ok, "gems inserted")
	return inserted, nil
}

// MarkCollected 行動をジェム生成済みにする
func (r *GemsRepository) MarkCollected(ctx context.Context, category gems.Category, interactionIDs []string) error {
	ctx, span := r.tracer.Start(ctx, "GemsRepository.MarkCollected")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.category", category.Name),
		attribute.Int("db.count", len(interactionIDs)),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", category.Table),
	)

	if len(interactionIDs) == 0 {
		span.SetStatus(otelcodes.Ok, "nothing to mark")
		return nil
	}
	if !interactionTables[category.Table] {
		err := fmt.Errorf("unknown interaction table: %s", category.Table)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	query := `UPDATE ` + category.Table + ` SET collected = 1 WHERE id IN (` + placeholders(len(interactionIDs)) + `)`

	args := make([]interface{}, len(interactionIDs))
	for i, id := range interactionIDs {
		args[i] = id
	}

	if _, err := r.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to mark %s collected: %w", category.Name, err)
	}

	span.SetStatus(otelcodes.Ok, "interactions marked collected")
	return nil
}
