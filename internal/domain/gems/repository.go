package gems

import (
	"context"

	"mint-server/internal/domain/period"
)

// GemsRepository ジェムリポジトリインターフェース
type GemsRepository interface {
	// FetchUncollectedForPeriod 期間内に作成された未回収ジェムを取得（ユーザーID・ジェムID順）
	FetchUncollectedForPeriod(ctx context.Context, window period.Window) ([]*GemRecord, error)

	// CountUncollected 期間内の未回収ジェム件数と合計を取得
	CountUncollected(ctx context.Context, window period.Window) (*WindowStat, error)

	// FindUncollectedInteractions ジェム未生成の行動を取得（投稿者自身の行動は除く）
	FindUncollectedInteractions(ctx context.Context, category Category) ([]*Interaction, error)

	// InsertGems ジェムを一括登録し、新規に登録された件数を返す
	InsertGems(ctx context.Context, records []*GemRecord) (int64, error)

	// MarkCollected 行動をジェム生成済みにする
	MarkCollected(ctx context.Context, category Category, interactionIDs []string) error
}
