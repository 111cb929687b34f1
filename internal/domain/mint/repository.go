package mint

import (
	"context"
)

// MintPeriodRepository ミント記録リポジトリインターフェース
type MintPeriodRepository interface {
	// FindByPeriodKey 期間キーでミント記録を取得（なければ ErrMintNotFound）
	FindByPeriodKey(ctx context.Context, periodKey string) (*MintPeriod, error)

	// Insert ミント記録を登録（期間キー重複は ErrAlreadyMinted）
	Insert(ctx context.Context, p *MintPeriod) error

	// InsertAttributions ジェム単位の帰属記録を登録
	InsertAttributions(ctx context.Context, attributions []*MintAttribution) error

	// List ミント記録を新しい順に取得
	List(ctx context.Context, limit, offset int) ([]*MintPeriod, error)
}

// MintAccountRepository ミントアカウントリポジトリインターフェース
type MintAccountRepository interface {
	// Find ミントアカウントを取得（なければ ErrConfigurationMissing）
	Find(ctx context.Context) (*MintAccount, error)

	// FindForUpdate ミントアカウントを排他ロック付きで取得
	FindForUpdate(ctx context.Context) (*MintAccount, error)
}
