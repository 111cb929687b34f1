package ledger

import (
	"context"
)

// AccountRepository 台帳アカウントリポジトリインターフェース
type AccountRepository interface {
	// FindByIDForUpdate アカウントを排他ロック付きで取得
	FindByIDForUpdate(ctx context.Context, accountID string) (*Account, error)

	// Create 新しいアカウントを作成
	Create(ctx context.Context, account *Account) error

	// Save 残高を保存（楽観的ロック対応）
	Save(ctx context.Context, account *Account) error
}

// TransferRepository 送金記録リポジトリインターフェース
type TransferRepository interface {
	// Create 送金記録を追加
	Create(ctx context.Context, transfer *TokenTransfer) error
}
