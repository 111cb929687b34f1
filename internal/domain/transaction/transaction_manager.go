package transaction

import (
	"context"
)

// TransactionManager トランザクション管理インターフェース
//
// fn に渡される ctx はトランザクションを保持しており、リポジトリはこの ctx 経由で
// 同じトランザクションに参加する。fn がエラーを返すとロールバックされる。
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
