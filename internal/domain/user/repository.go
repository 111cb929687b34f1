package user

import "context"

// UserRepository ユーザーリポジトリインターフェース
type UserRepository interface {
	// FindByID ユーザーIDでユーザーを取得
	FindByID(ctx context.Context, userID string) (*User, error)
}
