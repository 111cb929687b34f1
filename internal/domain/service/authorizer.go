package service

import (
	"context"
	"errors"

	"mint-server/internal/domain/mint"
	"mint-server/internal/domain/user"
)

// Authorizer 管理操作の呼び出し元を検証するドメインサービス
type Authorizer struct {
	userRepo user.UserRepository
}

// NewAuthorizer 新しいAuthorizerを作成
func NewAuthorizer(userRepo user.UserRepository) *Authorizer {
	return &Authorizer{userRepo: userRepo}
}

// AuthorizeAdmin システム呼び出し元、または有効な管理者ユーザーのみ許可する
//
// 失敗時は unauthorized / forbidden / mint_failed のコード付きエラーを返す。
func (a *Authorizer) AuthorizeAdmin(ctx context.Context, principal user.Principal) error {
	if principal.IsAnonymous() {
		return mint.NewError(mint.CodeUnauthorized, mint.ErrUnauthorized)
	}
	if principal.System {
		return nil
	}

	u, err := a.userRepo.FindByID(ctx, principal.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return mint.NewError(mint.CodeUnauthorized, mint.ErrUnauthorized)
	}
	if err != nil {
		return mint.NewError(mint.CodeMintFailed, err)
	}
	if !u.IsActive() {
		return mint.NewError(mint.CodeUnauthorized, mint.ErrUnauthorized)
	}
	if !u.Role().IsAdmin() {
		return mint.NewError(mint.CodeForbidden, mint.ErrForbidden)
	}
	return nil
}
