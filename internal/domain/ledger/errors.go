package ledger

import "errors"

var (
	// ErrInvalidAmount 無効な金額エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance 残高不足エラー
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAccountNotFound アカウントが見つからないエラー
	ErrAccountNotFound = errors.New("account not found")
	// ErrSameAccount 送金元と送金先が同一
	ErrSameAccount = errors.New("sender and recipient are the same account")
	// ErrMessageTooLong メッセージが長すぎる
	ErrMessageTooLong = errors.New("message too long")
	// ErrVersionConflict 楽観的ロックの競合
	ErrVersionConflict = errors.New("account version conflict")
	// ErrInvalidAccount アカウントが無効
	ErrInvalidAccount = errors.New("invalid account")
)
