package gems

import "errors"

var (
	// ErrInvalidGemID ジェムIDが無効
	ErrInvalidGemID = errors.New("invalid gem id")
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidWhereby 発生元が無効
	ErrInvalidWhereby = errors.New("invalid whereby")
	// ErrInvalidFactor 換算係数が無効
	ErrInvalidFactor = errors.New("invalid gems factor")
)
