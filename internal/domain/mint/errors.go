package mint

import (
	"errors"
)

var (
	// ErrAlreadyMinted 同じ期間のミントが既に記録されている
	ErrAlreadyMinted = errors.New("period already minted")
	// ErrConfigurationMissing ミントアカウントが存在しない
	ErrConfigurationMissing = errors.New("mint account is not configured")
	// ErrRecipientNotFound 受け取りユーザーが存在しない
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrInvalidAmount 分配額が0以下
	ErrInvalidAmount = errors.New("invalid token amount")
	// ErrTransferFailed 送金に失敗
	ErrTransferFailed = errors.New("token transfer failed")
	// ErrArithmetic 計算結果が予算を超えた、または計算できない
	ErrArithmetic = errors.New("token arithmetic error")
	// ErrInvalidPeriod 期間コードが無効
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrUnauthorized 呼び出し元が認証されていない
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden 呼び出し元に権限がない
	ErrForbidden = errors.New("forbidden")
	// ErrMintNotFound ミント記録が見つからない
	ErrMintNotFound = errors.New("mint period not found")
)

// Code 呼び出し元へ返すエラーコード
type Code string

const (
	CodeAlreadyMinted    Code = "already_minted"
	CodeInvalidPeriod    Code = "invalid_period"
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeMintFailed       Code = "mint_failed"
	CodeGenerationFailed Code = "generation_failed"
)

// String 文字列表現を返す
func (c Code) String() string {
	return string(c)
}

// Error コード付きのエラー
//
// mint_failed と generation_failed は内部の原因を外部に出さず、固定のメッセージを返す。
type Error struct {
	Code  Code
	cause error
}

// NewError 新しいErrorを作成
func NewError(code Code, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeMintFailed:
		return "token minting failed"
	case CodeGenerationFailed:
		return "gems generation failed"
	}
	if e.cause == nil {
		return e.Code.String()
	}
	return e.cause.Error()
}

// Unwrap 原因のエラーを返す
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf エラーからコードを取り出す（コードなしは空文字）
func CodeOf(err error) Code {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}
