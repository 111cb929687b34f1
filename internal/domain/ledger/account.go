package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKind アカウント種別を表す値オブジェクト
type AccountKind string

const (
	AccountKindMint AccountKind = "mint" // ミント元
	AccountKindUser AccountKind = "user" // ユーザーウォレット
)

// NewAccountKind 新しいAccountKindを作成
func NewAccountKind(s string) (AccountKind, error) {
	switch s {
	case "mint", "user":
		return AccountKind(s), nil
	default:
		return "", fmt.Errorf("invalid account kind: %s", s)
	}
}

// String 文字列表現を返す
func (k AccountKind) String() string {
	return string(k)
}

// Account 台帳アカウントエンティティ
type Account struct {
	accountID string
	kind      AccountKind
	balance   decimal.Decimal
	version   int // 楽観的ロック用
}

// NewAccount 新しいAccountエンティティを作成
func NewAccount(accountID string, kind AccountKind, balance decimal.Decimal, version int) (*Account, error) {
	if accountID == "" {
		return nil, ErrInvalidAccount
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: negative balance", ErrInvalidAccount)
	}
	return &Account{accountID: accountID, kind: kind, balance: balance, version: version}, nil
}

// MustNewAccount テスト用ヘルパー: NewAccountを呼び出し、エラーが発生した場合はpanicする
func MustNewAccount(accountID string, kind AccountKind, balance decimal.Decimal, version int) *Account {
	a, err := NewAccount(accountID, kind, balance, version)
	if err != nil {
		panic(err)
	}
	return a
}

// AccountID アカウントIDを返す
func (a *Account) AccountID() string {
	return a.accountID
}

// Kind 種別を返す
func (a *Account) Kind() AccountKind {
	return a.kind
}

// Balance 残高を返す
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// Version バージョンを返す（楽観的ロック用）
func (a *Account) Version() int {
	return a.version
}

// Debit 残高から引き落とす
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(amount)
	a.version++
	return nil
}

// Credit 残高に加算する
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	a.version++
	return nil
}
