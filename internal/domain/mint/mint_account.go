package mint

import (
	"time"

	"github.com/shopspring/decimal"
)

// MintAccount ミント元アカウント
type MintAccount struct {
	accountID      string
	initialBalance decimal.Decimal
	currentBalance decimal.Decimal
	createdAt      time.Time
	updatedAt      time.Time
}

// NewMintAccount 新しいMintAccountを作成
func NewMintAccount(accountID string, initialBalance, currentBalance decimal.Decimal, createdAt, updatedAt time.Time) (*MintAccount, error) {
	if accountID == "" {
		return nil, ErrConfigurationMissing
	}
	return &MintAccount{
		accountID:      accountID,
		initialBalance: initialBalance,
		currentBalance: currentBalance,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// MustNewMintAccount テスト用ヘルパー: NewMintAccountを呼び出し、エラーが発生した場合はpanicする
func MustNewMintAccount(accountID string, initialBalance, currentBalance decimal.Decimal, createdAt, updatedAt time.Time) *MintAccount {
	a, err := NewMintAccount(accountID, initialBalance, currentBalance, createdAt, updatedAt)
	if err != nil {
		panic(err)
	}
	return a
}

// AccountID アカウントIDを返す
func (a *MintAccount) AccountID() string {
	return a.accountID
}

// InitialBalance 初期残高を返す
func (a *MintAccount) InitialBalance() decimal.Decimal {
	return a.initialBalance
}

// CurrentBalance 現在残高を返す
func (a *MintAccount) CurrentBalance() decimal.Decimal {
	return a.currentBalance
}

// Distributed これまでに分配した合計を返す
func (a *MintAccount) Distributed() decimal.Decimal {
	return a.initialBalance.Sub(a.currentBalance)
}

// CreatedAt 作成日時を返す
func (a *MintAccount) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt 更新日時を返す
func (a *MintAccount) UpdatedAt() time.Time {
	return a.updatedAt
}
