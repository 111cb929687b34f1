package ledger

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxMessageLength 送金メッセージの最大文字数
const MaxMessageLength = 200

// Category 送金カテゴリを表す値オブジェクト
type Category string

const (
	CategoryMint     Category = "Mint"     // ミント分配
	CategoryTransfer Category = "Transfer" // ユーザー間送金
)

// NewCategory 新しいCategoryを作成
func NewCategory(s string) (Category, error) {
	switch s {
	case "Mint", "Transfer":
		return Category(s), nil
	default:
		return "", fmt.Errorf("invalid transfer category: %s", s)
	}
}

// String 文字列表現を返す
func (c Category) String() string {
	return string(c)
}

// TokenTransfer 送金記録エンティティ（追記のみ）
type TokenTransfer struct {
	operationID            string
	transactionID          string
	senderAccountID        string
	recipientAccountID     string
	amount                 decimal.Decimal
	category               Category
	message                string
	senderBalanceBefore    decimal.Decimal
	senderBalanceAfter     decimal.Decimal
	recipientBalanceBefore decimal.Decimal
	recipientBalanceAfter  decimal.Decimal
	createdAt              time.Time
}

// BalanceChange 送金前後の残高
type BalanceChange struct {
	Before decimal.Decimal
	After  decimal.Decimal
}

// NewTokenTransfer 新しいTokenTransferエンティティを作成
func NewTokenTransfer(
	ids TransferIDs,
	senderAccountID string,
	recipientAccountID string,
	amount decimal.Decimal,
	category Category,
	message string,
	sender BalanceChange,
	recipient BalanceChange,
	createdAt time.Time,
) (*TokenTransfer, error) {
	if ids.OperationID == "" || ids.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transfer ids", ErrInvalidAccount)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	return &TokenTransfer{
		operationID:            ids.OperationID,
		transactionID:          ids.TransactionID,
		senderAccountID:        senderAccountID,
		recipientAccountID:     recipientAccountID,
		amount:                 amount,
		category:               category,
		message:                message,
		senderBalanceBefore:    sender.Before,
		senderBalanceAfter:     sender.After,
		recipientBalanceBefore: recipient.Before,
		recipientBalanceAfter:  recipient.After,
		createdAt:              createdAt,
	}, nil
}

// OperationID 操作IDを返す
func (t *TokenTransfer) OperationID() string {
	return t.operationID
}

// TransactionID トランザクションIDを返す
func (t *TokenTransfer) TransactionID() string {
	return t.transactionID
}

// SenderAccountID 送金元アカウントIDを返す
func (t *TokenTransfer) SenderAccountID() string {
	return t.senderAccountID
}

// RecipientAccountID 送金先アカウントIDを返す
func (t *TokenTransfer) RecipientAccountID() string {
	return t.recipientAccountID
}

// Amount 金額を返す
func (t *TokenTransfer) Amount() decimal.Decimal {
	return t.amount
}

// Category カテゴリを返す
func (t *TokenTransfer) Category() Category {
	return t.category
}

// Message メッセージを返す
func (t *TokenTransfer) Message() string {
	return t.message
}

// SenderBalance 送金元の送金前後残高を返す
func (t *TokenTransfer) SenderBalance() BalanceChange {
	return BalanceChange{Before: t.senderBalanceBefore, After: t.senderBalanceAfter}
}

// RecipientBalance 送金先の送金前後残高を返す
func (t *TokenTransfer) RecipientBalance() BalanceChange {
	return BalanceChange{Before: t.recipientBalanceBefore, After: t.recipientBalanceAfter}
}

// CreatedAt 作成日時を返す
func (t *TokenTransfer) CreatedAt() time.Time {
	return t.createdAt
}
