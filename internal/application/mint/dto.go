package mint

import (
	"time"

	"github.com/shopspring/decimal"
)

// ミント結果の状態
const (
	StatusMinted        = "minted"
	StatusNothingToMint = "nothing_to_mint"
)

// MintSummary ミント実行結果
type MintSummary struct {
	MintID           string
	PeriodCode       string
	PeriodKey        string
	Status           string // "minted" or "nothing_to_mint"
	Conversion       *Conversion
	Users            []*UserPayout // UserID昇順
	TotalDistributed decimal.Decimal
}

// Conversion ジェムからトークンへの換算結果
type Conversion struct {
	TotalGems      decimal.Decimal
	GemsInToken    decimal.Decimal
	ConfirmedTotal decimal.Decimal
}

// UserPayout ユーザーごとの分配結果
type UserPayout struct {
	UserID        string
	TotalGems     decimal.Decimal
	Percentage    decimal.Decimal
	Tokens        decimal.Decimal
	OperationID   string
	TransactionID string
	Attributions  []*Attribution
}

// Attribution ジェム単位の帰属
type Attribution struct {
	GemID       string
	Gems        decimal.Decimal
	TokenAmount decimal.Decimal
}

// MintAccountResponse ミントアカウント参照レスポンス
type MintAccountResponse struct {
	AccountID      string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Distributed    decimal.Decimal
	UpdatedAt      time.Time
}

// MintHistoryRequest ミント履歴取得リクエスト
type MintHistoryRequest struct {
	Limit  int
	Offset int
}

// MintPeriodResponse ミント記録
type MintPeriodResponse struct {
	MintID           string
	PeriodKey        string
	PeriodCode       string
	ConversionRate   decimal.Decimal
	TotalGems        decimal.Decimal
	TotalDistributed decimal.Decimal
	CreatedAt        time.Time
}

// MintHistoryResponse ミント履歴取得レスポンス
type MintHistoryResponse struct {
	Periods []*MintPeriodResponse
	Limit   int
	Offset  int
}
