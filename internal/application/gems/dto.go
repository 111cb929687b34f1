package gems

import (
	"github.com/shopspring/decimal"
)

// ジェム生成結果の状態
const (
	StatusGenerated   = "generated"
	StatusNothingToDo = "nothing_to_do"
)

// GenerateResult ジェム生成結果
type GenerateResult struct {
	Status     string // "generated" or "nothing_to_do"
	Inserted   int64
	Categories []*CategoryResult
}

// CategoryResult カテゴリごとの生成結果
type CategoryResult struct {
	Category     string
	Interactions int
	Inserted     int64
	Error        string
}

// WindowStat 期間ごとの未回収ジェム統計
type WindowStat struct {
	PeriodCode string
	PeriodKey  string
	Count      int64
	TotalGems  decimal.Decimal
}

// GemsStatsResponse 未回収ジェム統計レスポンス
type GemsStatsResponse struct {
	Windows []*WindowStat
}

// UserGems ユーザーごとの未回収ジェム
type UserGems struct {
	UserID     string
	TotalGems  decimal.Decimal
	Percentage decimal.Decimal
	GemCount   int
}

// PeriodGemsResponse 期間内のユーザー別ジェム集計レスポンス
type PeriodGemsResponse struct {
	PeriodCode   string
	PeriodKey    string
	OverallTotal decimal.Decimal
	Users        []*UserGems
}
