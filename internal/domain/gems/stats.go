package gems

import (
	"mint-server/internal/domain/period"

	"github.com/shopspring/decimal"
)

// WindowStat 期間ごとの未回収ジェム統計
type WindowStat struct {
	Code      period.Code
	Key       string
	Count     int64
	TotalGems decimal.Decimal
}
