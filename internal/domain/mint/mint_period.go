package mint

import (
	"errors"
	"time"

	"mint-server/internal/domain/period"

	"github.com/shopspring/decimal"
)

// ErrInvalidMintPeriod ミント記録が無効
var ErrInvalidMintPeriod = errors.New("invalid mint period")

// MintPeriod ミント記録エンティティ
//
// periodKey は解決済みの暦日（YYYY-MM-DD）で、一意に制約される。
type MintPeriod struct {
	mintID           string
	periodKey        string
	periodCode       period.Code
	conversionRate   decimal.Decimal // 1ジェムあたりのトークン量
	totalGems        decimal.Decimal
	totalDistributed decimal.Decimal
	createdAt        time.Time
}

// NewMintPeriod 新しいMintPeriodエンティティを作成
func NewMintPeriod(
	mintID string,
	periodKey string,
	periodCode period.Code,
	conversionRate decimal.Decimal,
	totalGems decimal.Decimal,
	totalDistributed decimal.Decimal,
	createdAt time.Time,
) (*MintPeriod, error) {
	if mintID == "" || periodKey == "" {
		return nil, ErrInvalidMintPeriod
	}
	if !periodCode.IsDay() {
		return nil, ErrInvalidPeriod
	}
	if !conversionRate.IsPositive() {
		return nil, ErrInvalidMintPeriod
	}
	return &MintPeriod{
		mintID:           mintID,
		periodKey:        periodKey,
		periodCode:       periodCode,
		conversionRate:   conversionRate,
		totalGems:        totalGems,
		totalDistributed: totalDistributed,
		createdAt:        createdAt,
	}, nil
}

// MustNewMintPeriod テスト用ヘルパー: NewMintPeriodを呼び出し、エラーが発生した場合はpanicする
func MustNewMintPeriod(mintID, periodKey string, periodCode period.Code, conversionRate, totalGems, totalDistributed decimal.Decimal, createdAt time.Time) *MintPeriod {
	p, err := NewMintPeriod(mintID, periodKey, periodCode, conversionRate, totalGems, totalDistributed, createdAt)
	if err != nil {
		panic(err)
	}
	return p
}

// MintID ミントIDを返す
func (p *MintPeriod) MintID() string {
	return p.mintID
}

// PeriodKey 期間キーを返す
func (p *MintPeriod) PeriodKey() string {
	return p.periodKey
}

// PeriodCode 要求された期間コードを返す
func (p *MintPeriod) PeriodCode() period.Code {
	return p.periodCode
}

// ConversionRate 換算レートを返す
func (p *MintPeriod) ConversionRate() decimal.Decimal {
	return p.conversionRate
}

// TotalGems 分配対象のジェム合計を返す
func (p *MintPeriod) TotalGems() decimal.Decimal {
	return p.totalGems
}

// TotalDistributed 分配したトークン合計を返す
func (p *MintPeriod) TotalDistributed() decimal.Decimal {
	return p.totalDistributed
}

// CreatedAt 作成日時を返す
func (p *MintPeriod) CreatedAt() time.Time {
	return p.createdAt
}
