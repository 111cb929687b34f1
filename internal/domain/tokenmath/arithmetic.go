package tokenmath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrDivisionByZero ゼロ除算
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidNumber 数値として解釈できない
	ErrInvalidNumber = errors.New("invalid decimal number")
	// ErrInvalidScale 小数桁数が範囲外
	ErrInvalidScale = errors.New("invalid decimal scale")
)

const (
	// DefaultScale 既定の小数桁数
	DefaultScale int32 = 10
	// MaxScale 保存カラム DECIMAL(38,10) の小数桁数。これを超えると書き込み時に丸められる
	MaxScale int32 = 10
	// MinScale 監査に必要な最小桁数
	MinScale int32 = 8
)

// RoundingMode 丸めモードを表す値オブジェクト
type RoundingMode string

const (
	RoundDown   RoundingMode = "down"    // 切り捨て（ゼロ方向）
	RoundHalfUp RoundingMode = "half_up" // 四捨五入
)

// NewRoundingMode 新しいRoundingModeを作成
func NewRoundingMode(s string) (RoundingMode, error) {
	switch s {
	case "down", "half_up":
		return RoundingMode(s), nil
	default:
		return "", fmt.Errorf("invalid rounding mode: %s", s)
	}
}

// String 文字列表現を返す
func (m RoundingMode) String() string {
	return string(m)
}

// Arithmetic 固定小数点演算
//
// すべての結果は Scale 桁に Mode で丸められる。同じ入力には常に同じ出力を返す。
type Arithmetic struct {
	scale int32
	mode  RoundingMode
}

// NewArithmetic 新しいArithmeticを作成
func NewArithmetic(scale int32, mode RoundingMode) (*Arithmetic, error) {
	if scale < MinScale || scale > MaxScale {
		return nil, ErrInvalidScale
	}
	if mode != RoundDown && mode != RoundHalfUp {
		return nil, fmt.Errorf("invalid rounding mode: %s", mode)
	}
	return &Arithmetic{scale: scale, mode: mode}, nil
}

// MustNewArithmetic テスト用ヘルパー: NewArithmeticを呼び出し、エラーが発生した場合はpanicする
func MustNewArithmetic(scale int32, mode RoundingMode) *Arithmetic {
	a, err := NewArithmetic(scale, mode)
	if err != nil {
		panic(err)
	}
	return a
}

// Scale 小数桁数を返す
func (a *Arithmetic) Scale() int32 {
	return a.scale
}

// Mode 丸めモードを返す
func (a *Arithmetic) Mode() RoundingMode {
	return a.mode
}

// Divide dividend / divisor を計算
func (a *Arithmetic) Divide(dividend, divisor decimal.Decimal) (decimal.Decimal, error) {
	if divisor.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	if a.mode == RoundHalfUp {
		return dividend.DivRound(divisor, a.scale), nil
	}
	// QuoRem は指定桁でゼロ方向に切り捨てた商を返す
	q, _ := dividend.QuoRem(divisor, a.scale)
	return q, nil
}

// Multiply a × b を計算
func (a *Arithmetic) Multiply(x, y decimal.Decimal) decimal.Decimal {
	return a.round(x.Mul(y))
}

// Sum 全要素の合計を計算
func (a *Arithmetic) Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return a.round(total)
}

// Percentage part / whole × 100 を計算
func (a *Arithmetic) Percentage(part, whole decimal.Decimal) (decimal.Decimal, error) {
	ratio, err := a.Divide(part.Mul(decimal.NewFromInt(100)), whole)
	if err != nil {
		return decimal.Zero, err
	}
	return ratio, nil
}

// DivideString 10進文字列で除算
func (a *Arithmetic) DivideString(dividend, divisor string) (string, error) {
	x, err := Parse(dividend)
	if err != nil {
		return "", err
	}
	y, err := Parse(divisor)
	if err != nil {
		return "", err
	}
	q, err := a.Divide(x, y)
	if err != nil {
		return "", err
	}
	return a.Format(q), nil
}

// MultiplyString 10進文字列で乗算
func (a *Arithmetic) MultiplyString(x, y string) (string, error) {
	dx, err := Parse(x)
	if err != nil {
		return "", err
	}
	dy, err := Parse(y)
	if err != nil {
		return "", err
	}
	return a.Format(a.Multiply(dx, dy)), nil
}

// Format 固定桁の文字列表現を返す
func (a *Arithmetic) Format(d decimal.Decimal) string {
	return d.StringFixed(a.scale)
}

func (a *Arithmetic) round(d decimal.Decimal) decimal.Decimal {
	if a.mode == RoundHalfUp {
		// shopspring の Round はゼロから遠い方向への四捨五入
		return d.Round(a.scale)
	}
	return d.Truncate(a.scale)
}

// Parse 10進文字列をDecimalに変換
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}
