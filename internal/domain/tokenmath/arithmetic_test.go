package tokenmath

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		scale     int32
		mode      RoundingMode
		wantError bool
	}{
		{name: "正常系: 既定値", scale: DefaultScale, mode: RoundDown},
		{name: "正常系: 四捨五入", scale: 9, mode: RoundHalfUp},
		{name: "正常系: 下限", scale: MinScale, mode: RoundDown},
		{name: "正常系: 上限", scale: MaxScale, mode: RoundDown},
		{name: "異常系: 桁数不足", scale: 4, mode: RoundDown, wantError: true},
		{name: "異常系: 保存カラムの桁数を超える", scale: MaxScale + 1, mode: RoundDown, wantError: true},
		{name: "異常系: 桁数過大", scale: 30, mode: RoundDown, wantError: true},
		{name: "異常系: 不明な丸めモード", scale: 10, mode: "ceil", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewArithmetic(tt.scale, tt.mode)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scale, got.Scale())
			assert.Equal(t, tt.mode, got.Mode())
		})
	}
}

func TestArithmetic_Divide(t *testing.T) {
	tests := []struct {
		name      string
		mode      RoundingMode
		dividend  string
		divisor   string
		want      string
		wantError error
	}{
		{name: "正常系: 割り切れる", mode: RoundDown, dividend: "1000", divisor: "100", want: "10.0000000000"},
		{name: "正常系: 切り捨て", mode: RoundDown, dividend: "2", divisor: "3", want: "0.6666666666"},
		{name: "正常系: 四捨五入", mode: RoundHalfUp, dividend: "2", divisor: "3", want: "0.6666666667"},
		{name: "正常系: 小数の除数", mode: RoundDown, dividend: "5000", divisor: "0.25", want: "20000.0000000000"},
		{name: "異常系: ゼロ除算", mode: RoundDown, dividend: "1000", divisor: "0", wantError: ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustNewArithmetic(DefaultScale, tt.mode)
			got, err := a.DivideString(tt.dividend, tt.divisor)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArithmetic_Multiply(t *testing.T) {
	tests := []struct {
		name string
		mode RoundingMode
		x    string
		y    string
		want string
	}{
		{name: "正常系: 整数", mode: RoundDown, x: "30", y: "10", want: "300.0000000000"},
		{name: "正常系: 桁あふれを切り捨て", mode: RoundDown, x: "0.25", y: "0.6666666666", want: "0.1666666666"},
		{name: "正常系: 桁あふれを四捨五入", mode: RoundHalfUp, x: "0.25", y: "0.6666666667", want: "0.1666666667"},
		{name: "正常系: 負の値は切り捨てでゼロ方向", mode: RoundDown, x: "-3", y: "0.33333333333", want: "-0.9999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustNewArithmetic(DefaultScale, tt.mode)
			got, err := a.MultiplyString(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArithmetic_InvalidInput(t *testing.T) {
	a := MustNewArithmetic(DefaultScale, RoundDown)

	_, err := a.DivideString("abc", "1")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = a.MultiplyString("1", "1.2.3")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestArithmetic_Deterministic(t *testing.T) {
	a := MustNewArithmetic(DefaultScale, RoundDown)
	b := MustNewArithmetic(DefaultScale, RoundDown)

	total := decimal.RequireFromString("1234.75")
	budget := decimal.RequireFromString("5000")

	r1, err := a.Divide(budget, total)
	require.NoError(t, err)
	r2, err := b.Divide(budget, total)
	require.NoError(t, err)

	assert.True(t, r1.Equal(r2))
	assert.Equal(t, a.Format(a.Multiply(total, r1)), b.Format(b.Multiply(total, r2)))
}

func TestArithmetic_RoundDownNeverExceedsBudget(t *testing.T) {
	a := MustNewArithmetic(DefaultScale, RoundDown)
	budget := decimal.RequireFromString("5000")

	for _, total := range []string{"3", "7", "0.25", "99999.75", "13.5"} {
		t.Run(total, func(t *testing.T) {
			tg := decimal.RequireFromString(total)
			rate, err := a.Divide(budget, tg)
			require.NoError(t, err)
			confirmed := a.Multiply(tg, rate)
			assert.True(t, confirmed.LessThanOrEqual(budget), "confirmed %s > budget", confirmed)
		})
	}
}

func TestArithmetic_Percentage(t *testing.T) {
	a := MustNewArithmetic(DefaultScale, RoundDown)

	got, err := a.Percentage(decimal.NewFromInt(30), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "30.0000000000", a.Format(got))

	_, err = a.Percentage(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestArithmetic_Sum(t *testing.T) {
	a := MustNewArithmetic(DefaultScale, RoundDown)

	got := a.Sum(
		decimal.RequireFromString("333.3333333333"),
		decimal.RequireFromString("666.6666666666"),
	)
	assert.Equal(t, "999.9999999999", a.Format(got))
	assert.True(t, a.Sum().IsZero())
}

func TestNewRoundingMode(t *testing.T) {
	m, err := NewRoundingMode("half_up")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfUp, m)

	_, err = NewRoundingMode("banker")
	assert.Error(t, err)
}
