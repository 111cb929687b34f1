package mint

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"mint-server/internal/domain/period"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		wantMsg string
		wantIs  error
	}{
		{
			name:    "正常系: 原因のメッセージを返す",
			err:     NewError(CodeAlreadyMinted, ErrAlreadyMinted),
			wantMsg: "period already minted",
			wantIs:  ErrAlreadyMinted,
		},
		{
			name:    "正常系: 内部エラーは固定メッセージ",
			err:     NewError(CodeMintFailed, fmt.Errorf("transfer to user9: %w", ErrTransferFailed)),
			wantMsg: "token minting failed",
			wantIs:  ErrTransferFailed,
		},
		{
			name:    "正常系: ジェム生成失敗",
			err:     NewError(CodeGenerationFailed, errors.New("db down")),
			wantMsg: "gems generation failed",
		},
		{
			name:    "正常系: 原因なし",
			err:     NewError(CodeForbidden, nil),
			wantMsg: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			if tt.wantIs != nil {
				assert.ErrorIs(t, tt.err, tt.wantIs)
			}
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.Equal(t, tt.err.Code, CodeOf(wrapped))
		})
	}

	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestNewMintPeriod(t *testing.T) {
	now := time.Now()
	rate := decimal.RequireFromString("10")

	tests := []struct {
		name      string
		mintID    string
		key       string
		code      period.Code
		rate      decimal.Decimal
		wantError error
	}{
		{name: "正常系: 前日", mintID: "m1", key: "2026-10-14", code: period.D1, rate: rate},
		{name: "異常系: 週コード", mintID: "m1", key: "2026-W42", code: period.W0, rate: rate, wantError: ErrInvalidPeriod},
		{name: "異常系: ID欠落", mintID: "", key: "2026-10-14", code: period.D1, rate: rate, wantError: ErrInvalidMintPeriod},
		{name: "異常系: レート0", mintID: "m1", key: "2026-10-14", code: period.D1, rate: decimal.Zero, wantError: ErrInvalidMintPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMintPeriod(tt.mintID, tt.key, tt.code, tt.rate, decimal.NewFromInt(100), decimal.NewFromInt(1000), now)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mintID, got.MintID())
			assert.Equal(t, tt.key, got.PeriodKey())
			assert.Equal(t, tt.code, got.PeriodCode())
			assert.True(t, tt.rate.Equal(got.ConversionRate()))
			assert.True(t, decimal.NewFromInt(100).Equal(got.TotalGems()))
			assert.True(t, decimal.NewFromInt(1000).Equal(got.TotalDistributed()))
		})
	}
}

func TestMintAccount_Distributed(t *testing.T) {
	now := time.Now()
	a := MustNewMintAccount("mint", decimal.NewFromInt(1_000_000), decimal.NewFromInt(995_000), now, now)
	assert.True(t, decimal.NewFromInt(5000).Equal(a.Distributed()))

	_, err := NewMintAccount("", decimal.Zero, decimal.Zero, now, now)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}
