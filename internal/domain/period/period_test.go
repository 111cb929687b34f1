package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Code
		wantError bool
	}{
		{name: "正常系: 今日", input: "D0", want: D0},
		{name: "正常系: 7日前", input: "D7", want: D7},
		{name: "正常系: 今月", input: "M0", want: M0},
		{name: "異常系: 範囲外の日", input: "D8", wantError: true},
		{name: "異常系: 小文字", input: "d0", wantError: true},
		{name: "異常系: 空文字", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCode(tt.input)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidPeriodCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCode_IsDay(t *testing.T) {
	assert.True(t, D0.IsDay())
	assert.True(t, D7.IsDay())
	assert.False(t, W0.IsDay())
	assert.False(t, Y0.IsDay())
}

func TestCode_Resolve(t *testing.T) {
	// 2026-10-15 は木曜日
	now := time.Date(2026, 10, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name      string
		code      Code
		wantStart time.Time
		wantEnd   time.Time
		wantKey   string
	}{
		{
			name:      "正常系: D0",
			code:      D0,
			wantStart: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			wantKey:   "2026-10-15",
		},
		{
			name:      "正常系: D1",
			code:      D1,
			wantStart: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			wantKey:   "2026-10-14",
		},
		{
			name:      "正常系: W0 は月曜始まり",
			code:      W0,
			wantStart: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
			wantKey:   "2026-W42",
		},
		{
			name:      "正常系: M0",
			code:      M0,
			wantStart: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			wantKey:   "2026-10",
		},
		{
			name:      "正常系: Y0",
			code:      Y0,
			wantStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			wantKey:   "2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := tt.code.Resolve(now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
			assert.Equal(t, tt.wantKey, w.Key())
			assert.True(t, w.Contains(w.Start))
			assert.False(t, w.Contains(w.End))
		})
	}
}

func TestCode_Resolve_Invalid(t *testing.T) {
	_, err := Code("X9").Resolve(time.Now())
	assert.ErrorIs(t, err, ErrInvalidPeriodCode)
}
