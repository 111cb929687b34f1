package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriodCode 無効な期間コード
var ErrInvalidPeriodCode = errors.New("invalid period code")

// Code 集計期間コードを表す値オブジェクト
//
// D0 は今日、Dn は n 日前、W0/M0/Y0 は今週/今月/今年を表す。
type Code string

const (
	D0 Code = "D0"
	D1 Code = "D1"
	D2 Code = "D2"
	D3 Code = "D3"
	D4 Code = "D4"
	D5 Code = "D5"
	D6 Code = "D6"
	D7 Code = "D7"
	W0 Code = "W0"
	M0 Code = "M0"
	Y0 Code = "Y0"
)

// DayCodes ミント可能な日単位のコード
var DayCodes = []Code{D0, D1, D2, D3, D4, D5, D6, D7}

// StatsCodes 未回収ジェム統計で集計するコード
var StatsCodes = []Code{D0, D1, D2, D3, D4, D5, D6, D7, W0, M0, Y0}

// ReportCodes ユーザー別ジェム集計で受け付けるコード
var ReportCodes = []Code{D0, D1, D2, D3, D4, D5, W0, M0, Y0}

// NewCode 新しいCodeを作成
func NewCode(s string) (Code, error) {
	c := Code(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPeriodCode, s)
	}
	return c, nil
}

// String 文字列表現を返す
func (c Code) String() string {
	return string(c)
}

// Valid 有効なコードかどうかを返す
func (c Code) Valid() bool {
	return c.In(StatsCodes)
}

// IsDay 日単位のコードかどうかを返す
func (c Code) IsDay() bool {
	return c.In(DayCodes)
}

// In コードが一覧に含まれるかどうかを返す
func (c Code) In(codes []Code) bool {
	for _, allowed := range codes {
		if c == allowed {
			return true
		}
	}
	return false
}

// Window 半開区間 [Start, End) の集計期間
type Window struct {
	Code  Code
	Start time.Time
	End   time.Time
}

// Key 期間を一意に識別するキーを返す（日単位は YYYY-MM-DD）
func (w Window) Key() string {
	switch w.Code {
	case W0:
		year, week := w.Start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case M0:
		return w.Start.Format("2006-01")
	case Y0:
		return w.Start.Format("2006")
	default:
		return w.Start.Format(time.DateOnly)
	}
}

// Contains 時刻が期間内かどうかを返す
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Resolve now を基準にコードを具体的な期間へ解決
func (c Code) Resolve(now time.Time) (Window, error) {
	if !c.Valid() {
		return Window{}, fmt.Errorf("%w: %s", ErrInvalidPeriodCode, c)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch c {
	case W0:
		// ISO週（月曜始まり）
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return Window{Code: c, Start: start, End: start.AddDate(0, 0, 7)}, nil
	case M0:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Window{Code: c, Start: start, End: start.AddDate(0, 1, 0)}, nil
	case Y0:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		return Window{Code: c, Start: start, End: start.AddDate(1, 0, 0)}, nil
	default:
		days := int(c[1] - '0')
		start := today.AddDate(0, 0, -days)
		return Window{Code: c, Start: start, End: start.AddDate(0, 0, 1)}, nil
	}
}
