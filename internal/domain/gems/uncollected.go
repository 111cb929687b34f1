package gems

import (
	"sort"

	"mint-server/internal/domain/tokenmath"

	"github.com/shopspring/decimal"
)

// UserGems ユーザー単位の未回収ジェム集計
type UserGems struct {
	UserID     string
	TotalGems  decimal.Decimal
	Percentage decimal.Decimal // 全体に対する割合（0〜100）
	Gems       []*GemRecord
}

// UncollectedGemsResult 期間内の未回収ジェム集計結果
type UncollectedGemsResult struct {
	OverallTotal decimal.Decimal
	Rows         []*UserGems // UserID昇順
}

// IsEmpty 分配対象が存在しないかどうかを返す
func (r *UncollectedGemsResult) IsEmpty() bool {
	return r == nil || len(r.Rows) == 0 || !r.OverallTotal.IsPositive()
}

// GemCount 集計対象のジェム件数を返す
func (r *UncollectedGemsResult) GemCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, row := range r.Rows {
		n += len(row.Gems)
	}
	return n
}

// Aggregate ジェムをユーザー単位に集計
//
// 合計が負のユーザーは結果から除外され、そのジェムは未回収のまま残る。
// 合計が0のユーザーは残り、ミント時に分配額0として扱われる。
func Aggregate(records []*GemRecord, arith *tokenmath.Arithmetic) (*UncollectedGemsResult, error) {
	byUser := make(map[string]*UserGems)
	for _, g := range records {
		row, ok := byUser[g.UserID()]
		if !ok {
			row = &UserGems{UserID: g.UserID(), TotalGems: decimal.Zero}
			byUser[g.UserID()] = row
		}
		row.TotalGems = row.TotalGems.Add(g.Amount())
		row.Gems = append(row.Gems, g)
	}

	rows := make([]*UserGems, 0, len(byUser))
	overall := decimal.Zero
	for _, row := range byUser {
		if row.TotalGems.IsNegative() {
			continue
		}
		rows = append(rows, row)
		overall = overall.Add(row.TotalGems)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })

	for _, row := range rows {
		sort.SliceStable(row.Gems, func(i, j int) bool { return row.Gems[i].GemID() < row.Gems[j].GemID() })
		pct, err := arith.Percentage(row.TotalGems, overall)
		if err != nil {
			return nil, err
		}
		row.Percentage = pct
	}

	return &UncollectedGemsResult{OverallTotal: overall, Rows: rows}, nil
}
