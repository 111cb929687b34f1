package handler

// GenerateGemsResponse ジェム生成レスポンス
type GenerateGemsResponse struct {
	Status     string                   `json:"status"`
	Inserted   int64                    `json:"inserted"`
	Categories []CategoryResultResponse `json:"categories"`
}

// CategoryResultResponse カテゴリごとの生成結果
type CategoryResultResponse struct {
	Category     string `json:"category"`
	Interactions int    `json:"interactions"`
	Inserted     int64  `json:"inserted"`
	Error        string `json:"error,omitempty"`
}

// GemsStatsResponse 未回収ジェム統計レスポンス
type GemsStatsResponse struct {
	Windows []WindowStatResponse `json:"windows"`
}

// WindowStatResponse 期間ごとの統計
type WindowStatResponse struct {
	PeriodCode string `json:"period_code"`
	PeriodKey  string `json:"period_key"`
	Count      int64  `json:"count"`
	TotalGems  string `json:"total_gems"`
}

// PeriodGemsResponse 期間内のユーザー別ジェム集計レスポンス
type PeriodGemsResponse struct {
	PeriodCode   string             `json:"period_code"`
	PeriodKey    string             `json:"period_key"`
	OverallTotal string             `json:"overall_total"`
	Users        []UserGemsResponse `json:"users"`
}

// UserGemsResponse ユーザーごとの未回収ジェム
type UserGemsResponse struct {
	UserID     string `json:"user_id"`
	TotalGems  string `json:"total_gems"`
	Percentage string `json:"percentage"`
	GemCount   int    `json:"gem_count"`
}
