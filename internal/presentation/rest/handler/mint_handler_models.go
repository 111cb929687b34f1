package handler

// MintSummaryResponse ミント実行レスポンス
type MintSummaryResponse struct {
	MintID           string               `json:"mint_id,omitempty"`
	PeriodCode       string               `json:"period_code"`
	PeriodKey        string               `json:"period_key"`
	Status           string               `json:"status"`
	Conversion       *ConversionResponse  `json:"conversion,omitempty"`
	Users            []UserPayoutResponse `json:"users"`
	TotalDistributed string               `json:"total_distributed"`
}

// ConversionResponse ジェム換算結果
type ConversionResponse struct {
	TotalGems      string `json:"total_gems"`
	GemsInToken    string `json:"gems_in_token"`
	ConfirmedTotal string `json:"confirmed_total"`
}

// UserPayoutResponse ユーザーごとの分配結果
type UserPayoutResponse struct {
	UserID        string                `json:"user_id"`
	TotalGems     string                `json:"total_gems"`
	Percentage    string                `json:"percentage"`
	Tokens        string                `json:"tokens"`
	OperationID   string                `json:"operation_id"`
	TransactionID string                `json:"transaction_id"`
	Attributions  []AttributionResponse `json:"attributions"`
}

// AttributionResponse ジェム単位の帰属
type AttributionResponse struct {
	GemID       string `json:"gem_id"`
	Gems        string `json:"gems"`
	TokenAmount string `json:"token_amount"`
}

// MintAccountResponse ミントアカウントレスポンス
type MintAccountResponse struct {
	AccountID      string `json:"account_id"`
	InitialBalance string `json:"initial_balance"`
	CurrentBalance string `json:"current_balance"`
	Distributed    string `json:"distributed"`
	UpdatedAt      string `json:"updated_at"`
}

// MintPeriodResponse ミント記録
type MintPeriodResponse struct {
	MintID           string `json:"mint_id"`
	PeriodKey        string `json:"period_key"`
	PeriodCode       string `json:"period_code"`
	ConversionRate   string `json:"conversion_rate"`
	TotalGems        string `json:"total_gems"`
	TotalDistributed string `json:"total_distributed"`
	CreatedAt        string `json:"created_at"`
}

// MintHistoryResponse ミント履歴レスポンス
type MintHistoryResponse struct {
	Periods []MintPeriodResponse `json:"periods"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}
