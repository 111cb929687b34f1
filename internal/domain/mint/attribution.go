package mint

import (
	"time"

	"github.com/shopspring/decimal"
)

// MintAttribution ジェム単位のミント帰属記録
//
// gemID は一意で、同じジェムが二度支払われることはない。
type MintAttribution struct {
	MintID        string
	GemID         string
	UserID        string
	TransactionID string
	OperationID   string
	TokenAmount   decimal.Decimal
	CreatedAt     time.Time
}
