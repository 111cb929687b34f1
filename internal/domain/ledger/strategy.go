package ledger

import (
	"github.com/google/uuid"
)

// TransferIDs 1回の送金に割り当てる識別子の組
type TransferIDs struct {
	OperationID   string
	TransactionID string
}

// Strategy 送金ごとに新しい識別子の組を返す
type Strategy func() TransferIDs

// NewUUIDStrategy UUIDv4で識別子を生成するStrategyを返す
func NewUUIDStrategy() Strategy {
	return func() TransferIDs {
		return TransferIDs{
			OperationID:   uuid.NewString(),
			TransactionID: uuid.NewString(),
		}
	}
}
