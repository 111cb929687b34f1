package gems

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// gemIDNamespace 行動からジェムIDを決定的に導出するための名前空間
var gemIDNamespace = uuid.MustParse("8f1b6c3e-2d4a-5e7f-9a0b-1c2d3e4f5a6b")

// GemRecord ジェムエンティティ
//
// 作成後は変更されない。回収済みかどうかはミント帰属レコードの有無で判断する。
type GemRecord struct {
	gemID     string
	userID    string // ジェムを受け取るユーザー（投稿者）
	postID    string
	fromID    string // 行動したユーザー
	amount    decimal.Decimal
	whereby   Whereby
	createdAt time.Time
}

// NewGemRecord 新しいGemRecordエンティティを作成
func NewGemRecord(gemID, userID, postID, fromID string, amount decimal.Decimal, whereby Whereby, createdAt time.Time) (*GemRecord, error) {
	if gemID == "" {
		return nil, ErrInvalidGemID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if !whereby.Valid() {
		return nil, ErrInvalidWhereby
	}
	return &GemRecord{
		gemID:     gemID,
		userID:    userID,
		postID:    postID,
		fromID:    fromID,
		amount:    amount,
		whereby:   whereby,
		createdAt: createdAt,
	}, nil
}

// MustNewGemRecord テスト用ヘルパー: NewGemRecordを呼び出し、エラーが発生した場合はpanicする
func MustNewGemRecord(gemID, userID, postID, fromID string, amount decimal.Decimal, whereby Whereby, createdAt time.Time) *GemRecord {
	g, err := NewGemRecord(gemID, userID, postID, fromID, amount, whereby, createdAt)
	if err != nil {
		panic(err)
	}
	return g
}

// GemID ジェムIDを返す
func (g *GemRecord) GemID() string {
	return g.gemID
}

// UserID 受け取りユーザーIDを返す
func (g *GemRecord) UserID() string {
	return g.userID
}

// PostID 投稿IDを返す
func (g *GemRecord) PostID() string {
	return g.postID
}

// FromID 行動したユーザーIDを返す
func (g *GemRecord) FromID() string {
	return g.fromID
}

// Amount ジェム量を返す（よくないねは負の値）
func (g *GemRecord) Amount() decimal.Decimal {
	return g.amount
}

// Whereby 発生元を返す
func (g *GemRecord) Whereby() Whereby {
	return g.whereby
}

// CreatedAt 作成日時を返す
func (g *GemRecord) CreatedAt() time.Time {
	return g.createdAt
}

// NewGemID カテゴリと行動IDから決定的なジェムIDを生成
func NewGemID(category, interactionID string) string {
	return uuid.NewSHA1(gemIDNamespace, []byte(category+":"+interactionID)).String()
}
