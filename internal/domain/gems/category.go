package gems

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category 行動からジェムを生成する集計カテゴリ
type Category struct {
	Name    string
	Table   string
	Whereby Whereby
	Factor  decimal.Decimal
}

// Factors カテゴリごとの換算係数
type Factors struct {
	View    decimal.Decimal
	Like    decimal.Decimal
	Dislike decimal.Decimal
	Comment decimal.Decimal
}

// DefaultFactors 既定の換算係数
func DefaultFactors() Factors {
	return Factors{
		View:    decimal.RequireFromString("0.25"),
		Like:    decimal.NewFromInt(5),
		Dislike: decimal.NewFromInt(-3),
		Comment: decimal.NewFromInt(2),
	}
}

// Categories 換算係数から集計カテゴリ一覧を作成
func Categories(f Factors) ([]Category, error) {
	// よくないね以外は正、よくないねは負でなければならない
	if !f.View.IsPositive() || !f.Like.IsPositive() || !f.Comment.IsPositive() || !f.Dislike.IsNegative() {
		return nil, ErrInvalidFactor
	}
	return []Category{
		{Name: "views", Table: "user_post_views", Whereby: WherebyView, Factor: f.View},
		{Name: "likes", Table: "user_post_likes", Whereby: WherebyLike, Factor: f.Like},
		{Name: "dislikes", Table: "user_post_dislikes", Whereby: WherebyDislike, Factor: f.Dislike},
		{Name: "comments", Table: "user_post_comments", Whereby: WherebyComment, Factor: f.Comment},
	}, nil
}

// Interaction 未回収の行動
type Interaction struct {
	InteractionID string
	ActorID       string
	PostID        string
	AuthorID      string
	CreatedAt     time.Time
}

// ToGem 行動をジェムへ変換
func (c Category) ToGem(i *Interaction) (*GemRecord, error) {
	return NewGemRecord(
		NewGemID(c.Name, i.InteractionID),
		i.AuthorID,
		i.PostID,
		i.ActorID,
		c.Factor,
		c.Whereby,
		i.CreatedAt,
	)
}
