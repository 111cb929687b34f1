package gems

import (
	"fmt"
)

// Whereby ジェムの発生元となった行動を表す値オブジェクト
type Whereby int

const (
	WherebyView    Whereby = 1 // 閲覧
	WherebyLike    Whereby = 2 // いいね
	WherebyDislike Whereby = 3 // よくないね
	WherebyComment Whereby = 4 // コメント
	WherebyPost    Whereby = 5 // 投稿
)

// NewWhereby 新しいWherebyを作成
func NewWhereby(v int) (Whereby, error) {
	w := Whereby(v)
	if !w.Valid() {
		return 0, fmt.Errorf("invalid whereby: %d", v)
	}
	return w, nil
}

// Valid 有効な値かどうかを返す
func (w Whereby) Valid() bool {
	return w >= WherebyView && w <= WherebyPost
}

// String 文字列表現を返す
func (w Whereby) String() string {
	switch w {
	case WherebyView:
		return "view"
	case WherebyLike:
		return "like"
	case WherebyDislike:
		return "dislike"
	case WherebyComment:
		return "comment"
	case WherebyPost:
		return "post"
	default:
		return fmt.Sprintf("whereby(%d)", int(w))
	}
}
