package user

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrUserNotFound ユーザーが見つからないエラー
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// Role ユーザーの権限を表す値オブジェクト
type Role string

const (
	RoleUser       Role = "user"        // 一般ユーザー
	RoleAdmin      Role = "admin"       // 管理者
	RoleSuperAdmin Role = "super_admin" // 特権管理者
)

// NewRole 新しいRoleを作成
func NewRole(s string) (Role, error) {
	switch s {
	case "user", "admin", "super_admin":
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %s", s)
	}
}

// String 文字列表現を返す
func (r Role) String() string {
	return string(r)
}

// IsAdmin 管理操作が可能な権限かどうかを返す
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Status ユーザーの状態を表す値オブジェクト
type Status string

const (
	StatusActive  Status = "active"  // 有効
	StatusDeleted Status = "deleted" // 削除済み
)

// NewStatus 新しいStatusを作成
func NewStatus(s string) (Status, error) {
	switch s {
	case "active", "deleted":
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid user status: %s", s)
	}
}

// String 文字列表現を返す
func (s Status) String() string {
	return string(s)
}

// User ユーザーエンティティ（参照専用）
type User struct {
	userID string
	role   Role
	status Status
}

// NewUser 新しいUserエンティティを作成
func NewUser(userID string, role Role, status Status) (*User, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	return &User{userID: userID, role: role, status: status}, nil
}

// MustNewUser テスト用ヘルパー: NewUserを呼び出し、エラーが発生した場合はpanicする
func MustNewUser(userID string, role Role, status Status) *User {
	u, err := NewUser(userID, role, status)
	if err != nil {
		panic(err)
	}
	return u
}

// UserID ユーザーIDを返す
func (u *User) UserID() string {
	return u.userID
}

// Role 権限を返す
func (u *User) Role() Role {
	return u.role
}

// Status 状態を返す
func (u *User) Status() Status {
	return u.status
}

// IsActive 有効なユーザーかどうかを返す
func (u *User) IsActive() bool {
	return u.status == StatusActive
}
