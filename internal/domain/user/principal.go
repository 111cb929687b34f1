package user

// Principal 操作を要求した認証済みの呼び出し元
//
// System はスケジューラやCLIなど内部から起動された操作を表し、ユーザー検索を行わずに許可される。
type Principal struct {
	UserID string
	System bool
}

// SystemPrincipal システム呼び出し元を返す
func SystemPrincipal(actor string) Principal {
	return Principal{UserID: actor, System: true}
}

// UserPrincipal ユーザー呼び出し元を返す
func UserPrincipal(userID string) Principal {
	return Principal{UserID: userID}
}

// IsAnonymous 呼び出し元が特定できないかどうかを返す
func (p Principal) IsAnonymous() bool {
	return !p.System && p.UserID == ""
}
