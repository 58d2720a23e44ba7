package model

// リクエスト単位の操作者。JWTから組み立て、TokenVersionGuardでDBの値に更新する。
type Actor struct {
	UserID   int64
	Role     Role
	Verified bool
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

// 顧客はverified必須、管理者は常に可。
func (a Actor) CanTransact() bool {
	return a.Authenticated() && (a.IsAdmin() || a.Verified)
}
