package validator

import (
	"strings"
)

// メールは前後空白を落として小文字で扱う
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// パスワードのよくある弱いパスワード
func IsWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":     {},
		"password123":  {},
		"123456789012": {},
		"1234567890":   {},
		"12345678":     {},
		"qwerty":       {},
		"qwertyuiop":   {},
		"letmein":      {},
		"admin":        {},
		"admin123":     {},
		"walvisbay":    {},
	}

	_, ok := weak[normalized]
	return ok
}
