package usecase

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// 監査ログ用にJSON化する（失敗時は空）
func auditJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
