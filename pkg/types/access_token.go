package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TableAccess 令牌授权的表 ID 列表。nil 表示不受限，
// 空列表表示未授权任何表
type TableAccess []string

func (a TableAccess) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *TableAccess) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported table access type %T", value)
	}
	return json.Unmarshal(raw, a)
}

// Unrestricted 是否可以访问全部公开表
func (a TableAccess) Unrestricted() bool {
	return a == nil
}

// Allows 判断令牌是否允许访问某个表
func (a TableAccess) Allows(tableID string) bool {
	if a.Unrestricted() {
		return true
	}
	for _, id := range a {
		if id == tableID {
			return true
		}
	}
	return false
}

// AccessToken 访问令牌，鉴权中间件只消费校验结论
type AccessToken struct {
	ID          string      `json:"id" db:"id"`
	Appid       string      `json:"appid" db:"appid"`
	UserID      string      `json:"user_id" db:"user_id"`
	Token       string      `json:"token" db:"token"`
	TableAccess TableAccess `json:"table_access" db:"table_access"`
	Version     string      `json:"version" db:"version"`
	ExpiresAt   int64       `json:"expires_at" db:"expires_at"`
	CreatedAt   int64       `json:"created_at" db:"created_at"`
	Desc        string      `json:"desc" db:"desc"`
}
