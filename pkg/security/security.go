package security

import (
	"time"

	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

const (
	TOKEN_KEY = "Authorization"
)

// TokenClaims 鉴权中间件解析出的访问身份。
// TableAccess 为 nil 表示该令牌可访问全部公开表
type TokenClaims struct {
	Appid       string            `json:"aid"`
	User        string            `json:"u"`
	TableAccess types.TableAccess `json:"ta"`
	Fields      map[string]string `json:"f"`
	ExpireTime  int64             `json:"exp"`
}

const (
	ROLE_KEY = "role"
)

func NewTokenClaims(appid, userID, role string, tableAccess types.TableAccess, expireTime int64) TokenClaims {
	return TokenClaims{
		Appid:       appid,
		User:        userID,
		TableAccess: tableAccess,
		Fields: map[string]string{
			ROLE_KEY: role,
		},
		ExpireTime: expireTime,
	}
}

func (t TokenClaims) GetRole() string {
	return t.Field(ROLE_KEY)
}

func (t TokenClaims) GetUser() string {
	return t.User
}

func (t TokenClaims) Field(key string) string {
	if t.Fields == nil {
		return ""
	}
	return t.Fields[key]
}

func (t TokenClaims) Expired() bool {
	return t.ExpireTime != 0 && t.ExpireTime < time.Now().Unix()
}

// GenerateToken 生成不透明令牌，凭据本体只存数据库
func GenerateToken() string {
	return utils.RandomStr(48)
}
