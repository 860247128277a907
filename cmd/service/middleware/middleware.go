package middleware

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/core/srv"
	v1 "github.com/gridbase/gridbase/app/logic/v1"
	"github.com/gridbase/gridbase/app/response"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/security"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage 目前服务端支持 en: English, zh-CN: 简体中文
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if lang == "" {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		res := utils.ParseAcceptLanguage(lang)
		if len(res) == 0 {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		ctx.Set(v1.LANGUAGE_KEY, lo.If(strings.Contains(res[0].Tag, "zh"), types.LANGUAGE_CN_KEY).Else(types.LANGUAGE_EN_KEY))
	}
}

const (
	ACCESS_TOKEN_HEADER_KEY = "X-Access-Token"
	APPID_HEADER            = "X-Appid"
)

func SetAppid(core *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appid := ctx.Request.Header.Get(APPID_HEADER)
		if appid == "" {
			appid = core.DefaultAppid()
		}
		ctx.Set(v1.APPID_KEY, appid)
	}
}

// Authorization 令牌鉴权。优先取 Authorization 头，
// 其次 X-Access-Token，最后 query 参数 token
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue := c.GetHeader(security.TOKEN_KEY)
		if tokenValue == "" {
			tokenValue = c.GetHeader(ACCESS_TOKEN_HEADER_KEY)
		}
		if tokenValue == "" {
			tokenValue = c.Query("token")
		}

		passed, err := ParseAccessToken(c, tokenValue, core)
		if err != nil {
			response.APIError(c, errors.Trace("middleware.Authorization", err))
			return
		}
		if !passed {
			response.APIError(c, errors.New("middleware.Authorization", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

func ParseAccessToken(c *gin.Context, tokenValue string, core *core.Core) (bool, error) {
	tokenValue = strings.TrimPrefix(strings.TrimSpace(tokenValue), "Bearer ")
	if tokenValue == "" {
		return false, nil
	}

	appid, exist := v1.InjectAppid(c)
	if !exist {
		appid = core.DefaultAppid()
	}

	token, err := core.Store().AccessTokenStore().GetAccessToken(c, appid, tokenValue)
	if err != nil && err != sql.ErrNoRows {
		return false, errors.New("ParseAccessToken.AccessTokenStore.GetAccessToken", i18n.ERROR_INTERNAL, err)
	}
	if token == nil {
		return false, nil
	}
	if token.ExpiresAt != 0 && token.ExpiresAt < time.Now().Unix() {
		return false, errors.New("ParseAccessToken.token.expired", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	// 访问级别由角色与归属双轨判定，令牌默认只携带查看角色，
	// 表的拥有者在鉴权链路里另行放行
	c.Set(v1.TOKEN_CONTEXT_KEY, security.NewTokenClaims(token.Appid, token.UserID, srv.RoleViewer, token.TableAccess, token.ExpiresAt))
	return true, nil
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Access-Token, X-Appid, Accept-Language")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

// Instrument 按路由记录响应耗时，4xx/5xx 额外计数
func Instrument(m *core.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := m.ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			m.ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}

// UseLimit 全局限流，写路径共享一个令牌桶
func UseLimit(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.Srv().RateLimiter().Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
