package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/security"
	"github.com/gridbase/gridbase/pkg/types"
	"github.com/gridbase/gridbase/pkg/utils"
)

const TOKEN_VERSION = "v1"

type AccessTokenLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewAccessTokenLogic(ctx context.Context, core *core.Core) *AccessTokenLogic {
	return &AccessTokenLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type CreateAccessTokenArgs struct {
	Desc        string   `json:"desc"`
	TableAccess []string `json:"table_access"`
	TTLDays     int      `json:"ttl_days"`
}

// CreateAccessToken 签发不透明令牌。TableAccess 为空时令牌不受限
func (l *AccessTokenLogic) CreateAccessToken(args CreateAccessTokenArgs) (*types.AccessToken, error) {
	user := l.GetUserInfo()
	if user.User == "" {
		return nil, errors.New("AccessTokenLogic.CreateAccessToken.unauthorized", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	var access types.TableAccess
	if len(args.TableAccess) > 0 {
		store := l.core.Store().UserTableStore()
		for _, id := range args.TableAccess {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := store.Get(l.ctx, id); err != nil {
				return nil, errors.New("AccessTokenLogic.CreateAccessToken.Get", i18n.ERROR_TABLE_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			access = append(access, id)
		}
	}

	var expiresAt int64
	if args.TTLDays > 0 {
		expiresAt = time.Now().AddDate(0, 0, args.TTLDays).Unix()
	}

	token := types.AccessToken{
		ID:          utils.GenUniqIDStr(),
		Appid:       user.Appid,
		UserID:      user.User,
		Token:       security.GenerateToken(),
		TableAccess: access,
		Version:     TOKEN_VERSION,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().Unix(),
		Desc:        args.Desc,
	}

	if err := l.core.Store().AccessTokenStore().Create(l.ctx, token); err != nil {
		return nil, errors.New("AccessTokenLogic.CreateAccessToken.Create", i18n.ERROR_INTERNAL, err)
	}
	return &token, nil
}

// ListAccessTokens 列出当前用户签发的令牌
func (l *AccessTokenLogic) ListAccessTokens(page, pageSize uint64) ([]types.AccessToken, error) {
	user := l.GetUserInfo()
	if user.User == "" {
		return nil, errors.New("AccessTokenLogic.ListAccessTokens.unauthorized", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	page, pageSize = types.NormalizePagination(page, pageSize)
	tokens, err := l.core.Store().AccessTokenStore().ListUserTokens(l.ctx, user.Appid, user.User, page, pageSize)
	if err != nil {
		return nil, errors.New("AccessTokenLogic.ListAccessTokens.ListUserTokens", i18n.ERROR_INTERNAL, err)
	}
	if tokens == nil {
		tokens = []types.AccessToken{}
	}
	return tokens, nil
}

// DeleteAccessTokens 仅允许删除自己名下的令牌
func (l *AccessTokenLogic) DeleteAccessTokens(ids []string) error {
	user := l.GetUserInfo()
	if user.User == "" {
		return errors.New("AccessTokenLogic.DeleteAccessTokens.unauthorized", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}
	if len(ids) == 0 {
		return errors.New("AccessTokenLogic.DeleteAccessTokens.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if err := l.core.Store().AccessTokenStore().Delete(l.ctx, user.Appid, user.User, ids); err != nil {
		return errors.New("AccessTokenLogic.DeleteAccessTokens.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
