package v1

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gridbase/gridbase/app/core"
	"github.com/gridbase/gridbase/app/core/srv"
	"github.com/gridbase/gridbase/pkg/errors"
	"github.com/gridbase/gridbase/pkg/i18n"
	"github.com/gridbase/gridbase/pkg/security"
)

type _userInfo struct {
	ctx  context.Context
	core *core.Core
	u    *security.TokenClaims
}

func (u *_userInfo) GetUserInfo() security.TokenClaims {
	return *u.u
}

func (u *_userInfo) Identification(roler srv.RoleObject, permission string) error {
	if err := u.core.Srv().RBAC().Check(u.GetUserInfo(), roler, permission); err != nil {
		return err
	}
	return nil
}

// 通过表ID懒加载该表归属的用户ID
func (u *_userInfo) lazyRolerFromTableID(tableID string) *srv.LazyRoler {
	return srv.NewRolerWithLazyload(func() (string, error) {
		table, err := u.core.Store().UserTableStore().Get(u.ctx, tableID)
		if err != nil && err != sql.ErrNoRows {
			return "", errors.New("_userInfo.RolerWithLazyload", i18n.ERROR_INTERNAL, err)
		}
		if table == nil {
			return "", nil
		}
		return table.CreatedBy, nil
	})
}

func SetupUserInfo(ctx context.Context, core *core.Core) UserInfo {
	userInfo, ok := InjectTokenClaim(ctx)
	if !ok {
		slog.Error("Not found user in context", slog.String("component", "logic.v1.setupUserInfo"))
		userInfo = security.TokenClaims{}
	}
	return &_userInfo{
		ctx:  ctx,
		u:    &userInfo,
		core: core,
	}
}

type UserInfo interface {
	GetUserInfo() security.TokenClaims
	Identification(roler srv.RoleObject, permission string) error
	lazyRolerFromTableID(tableID string) *srv.LazyRoler
}
