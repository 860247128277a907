package srv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testRoleUser struct {
	role string
	user string
}

func (u testRoleUser) GetRole() string { return u.role }
func (u testRoleUser) GetUser() string { return u.user }

func ownerOf(userID string) *LazyRoler {
	return NewRolerWithLazyload(func() (string, error) {
		return userID, nil
	})
}

func TestRBACCheckOwnership(t *testing.T) {
	s := SetupRBACSrv()

	// 持查看角色的令牌不能读他人资源
	err := s.Check(testRoleUser{role: RoleViewer, user: "attacker"}, ownerOf("victim"), PermissionView)
	assert.NotNil(t, err)

	// 归属者各级操作均放行
	owner := testRoleUser{role: RoleViewer, user: "victim"}
	assert.Nil(t, s.Check(owner, ownerOf("victim"), PermissionView))
	assert.Nil(t, s.Check(owner, ownerOf("victim"), PermissionEdit))
	assert.Nil(t, s.Check(owner, ownerOf("victim"), PermissionAdmin))

	// 编辑角色同样不能越过归属
	err = s.Check(testRoleUser{role: RoleEditor, user: "attacker"}, ownerOf("victim"), PermissionView)
	assert.NotNil(t, err)

	// 管理角色不受归属限制
	assert.Nil(t, s.Check(testRoleUser{role: RoleAdmin, user: "ops"}, ownerOf("victim"), PermissionEdit))
}

func TestRBACPermissionHierarchy(t *testing.T) {
	s := SetupRBACSrv()

	assert.True(t, s.CheckPermission(RoleAdmin, PermissionView))
	assert.True(t, s.CheckPermission(RoleEditor, PermissionView))
	assert.False(t, s.CheckPermission(RoleViewer, PermissionEdit))
	assert.False(t, s.CheckPermission(RoleEditor, PermissionAdmin))
}
