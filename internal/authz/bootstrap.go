package authz

import (
	"fmt"

	"github.com/partshub/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// memberRole 所有登录用户共享的基础权限
const memberRole = "member"

// BuiltinRoleSeeds 四类用户的路由权限矩阵
// 订单能否流转由 orderflow 判定，这里只控制路由入口
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: memberRole,
			Policies: []Policy{
				{Object: "/auth/me", Action: "GET"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/unread-count", Action: "GET"},
				{Object: "/notifications/read-all", Action: "PUT"},
				{Object: "/notifications/:id/read", Action: "PUT"},
				{Object: "/locations/dispatchers", Action: "GET"},
				{Object: "/location/:user_id", Action: "GET"},
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/status", Action: "PUT"},
			},
		},
		{
			Role:     constants.RoleClient,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/orders", Action: "POST"},
				{Object: "/payments/initialize", Action: "POST"},
				{Object: "/payments/verify/:reference", Action: "GET"},
				{Object: "/cart", Action: "GET"},
				{Object: "/cart", Action: "PUT"},
				{Object: "/cart", Action: "DELETE"},
			},
		},
		{
			Role:     constants.RoleVendor,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/parts", Action: "POST"},
				{Object: "/parts/:id", Action: "PUT"},
				{Object: "/parts/:id", Action: "DELETE"},
			},
		},
		{
			Role:     constants.RoleDispatcher,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/orders/:id/assign", Action: "PUT"},
				{Object: "/location", Action: "PUT"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/parts", Action: "POST"},
				{Object: "/parts/:id", Action: "PUT"},
				{Object: "/parts/:id", Action: "DELETE"},
				{Object: "/payments/verify/:reference", Action: "GET"},
				{Object: "/orders/:id/assign", Action: "PUT"},
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.ReloadPolicy()
	}
	return nil
}
