package admin

import (
	"net/url"
	"strings"

	handlershared "github.com/partshub/internal/http/handlers/shared"
	"github.com/partshub/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "load roles failed", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 获取角色直接持有的策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, err := url.PathUnescape(strings.TrimSpace(c.Param("role")))
	if err != nil || role == "" {
		respondError(c, response.CodeBadRequest, "invalid role", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "load role policies failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 为角色授予策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if !handlershared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "grant policy failed", err)
		return
	}
	h.auditPolicyChange(c, "grant", req)
	response.SuccessWithMsg(c, "policy granted", nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if !handlershared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "revoke policy failed", err)
		return
	}
	h.auditPolicyChange(c, "revoke", req)
	response.SuccessWithMsg(c, "policy revoked", nil)
}

func (h *Handler) auditPolicyChange(c *gin.Context, op string, req authzPolicyPayload) {
	adminID, _ := c.Get(handlershared.ContextKeyUserID)
	requestLog(c).Infow("authz_policy_changed",
		"operation", op,
		"admin_id", adminID,
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
}
