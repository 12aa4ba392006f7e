package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/types"
)

// TenantContextMiddleware lifts the identity headers into the request
// context. The gateway in front of this service authenticates the caller
// and stamps the headers; here we only require the tenant to be present.
func TenantContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(ierr.ErrPermission), ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Display: "Missing tenant header",
			},
		})
		return
	}
	ctx = types.SetTenantID(ctx, tenantID)

	if branchID := c.GetHeader(types.HeaderBranchID); branchID != "" {
		ctx = context.WithValue(ctx, types.CtxBranchID, branchID)
	}
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = context.WithValue(ctx, types.CtxUserID, userID)
	}
	if rolesHeader := c.GetHeader(types.HeaderRoles); rolesHeader != "" {
		roles := []string{}
		for _, role := range strings.Split(rolesHeader, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		ctx = context.WithValue(ctx, types.CtxRoles, roles)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
