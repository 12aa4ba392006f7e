package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxBranchID  ContextKey = "ctx_branch_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxRoles     ContextKey = "ctx_roles" // RBAC roles array for permission checks

	// Default values
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

// HTTP headers carrying request-scoped identity
const (
	HeaderRequestID = "X-Request-ID"
	HeaderTenantID  = "X-Tenant-ID"
	HeaderBranchID  = "X-Branch-ID"
	HeaderUserID    = "X-User-ID"
	HeaderRoles     = "X-Roles"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(CtxTenantID).(string); ok {
		return tenantID
	}
	return ""
}

func GetBranchID(ctx context.Context) string {
	if branchID, ok := ctx.Value(CtxBranchID).(string); ok {
		return branchID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetRoles returns the RBAC roles array from the context
func GetRoles(ctx context.Context) []string {
	if roles, ok := ctx.Value(CtxRoles).([]string); ok {
		return roles
	}
	return []string{} // Empty roles = full access
}

// SetTenantID sets the tenant ID in the context
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

// SetBranchID sets the branch ID in the context
func SetBranchID(ctx context.Context, branchID string) context.Context {
	return context.WithValue(ctx, CtxBranchID, branchID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRoles sets the RBAC roles array in the context
func SetRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, CtxRoles, roles)
}

// ValidateTenantContext validates that the required tenant context fields are present
func ValidateTenantContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}

	tenantID := GetTenantID(ctx)
	if tenantID == "" {
		return fmt.Errorf("no tenant context found in context")
	}

	return nil
}
