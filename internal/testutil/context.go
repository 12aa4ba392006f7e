package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxTenantID, types.DefaultTenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = context.WithValue(ctx, types.CtxBranchID, "branch_test")
	ctx = context.WithValue(ctx, types.CtxRoles, []string{"owner"})
	return ctx
}
