package testutil

import (
	"context"

	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"gorm.io/gorm"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient is a mock implementation of postgres client for testing.
// The in-memory stores ignore transactions, so WithTx just runs the function.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

// WithTx executes the given function without a real transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(postgres.TxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return fn(ctx)
}

// Querier returns nil; in-memory repositories never touch gorm
func (c *MockPostgresClient) Querier(ctx context.Context) *gorm.DB {
	return nil
}
