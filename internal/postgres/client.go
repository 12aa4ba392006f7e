package postgres

import (
	"context"

	"github.com/salonhq/salonhq/internal/config"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TxKey is the context key type for storing the active transaction
type TxKey struct{}

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls reuse
	// the transaction already in the context.
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// Querier returns the current transaction handle if in a transaction,
	// or the regular handle
	Querier(ctx context.Context) *gorm.DB
}

// Client wraps gorm.DB to provide context-scoped transaction management
type Client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewDB opens the database connection from config
func NewDB(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// surfaces duplicate key violations as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}
	return db, nil
}

// NewClient creates a new client with the given gorm handle
func NewClient(db *gorm.DB, log *logger.Logger) IClient {
	return &Client{db: db, logger: log}
}

// WithTx runs fn inside a transaction scoped to the context. The
// transaction handle travels in the context so repositories on the same
// call path share it.
func (c *Client) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(TxKey{}).(*gorm.DB); ok {
		// already inside a transaction; join it
		return fn(ctx)
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, TxKey{}, tx)
		return fn(txCtx)
	})
}

// Querier returns the transaction from context if present, else the root handle
func (c *Client) Querier(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxKey{}).(*gorm.DB); ok {
		return tx
	}
	return c.db.WithContext(ctx)
}
