package service

import (
	"github.com/salonhq/salonhq/internal/config"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/catalog"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/customer"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	"github.com/salonhq/salonhq/internal/idempotency"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/rbac"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	RBAC   *rbac.Service

	// Repositories
	CustomerRepo customer.Repository
	CatalogRepo  catalog.Repository
	BenefitRepo  benefit.Repository
	CheckoutRepo checkout.Repository
	InvoiceRepo  invoice.Repository

	// Idempotency key generator
	IdempotencyGen *idempotency.Generator
}

// NewServiceParams assembles the common dependency bundle consumed by all
// service constructors
func NewServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	rbacService *rbac.Service,
	customerRepo customer.Repository,
	catalogRepo catalog.Repository,
	benefitRepo benefit.Repository,
	checkoutRepo checkout.Repository,
	invoiceRepo invoice.Repository,
	idempotencyGen *idempotency.Generator,
) ServiceParams {
	return ServiceParams{
		Logger:         log,
		Config:         cfg,
		DB:             db,
		RBAC:           rbacService,
		CustomerRepo:   customerRepo,
		CatalogRepo:    catalogRepo,
		BenefitRepo:    benefitRepo,
		CheckoutRepo:   checkoutRepo,
		InvoiceRepo:    invoiceRepo,
		IdempotencyGen: idempotencyGen,
	}
}
