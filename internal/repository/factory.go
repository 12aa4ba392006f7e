package repository

import (
	"github.com/salonhq/salonhq/internal/cache"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/catalog"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/customer"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	postgresRepo "github.com/salonhq/salonhq/internal/repository/postgres"
)

func NewCheckoutRepository(client postgres.IClient, log *logger.Logger) checkout.Repository {
	return postgresRepo.NewCheckoutRepository(client, log)
}

func NewInvoiceRepository(client postgres.IClient, log *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(client, log)
}

func NewCustomerRepository(client postgres.IClient, log *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(client, log)
}

func NewCatalogRepository(client postgres.IClient, log *logger.Logger, c cache.Cache) catalog.Repository {
	return postgresRepo.NewCatalogRepository(client, log, c)
}

func NewBenefitRepository(client postgres.IClient, log *logger.Logger) benefit.Repository {
	return postgresRepo.NewBenefitRepository(client, log)
}
