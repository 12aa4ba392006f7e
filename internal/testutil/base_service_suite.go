package testutil

import (
	"context"
	"time"

	"github.com/salonhq/salonhq/internal/config"
	"github.com/salonhq/salonhq/internal/domain/benefit"
	"github.com/salonhq/salonhq/internal/domain/catalog"
	"github.com/salonhq/salonhq/internal/domain/checkout"
	"github.com/salonhq/salonhq/internal/domain/customer"
	"github.com/salonhq/salonhq/internal/domain/invoice"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/rbac"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CustomerRepo customer.Repository
	CatalogRepo  catalog.Repository
	BenefitRepo  benefit.Repository
	CheckoutRepo checkout.Repository
	InvoiceRepo  invoice.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	rbac   *rbac.Service
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.rbac, err = rbac.NewService(cfg)
	if err != nil {
		s.T().Fatalf("failed to create rbac service: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CustomerRepo: NewInMemoryCustomerStore(),
		CatalogRepo:  NewInMemoryCatalogStore(),
		BenefitRepo:  NewInMemoryBenefitStore(),
		CheckoutRepo: NewInMemoryCheckoutStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
	}
	s.db = NewMockPostgresClient(s.logger)
}

// ClearStores resets every in-memory store
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.CatalogRepo.(*InMemoryCatalogStore).Clear()
	s.stores.BenefitRepo.(*InMemoryBenefitStore).Clear()
	s.stores.CheckoutRepo.(*InMemoryCheckoutStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContext overrides the test context
func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock db client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetRBAC returns the rbac service
func (s *BaseServiceTestSuite) GetRBAC() *rbac.Service {
	return s.rbac
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
