package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/salonhq/salonhq/internal/api/v1"
	"github.com/salonhq/salonhq/internal/rest/middleware"
)

type Handlers struct {
	Checkout *v1.CheckoutHandler
	Invoice  *v1.InvoiceHandler
	Health   *v1.HealthHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// v1 routes sit behind the tenant context
	v1Group := router.Group("/v1")
	v1Group.Use(middleware.TenantContextMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	checkouts := router.Group("/checkouts")
	{
		checkouts.POST("", handlers.Checkout.StartCheckout)
		checkouts.GET("/:id", handlers.Checkout.GetSession)
		checkouts.POST("/:id/items", handlers.Checkout.AddItem)
		checkouts.PUT("/:id/items/:item_id", handlers.Checkout.UpdateItem)
		checkouts.DELETE("/:id/items/:item_id", handlers.Checkout.RemoveItem)
		checkouts.POST("/:id/discounts", handlers.Checkout.ApplyDiscount)
		checkouts.DELETE("/:id/discounts/:discount_id", handlers.Checkout.RemoveDiscount)
		checkouts.POST("/:id/credits", handlers.Checkout.ApplyCredit)
		checkouts.PUT("/:id/tip", handlers.Checkout.SetTip)
		checkouts.POST("/:id/payments", handlers.Checkout.ProcessPayment)
		checkouts.DELETE("/:id/payments/:payment_id", handlers.Checkout.RemovePayment)
		checkouts.POST("/:id/complete", handlers.Checkout.CompleteCheckout)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}
}
