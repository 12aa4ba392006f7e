package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salonhq/salonhq/internal/api/dto"
	ierr "github.com/salonhq/salonhq/internal/errors"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/service"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

// @Summary Start a checkout session
// @Description Open a new checkout session for a visit
// @Tags Checkout
// @Accept json
// @Produce json
// @Param checkout body dto.StartCheckoutRequest true "Checkout"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /checkouts [post]
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	var req dto.StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.StartCheckout(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(sess))
}

// @Summary Get a checkout session
// @Description Get a checkout session by ID
// @Tags Checkout
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /checkouts/{id} [get]
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	sess, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Add a line item
// @Description Add a catalog item to the session
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param item body dto.AddItemRequest true "Item"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/items [post]
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Update a line item
// @Description Update quantity or staff assignment on a line item
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param item_id path string true "Line Item ID"
// @Param item body dto.UpdateItemRequest true "Item"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/items/{item_id} [put]
func (h *CheckoutHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("item_id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Remove a line item
// @Description Remove a line item and the discounts tied to it
// @Tags Checkout
// @Produce json
// @Param id path string true "Session ID"
// @Param item_id path string true "Line Item ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/items/{item_id} [delete]
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	sess, err := h.service.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("item_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Apply a discount
// @Description Apply a benefit-sourced or manual discount to the session
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param discount body dto.DiscountRequest true "Discount"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/discounts [post]
func (h *CheckoutHandler) ApplyDiscount(c *gin.Context) {
	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.ApplyDiscount(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Remove a discount
// @Description Remove an applied discount from the session
// @Tags Checkout
// @Produce json
// @Param id path string true "Session ID"
// @Param discount_id path string true "Discount ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/discounts/{discount_id} [delete]
func (h *CheckoutHandler) RemoveDiscount(c *gin.Context) {
	sess, err := h.service.RemoveDiscount(c.Request.Context(), c.Param("id"), c.Param("discount_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Apply a settlement credit
// @Description Redeem loyalty points or wallet balance against the amount due
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param credit body dto.CreditRequest true "Credit"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/credits [post]
func (h *CheckoutHandler) ApplyCredit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.ApplyCredit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Set the tip
// @Description Set the tip amount on the session
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param tip body dto.SetTipRequest true "Tip"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/tip [put]
func (h *CheckoutHandler) SetTip(c *gin.Context) {
	var req dto.SetTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	sess, err := h.service.SetTip(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Record a payment
// @Description Record one payment instrument against the session
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payment body dto.PaymentRequest true "Payment"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/payments [post]
func (h *CheckoutHandler) ProcessPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	sess, err := h.service.ProcessPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Remove a payment
// @Description Void a recorded payment entry
// @Tags Checkout
// @Produce json
// @Param id path string true "Session ID"
// @Param payment_id path string true "Payment ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/payments/{payment_id} [delete]
func (h *CheckoutHandler) RemovePayment(c *gin.Context) {
	sess, err := h.service.RemovePayment(c.Request.Context(), c.Param("id"), c.Param("payment_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// @Summary Complete a checkout
// @Description Finalize a settled session into an immutable invoice
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param complete body dto.CompleteCheckoutRequest true "Completion"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /checkouts/{id}/complete [post]
func (h *CheckoutHandler) CompleteCheckout(c *gin.Context) {
	var req dto.CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	inv, err := h.service.CompleteCheckout(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}
