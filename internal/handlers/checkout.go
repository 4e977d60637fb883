// internal/handlers/checkout.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/konisgames/storefront-backend/internal/i18n"
	"github.com/konisgames/storefront-backend/internal/middleware"
	"github.com/konisgames/storefront-backend/internal/services"
	"github.com/konisgames/storefront-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	view := h.checkoutService.Get(middleware.GetCartToken(c))
	utils.SuccessResponse(c, view)
}

// POST /checkout/begin
func (h *CheckoutHandler) Begin(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	view, err := h.checkoutService.Begin(middleware.GetCartToken(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartEmpty):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)
		case errors.Is(err, services.ErrCheckoutInFlight):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutInProgress))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}
	utils.SuccessResponse(c, view)
}

// PUT /checkout/form
func (h *CheckoutHandler) UpdateForm(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var form services.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	view := h.checkoutService.UpdateForm(middleware.GetCartToken(c), form)
	utils.SuccessResponse(c, view)
}

// POST /checkout/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var form services.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	view, err := h.checkoutService.Submit(c.Request.Context(), middleware.GetCartToken(c), form)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCheckoutInFlight):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutInProgress))
		case errors.Is(err, services.ErrCartEmpty):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)
		case errors.Is(err, services.ErrStaleCheckout):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutCartChanged))
		case errors.Is(err, services.ErrPaymentLinkFailed), errors.Is(err, services.ErrInvalidAmount):
			utils.ErrorResponse(c, 502, "PAYMENT_LINK_FAILED", i18n.T(lang, i18n.KeyPaymentLinkFailed), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	// A view with field errors means validation failed; the state machine
	// stayed in the form and nothing was sent anywhere.
	if len(view.FieldErrors) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyCheckoutInvalidForm), view)
		return
	}

	utils.SuccessResponse(c, view)
}

// POST /checkout/abandon
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	view, err := h.checkoutService.Abandon(middleware.GetCartToken(c))
	if err != nil {
		if errors.Is(err, services.ErrCheckoutInFlight) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutInProgress))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, view)
}

// POST /checkout/reset
func (h *CheckoutHandler) Reset(c *gin.Context) {
	view := h.checkoutService.Reset(middleware.GetCartToken(c))
	utils.SuccessResponse(c, view)
}
