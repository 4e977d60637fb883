// internal/handlers/cart.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/konisgames/storefront-backend/internal/i18n"
	"github.com/konisgames/storefront-backend/internal/middleware"
	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/services"
	"github.com/konisgames/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService     *services.CartService
	checkoutService *services.CheckoutService
}

func NewCartHandler(cartService *services.CartService, checkoutService *services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

type cartLineRequest struct {
	ProductID    int64 `json:"product_id" validate:"required"`
	VariantIndex int   `json:"variant_index" validate:"gte=0"`
}

type updateQuantityRequest struct {
	cartLineRequest
	Quantity int `json:"quantity"`
}

type setOpenRequest struct {
	Open bool `json:"open"`
}

// respond echoes the token header so a freshly issued cart sticks to the
// session, then returns the cart with its priced totals.
func (h *CartHandler) respond(c *gin.Context, cart *models.Cart) {
	c.Header(middleware.CartTokenHeader, cart.Token)

	totals, err := h.cartService.ResolveTotals(cart)
	if err != nil {
		// A line can stop resolving if the catalog changed under the cart;
		// the cart itself is still returned.
		utils.SuccessResponse(c, gin.H{"cart": cart, "totals": nil})
		return
	}
	utils.SuccessResponse(c, gin.H{"cart": cart, "totals": totals})
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetOrCreate(middleware.GetCartToken(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	h.respond(c, cart)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	cart, err := h.cartService.AddItem(middleware.GetCartToken(c), req.ProductID, req.VariantIndex)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, services.ErrVariantNotFound):
			utils.UnprocessableResponse(c, "INVALID_VARIANT", i18n.T(lang, i18n.KeyCartBadVariant), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}
	h.respond(c, cart)
}

// DELETE /cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	cart, err := h.cartService.RemoveItem(middleware.GetCartToken(c), req.ProductID, req.VariantIndex)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	h.respond(c, cart)
}

// PUT /cart/items
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	cart, err := h.cartService.UpdateQuantity(middleware.GetCartToken(c), req.ProductID, req.VariantIndex, req.Quantity)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	h.respond(c, cart)
}

// PUT /cart/open
func (h *CartHandler) SetOpen(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req setOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	token := middleware.GetCartToken(c)
	cart, err := h.cartService.SetOpen(token, req.Open)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Closing the drawer discards any in-progress checkout.
	if !req.Open {
		h.checkoutService.Reset(cart.Token)
	}
	h.respond(c, cart)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	cart, err := h.cartService.Clear(middleware.GetCartToken(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	h.respond(c, cart)
}
