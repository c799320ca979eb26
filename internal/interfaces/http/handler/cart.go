package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/application/trade"
)

// CartHandler exposes abandoned cart follow-up
type CartHandler struct {
	BaseHandler
	cartService *trade.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *trade.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Abandoned godoc
// @ID           listAbandonedCarts
// @Summary      List abandoned carts
// @Tags         carts
// @Produce      json
// @Success      200 {object} dto.Response{data=[]trade.AbandonedCartResponse}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/carts/abandoned [get]
func (h *CartHandler) Abandoned(c *gin.Context) {
	carts, err := h.cartService.ListAbandoned(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, carts)
}

// Remind sends reminders for abandoned carts now
// @ID           remindAbandonedCarts
// @Summary      Send abandoned cart reminders
// @Tags         carts
// @Produce      json
// @Success      200 {object} dto.Response{data=trade.ReminderResult}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/carts/remind [post]
func (h *CartHandler) Remind(c *gin.Context) {
	result, err := h.cartService.RemindAbandoned(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
