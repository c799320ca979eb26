package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/application/identity"
	"github.com/shopbot/backend/internal/application/trade"
)

// UserHandler exposes chat users to admins
type UserHandler struct {
	BaseHandler
	userService  *identity.UserService
	orderService *trade.OrderService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identity.UserService, orderService *trade.OrderService) *UserHandler {
	return &UserHandler{userService: userService, orderService: orderService}
}

// List godoc
// @ID           listUsers
// @Summary      List chat users
// @Tags         users
// @Produce      json
// @Param        search query string false "Handle or nickname fragment"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]identity.UserResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req identity.ListUsersRequest
	if !h.BindQuery(c, &req) {
		return
	}
	users, total, err := h.userService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, req.Page, req.PageSize)
}

// Get godoc
// @ID           getUser
// @Summary      Get a chat user
// @Tags         users
// @Produce      json
// @Param        external_id path int true "Chat user ID"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/users/{external_id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	externalID, ok := h.ParamID(c, "external_id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile godoc
// @ID           updateUser
// @Summary      Update a chat user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        external_id path int true "Chat user ID"
// @Param        request body identity.UpdateProfileRequest true "Request body"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/users/{external_id} [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	externalID, ok := h.ParamID(c, "external_id")
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), externalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Orders returns one user's order history
// @ID           listUserOrders
// @Summary      List a chat user's orders
// @Tags         users
// @Produce      json
// @Param        external_id path int true "Chat user ID"
// @Success      200 {object} dto.Response{data=[]trade.OrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/users/{external_id}/orders [get]
func (h *UserHandler) Orders(c *gin.Context) {
	externalID, ok := h.ParamID(c, "external_id")
	if !ok {
		return
	}
	orders, total, err := h.orderService.CustomerOrders(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, 1, len(orders))
}
