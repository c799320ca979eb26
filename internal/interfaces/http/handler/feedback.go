package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/application/feedback"
)

// FeedbackHandler lets admins read and triage customer feedback
type FeedbackHandler struct {
	BaseHandler
	feedbackService *feedback.Service
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackService *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// List godoc
// @ID           listFeedback
// @Summary      List customer feedback
// @Tags         feedback
// @Produce      json
// @Param        status query string false "Feedback status" Enums(new, read, answered)
// @Success      200 {object} dto.Response{data=[]feedback.Response}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.feedbackService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// UpdateStatus godoc
// @ID           updateFeedbackStatus
// @Summary      Change feedback status
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id path int true "Feedback ID"
// @Param        request body feedback.UpdateStatusRequest true "Request body"
// @Success      200 {object} dto.Response{data=feedback.Response}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/feedback/{id}/status [put]
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req feedback.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.feedbackService.MarkStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}
