package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopbot/backend/internal/application/report"
)

// StatisticsHandler serves the sales dashboard figures
type StatisticsHandler struct {
	BaseHandler
	statisticsService *report.StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler
func NewStatisticsHandler(statisticsService *report.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// Statistics returns figures for period day, week or month; unknown periods
// fall back to week.
// @ID           getStatistics
// @Summary      Get sales statistics
// @Tags         statistics
// @Produce      json
// @Param        period query string false "Reporting period" Enums(day, week, month)
// @Success      200 {object} dto.Response{data=report.StatisticsResponse}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /admin/statistics [get]
func (h *StatisticsHandler) Statistics(c *gin.Context) {
	stats, err := h.statisticsService.Statistics(c.Request.Context(), c.Query("period"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
